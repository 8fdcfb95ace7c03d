package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration of a meter table deployment
type FileConfig struct {
	Table    TableConfig     `yaml:"table" toml:"table" json:"table"`
	Snapshot *SnapshotConfig `yaml:"snapshot,omitempty" toml:"snapshot,omitempty" json:"snapshot,omitempty"`
}

// LoadFile reads a configuration file, the format is chosen by extension (.yaml, .yml, .toml, .json)
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	fc := &FileConfig{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	case ".toml":
		err = toml.Unmarshal(data, fc)
	case ".json":
		err = json.Unmarshal(data, fc)
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := fc.Table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table config in %s: %w", path, err)
	}
	return fc, nil
}

// Apply copies the table section into cfg
func (fc *FileConfig) Apply(cfg *Config) *Config {
	return cfg.WithTable(fc.Table)
}
