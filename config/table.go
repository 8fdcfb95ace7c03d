package config

import (
	"fmt"
	"strings"

	"github.com/pingcap/metertable/common"
)

// Default meter table limits
const (
	DefaultMaxMeter         uint32 = 256
	DefaultMaxBandsPerMeter uint8  = 16
	DefaultMaxColor         uint8  = 8
	DefaultTableBands       uint32 = 1024
)

var (
	// DefaultCapabilities rate in kb/s, burst size and statistics
	DefaultCapabilities = []string{"kbps", "burst", "stats"}
	// DefaultBandTypes band types supported by the default meterer
	DefaultBandTypes = []string{"drop", "dscp-remark"}
)

var capabilityNames = map[string]common.MeterFlags{
	"kbps":  common.MeterFlagKBPS,
	"pktps": common.MeterFlagPKTPS,
	"burst": common.MeterFlagBurst,
	"stats": common.MeterFlagStats,
}

var bandTypeNames = map[string]common.BandType{
	"drop":        common.BandTypeDrop,
	"dscp-remark": common.BandTypeDSCPRemark,
}

// TableConfig meter table limits, fixed when the table is created
type TableConfig struct {
	// MaxMeter maximum number of meters
	MaxMeter uint32 `yaml:"max-meter,omitempty" toml:"max-meter,omitempty" json:"max-meter,omitempty" reloadable:"false"`
	// MaxBands maximum number of bands per meter
	MaxBands uint8 `yaml:"max-bands,omitempty" toml:"max-bands,omitempty" json:"max-bands,omitempty" reloadable:"false"`
	// MaxColor maximum color value
	MaxColor uint8 `yaml:"max-color,omitempty" toml:"max-color,omitempty" json:"max-color,omitempty" reloadable:"false"`
	// TableBands maximum number of bands across all meters
	TableBands uint32 `yaml:"table-bands,omitempty" toml:"table-bands,omitempty" json:"table-bands,omitempty" reloadable:"false"`
	// Capabilities any of kbps, pktps, burst, stats
	Capabilities []string `yaml:"capabilities,omitempty" toml:"capabilities,omitempty" json:"capabilities,omitempty" reloadable:"false"`
	// BandTypes any of drop, dscp-remark
	BandTypes []string `yaml:"band-types,omitempty" toml:"band-types,omitempty" json:"band-types,omitempty" reloadable:"false"`
}

// Validate checks capability and band type names
func (tc *TableConfig) Validate() error {
	for _, name := range tc.Capabilities {
		if _, ok := capabilityNames[strings.ToLower(name)]; !ok {
			return fmt.Errorf("unknown meter capability: %s", name)
		}
	}
	for _, name := range tc.BandTypes {
		if _, ok := bandTypeNames[strings.ToLower(name)]; !ok {
			return fmt.Errorf("unknown band type: %s", name)
		}
	}
	return nil
}

// Features returns the meter features described by the configuration, unset fields use defaults.
// Unknown names are ignored here, call Validate to reject them.
func (tc *TableConfig) Features() common.MeterFeatures {
	features := common.MeterFeatures{
		MaxMeter: tc.MaxMeter,
		MaxBands: tc.MaxBands,
		MaxColor: tc.MaxColor,
	}
	if features.MaxMeter == 0 {
		features.MaxMeter = DefaultMaxMeter
	}
	if features.MaxBands == 0 {
		features.MaxBands = DefaultMaxBandsPerMeter
	}
	if features.MaxColor == 0 {
		features.MaxColor = DefaultMaxColor
	}

	capabilities := tc.Capabilities
	if len(capabilities) == 0 {
		capabilities = DefaultCapabilities
	}
	for _, name := range capabilities {
		features.Capabilities |= uint32(capabilityNames[strings.ToLower(name)])
	}

	bandTypes := tc.BandTypes
	if len(bandTypes) == 0 {
		bandTypes = DefaultBandTypes
	}
	for _, name := range bandTypes {
		if t, ok := bandTypeNames[strings.ToLower(name)]; ok {
			features.BandTypes |= t.Flag()
		}
	}

	return features
}

// BandLimit returns the table wide band ceiling
func (tc *TableConfig) BandLimit() uint32 {
	if tc.TableBands == 0 {
		return DefaultTableBands
	}
	return tc.TableBands
}
