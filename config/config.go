package config

import (
	"go.uber.org/zap"
)

// Config contains SDK common configuration
type Config struct {
	// Logger log instance, if nil will use default nop logger
	Logger *zap.Logger
	// Debug whether to enable debug mode
	Debug bool
	// OverwriteExisting whether snapshot writers may overwrite an existing snapshot, default false
	// When false, returns error if the snapshot already exists
	OverwriteExisting bool
	// Table meter table limits, zero values fall back to defaults
	Table TableConfig
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Logger: zap.NewNop(), // default use nop logger
		Debug:  false,
	}
}

// NewDebugConfig returns configuration with debug mode enabled
func NewDebugConfig() *Config {
	debugLogger, err := zap.NewDevelopment()
	if err != nil {
		// If creation fails, use nop logger
		debugLogger = zap.NewNop()
	}

	return &Config{
		Logger: debugLogger,
		Debug:  true,
	}
}

// WithLogger sets custom logger
func (c *Config) WithLogger(logger *zap.Logger) *Config {
	c.Logger = logger
	return c
}

// WithProductionLogger sets production environment logger
func (c *Config) WithProductionLogger() *Config {
	logger, err := zap.NewProduction()
	if err != nil {
		c.Logger = zap.NewNop()
	} else {
		c.Logger = logger
	}
	return c
}

// WithDevelopmentLogger set debug logger
func (c *Config) WithDevelopmentLogger() *Config {
	devLogger, err := zap.NewDevelopment()
	if err != nil {
		return c
	}
	c.Logger = devLogger
	c.Debug = true
	return c
}

// WithDebug sets debug mode. Enabling debug upgrades a missing logger to a
// development logger but keeps a logger the caller set explicitly.
func (c *Config) WithDebug(debug bool) *Config {
	c.Debug = debug

	if debug && c.Logger == nil {
		debugLogger, err := zap.NewDevelopment()
		if err != nil {
			return c
		}
		c.Logger = debugLogger
	}

	return c
}

// GetLogger gets logger instance
func (c *Config) GetLogger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// WithOverwriteExisting sets whether to overwrite existing snapshots
func (c *Config) WithOverwriteExisting(overwrite bool) *Config {
	c.OverwriteExisting = overwrite
	return c
}

// WithTable replaces the meter table limits
func (c *Config) WithTable(table TableConfig) *Config {
	c.Table = table
	return c
}

// WithMaxMeters sets the maximum number of meters
func (c *Config) WithMaxMeters(maxMeter uint32) *Config {
	c.Table.MaxMeter = maxMeter
	return c
}

// WithMaxBandsPerMeter sets the maximum number of bands a single meter may carry
func (c *Config) WithMaxBandsPerMeter(maxBands uint8) *Config {
	c.Table.MaxBands = maxBands
	return c
}

// WithTableBandLimit sets the maximum number of bands across all meters
func (c *Config) WithTableBandLimit(limit uint32) *Config {
	c.Table.TableBands = limit
	return c
}
