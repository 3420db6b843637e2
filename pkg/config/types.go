package config

import (
	"github.com/getmockd/swaggerstub/pkg/contract"
	"github.com/getmockd/swaggerstub/pkg/logging"
)

// Config is the root configuration document.
type Config struct {
	// ContractPath is the reserved path serving the contract document.
	ContractPath string `json:"contractPath,omitempty" yaml:"contractPath,omitempty"`

	// RecordSideEffects adds side-effect responses to call history.
	RecordSideEffects *bool `json:"recordSideEffects,omitempty" yaml:"recordSideEffects,omitempty"`

	// PassthroughHosts are doublestar globs of hosts allowed to reach the
	// network when no target matches.
	PassthroughHosts []string `json:"passthroughHosts,omitempty" yaml:"passthroughHosts,omitempty"`

	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	Targets []Target `json:"targets" yaml:"targets"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Target pairs a contract document with the base URL it stubs.
type Target struct {
	Contract string `json:"contract" yaml:"contract"`
	BaseURL  string `json:"baseUrl" yaml:"baseUrl"`
}

// DefaultConfig returns a configuration with defaults applied and no targets.
func DefaultConfig() *Config {
	record := true
	return &Config{
		ContractPath:      contract.DefaultDocumentPath,
		RecordSideEffects: &record,
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
	}
}

// ShouldRecordSideEffects reports the effective side-effect recording setting.
func (c *Config) ShouldRecordSideEffects() bool {
	return c.RecordSideEffects == nil || *c.RecordSideEffects
}

// LoggingConfig converts the log section for pkg/logging.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Format = logging.ParseFormat(c.Log.Format)
	return cfg
}

// applyDefaults fills unset fields from DefaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.ContractPath == "" {
		c.ContractPath = d.ContractPath
	}
	if c.RecordSideEffects == nil {
		c.RecordSideEffects = d.RecordSideEffects
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}
