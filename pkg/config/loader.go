package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrNoTargets        = errors.New("configuration has no targets")
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel     = "SWAGGERSTUB_LOG_LEVEL"
	EnvLogFormat    = "SWAGGERSTUB_LOG_FORMAT"
	EnvContractPath = "SWAGGERSTUB_CONTRACT_PATH"
)

// LoadFromFile reads a Config from a JSON or YAML file.
// The format is auto-detected based on file extension (.yaml, .yml for YAML, otherwise JSON).
// Relative contract paths are resolved against the file's directory.
func LoadFromFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var cfg *Config
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		cfg, err = ParseYAML(data)
	} else {
		cfg, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// ParseJSON parses and validates a JSON configuration.
func ParseJSON(data []byte) (*Config, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return finish(doc, &cfg)
}

// ParseYAML parses and validates a YAML configuration.
func ParseYAML(data []byte) (*Config, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return finish(doc, &cfg)
}

func finish(doc interface{}, cfg *Config) (*Config, error) {
	if res := ValidateDocument(doc); !res.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, res.Err())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, ErrNoTargets) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// resolvePaths makes relative contract paths relative to dir.
func (c *Config) resolvePaths(dir string) {
	for i, t := range c.Targets {
		if t.Contract != "" && !filepath.IsAbs(t.Contract) {
			c.Targets[i].Contract = filepath.Join(dir, t.Contract)
		}
	}
}

// ApplyEnv overlays SWAGGERSTUB_* environment variables onto the config.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := os.LookupEnv(EnvContractPath); ok && v != "" {
		c.ContractPath = v
	}
}
