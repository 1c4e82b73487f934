// Package config provides configuration loading and management for
// morphology-mcp. It handles loading configuration from YAML or TOML files
// and provides default values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/morphology-mcp/internal/morphology"
)

// DefaultMaxIterations caps the convergence loop of tool calls. A
// reconstruction on a W×H image needs at most about W·H iterations, and far
// fewer in practice; the cap keeps a pathological request from running
// forever.
const DefaultMaxIterations = 10000

// Config represents the application configuration loaded from YAML or TOML.
type Config struct {
	// Processing parameters for the morphology engine
	Processing Processing `yaml:"processing" toml:"processing"`

	// Server parameters for the stdio transport
	Server Server `yaml:"server" toml:"server"`

	// Logging parameters
	Logging Logging `yaml:"logging" toml:"logging"`
}

// Processing holds the defaults applied to every morphology request.
type Processing struct {
	// Workers is how many sub-regions are computed concurrently
	Workers int `yaml:"workers" toml:"workers"`

	// MaxIterations caps convergence; 0 means unlimited
	MaxIterations int `yaml:"maxIterations" toml:"maxIterations"`

	// FullyConnected selects 3^N-1 neighbors instead of 2N
	FullyConnected bool `yaml:"fullyConnected" toml:"fullyConnected"`

	// CheckPreconditions verifies marker >= mask before computing
	CheckPreconditions bool `yaml:"checkPreconditions" toml:"checkPreconditions"`
}

// Server holds transport limits.
type Server struct {
	// MaxMessageBytes is the largest JSON-RPC line accepted on stdin
	MaxMessageBytes int `yaml:"maxMessageBytes" toml:"maxMessageBytes"`
}

// Logging holds logger settings.
type Logging struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level" toml:"level"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.Workers = runtime.NumCPU()
	cfg.Processing.MaxIterations = DefaultMaxIterations
	cfg.Processing.FullyConnected = false
	cfg.Processing.CheckPreconditions = false

	cfg.Server.MaxMessageBytes = 1024 * 1024

	cfg.Logging.Level = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file, or a TOML file when the
// path ends in .toml.
// If the file doesn't exist, it returns the default configuration.
// Keys missing from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if isTOML(configPath) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file, or a TOML file when the
// path ends in .toml.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := Marshal(cfg, configPath)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Marshal encodes cfg in the format selected by the extension of path.
func Marshal(cfg *Config, path string) ([]byte, error) {
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("error marshaling config: %w", err)
		}
		return buf.Bytes(), nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("error marshaling config: %w", err)
	}
	return data, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path. It refuses to overwrite an existing file.
func CreateDefaultConfigFile(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file %s already exists", configPath)
	}
	return SaveConfig(DefaultConfig(), configPath)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Processing.Workers < 0 {
		return fmt.Errorf("processing.workers must be >= 0, got %d", c.Processing.Workers)
	}
	if c.Processing.MaxIterations < 0 {
		return fmt.Errorf("processing.maxIterations must be >= 0, got %d", c.Processing.MaxIterations)
	}
	if c.Server.MaxMessageBytes < 4096 {
		return fmt.Errorf("server.maxMessageBytes must be >= 4096, got %d", c.Server.MaxMessageBytes)
	}
	if _, err := c.Logging.ParseLevel(); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts the configured level name into a log.Level. An empty
// level means info.
func (l Logging) ParseLevel() (log.Level, error) {
	if l.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("logging.level: %w", err)
	}
	return lvl, nil
}

// Options converts the processing settings into engine options.
// Workers of 0 falls back to one worker per CPU.
func (p Processing) Options() morphology.Options {
	opts := morphology.DefaultOptions()
	if p.Workers > 0 {
		opts.Workers = p.Workers
	}
	opts.MaxIterations = p.MaxIterations
	opts.CheckPreconditions = p.CheckPreconditions
	if p.FullyConnected {
		opts.Connectivity = morphology.FullyConnected
	}
	return opts
}
