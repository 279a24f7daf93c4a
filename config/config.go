// Package config provides configuration loading and management for Semwafer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semwafer/library"
)

// Config represents the complete Semwafer configuration
type Config struct {
	Library LibraryConfig `yaml:"library"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// LibraryConfig configures the strategy library on disk
type LibraryConfig struct {
	// Path is the directory holding strategy definition files
	Path string `yaml:"path"`
	// Watch configures filesystem watching of the library directory
	Watch library.WatchConfig `yaml:"watch"`
}

// StorageConfig configures strategy and history persistence
type StorageConfig struct {
	// NATSURL is the NATS server URL for the strategy repository
	// (empty = in-memory repository)
	NATSURL string `yaml:"nats_url"`
	// HistoryPath is the SQLite database path for validation history
	HistoryPath string `yaml:"history_path"`
}

// LogConfig configures logging output
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Path:  "strategies",
			Watch: library.DefaultWatchConfig(),
		},
		Storage: StorageConfig{
			NATSURL:     "", // In-memory repository
			HistoryPath: "semwafer.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Library.Path == "" {
		return fmt.Errorf("library.path is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Library.Watch.DebounceDelay != "" {
		if _, err := time.ParseDuration(c.Library.Watch.DebounceDelay); err != nil {
			return fmt.Errorf("library.watch.debounce_delay must be a duration: %w", err)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Library
	if other.Library.Path != "" {
		c.Library.Path = other.Library.Path
	}
	if other.Library.Watch.Enabled {
		c.Library.Watch.Enabled = true
	}
	if other.Library.Watch.DebounceDelay != "" {
		c.Library.Watch.DebounceDelay = other.Library.Watch.DebounceDelay
	}
	if len(other.Library.Watch.ExcludeDirs) > 0 {
		c.Library.Watch.ExcludeDirs = other.Library.Watch.ExcludeDirs
	}

	// Storage
	if other.Storage.NATSURL != "" {
		c.Storage.NATSURL = other.Storage.NATSURL
	}
	if other.Storage.HistoryPath != "" {
		c.Storage.HistoryPath = other.Storage.HistoryPath
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
