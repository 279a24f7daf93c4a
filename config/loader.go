package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "semwafer.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/semwafer"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Environment variables recognized as the final configuration layer.
const (
	// EnvNATSURL overrides storage.nats_url. The generic NATS_URL is
	// honored too, with the semwafer-specific variable winning.
	EnvNATSURL        = "SEMWAFER_NATS_URL"
	EnvGenericNATSURL = "NATS_URL"
	// EnvLibraryPath overrides library.path
	EnvLibraryPath = "SEMWAFER_LIBRARY"
	// EnvHistoryPath overrides storage.history_path
	EnvHistoryPath = "SEMWAFER_HISTORY_DB"
	// EnvLogLevel overrides log.level
	EnvLogLevel = "SEMWAFER_LOG_LEVEL"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/semwafer/config.yaml)
// 3. Project config (semwafer.yaml in current or parent directories)
// 4. Environment variables (SEMWAFER_*, NATS_URL)
//
// When a project config is found, relative library and history paths are
// resolved against its directory, so commands behave the same from any
// subdirectory of a project.
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Load user config
	userConfigPath := l.userConfigPath()
	if userConfig, err := LoadFromFile(userConfigPath); err == nil {
		l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
		config.Merge(userConfig)
	} else if !errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
	}

	// Load project config
	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
		l.anchorPaths(config, filepath.Dir(projectConfigPath))
	} else {
		l.logger.Debug("No project config found")
	}

	// Environment variables win over every file layer
	l.applyEnv(config)

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// anchorPaths resolves relative file paths against the project root.
func (l *Loader) anchorPaths(config *Config, root string) {
	if config.Library.Path != "" && !filepath.IsAbs(config.Library.Path) {
		config.Library.Path = filepath.Join(root, config.Library.Path)
	}
	if config.Storage.HistoryPath != "" && !filepath.IsAbs(config.Storage.HistoryPath) {
		config.Storage.HistoryPath = filepath.Join(root, config.Storage.HistoryPath)
	}
}

// applyEnv overlays environment variables onto the config. Paths given
// through the environment are taken as-is, without project anchoring.
func (l *Loader) applyEnv(config *Config) {
	if url := os.Getenv(EnvNATSURL); url != "" {
		config.Storage.NATSURL = url
	} else if url := os.Getenv(EnvGenericNATSURL); url != "" {
		config.Storage.NATSURL = url
	}
	if path := os.Getenv(EnvLibraryPath); path != "" {
		config.Library.Path = path
	}
	if path := os.Getenv(EnvHistoryPath); path != "" {
		config.Storage.HistoryPath = path
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		config.Log.Level = level
	}
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()

	// Check if it already exists
	if _, err := os.Stat(userConfigPath); err == nil {
		return nil // Already exists
	}

	// Create default config
	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for semwafer.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}
