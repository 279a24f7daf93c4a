// Package library manages a filesystem collection of strategy
// definition files and watches it for changes.
package library

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/semwafer/strategy"
)

// definitionGlob matches definition files at any depth under the
// library directory.
const definitionGlob = "**/*.{yaml,yml,json}"

// LoadDefinition reads one definition file, picking the codec from the
// extension.
func LoadDefinition(path string) (*strategy.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return strategy.ParseYAML(data)
	case ".json":
		return strategy.ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported definition format: %s", filepath.Ext(path))
	}
}

// SaveDefinition writes one definition file, picking the codec from the
// extension.
func SaveDefinition(path string, def *strategy.Definition) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = strategy.EncodeYAML(def)
	case ".json":
		data, err = strategy.EncodeJSON(def)
	default:
		return fmt.Errorf("unsupported definition format: %s", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing definition: %w", err)
	}
	return nil
}

// LoadError records a definition file that could not be loaded.
type LoadError struct {
	// Path is the failing file.
	Path string

	// Err is the underlying read or parse error.
	Err error
}

// Error implements error.
func (e LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying error.
func (e LoadError) Unwrap() error {
	return e.Err
}

// Library is a directory tree of strategy definition files.
type Library struct {
	dir    string
	logger *slog.Logger
}

// New creates a library over the directory. A nil logger falls back to
// slog.Default().
func New(dir string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{dir: dir, logger: logger}
}

// Dir returns the library root.
func (l *Library) Dir() string {
	return l.dir
}

// LoadAll loads every definition file under the library root, in path
// order. Files that fail to load are collected as LoadErrors so one bad
// file never hides the rest; the error return is reserved for discovery
// failures.
func (l *Library) LoadAll() ([]*strategy.Definition, []LoadError, error) {
	pattern := filepath.Join(l.dir, definitionGlob)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var defs []*strategy.Definition
	var loadErrs []LoadError
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		def, err := LoadDefinition(path)
		if err != nil {
			l.logger.Warn("skipping definition file",
				"path", path,
				"error", err)
			loadErrs = append(loadErrs, LoadError{Path: path, Err: err})
			continue
		}
		defs = append(defs, def)
	}

	l.logger.Debug("library loaded",
		"dir", l.dir,
		"definitions", len(defs),
		"failures", len(loadErrs))
	return defs, loadErrs, nil
}

// Save writes the definition as <id>.yaml at the library root and
// returns the path.
func (l *Library) Save(def *strategy.Definition) (string, error) {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return "", fmt.Errorf("creating library dir: %w", err)
	}
	path := filepath.Join(l.dir, def.ID+".yaml")
	if err := SaveDefinition(path, def); err != nil {
		return "", err
	}
	return path, nil
}
