package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// eventChannelBuffer is the size of the watch event channel.
	eventChannelBuffer = 500
)

// definitionExtensions are the file extensions the watcher reacts to.
var definitionExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// WatchConfig configures definition file watching.
type WatchConfig struct {
	// Enabled controls whether file watching is active.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DebounceDelay is how long to wait for more changes before
	// processing.
	DebounceDelay string `json:"debounce_delay" yaml:"debounce_delay"`

	// ExcludeDirs lists directory names to skip.
	ExcludeDirs []string `json:"exclude_dirs" yaml:"exclude_dirs"`
}

// DefaultWatchConfig returns default watch configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		Enabled:       false,
		DebounceDelay: "500ms",
		ExcludeDirs:   []string{".git"},
	}
}

// GetDebounceDelay returns the debounce delay as a duration.
func (c *WatchConfig) GetDebounceDelay() time.Duration {
	if c.DebounceDelay == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(c.DebounceDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// Operation indicates the type of file operation.
type Operation string

// OpCreate, OpModify, and OpDelete enumerate the watch operation types.
const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Event represents a definition file change.
type Event struct {
	// Path is the file path relative to the library root.
	Path string

	// Operation is the type of change.
	Operation Operation

	// AbsPath is the absolute file path.
	AbsPath string
}

// Watcher watches a library directory and emits definition file change
// events. Changes are debounced, and a modification that leaves the file
// content byte-identical is suppressed so editors that rewrite files on
// save do not trigger reloads. Start records a hash for every definition
// already in the library, so pre-existing files report "modify" rather
// than "create" on their first change.
type Watcher struct {
	config  WatchConfig
	dir     string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	excludes map[string]bool

	// Debouncing: collect changes before processing
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// Hash-based change detection
	hashMu sync.RWMutex
	hashes map[string]string

	// Output channel
	events chan Event

	// Metrics
	droppedEvents atomic.Int64
}

// NewWatcher creates a watcher over the library directory.
func NewWatcher(config WatchConfig, dir string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	excludes := make(map[string]bool)
	if len(config.ExcludeDirs) == 0 {
		excludes[".git"] = true
	} else {
		for _, d := range config.ExcludeDirs {
			excludes[d] = true
		}
	}

	return &Watcher{
		config:   config,
		dir:      dir,
		watcher:  fsw,
		logger:   logger,
		excludes: excludes,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		events:   make(chan Event, eventChannelBuffer),
	}, nil
}

// Events returns the channel of watch events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start scans the library, then begins watching it for changes.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}

	if err := w.scan(w.dir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Library watcher started",
		"dir", w.dir,
		"debounce", w.config.GetDebounceDelay())

	return nil
}

// Stop stops the watcher.
// The events channel is closed by processEvents when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

func (w *Watcher) getHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

// scan walks the library tree, watching every directory and recording a
// content hash for every definition file already present. Hash reads are
// best-effort: an unreadable file is logged and skipped.
func (w *Watcher) scan(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if info.IsDir() {
			// Skip excluded and hidden directories
			if w.excludes[base] || (strings.HasPrefix(base, ".") && base != ".") {
				return filepath.SkipDir
			}

			if err := w.watcher.Add(path); err != nil {
				w.logger.Warn("Failed to watch directory",
					"path", path,
					"error", err)
			} else {
				w.logger.Debug("Watching directory", "path", path)
			}
			return nil
		}

		if !definitionExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			w.logger.Warn("Failed to read definition during scan",
				"path", path,
				"error", err)
			return nil
		}

		relPath, _ := filepath.Rel(w.dir, path)
		w.setHash(relPath, contentHash(content))
		return nil
	})
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events) // Close events channel when goroutine exits
	ticker := time.NewTicker(w.config.GetDebounceDelay())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent processes a single fsnotify event.
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	ext := strings.ToLower(filepath.Ext(path))
	if !definitionExtensions[ext] {
		// But handle directory creation (for new watches)
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				w.handleNewDirectory(path)
			}
		}
		return
	}

	// Skip files in excluded directories
	relPath, _ := filepath.Rel(w.dir, path)
	for excludeDir := range w.excludes {
		if strings.Contains(relPath, excludeDir+string(filepath.Separator)) {
			return
		}
	}

	// Accumulate pending changes
	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Definition change detected",
		"path", relPath,
		"op", event.Op.String())
}

// handleNewDirectory adds a watch to a newly created directory.
func (w *Watcher) handleNewDirectory(path string) {
	base := filepath.Base(path)
	if w.excludes[base] || strings.HasPrefix(base, ".") {
		return
	}

	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("Failed to watch new directory",
			"path", path,
			"error", err)
	} else {
		w.logger.Debug("Added watch for new directory", "path", path)
	}
}

// flushPending processes accumulated changes.
func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}

	// Copy and clear pending
	toProcess := make(map[string]fsnotify.Op)
	for k, v := range w.pending {
		toProcess[k] = v
	}
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		select {
		case <-ctx.Done():
			return
		default:
		}

		relPath, _ := filepath.Rel(w.dir, path)
		event := Event{
			Path:    relPath,
			AbsPath: path,
		}

		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			event.Operation = OpDelete

			w.hashMu.Lock()
			delete(w.hashes, relPath)
			w.hashMu.Unlock()

			w.sendEvent(event)
			continue
		}

		// Check if file still exists
		if _, err := os.Stat(path); os.IsNotExist(err) {
			event.Operation = OpDelete
			w.sendEvent(event)
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			w.logger.Warn("Failed to read file for hash check",
				"path", relPath,
				"error", err)
			continue
		}

		newHash := contentHash(content)

		// Check if content actually changed
		oldHash, hadHash := w.getHash(relPath)
		if hadHash && oldHash == newHash {
			continue
		}

		w.setHash(relPath, newHash)

		if op.Has(fsnotify.Create) || !hadHash {
			event.Operation = OpCreate
		} else {
			event.Operation = OpModify
		}

		w.sendEvent(event)
	}
}

// sendEvent sends an event to the output channel.
func (w *Watcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event",
			"path", event.Path,
			"op", event.Operation)
	default:
		dropped := w.droppedEvents.Add(1)
		w.logger.Warn("Event channel full, dropping event",
			"path", event.Path,
			"total_dropped", dropped)
	}
}

// DroppedEvents returns the number of events dropped due to channel
// overflow.
func (w *Watcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

// contentHash returns the hex SHA-256 of the file content.
func contentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
