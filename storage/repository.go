// Package storage persists strategy definitions and validation history.
// Definitions live in NATS KV (or in memory for tests and single-process
// tools); validation reports go to SQLite.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/c360studio/semwafer/strategy"
)

// ListFilter narrows List results. Zero-value fields match everything.
type ListFilter struct {
	// ProcessStep matches definitions for this process step.
	ProcessStep string

	// ToolType matches definitions for this tool type.
	ToolType string

	// Type matches definitions of this strategy type.
	Type strategy.Type

	// Lifecycle matches definitions in this lifecycle state.
	Lifecycle strategy.Lifecycle
}

func (f ListFilter) matches(def *strategy.Definition) bool {
	if f.ProcessStep != "" && def.ProcessStep != f.ProcessStep {
		return false
	}
	if f.ToolType != "" && def.ToolType != f.ToolType {
		return false
	}
	if f.Type != "" && def.Type != f.Type {
		return false
	}
	if f.Lifecycle != "" && def.Lifecycle != f.Lifecycle {
		return false
	}
	return true
}

// StrategyRepository stores versioned strategy definitions. Saving the
// same (id, version) replaces that version; saving a new version appends
// to the id's history. Delete is soft: it deprecates, never removes.
type StrategyRepository interface {
	// Save persists the definition under its (id, version).
	Save(ctx context.Context, def *strategy.Definition) error

	// Get returns the definition. An empty version returns the most
	// recently saved one.
	Get(ctx context.Context, id, version string) (*strategy.Definition, error)

	// List returns the latest version of every definition matching the
	// filter.
	List(ctx context.Context, filter ListFilter) ([]*strategy.Definition, error)

	// Versions returns the stored version strings for an id, oldest
	// first.
	Versions(ctx context.Context, id string) ([]string, error)

	// SetLifecycle transitions the latest version's lifecycle state and
	// persists it. The stored state machine is enforced.
	SetLifecycle(ctx context.Context, id string, state strategy.Lifecycle) error

	// Delete deprecates the latest version. The history stays readable.
	Delete(ctx context.Context, id string) error
}

// storedVersion is one serialized definition revision.
type storedVersion struct {
	version string
	data    []byte
}

// MemoryRepository is an in-process StrategyRepository. Definitions are
// stored serialized, so callers can mutate what they pass in or get back
// without corrupting the store. Safe for concurrent use.
type MemoryRepository struct {
	mu       sync.RWMutex
	versions map[string][]storedVersion
}

var _ StrategyRepository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-process repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{versions: make(map[string][]storedVersion)}
}

// Save persists the definition under its (id, version).
func (r *MemoryRepository) Save(_ context.Context, def *strategy.Definition) error {
	data, err := encodeDefinition(def)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.versions[def.ID]
	for i, v := range history {
		if v.version == def.Version {
			history[i].data = data
			return nil
		}
	}
	r.versions[def.ID] = append(history, storedVersion{version: def.Version, data: data})
	return nil
}

// Get returns the definition; empty version means latest.
func (r *MemoryRepository) Get(_ context.Context, id, version string) (*strategy.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.versions[id]
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	if version == "" {
		return decodeDefinition(history[len(history)-1].data)
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].version == version {
			return decodeDefinition(history[i].data)
		}
	}
	return nil, ErrNotFound
}

// List returns the latest version of every matching definition.
func (r *MemoryRepository) List(_ context.Context, filter ListFilter) ([]*strategy.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*strategy.Definition
	for _, history := range r.versions {
		def, err := decodeDefinition(history[len(history)-1].data)
		if err != nil {
			continue
		}
		if filter.matches(def) {
			out = append(out, def)
		}
	}
	return out, nil
}

// Versions returns the stored versions for an id, oldest first.
func (r *MemoryRepository) Versions(_ context.Context, id string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.versions[id]
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	out := make([]string, len(history))
	for i, v := range history {
		out[i] = v.version
	}
	return out, nil
}

// SetLifecycle transitions the latest version's lifecycle state.
func (r *MemoryRepository) SetLifecycle(ctx context.Context, id string, state strategy.Lifecycle) error {
	def, err := r.Get(ctx, id, "")
	if err != nil {
		return err
	}
	if !def.Lifecycle.CanTransitionTo(state) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, def.Lifecycle, state)
	}
	def.Lifecycle = state
	def.Touch()
	return r.Save(ctx, def)
}

// Delete deprecates the latest version.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	def, err := r.Get(ctx, id, "")
	if err != nil {
		return err
	}
	def.Deprecate()
	return r.Save(ctx, def)
}

func encodeDefinition(def *strategy.Definition) ([]byte, error) {
	if def == nil {
		return nil, fmt.Errorf("definition is nil")
	}
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	return data, nil
}

func decodeDefinition(data []byte) (*strategy.Definition, error) {
	var def strategy.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	return &def, nil
}
