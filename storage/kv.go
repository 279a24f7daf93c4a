package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semwafer/strategy"
)

// BucketStrategies is the KV bucket holding strategy definitions.
const BucketStrategies = "SEMWAFER_STRATEGIES"

// strategyHistory is how many revisions the bucket keeps per key. NATS
// caps KV history at 64; the revision history doubles as the version
// history, so older versions eventually age out.
const strategyHistory = 64

// KVRepository is a StrategyRepository backed by NATS JetStream KV.
// Each definition is stored under its id; version history rides on the
// bucket's revision history.
type KVRepository struct {
	kv jetstream.KeyValue
}

var _ StrategyRepository = (*KVRepository)(nil)

// NewKVRepository creates the strategies bucket if needed and returns a
// repository on it.
func NewKVRepository(ctx context.Context, js jetstream.JetStream) (*KVRepository, error) {
	kv, err := getOrCreateBucket(ctx, js, BucketStrategies)
	if err != nil {
		return nil, fmt.Errorf("create strategies bucket: %w", err)
	}
	return &KVRepository{kv: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Semwafer %s storage", strings.ToLower(name)),
		History:     strategyHistory,
	})
}

// Save persists the definition under its id. Every save is a new
// revision; Get with a version string finds it in the history.
func (r *KVRepository) Save(ctx context.Context, def *strategy.Definition) error {
	data, err := encodeDefinition(def)
	if err != nil {
		return err
	}
	if _, err := r.kv.Put(ctx, def.ID, data); err != nil {
		return fmt.Errorf("store strategy: %w", err)
	}
	return nil
}

// Get returns the definition; empty version means latest.
func (r *KVRepository) Get(ctx context.Context, id, version string) (*strategy.Definition, error) {
	if version == "" {
		entry, err := r.kv.Get(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("get strategy: %w", err)
		}
		return decodeDefinition(entry.Value())
	}

	entries, err := r.kv.History(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("strategy history: %w", err)
	}
	// Newest matching revision wins.
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Operation() != jetstream.KeyValuePut {
			continue
		}
		def, err := decodeDefinition(entries[i].Value())
		if err != nil {
			continue
		}
		if def.Version == version {
			return def, nil
		}
	}
	return nil, ErrNotFound
}

// List returns the latest revision of every definition matching the
// filter.
func (r *KVRepository) List(ctx context.Context, filter ListFilter) ([]*strategy.Definition, error) {
	keys, err := r.kv.Keys(ctx)
	if err != nil {
		if err == jetstream.ErrNoKeysFound {
			return nil, nil
		}
		return nil, fmt.Errorf("list strategy keys: %w", err)
	}

	out := make([]*strategy.Definition, 0, len(keys))
	for _, key := range keys {
		entry, err := r.kv.Get(ctx, key)
		if err != nil {
			continue // Skip entries that fail to load
		}
		def, err := decodeDefinition(entry.Value())
		if err != nil {
			continue
		}
		if filter.matches(def) {
			out = append(out, def)
		}
	}
	return out, nil
}

// Versions returns the distinct version strings in the id's revision
// history, oldest first.
func (r *KVRepository) Versions(ctx context.Context, id string) ([]string, error) {
	entries, err := r.kv.History(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("strategy history: %w", err)
	}

	var out []string
	seen := make(map[string]struct{})
	for _, entry := range entries {
		if entry.Operation() != jetstream.KeyValuePut {
			continue
		}
		def, err := decodeDefinition(entry.Value())
		if err != nil {
			continue
		}
		if _, dup := seen[def.Version]; dup {
			continue
		}
		seen[def.Version] = struct{}{}
		out = append(out, def.Version)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// SetLifecycle transitions the latest revision's lifecycle state.
func (r *KVRepository) SetLifecycle(ctx context.Context, id string, state strategy.Lifecycle) error {
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

// Delete deprecates the latest revision.
func (r *KVRepository) Delete(ctx context.Context, id string) error {
	def, err := r.Get(ctx, id, "")
	if err != nil {
		return err
	}
	def.Deprecate()
	return r.Save(ctx, def)
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
