package rule

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownType indicates a rule_type with no registered factory.
var ErrUnknownType = errors.New("unknown rule type")

// Factory builds a rule instance from raw configuration parameters.
type Factory func(params Params) (Rule, error)

// Registry resolves rule-type names to factories. Registries are safe
// for concurrent use. There is no process-wide default: construct one
// and hand it to whatever compiles strategies against it.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in rule kinds registered.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
	}

	r.Register(TypeFixedPoint, func(p Params) (Rule, error) { return NewFixedPoint(p), nil })
	r.Register(TypeCenterEdge, func(p Params) (Rule, error) { return NewCenterEdge(p), nil })
	r.Register(TypeUniformGrid, func(p Params) (Rule, error) { return NewUniformGrid(p), nil })
	r.Register(TypeRandomSampling, func(p Params) (Rule, error) { return NewRandomSampling(p), nil })

	return r
}

// Register adds a factory under the given rule-type name, replacing any
// existing registration for that name.
func (r *Registry) Register(ruleType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[ruleType] = f
}

// Create instantiates a rule of the given type with the given parameters.
// Unknown types return an error wrapping ErrUnknownType.
func (r *Registry) Create(ruleType string, params Params) (Rule, error) {
	r.mu.RLock()
	f, ok := r.factories[ruleType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, ruleType)
	}
	return f(params)
}

// Has reports whether a factory is registered for the rule type.
func (r *Registry) Has(ruleType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[ruleType]
	return ok
}

// Types returns the registered rule-type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
