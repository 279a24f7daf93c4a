package strategy

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/c360studio/semwafer/metrics"
	"github.com/c360studio/semwafer/rule"
)

// CompileError reports why a definition failed to compile: validation
// issues, an unresolvable rule, or both never at once.
type CompileError struct {
	// DefinitionID is the failing definition's ID, when known.
	DefinitionID string

	// Issues are definition-validation failures, empty for resolution
	// errors.
	Issues []string

	cause error
}

// Error implements error.
func (e *CompileError) Error() string {
	switch {
	case len(e.Issues) > 0:
		return fmt.Sprintf("compiling strategy %s: %s", e.DefinitionID, strings.Join(e.Issues, "; "))
	case e.cause != nil:
		return fmt.Sprintf("compiling strategy %s: %v", e.DefinitionID, e.cause)
	default:
		return fmt.Sprintf("compiling strategy %s failed", e.DefinitionID)
	}
}

// Unwrap exposes the underlying resolution error, if any, so callers can
// match rule.ErrUnknownType with errors.Is.
func (e *CompileError) Unwrap() error {
	return e.cause
}

// cacheKey identifies a compiled artifact. Definitions are immutable per
// (id, version): editing a definition without bumping its version serves
// the stale artifact by design.
type cacheKey struct {
	id      string
	version string
}

// Compiler resolves definitions into executable artifacts and caches
// them by (id, version). Safe for concurrent use.
type Compiler struct {
	registry *rule.Registry
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[cacheKey]*Compiled
}

// NewCompiler creates a compiler resolving rule types against the given
// registry. A nil logger falls back to slog.Default().
func NewCompiler(registry *rule.Registry, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{
		registry: registry,
		logger:   logger,
		cache:    make(map[cacheKey]*Compiled),
	}
}

// Compile returns the executable artifact for the definition, serving a
// cached artifact when one exists for the definition's (id, version).
// Concurrent compiles of the same key all return the identical artifact:
// insertion is first-writer-wins and losing artifacts are discarded.
func (c *Compiler) Compile(def *Definition) (*Compiled, error) {
	if def == nil {
		return nil, &CompileError{Issues: []string{"Definition is required"}}
	}
	key := cacheKey{id: def.ID, version: def.Version}

	c.mu.Lock()
	hit, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		metrics.CompilationsTotal.WithLabelValues(metrics.OutcomeCacheHit).Inc()
		c.logger.Debug("serving cached strategy",
			"strategy_id", def.ID,
			"version", def.Version)
		return hit, nil
	}

	compiled, err := c.build(def)
	if err != nil {
		metrics.CompilationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		c.logger.Warn("strategy compilation failed",
			"strategy_id", def.ID,
			"version", def.Version,
			"error", err)
		return nil, err
	}

	c.mu.Lock()
	if winner, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return winner, nil
	}
	c.cache[key] = compiled
	c.mu.Unlock()

	metrics.CompilationsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	c.logger.Info("compiled strategy",
		"strategy_id", def.ID,
		"version", def.Version,
		"rules", compiled.RuleCount())
	return compiled, nil
}

// build resolves the definition into a fresh artifact. Any failure aborts
// the whole compilation; there are no partial artifacts.
func (c *Compiler) build(def *Definition) (*Compiled, error) {
	if issues := def.Validate(true); len(issues) > 0 {
		return nil, &CompileError{DefinitionID: def.ID, Issues: issues}
	}

	var rules []compiledRule
	for i, rc := range def.Rules {
		if !rc.Enabled {
			continue
		}
		impl, err := c.registry.Create(rc.RuleType, rc.Parameters)
		if err != nil {
			return nil, &CompileError{
				DefinitionID: def.ID,
				cause:        fmt.Errorf("rule %d: %w", i, err),
			}
		}
		rules = append(rules, compiledRule{config: rc, impl: impl})
	}

	return &Compiled{
		StrategyID:    def.ID,
		Version:       def.Version,
		Name:          def.Name,
		CompiledAt:    time.Now().UTC(),
		SchemaVersion: def.SchemaVersion,
		Estimate: Estimate{
			EstimatedExecutionTimeMS: float64(len(rules)) * 10,
			MemoryUsage:              "low",
			ComplexityScore:          len(rules),
		},
		rules: rules,
	}, nil
}

// CacheSize returns the number of cached artifacts.
func (c *Compiler) CacheSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
