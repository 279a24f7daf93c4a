package strategy

import (
	"time"

	"github.com/c360studio/semwafer/metrics"
	"github.com/c360studio/semwafer/rule"
	"github.com/c360studio/semwafer/wafer"
)

// Estimate describes the expected cost of executing a compiled strategy.
type Estimate struct {
	EstimatedExecutionTimeMS float64 `json:"estimated_execution_time_ms"`
	MemoryUsage              string  `json:"memory_usage"`
	ComplexityScore          int     `json:"complexity_score"`
}

// Compiled is the executable artifact produced by the Compiler: the
// definition's enabled rules resolved to implementations, in definition
// order. Artifacts are immutable and safe to execute concurrently as
// long as the underlying rules are (all built-ins are).
type Compiled struct {
	// StrategyID is the source definition's ID.
	StrategyID string `json:"strategy_id"`

	// Version is the source definition's version.
	Version string `json:"version"`

	// Name is the source definition's name.
	Name string `json:"name"`

	// CompiledAt is when the artifact was built.
	CompiledAt time.Time `json:"compiled_at"`

	// SchemaVersion is carried from the source definition.
	SchemaVersion string `json:"schema_version"`

	// Estimate is the aggregate execution cost estimate.
	Estimate Estimate `json:"estimate"`

	rules []compiledRule
}

// compiledRule pairs a resolved rule with the config it came from; the
// config supplies per-run condition gating.
type compiledRule struct {
	config RuleConfig
	impl   rule.Rule
}

// RuleCount returns the number of compiled (enabled) rules.
func (cs *Compiled) RuleCount() int {
	return len(cs.rules)
}

// RuleTypes returns the compiled rule types in execution order.
func (cs *Compiled) RuleTypes() []string {
	out := make([]string, len(cs.rules))
	for i, cr := range cs.rules {
		out[i] = cr.impl.Type()
	}
	return out
}

// ValidateContext reports problems that would make Execute a no-op.
func (cs *Compiled) ValidateContext(ectx *rule.ExecutionContext) []string {
	if ectx == nil {
		return []string{"Execution context is required"}
	}
	if ectx.WaferMap == nil {
		return []string{"Wafer map is required"}
	}
	return nil
}

// Execute applies each rule in order against the context's wafer map and
// returns the union of their selections, deduplicated by coordinate.
// The first rule to select a coordinate fixes that die's position in the
// output; later selections of the same coordinate are dropped. Rules
// whose conditions do not match the context are skipped for this run.
// The returned slice is fresh on every call.
func (cs *Compiled) Execute(ectx *rule.ExecutionContext) []wafer.Die {
	if cs == nil || ectx == nil || ectx.WaferMap == nil {
		return nil
	}

	seen := make(map[wafer.Coord]struct{})
	var out []wafer.Die
	for _, cr := range cs.rules {
		if !cr.config.Conditions.Matches(ectx) {
			continue
		}
		for _, d := range cr.impl.Apply(ectx.WaferMap, ectx) {
			c := d.Coord()
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, d)
		}
	}

	metrics.ExecutionsTotal.Inc()
	metrics.SelectedPoints.Observe(float64(len(out)))
	return out
}
