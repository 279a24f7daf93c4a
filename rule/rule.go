// Package rule implements the sampling-rule plugin system: the rule
// contract, parameter coercion, the registry that resolves rule-type
// names to implementations, and the built-in rule kinds.
package rule

import (
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semwafer/wafer"
)

// Built-in rule-type names.
const (
	TypeFixedPoint     = "fixed_point"
	TypeCenterEdge     = "center_edge"
	TypeUniformGrid    = "uniform_grid"
	TypeRandomSampling = "random_sampling"
)

// Rule is the contract every sampling rule implements.
//
// Apply never fails: malformed or non-sensical parameters degrade to an
// empty selection so one bad rule cannot take down a whole execution.
// Apply must not mutate the map and must not retain the returned slice.
type Rule interface {
	// Type returns the rule-type name the rule was registered under.
	Type() string

	// Apply returns the dies the rule selects on the map for this run.
	Apply(m *wafer.Map, ectx *ExecutionContext) []wafer.Die

	// EstimatePerformance reports expected cost characteristics of
	// applying the rule to the map.
	EstimatePerformance(m *wafer.Map) PerformanceEstimate
}

// PerformanceEstimate describes the expected cost of applying a rule.
type PerformanceEstimate struct {
	EstimatedTimeMS float64 `json:"estimated_time_ms"`
	MemoryUsage     string  `json:"memory_usage"`
	Complexity      string  `json:"complexity"`
}

// linearEstimate is the shared cost model for the built-in rules, all of
// which make a single pass over the die list.
func linearEstimate(m *wafer.Map) PerformanceEstimate {
	n := 0
	if m != nil {
		n = m.Len()
	}
	return PerformanceEstimate{
		EstimatedTimeMS: float64(n) * 0.1,
		MemoryUsage:     "low",
		Complexity:      "O(n)",
	}
}

// ExecutionContext carries the per-run inputs a rule may consult beyond
// the wafer map itself. Process attributes (wafer size, product, layer,
// defect density) feed rule-condition matching.
type ExecutionContext struct {
	// ExecutionID uniquely identifies this run.
	ExecutionID string `json:"execution_id"`

	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp"`

	// WaferMap is the die grid being sampled.
	WaferMap *wafer.Map `json:"wafer_map,omitempty"`

	// ProcessParameters carries free-form process attributes.
	ProcessParameters map[string]any `json:"process_parameters,omitempty"`

	// ToolConstraints carries free-form tool limits.
	ToolConstraints map[string]any `json:"tool_constraints,omitempty"`

	// WaferSize is the wafer size label (e.g. "300mm").
	WaferSize string `json:"wafer_size,omitempty"`

	// ProductType is the product the wafer belongs to.
	ProductType string `json:"product_type,omitempty"`

	// ProcessLayer is the layer being inspected.
	ProcessLayer string `json:"process_layer,omitempty"`

	// DefectDensity is the observed defect density, when known.
	DefectDensity *float64 `json:"defect_density,omitempty"`
}

// NewExecutionContext returns a context for the given map with a fresh
// execution ID and timestamp.
func NewExecutionContext(m *wafer.Map) *ExecutionContext {
	return &ExecutionContext{
		ExecutionID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		WaferMap:    m,
	}
}
