// Package strategy defines sampling-strategy definitions, their
// lifecycle, and the compiler that turns them into executable artifacts.
package strategy

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semwafer/rule"
)

// SchemaVersion is the definition schema version stamped on new
// definitions and compiled artifacts.
const SchemaVersion = "1.0"

// Sentinel errors for lifecycle operations.
var (
	// ErrCannotPromote indicates the lifecycle state has no next state.
	ErrCannotPromote = errors.New("lifecycle state cannot be promoted")
)

// Type classifies the overall intent of a strategy.
type Type string

const (
	// TypeFixedPoint targets explicitly listed coordinates.
	TypeFixedPoint Type = "fixed_point"
	// TypeCenterEdge samples the wafer center plus the edge ring.
	TypeCenterEdge Type = "center_edge"
	// TypeUniformGrid samples a regular lattice.
	TypeUniformGrid Type = "uniform_grid"
	// TypeHotspotPriority concentrates sampling on known hotspots.
	TypeHotspotPriority Type = "hotspot_priority"
	// TypeAdaptive adjusts sampling from prior results.
	TypeAdaptive Type = "adaptive"
	// TypeCustom is an uncategorized mix of rules.
	TypeCustom Type = "custom"
)

// String returns the string representation of the type.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the type is a recognized strategy type.
func (t Type) IsValid() bool {
	switch t {
	case TypeFixedPoint, TypeCenterEdge, TypeUniformGrid,
		TypeHotspotPriority, TypeAdaptive, TypeCustom:
		return true
	default:
		return false
	}
}

// Lifecycle represents the review state of a strategy definition.
type Lifecycle string

const (
	// LifecycleDraft indicates the definition is being edited.
	LifecycleDraft Lifecycle = "draft"
	// LifecycleReview indicates the definition is under review.
	LifecycleReview Lifecycle = "review"
	// LifecycleApproved indicates the definition passed review.
	LifecycleApproved Lifecycle = "approved"
	// LifecycleActive indicates the definition is deployed for production use.
	LifecycleActive Lifecycle = "active"
	// LifecycleDeprecated indicates the definition was retired. Terminal.
	LifecycleDeprecated Lifecycle = "deprecated"
)

// String returns the string representation of the lifecycle state.
func (l Lifecycle) String() string {
	return string(l)
}

// IsValid returns true if the lifecycle state is recognized.
func (l Lifecycle) IsValid() bool {
	switch l {
	case LifecycleDraft, LifecycleReview, LifecycleApproved, LifecycleActive, LifecycleDeprecated:
		return true
	default:
		return false
	}
}

// Next returns the state a promotion moves to, and whether promotion is
// possible from this state.
func (l Lifecycle) Next() (Lifecycle, bool) {
	switch l {
	case LifecycleDraft:
		return LifecycleReview, true
	case LifecycleReview:
		return LifecycleApproved, true
	case LifecycleApproved:
		return LifecycleActive, true
	default:
		return "", false
	}
}

// CanTransitionTo returns true if the state may move to the target state.
// Promotion only moves forward; deprecation is reachable from anywhere.
func (l Lifecycle) CanTransitionTo(target Lifecycle) bool {
	if target == LifecycleDeprecated {
		return l != LifecycleDeprecated
	}
	next, ok := l.Next()
	return ok && next == target
}

// Conditions restrict when a strategy or rule applies. Unset fields
// match anything.
type Conditions struct {
	// WaferSize must equal the context's wafer size (e.g. "300mm").
	WaferSize string `json:"wafer_size,omitempty" yaml:"wafer_size,omitempty"`

	// ProductType must equal the context's product type.
	ProductType string `json:"product_type,omitempty" yaml:"product_type,omitempty"`

	// ProcessLayer must equal the context's process layer.
	ProcessLayer string `json:"process_layer,omitempty" yaml:"process_layer,omitempty"`

	// DefectDensityThreshold triggers when the context's observed defect
	// density reaches the threshold.
	DefectDensityThreshold *float64 `json:"defect_density_threshold,omitempty" yaml:"defect_density_threshold,omitempty"`

	// Custom matches keys against the context's process parameters.
	Custom map[string]any `json:"custom_conditions,omitempty" yaml:"custom_conditions,omitempty"`
}

// Matches reports whether the execution context satisfies every set
// constraint. A nil receiver matches everything.
func (c *Conditions) Matches(ectx *rule.ExecutionContext) bool {
	if c == nil {
		return true
	}
	if ectx == nil {
		ectx = &rule.ExecutionContext{}
	}
	if c.WaferSize != "" && c.WaferSize != ectx.WaferSize {
		return false
	}
	if c.ProductType != "" && c.ProductType != ectx.ProductType {
		return false
	}
	if c.ProcessLayer != "" && c.ProcessLayer != ectx.ProcessLayer {
		return false
	}
	if c.DefectDensityThreshold != nil {
		if ectx.DefectDensity == nil || *ectx.DefectDensity < *c.DefectDensityThreshold {
			return false
		}
	}
	for k, want := range c.Custom {
		got, ok := ectx.ProcessParameters[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// Transformations carries coordinate-transform metadata alongside a
// definition. The engine serializes it untouched; applying transforms is
// downstream tooling's job.
type Transformations struct {
	RotationAngle float64 `json:"rotation_angle,omitempty" yaml:"rotation_angle,omitempty"`
	ScaleFactor   float64 `json:"scale_factor,omitempty" yaml:"scale_factor,omitempty"`
	OffsetX       float64 `json:"offset_x,omitempty" yaml:"offset_x,omitempty"`
	OffsetY       float64 `json:"offset_y,omitempty" yaml:"offset_y,omitempty"`
	MirrorX       bool    `json:"mirror_x,omitempty" yaml:"mirror_x,omitempty"`
	MirrorY       bool    `json:"mirror_y,omitempty" yaml:"mirror_y,omitempty"`
}

// RuleConfig is one rule entry inside a definition: the rule type to
// instantiate, its raw parameters, and per-rule gating.
type RuleConfig struct {
	// RuleType names the registered rule kind.
	RuleType string `json:"rule_type" yaml:"rule_type"`

	// Parameters is the raw parameter bag handed to the rule factory.
	Parameters rule.Params `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// Weight expresses relative importance for downstream consumers.
	// Defaults to 1.0 when absent from serialized form.
	Weight float64 `json:"weight" yaml:"weight"`

	// Enabled gates compilation: disabled configs are skipped entirely.
	// Defaults to true when absent from serialized form.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Conditions gate execution per run; nil always runs.
	Conditions *Conditions `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// NewRuleConfig returns an enabled, weight-1 config for the rule type.
func NewRuleConfig(ruleType string, params rule.Params) RuleConfig {
	return RuleConfig{
		RuleType:   ruleType,
		Parameters: params,
		Weight:     1.0,
		Enabled:    true,
	}
}

// Definition is a versioned, lifecycle-managed sampling strategy.
type Definition struct {
	// ID uniquely identifies the strategy across all versions.
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable strategy name.
	Name string `json:"name" yaml:"name"`

	// Description explains what the strategy is for.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Type classifies the strategy's intent.
	Type Type `json:"strategy_type" yaml:"strategy_type"`

	// ProcessStep is the manufacturing step the strategy targets.
	ProcessStep string `json:"process_step" yaml:"process_step"`

	// ToolType is the metrology/inspection tool family it drives.
	ToolType string `json:"tool_type" yaml:"tool_type"`

	// Rules are the sampling rules, applied in order at execution.
	Rules []RuleConfig `json:"rules" yaml:"rules"`

	// Conditions optionally restrict when the whole strategy applies.
	Conditions *Conditions `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// Transformations carries coordinate-transform metadata (not applied).
	Transformations *Transformations `json:"transformations,omitempty" yaml:"transformations,omitempty"`

	// TargetVendor names the downstream tool vendor the strategy is
	// authored for. Purely informational here; export layers read it.
	TargetVendor string `json:"target_vendor,omitempty" yaml:"target_vendor,omitempty"`

	// Lifecycle is the review state.
	Lifecycle Lifecycle `json:"lifecycle_state" yaml:"lifecycle_state"`

	// Version is the definition version. Compiled artifacts are cached
	// by (ID, Version), so any semantic change must bump it.
	Version string `json:"version" yaml:"version"`

	// Author identifies who created the definition.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// CreatedAt is when the definition was created.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// ModifiedAt is when the definition last changed.
	ModifiedAt time.Time `json:"modified_at" yaml:"modified_at"`

	// SchemaVersion is the definition schema version.
	SchemaVersion string `json:"schema_version" yaml:"schema_version"`
}

// New creates a draft definition with a fresh ID and version 1.0.0.
func New(name string, typ Type, processStep, toolType string) *Definition {
	now := time.Now().UTC()
	return &Definition{
		ID:            uuid.NewString(),
		Name:          name,
		Type:          typ,
		ProcessStep:   processStep,
		ToolType:      toolType,
		Lifecycle:     LifecycleDraft,
		Version:       "1.0.0",
		CreatedAt:     now,
		ModifiedAt:    now,
		SchemaVersion: SchemaVersion,
	}
}

// Validate reports everything wrong with the definition as human-readable
// issues; an empty slice means valid. Rules are only required when
// requireRules is set: creation allows rule-less drafts, compilation
// does not.
func (d *Definition) Validate(requireRules bool) []string {
	var issues []string
	if d.Name == "" {
		issues = append(issues, "Strategy name is required")
	}
	if d.ProcessStep == "" {
		issues = append(issues, "Process step is required")
	}
	if d.ToolType == "" {
		issues = append(issues, "Tool type is required")
	}
	if d.Type != "" && !d.Type.IsValid() {
		issues = append(issues, fmt.Sprintf("Unknown strategy type: %s", d.Type))
	}
	if requireRules && len(d.Rules) == 0 {
		issues = append(issues, "At least one rule is required")
	}
	return issues
}

// Touch bumps the modification timestamp.
func (d *Definition) Touch() {
	d.ModifiedAt = time.Now().UTC()
}

// AddRule appends a rule config and touches the definition.
func (d *Definition) AddRule(rc RuleConfig) {
	d.Rules = append(d.Rules, rc)
	d.Touch()
}

// EnabledRules returns the configs that participate in compilation, in
// definition order.
func (d *Definition) EnabledRules() []RuleConfig {
	var out []RuleConfig
	for _, rc := range d.Rules {
		if rc.Enabled {
			out = append(out, rc)
		}
	}
	return out
}

// Promote advances the lifecycle along draft → review → approved →
// active. Active and deprecated definitions cannot be promoted.
func (d *Definition) Promote() error {
	next, ok := d.Lifecycle.Next()
	if !ok {
		return fmt.Errorf("%w: %s", ErrCannotPromote, d.Lifecycle)
	}
	d.Lifecycle = next
	d.Touch()
	return nil
}

// Deprecate retires the definition. Deprecation is terminal.
func (d *Definition) Deprecate() {
	d.Lifecycle = LifecycleDeprecated
	d.Touch()
}

// Clone returns a draft copy under a new identity. Rule configs are
// copied one level deep: parameter maps are fresh, nested values shared.
func (d *Definition) Clone(name string) *Definition {
	now := time.Now().UTC()
	clone := *d
	clone.ID = uuid.NewString()
	clone.Name = name
	clone.Description = fmt.Sprintf("Cloned from %s", d.Name)
	clone.Lifecycle = LifecycleDraft
	clone.Version = "1.0.0"
	clone.CreatedAt = now
	clone.ModifiedAt = now

	clone.Rules = make([]RuleConfig, len(d.Rules))
	copy(clone.Rules, d.Rules)
	for i := range clone.Rules {
		if clone.Rules[i].Parameters != nil {
			clone.Rules[i].Parameters = maps.Clone(clone.Rules[i].Parameters)
		}
	}
	return &clone
}
