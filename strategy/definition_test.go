package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semwafer/rule"
)

func TestNew(t *testing.T) {
	d := New("Post-etch 5pt", TypeCenterEdge, "post_etch_inspection", "bright_field")

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "Post-etch 5pt", d.Name)
	assert.Equal(t, TypeCenterEdge, d.Type)
	assert.Equal(t, LifecycleDraft, d.Lifecycle)
	assert.Equal(t, "1.0.0", d.Version)
	assert.Equal(t, SchemaVersion, d.SchemaVersion)
	assert.False(t, d.CreatedAt.IsZero())
	assert.Equal(t, d.CreatedAt, d.ModifiedAt)

	other := New("Other", TypeCustom, "s", "t")
	assert.NotEqual(t, d.ID, other.ID)
}

func TestDefinition_Validate(t *testing.T) {
	valid := func() *Definition {
		d := New("Grid sweep", TypeUniformGrid, "post_develop", "dark_field")
		d.AddRule(NewRuleConfig(rule.TypeUniformGrid, nil))
		return d
	}

	t.Run("valid definition has no issues", func(t *testing.T) {
		assert.Empty(t, valid().Validate(true))
	})

	t.Run("missing fields reported together", func(t *testing.T) {
		d := &Definition{}
		issues := d.Validate(true)

		assert.Contains(t, issues, "Strategy name is required")
		assert.Contains(t, issues, "Process step is required")
		assert.Contains(t, issues, "Tool type is required")
		assert.Contains(t, issues, "At least one rule is required")
	})

	t.Run("rules only required when asked", func(t *testing.T) {
		d := valid()
		d.Rules = nil

		assert.Empty(t, d.Validate(false), "creation allows rule-less drafts")
		assert.Equal(t, []string{"At least one rule is required"}, d.Validate(true))
	})

	t.Run("disabled rules still count as present", func(t *testing.T) {
		d := valid()
		d.Rules[0].Enabled = false

		assert.Empty(t, d.Validate(true))
	})

	t.Run("unknown strategy type", func(t *testing.T) {
		d := valid()
		d.Type = "freestyle"

		assert.Contains(t, d.Validate(true), "Unknown strategy type: freestyle")
	})
}

func TestLifecycle_Promote(t *testing.T) {
	d := New("Promo", TypeCustom, "s", "t")

	path := []Lifecycle{LifecycleReview, LifecycleApproved, LifecycleActive}
	for _, want := range path {
		require.NoError(t, d.Promote())
		assert.Equal(t, want, d.Lifecycle)
	}

	err := d.Promote()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCannotPromote)
	assert.Equal(t, LifecycleActive, d.Lifecycle, "failed promotion leaves state untouched")

	d.Deprecate()
	assert.Equal(t, LifecycleDeprecated, d.Lifecycle)
	assert.ErrorIs(t, d.Promote(), ErrCannotPromote)
}

func TestLifecycle_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Lifecycle
		want     bool
	}{
		{LifecycleDraft, LifecycleReview, true},
		{LifecycleDraft, LifecycleApproved, false},
		{LifecycleReview, LifecycleApproved, true},
		{LifecycleApproved, LifecycleActive, true},
		{LifecycleActive, LifecycleReview, false},
		{LifecycleDraft, LifecycleDeprecated, true},
		{LifecycleActive, LifecycleDeprecated, true},
		{LifecycleDeprecated, LifecycleDraft, false},
		{LifecycleDeprecated, LifecycleDeprecated, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestDefinition_Clone(t *testing.T) {
	orig := New("Original", TypeFixedPoint, "final_inspection", "e_beam")
	orig.AddRule(NewRuleConfig(rule.TypeFixedPoint, rule.Params{
		"points": []any{[]any{0, 0}},
	}))
	orig.Version = "3.2.0"
	require.NoError(t, orig.Promote())

	clone := orig.Clone("Copy of original")

	assert.NotEqual(t, orig.ID, clone.ID)
	assert.Equal(t, "Copy of original", clone.Name)
	assert.Equal(t, "Cloned from Original", clone.Description)
	assert.Equal(t, LifecycleDraft, clone.Lifecycle)
	assert.Equal(t, "1.0.0", clone.Version)
	assert.Equal(t, orig.Type, clone.Type)
	require.Len(t, clone.Rules, 1)

	// The clone's parameter map is its own.
	clone.Rules[0].Parameters["points"] = []any{}
	assert.NotEmpty(t, orig.Rules[0].Parameters["points"])
}

func TestDefinition_EnabledRules(t *testing.T) {
	d := New("Mix", TypeCustom, "s", "t")
	d.AddRule(NewRuleConfig(rule.TypeUniformGrid, nil))
	off := NewRuleConfig(rule.TypeRandomSampling, nil)
	off.Enabled = false
	d.AddRule(off)
	d.AddRule(NewRuleConfig(rule.TypeCenterEdge, nil))

	enabled := d.EnabledRules()
	require.Len(t, enabled, 2)
	assert.Equal(t, rule.TypeUniformGrid, enabled[0].RuleType)
	assert.Equal(t, rule.TypeCenterEdge, enabled[1].RuleType)
}

func TestConditions_Matches(t *testing.T) {
	density := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		cond *Conditions
		ectx *rule.ExecutionContext
		want bool
	}{
		{"nil conditions match anything", nil, nil, true},
		{"empty conditions match anything", &Conditions{}, &rule.ExecutionContext{}, true},
		{
			"wafer size equal",
			&Conditions{WaferSize: "300mm"},
			&rule.ExecutionContext{WaferSize: "300mm"},
			true,
		},
		{
			"wafer size differs",
			&Conditions{WaferSize: "300mm"},
			&rule.ExecutionContext{WaferSize: "200mm"},
			false,
		},
		{
			"wafer size unknown in context",
			&Conditions{WaferSize: "300mm"},
			&rule.ExecutionContext{},
			false,
		},
		{
			"density at threshold triggers",
			&Conditions{DefectDensityThreshold: density(0.5)},
			&rule.ExecutionContext{DefectDensity: density(0.5)},
			true,
		},
		{
			"density below threshold does not",
			&Conditions{DefectDensityThreshold: density(0.5)},
			&rule.ExecutionContext{DefectDensity: density(0.2)},
			false,
		},
		{
			"density unknown does not trigger",
			&Conditions{DefectDensityThreshold: density(0.5)},
			&rule.ExecutionContext{},
			false,
		},
		{
			"custom parameter equal",
			&Conditions{Custom: map[string]any{"lot": "L42"}},
			&rule.ExecutionContext{ProcessParameters: map[string]any{"lot": "L42"}},
			true,
		},
		{
			"custom parameter missing",
			&Conditions{Custom: map[string]any{"lot": "L42"}},
			&rule.ExecutionContext{},
			false,
		},
		{
			"all constraints must hold",
			&Conditions{WaferSize: "300mm", ProductType: "logic"},
			&rule.ExecutionContext{WaferSize: "300mm", ProductType: "memory"},
			false,
		},
		{
			"nil context with constraints",
			&Conditions{ProcessLayer: "M1"},
			nil,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Matches(tt.ectx))
		})
	}
}
