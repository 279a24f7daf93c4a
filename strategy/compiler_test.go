package strategy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semwafer/rule"
)

func testCompiler() *Compiler {
	return NewCompiler(rule.NewRegistry(), nil)
}

func gridDefinition() *Definition {
	d := New("Grid", TypeUniformGrid, "post_etch_inspection", "bright_field")
	d.AddRule(NewRuleConfig(rule.TypeUniformGrid, rule.Params{"spacing_x": 2, "spacing_y": 2}))
	return d
}

func TestCompiler_Compile(t *testing.T) {
	c := testCompiler()
	d := gridDefinition()

	compiled, err := c.Compile(d)
	require.NoError(t, err)

	assert.Equal(t, d.ID, compiled.StrategyID)
	assert.Equal(t, d.Version, compiled.Version)
	assert.Equal(t, d.Name, compiled.Name)
	assert.Equal(t, 1, compiled.RuleCount())
	assert.Equal(t, []string{rule.TypeUniformGrid}, compiled.RuleTypes())
	assert.False(t, compiled.CompiledAt.IsZero())

	assert.InDelta(t, 10.0, compiled.Estimate.EstimatedExecutionTimeMS, 1e-9)
	assert.Equal(t, "low", compiled.Estimate.MemoryUsage)
	assert.Equal(t, 1, compiled.Estimate.ComplexityScore)
}

func TestCompiler_ValidationFailure(t *testing.T) {
	c := testCompiler()

	t.Run("incomplete definition", func(t *testing.T) {
		d := &Definition{ID: "broken", Version: "1.0.0"}
		_, err := c.Compile(d)
		require.Error(t, err)

		var cerr *CompileError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "broken", cerr.DefinitionID)
		assert.Contains(t, cerr.Issues, "Strategy name is required")
		assert.Contains(t, cerr.Issues, "At least one rule is required")
		assert.Zero(t, c.CacheSize(), "failed compiles are never cached")
	})

	t.Run("nil definition", func(t *testing.T) {
		_, err := c.Compile(nil)
		require.Error(t, err)
	})
}

func TestCompiler_UnknownRuleTypeAborts(t *testing.T) {
	c := testCompiler()
	d := gridDefinition()
	d.AddRule(NewRuleConfig("hotspot_priority", nil))

	_, err := c.Compile(d)
	require.Error(t, err)
	assert.ErrorIs(t, err, rule.ErrUnknownType)
	assert.Contains(t, err.Error(), "hotspot_priority")
	assert.Zero(t, c.CacheSize(), "no partial artifact for the valid prefix")
}

func TestCompiler_DisabledRulesSkipped(t *testing.T) {
	c := testCompiler()
	d := gridDefinition()
	off := NewRuleConfig(rule.TypeRandomSampling, nil)
	off.Enabled = false
	d.AddRule(off)

	compiled, err := c.Compile(d)
	require.NoError(t, err)
	assert.Equal(t, 1, compiled.RuleCount())
	assert.Equal(t, []string{rule.TypeUniformGrid}, compiled.RuleTypes())
}

func TestCompiler_DisabledUnknownRuleIgnored(t *testing.T) {
	// Disabled configs are skipped before type resolution, so an
	// unknown type behind enabled=false does not abort the compile.
	c := testCompiler()
	d := gridDefinition()
	ghost := NewRuleConfig("not_a_rule", nil)
	ghost.Enabled = false
	d.AddRule(ghost)

	compiled, err := c.Compile(d)
	require.NoError(t, err)
	assert.Equal(t, 1, compiled.RuleCount())
}

func TestCompiler_CacheByIDAndVersion(t *testing.T) {
	c := testCompiler()
	d := gridDefinition()

	first, err := c.Compile(d)
	require.NoError(t, err)
	second, err := c.Compile(d)
	require.NoError(t, err)
	assert.Same(t, first, second, "same (id, version) serves the identical artifact")
	assert.Equal(t, 1, c.CacheSize())

	// Mutating without a version bump still serves the stale artifact.
	d.Rules[0].Parameters = rule.Params{"spacing_x": 1, "spacing_y": 1}
	stale, err := c.Compile(d)
	require.NoError(t, err)
	assert.Same(t, first, stale)

	// A version bump compiles fresh.
	d.Version = "1.1.0"
	fresh, err := c.Compile(d)
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	assert.Equal(t, 2, c.CacheSize())
}

func TestCompiler_ConcurrentCompilesShareOneArtifact(t *testing.T) {
	c := testCompiler()
	d := gridDefinition()

	const n = 16
	out := make([]*Compiled, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i], errs[i] = c.Compile(d)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, c.CacheSize())
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
	}
	for i := 1; i < n; i++ {
		assert.Same(t, out[0], out[i])
	}
}
