package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semwafer/wafer"
)

func TestCompiler_Simulate(t *testing.T) {
	c := testCompiler()
	d := gridDefinition() // uniform grid, spacing 2

	res := c.Simulate(d, wafer.NewGrid(5, 5))
	require.NotNil(t, res)
	assert.Equal(t, d.ID, res.StrategyID)
	assert.NotEmpty(t, res.ExecutionID)
	assert.Empty(t, res.Warnings)

	// Lattice x,y ∈ {0, 2, 4} on a 5x5 grid.
	require.Len(t, res.SelectedPoints, 9)
	assert.Equal(t, 25, res.Coverage.TotalDies)
	assert.Equal(t, 25, res.Coverage.AvailableDies)
	assert.Equal(t, 9, res.Coverage.SelectedCount)
	assert.InDelta(t, 36.0, res.Coverage.CoveragePercent, 1e-9)

	dist := res.Coverage.Distribution
	require.NotNil(t, dist)
	assert.Equal(t, 0, dist.XMin)
	assert.Equal(t, 4, dist.XMax)
	assert.Equal(t, 0, dist.YMin)
	assert.Equal(t, 4, dist.YMax)
	assert.InDelta(t, 2.0, dist.CenterX, 1e-9)
	assert.InDelta(t, 2.0, dist.CenterY, 1e-9)
	assert.InDelta(t, 1.73, dist.StdDevX, 1e-9)
	assert.InDelta(t, 1.73, dist.StdDevY, 1e-9)

	assert.InDelta(t, 10.0, res.Estimate.EstimatedExecutionTimeMS, 1e-9)
}

func TestCompiler_Simulate_NilMapUsesDefault(t *testing.T) {
	res := testCompiler().Simulate(gridDefinition(), nil)
	require.NotNil(t, res)
	assert.Equal(t, 25, res.Coverage.TotalDies)
	assert.NotEmpty(t, res.SelectedPoints)
}

func TestCompiler_Simulate_CompileFailureDegrades(t *testing.T) {
	d := New("No Rules", TypeFixedPoint, "post_etch_inspection", "bright_field")

	res := testCompiler().Simulate(d, wafer.NewGrid(3, 3))
	require.NotNil(t, res)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "compilation failed")

	assert.Empty(t, res.SelectedPoints)
	assert.Empty(t, res.ExecutionID)
	assert.Equal(t, 9, res.Coverage.TotalDies)
	assert.Zero(t, res.Coverage.SelectedCount)
	assert.Zero(t, res.Coverage.CoveragePercent)
	assert.Nil(t, res.Coverage.Distribution)
}

func TestCompiler_Simulate_SinglePoint(t *testing.T) {
	d := New("One Point", TypeFixedPoint, "post_etch_inspection", "bright_field")
	d.AddRule(fixedPoints([]int{3, 1}))

	res := testCompiler().Simulate(d, wafer.NewGrid(5, 5))
	require.Len(t, res.SelectedPoints, 1)

	dist := res.Coverage.Distribution
	require.NotNil(t, dist)
	assert.InDelta(t, 3.0, dist.CenterX, 1e-9)
	assert.InDelta(t, 1.0, dist.CenterY, 1e-9)
	assert.Zero(t, dist.StdDevX, "one sample has no spread")
	assert.Zero(t, dist.StdDevY)
}

func TestCompiler_Simulate_UnavailableDiesExcludedFromDenominator(t *testing.T) {
	m := wafer.NewMap([]wafer.Die{
		{X: 0, Y: 0, Available: true},
		{X: 1, Y: 0, Available: false},
		{X: 0, Y: 1, Available: true},
		{X: 1, Y: 1, Available: false},
	})
	d := New("Half", TypeFixedPoint, "post_etch_inspection", "bright_field")
	d.AddRule(fixedPoints([]int{0, 0}))

	res := testCompiler().Simulate(d, m)
	assert.Equal(t, 4, res.Coverage.TotalDies)
	assert.Equal(t, 2, res.Coverage.AvailableDies)
	assert.Equal(t, 1, res.Coverage.SelectedCount)
	assert.InDelta(t, 50.0, res.Coverage.CoveragePercent, 1e-9)
}
