package strategy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/c360studio/semwafer/rule"
	"github.com/c360studio/semwafer/wafer"
)

// SimulationResult reports what a strategy would select on a wafer map,
// with coverage and spatial statistics for review before deployment.
type SimulationResult struct {
	StrategyID     string        `json:"strategy_id,omitempty"`
	ExecutionID    string        `json:"execution_id,omitempty"`
	SelectedPoints []wafer.Die   `json:"selected_points"`
	Coverage       CoverageStats `json:"coverage"`
	Estimate       Estimate      `json:"estimate"`
	Warnings       []string      `json:"warnings,omitempty"`
}

// CoverageStats summarizes how much of the wafer a selection covers.
type CoverageStats struct {
	// TotalDies is the number of dies on the map.
	TotalDies int `json:"total_dies"`

	// AvailableDies is the number of selectable dies.
	AvailableDies int `json:"available_dies"`

	// SelectedCount is the number of selected sampling points.
	SelectedCount int `json:"selected_count"`

	// CoveragePercent is selected / available * 100, rounded to two
	// decimals; zero when the map has no available dies.
	CoveragePercent float64 `json:"coverage_percent"`

	// Distribution describes the spatial spread of the selection; nil
	// when nothing was selected.
	Distribution *Distribution `json:"distribution,omitempty"`
}

// Distribution describes where the selected points sit on the wafer.
type Distribution struct {
	XMin    int     `json:"x_min"`
	XMax    int     `json:"x_max"`
	YMin    int     `json:"y_min"`
	YMax    int     `json:"y_max"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	StdDevX float64 `json:"stddev_x"`
	StdDevY float64 `json:"stddev_y"`
}

// Simulate compiles and executes the definition against the map and
// reports selection, coverage, and cost. A nil map simulates against the
// default grid. Compilation failure degrades to an empty result carrying
// a warning rather than an error: simulation is a preview tool and the
// caller always gets coverage numbers back.
func (c *Compiler) Simulate(def *Definition, m *wafer.Map) *SimulationResult {
	if m == nil {
		m = wafer.Default()
	}
	res := &SimulationResult{}
	if def != nil {
		res.StrategyID = def.ID
	}

	compiled, err := c.Compile(def)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("compilation failed: %v", err))
		res.Coverage = computeCoverage(m, nil)
		return res
	}

	ectx := rule.NewExecutionContext(m)
	res.ExecutionID = ectx.ExecutionID
	res.SelectedPoints = compiled.Execute(ectx)
	res.Estimate = compiled.Estimate
	res.Coverage = computeCoverage(m, res.SelectedPoints)
	return res
}

func computeCoverage(m *wafer.Map, selected []wafer.Die) CoverageStats {
	cs := CoverageStats{
		TotalDies:     m.Len(),
		AvailableDies: m.AvailableCount(),
		SelectedCount: len(selected),
	}
	if cs.AvailableDies > 0 {
		cs.CoveragePercent = round2(float64(len(selected)) / float64(cs.AvailableDies) * 100)
	}
	if len(selected) > 0 {
		cs.Distribution = computeDistribution(selected)
	}
	return cs
}

func computeDistribution(selected []wafer.Die) *Distribution {
	xs := make([]float64, len(selected))
	ys := make([]float64, len(selected))
	d := &Distribution{
		XMin: selected[0].X, XMax: selected[0].X,
		YMin: selected[0].Y, YMax: selected[0].Y,
	}
	for i, die := range selected {
		xs[i] = float64(die.X)
		ys[i] = float64(die.Y)
		if die.X < d.XMin {
			d.XMin = die.X
		}
		if die.X > d.XMax {
			d.XMax = die.X
		}
		if die.Y < d.YMin {
			d.YMin = die.Y
		}
		if die.Y > d.YMax {
			d.YMax = die.Y
		}
	}
	d.CenterX = round2(stat.Mean(xs, nil))
	d.CenterY = round2(stat.Mean(ys, nil))
	// StdDev needs at least two samples.
	if len(selected) > 1 {
		d.StdDevX = round2(stat.StdDev(xs, nil))
		d.StdDevY = round2(stat.StdDev(ys, nil))
	}
	return d
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
