package rule

import "github.com/c360studio/semwafer/wafer"

// FixedPoint selects explicitly listed coordinates. A listed coordinate
// is selected only when a die exists there and is available; everything
// else is silently skipped.
//
// Parameters:
//
//	points: list of coordinates, each [x, y] or {x, y} (default none)
type FixedPoint struct {
	points map[wafer.Coord]struct{}
}

// NewFixedPoint builds the rule from raw parameters.
func NewFixedPoint(params Params) *FixedPoint {
	pts := params.Coords("points")
	set := make(map[wafer.Coord]struct{}, len(pts))
	for _, c := range pts {
		set[c] = struct{}{}
	}
	return &FixedPoint{points: set}
}

// Type implements Rule.
func (r *FixedPoint) Type() string {
	return TypeFixedPoint
}

// Apply returns the available dies whose coordinates were listed, in map
// iteration order.
func (r *FixedPoint) Apply(m *wafer.Map, _ *ExecutionContext) []wafer.Die {
	if m == nil || len(r.points) == 0 {
		return nil
	}
	var out []wafer.Die
	for _, d := range m.Dies() {
		if !d.Available {
			continue
		}
		if _, ok := r.points[d.Coord()]; ok {
			out = append(out, d)
		}
	}
	return out
}

// EstimatePerformance implements Rule.
func (r *FixedPoint) EstimatePerformance(m *wafer.Map) PerformanceEstimate {
	return linearEstimate(m)
}
