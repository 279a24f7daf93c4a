package rule

import "github.com/c360studio/semwafer/wafer"

// CenterEdge selects a handful of dies around the wafer center plus a
// ring of dies along the edges of the bounding box. Center candidates
// are the available dies within Chebyshev distance 1 of the bounding-box
// midpoint; edge candidates are the available dies within edge_margin of
// any side. Both picks take the first N candidates in map iteration
// order, so selection is reproducible for maps built by the wafer
// package (row-major) and for any other fixed ordering.
//
// Parameters:
//
//	center_count: dies to pick near the center (default 1)
//	edge_count:   dies to pick along the edges (default 4)
//	edge_margin:  how far from a side still counts as edge (default 1)
type CenterEdge struct {
	centerCount int
	edgeCount   int
	edgeMargin  int
}

// NewCenterEdge builds the rule from raw parameters.
func NewCenterEdge(params Params) *CenterEdge {
	return &CenterEdge{
		centerCount: params.Int("center_count", 1),
		edgeCount:   params.Int("edge_count", 4),
		edgeMargin:  params.Int("edge_margin", 1),
	}
}

// Type implements Rule.
func (r *CenterEdge) Type() string {
	return TypeCenterEdge
}

// Apply selects center dies first, then edge dies, never the same die
// twice. An empty center box is not an error; the center pick is simply
// empty. Non-positive counts select nothing for that band.
func (r *CenterEdge) Apply(m *wafer.Map, _ *ExecutionContext) []wafer.Die {
	if m == nil {
		return nil
	}
	b, ok := m.Bounds()
	if !ok {
		return nil
	}

	// Midpoint rounds toward negative infinity so grids centered on the
	// origin keep a stable center band.
	cx := floorDiv(b.MinX+b.MaxX, 2)
	cy := floorDiv(b.MinY+b.MaxY, 2)

	dies := m.Dies()
	selected := make([]wafer.Die, 0, r.centerCount+r.edgeCount)
	taken := make(map[wafer.Coord]struct{}, r.centerCount+r.edgeCount)

	picked := 0
	for _, d := range dies {
		if picked >= r.centerCount {
			break
		}
		if !d.Available {
			continue
		}
		if absInt(d.X-cx) <= 1 && absInt(d.Y-cy) <= 1 {
			selected = append(selected, d)
			taken[d.Coord()] = struct{}{}
			picked++
		}
	}

	picked = 0
	for _, d := range dies {
		if picked >= r.edgeCount {
			break
		}
		if !d.Available {
			continue
		}
		if _, dup := taken[d.Coord()]; dup {
			continue
		}
		if d.X <= b.MinX+r.edgeMargin || d.X >= b.MaxX-r.edgeMargin ||
			d.Y <= b.MinY+r.edgeMargin || d.Y >= b.MaxY-r.edgeMargin {
			selected = append(selected, d)
			taken[d.Coord()] = struct{}{}
			picked++
		}
	}

	return selected
}

// EstimatePerformance implements Rule.
func (r *CenterEdge) EstimatePerformance(m *wafer.Map) PerformanceEstimate {
	return linearEstimate(m)
}

// floorDiv divides rounding toward negative infinity, unlike Go's
// truncating division.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
