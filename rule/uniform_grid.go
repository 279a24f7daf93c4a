package rule

import "github.com/c360studio/semwafer/wafer"

// UniformGrid selects the available dies lying on a regular lattice
// anchored at the map's minimum corner plus an offset.
//
// Parameters:
//
//	spacing_x: lattice pitch in x (default 2)
//	spacing_y: lattice pitch in y (default 2)
//	offset_x:  lattice shift from min x (default 0)
//	offset_y:  lattice shift from min y (default 0)
type UniformGrid struct {
	spacingX int
	spacingY int
	offsetX  int
	offsetY  int
}

// NewUniformGrid builds the rule from raw parameters.
func NewUniformGrid(params Params) *UniformGrid {
	return &UniformGrid{
		spacingX: params.Int("spacing_x", 2),
		spacingY: params.Int("spacing_y", 2),
		offsetX:  params.Int("offset_x", 0),
		offsetY:  params.Int("offset_y", 0),
	}
}

// Type implements Rule.
func (r *UniformGrid) Type() string {
	return TypeUniformGrid
}

// Apply returns the available dies on the lattice in map iteration
// order. Non-positive spacing cannot form a lattice and selects nothing.
func (r *UniformGrid) Apply(m *wafer.Map, _ *ExecutionContext) []wafer.Die {
	if m == nil || r.spacingX <= 0 || r.spacingY <= 0 {
		return nil
	}
	b, ok := m.Bounds()
	if !ok {
		return nil
	}

	startX := b.MinX + r.offsetX
	startY := b.MinY + r.offsetY

	var out []wafer.Die
	for _, d := range m.Dies() {
		if !d.Available {
			continue
		}
		if (d.X-startX)%r.spacingX == 0 && (d.Y-startY)%r.spacingY == 0 {
			out = append(out, d)
		}
	}
	return out
}

// EstimatePerformance implements Rule.
func (r *UniformGrid) EstimatePerformance(m *wafer.Map) PerformanceEstimate {
	return linearEstimate(m)
}
