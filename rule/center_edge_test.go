package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semwafer/wafer"
)

func coords(dies []wafer.Die) []wafer.Coord {
	out := make([]wafer.Coord, len(dies))
	for i, d := range dies {
		out[i] = d.Coord()
	}
	return out
}

func TestCenterEdge_Defaults(t *testing.T) {
	// 5x5 grid, center box around (2,2). Row-major scan meets (1,1)
	// first inside the box; the four edge picks are the first four
	// top-row dies not already taken.
	r := NewCenterEdge(Params{})
	got := r.Apply(wafer.NewGrid(5, 5), nil)

	assert.Equal(t, []wafer.Coord{
		{X: 1, Y: 1},
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 2, Y: 0},
		{X: 3, Y: 0},
	}, coords(got))
}

func TestCenterEdge_Apply(t *testing.T) {
	t.Run("center count grows the center band", func(t *testing.T) {
		r := NewCenterEdge(Params{"center_count": 3, "edge_count": 0})
		got := r.Apply(wafer.NewGrid(5, 5), nil)

		assert.Equal(t, []wafer.Coord{
			{X: 1, Y: 1},
			{X: 2, Y: 1},
			{X: 3, Y: 1},
		}, coords(got))
	})

	t.Run("no available center die yields empty center pick", func(t *testing.T) {
		var dies []wafer.Die
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				inBox := absInt(x-2) <= 1 && absInt(y-2) <= 1
				dies = append(dies, wafer.Die{X: x, Y: y, Available: !inBox})
			}
		}
		r := NewCenterEdge(Params{"center_count": 2, "edge_count": 2})

		got := r.Apply(wafer.NewMap(dies), nil)
		assert.Equal(t, []wafer.Coord{
			{X: 0, Y: 0},
			{X: 1, Y: 0},
		}, coords(got), "only edge picks remain")
	})

	t.Run("center and edge never pick the same die", func(t *testing.T) {
		// Single die: it is both the center and on the edge.
		m := wafer.NewMap([]wafer.Die{{X: 0, Y: 0, Available: true}})
		r := NewCenterEdge(Params{"center_count": 1, "edge_count": 4})

		got := r.Apply(m, nil)
		require.Len(t, got, 1)
		assert.Equal(t, wafer.Coord{X: 0, Y: 0}, got[0].Coord())
	})

	t.Run("negative coordinates keep a stable midpoint", func(t *testing.T) {
		// Bounds -3..2 in both axes: the midpoint rounds down to -1,
		// not toward zero.
		var dies []wafer.Die
		for y := -3; y <= 2; y++ {
			for x := -3; x <= 2; x++ {
				dies = append(dies, wafer.Die{X: x, Y: y, Available: true})
			}
		}
		r := NewCenterEdge(Params{"center_count": 1, "edge_count": 0})

		got := r.Apply(wafer.NewMap(dies), nil)
		require.Len(t, got, 1)
		assert.Equal(t, wafer.Coord{X: -2, Y: -2}, got[0].Coord(),
			"first row-major die within distance 1 of (-1,-1)")
	})

	t.Run("wider edge margin pulls picks inward", func(t *testing.T) {
		r := NewCenterEdge(Params{"center_count": 0, "edge_count": 25, "edge_margin": 2})
		got := r.Apply(wafer.NewGrid(5, 5), nil)

		// Margin 2 on a 5x5 grid makes every die edge-eligible.
		assert.Len(t, got, 25)
	})

	t.Run("non-positive counts select nothing", func(t *testing.T) {
		r := NewCenterEdge(Params{"center_count": 0, "edge_count": 0})
		assert.Empty(t, r.Apply(wafer.NewGrid(5, 5), nil))
	})

	t.Run("empty map", func(t *testing.T) {
		r := NewCenterEdge(Params{})
		assert.Empty(t, r.Apply(wafer.NewMap(nil), nil))
		assert.Empty(t, r.Apply(nil, nil))
	})
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{4, 2, 2},
		{5, 2, 2},
		{-5, 2, -3},
		{-4, 2, -2},
		{-1, 2, -1},
		{0, 2, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, floorDiv(tt.a, tt.b), "floorDiv(%d, %d)", tt.a, tt.b)
	}
}
