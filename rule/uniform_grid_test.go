package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semwafer/wafer"
)

func TestUniformGrid_Apply(t *testing.T) {
	t.Run("default spacing on 5x5", func(t *testing.T) {
		r := NewUniformGrid(Params{})
		got := r.Apply(wafer.NewGrid(5, 5), nil)

		require.Len(t, got, 9)
		for _, d := range got {
			assert.Zero(t, d.X%2, "x on lattice: %v", d.Coord())
			assert.Zero(t, d.Y%2, "y on lattice: %v", d.Coord())
		}
	})

	t.Run("spacing one selects every available die", func(t *testing.T) {
		m := wafer.NewMap([]wafer.Die{
			{X: 0, Y: 0, Available: true},
			{X: 1, Y: 0, Available: false},
			{X: 2, Y: 0, Available: true},
			{X: 3, Y: 1, Available: true},
		})
		r := NewUniformGrid(Params{"spacing_x": 1, "spacing_y": 1})

		got := r.Apply(m, nil)
		assert.Equal(t, m.Available(), got)
	})

	t.Run("offset shifts the lattice", func(t *testing.T) {
		r := NewUniformGrid(Params{"spacing_x": 2, "spacing_y": 2, "offset_x": 1, "offset_y": 1})
		got := r.Apply(wafer.NewGrid(5, 5), nil)

		require.NotEmpty(t, got)
		for _, d := range got {
			assert.Equal(t, 1, d.X%2, "lattice anchored at x=1: %v", d.Coord())
			assert.Equal(t, 1, d.Y%2, "lattice anchored at y=1: %v", d.Coord())
		}
		assert.Len(t, got, 4) // x in {1,3}, y in {1,3}
	})

	t.Run("lattice anchored at map minimum, not origin", func(t *testing.T) {
		var dies []wafer.Die
		for y := -2; y <= 2; y++ {
			for x := -2; x <= 2; x++ {
				dies = append(dies, wafer.Die{X: x, Y: y, Available: true})
			}
		}
		r := NewUniformGrid(Params{"spacing_x": 2, "spacing_y": 2})

		got := r.Apply(wafer.NewMap(dies), nil)
		require.Len(t, got, 9)
		assert.Equal(t, wafer.Coord{X: -2, Y: -2}, got[0].Coord())
	})

	t.Run("unavailable dies skipped", func(t *testing.T) {
		m := wafer.NewMap([]wafer.Die{
			{X: 0, Y: 0, Available: false},
			{X: 2, Y: 0, Available: true},
		})
		r := NewUniformGrid(Params{})

		got := r.Apply(m, nil)
		require.Len(t, got, 1)
		assert.Equal(t, wafer.Coord{X: 2, Y: 0}, got[0].Coord())
	})

	t.Run("non-positive spacing selects nothing", func(t *testing.T) {
		assert.Empty(t, NewUniformGrid(Params{"spacing_x": 0}).Apply(wafer.NewGrid(5, 5), nil))
		assert.Empty(t, NewUniformGrid(Params{"spacing_y": -2}).Apply(wafer.NewGrid(5, 5), nil))
	})

	t.Run("empty map", func(t *testing.T) {
		assert.Empty(t, NewUniformGrid(Params{}).Apply(wafer.NewMap(nil), nil))
	})
}
