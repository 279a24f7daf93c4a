package wafer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	m := NewGrid(3, 2)

	require.Equal(t, 6, m.Len())
	assert.Equal(t, 6, m.AvailableCount())

	// Row-major: y advances only after a full row of x.
	dies := m.Dies()
	assert.Equal(t, Coord{X: 0, Y: 0}, dies[0].Coord())
	assert.Equal(t, Coord{X: 1, Y: 0}, dies[1].Coord())
	assert.Equal(t, Coord{X: 2, Y: 0}, dies[2].Coord())
	assert.Equal(t, Coord{X: 0, Y: 1}, dies[3].Coord())

	b, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, Bounds{MinX: 0, MinY: 0, MaxX: 2, MaxY: 1}, b)
}

func TestNewGridDegenerate(t *testing.T) {
	assert.Equal(t, 0, NewGrid(0, 5).Len())
	assert.Equal(t, 0, NewGrid(-1, 5).Len())

	_, ok := NewGrid(0, 0).Bounds()
	assert.False(t, ok, "empty map has no bounds")
}

func TestDefault(t *testing.T) {
	m := Default()
	assert.Equal(t, 25, m.Len())
	assert.Equal(t, 25, m.AvailableCount())
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	dies := []Die{
		{X: 4, Y: 4, Available: true},
		{X: 0, Y: 0, Available: true},
		{X: 2, Y: 1, Available: false},
	}
	m := NewMap(dies)

	got := m.Dies()
	require.Len(t, got, 3)
	assert.Equal(t, Coord{X: 4, Y: 4}, got[0].Coord())
	assert.Equal(t, Coord{X: 0, Y: 0}, got[1].Coord())
	assert.Equal(t, Coord{X: 2, Y: 1}, got[2].Coord())
}

func TestMapDiesIsACopy(t *testing.T) {
	m := NewGrid(2, 2)
	dies := m.Dies()
	dies[0].Available = false

	d, ok := m.At(Coord{X: 0, Y: 0})
	require.True(t, ok)
	assert.True(t, d.Available, "mutating the returned slice must not touch the map")
}

func TestMapAt(t *testing.T) {
	m := NewMap([]Die{
		{X: 1, Y: 1, Available: true, Metadata: map[string]any{"zone": "center"}},
		{X: 1, Y: 1, Available: false}, // duplicate coordinate, first wins
		{X: 3, Y: 0, Available: false},
	})

	d, ok := m.At(Coord{X: 1, Y: 1})
	require.True(t, ok)
	assert.True(t, d.Available)
	assert.Equal(t, "center", d.Metadata["zone"])

	_, ok = m.At(Coord{X: 9, Y: 9})
	assert.False(t, ok)
	assert.False(t, m.Contains(Coord{X: 9, Y: 9}))
	assert.True(t, m.Contains(Coord{X: 3, Y: 0}))
}

func TestMapAvailable(t *testing.T) {
	m := NewMap([]Die{
		{X: 0, Y: 0, Available: true},
		{X: 1, Y: 0, Available: false},
		{X: 2, Y: 0, Available: true},
	})

	avail := m.Available()
	require.Len(t, avail, 2)
	assert.Equal(t, 0, avail[0].X)
	assert.Equal(t, 2, avail[1].X)
	assert.Equal(t, 2, m.AvailableCount())
}

func TestBoundsNegativeCoordinates(t *testing.T) {
	m := NewMap([]Die{
		{X: -3, Y: -2, Available: true},
		{X: 3, Y: 2, Available: true},
		{X: 0, Y: 0, Available: true},
	})

	b, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, Bounds{MinX: -3, MinY: -2, MaxX: 3, MaxY: 2}, b)
	assert.Equal(t, 7, b.Width())
	assert.Equal(t, 5, b.Height())
	assert.True(t, b.Contains(Coord{X: 0, Y: 0}))
	assert.False(t, b.Contains(Coord{X: 4, Y: 0}))
}

func TestParseMap(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantAvail int
		wantErr   bool
	}{
		{
			name:      "explicit die list",
			input:     `{"dies":[{"x":0,"y":0,"available":true},{"x":1,"y":0,"available":false}]}`,
			wantLen:   2,
			wantAvail: 1,
		},
		{
			name:      "explicit empty die list",
			input:     `{"dies":[]}`,
			wantLen:   0,
			wantAvail: 0,
		},
		{
			name:      "grid size",
			input:     `{"grid_size":[4,3]}`,
			wantLen:   12,
			wantAvail: 12,
		},
		{
			name:      "neither falls back to default grid",
			input:     `{}`,
			wantLen:   25,
			wantAvail: 25,
		},
		{
			name:    "malformed grid size",
			input:   `{"grid_size":[4]}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			input:   `{"dies":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMap([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, m.Len())
			assert.Equal(t, tt.wantAvail, m.AvailableCount())
		})
	}
}

func TestMapJSONRoundTrip(t *testing.T) {
	orig := NewMap([]Die{
		{X: 2, Y: 0, Available: true},
		{X: 0, Y: 1, Available: false},
	})

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Map
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, orig.Dies(), back.Dies())
}
