package wafer

// Map is an ordered, read-only snapshot of the dies on a wafer.
//
// Iteration order is the insertion order of the dies the map was built
// from. Every builder in this package emits row-major order (y ascending,
// then x ascending), which makes positional rules such as center/edge
// selection reproducible. Maps built from caller-supplied slices keep the
// caller's order.
type Map struct {
	dies  []Die
	index map[Coord]int
}

// NewMap builds a map from the given dies, preserving their order.
// When two dies share a coordinate the first occurrence wins for
// coordinate lookups; both remain in the iteration order.
func NewMap(dies []Die) *Map {
	m := &Map{
		dies:  make([]Die, len(dies)),
		index: make(map[Coord]int, len(dies)),
	}
	copy(m.dies, dies)
	for i, d := range m.dies {
		c := d.Coord()
		if _, ok := m.index[c]; !ok {
			m.index[c] = i
		}
	}
	return m
}

// NewGrid builds a fully-available rectangular map with coordinates
// (0,0)..(width-1,height-1) in row-major order. Non-positive dimensions
// yield an empty map.
func NewGrid(width, height int) *Map {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	dies := make([]Die, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dies = append(dies, Die{X: x, Y: y, Available: true})
		}
	}
	return NewMap(dies)
}

// Default returns the fallback 5x5 grid used when no wafer map is supplied.
func Default() *Map {
	return NewGrid(5, 5)
}

// Len returns the number of dies on the map.
func (m *Map) Len() int {
	return len(m.dies)
}

// Dies returns a copy of the dies in iteration order.
func (m *Map) Dies() []Die {
	out := make([]Die, len(m.dies))
	copy(out, m.dies)
	return out
}

// Available returns a copy of the available dies in iteration order.
func (m *Map) Available() []Die {
	var out []Die
	for _, d := range m.dies {
		if d.Available {
			out = append(out, d)
		}
	}
	return out
}

// AvailableCount returns the number of available dies.
func (m *Map) AvailableCount() int {
	n := 0
	for _, d := range m.dies {
		if d.Available {
			n++
		}
	}
	return n
}

// At returns the die at the given coordinate. When duplicate coordinates
// were supplied at construction the first occurrence is returned.
func (m *Map) At(c Coord) (Die, bool) {
	i, ok := m.index[c]
	if !ok {
		return Die{}, false
	}
	return m.dies[i], true
}

// Contains reports whether a die exists at the coordinate.
func (m *Map) Contains(c Coord) bool {
	_, ok := m.index[c]
	return ok
}

// Bounds returns the inclusive bounding box of all dies. The second
// return value is false for an empty map.
func (m *Map) Bounds() (Bounds, bool) {
	if len(m.dies) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinX: m.dies[0].X,
		MinY: m.dies[0].Y,
		MaxX: m.dies[0].X,
		MaxY: m.dies[0].Y,
	}
	for _, d := range m.dies[1:] {
		if d.X < b.MinX {
			b.MinX = d.X
		}
		if d.X > b.MaxX {
			b.MaxX = d.X
		}
		if d.Y < b.MinY {
			b.MinY = d.Y
		}
		if d.Y > b.MaxY {
			b.MaxY = d.Y
		}
	}
	return b, true
}
