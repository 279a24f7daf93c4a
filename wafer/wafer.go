// Package wafer defines the die-grid model that sampling strategies
// operate on: individual dies, ordered wafer maps, and the grid builders
// used by simulation and tooling.
package wafer

import "fmt"

// Die represents a single die site on a wafer map.
type Die struct {
	// X is the column coordinate on the die grid.
	X int `json:"x"`

	// Y is the row coordinate on the die grid.
	Y int `json:"y"`

	// Available indicates whether the die may be selected for sampling.
	// Edge-partial and excluded dies are carried on the map but never
	// selected by the built-in rules.
	Available bool `json:"available"`

	// Metadata carries arbitrary per-die attributes (bin codes, zone
	// labels). The engine never interprets it.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Coord returns the die's grid coordinate.
func (d Die) Coord() Coord {
	return Coord{X: d.X, Y: d.Y}
}

// Coord is an integer grid coordinate.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String returns the coordinate in "(x, y)" form.
func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Bounds is the inclusive bounding box of a set of dies.
type Bounds struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Width returns the number of columns covered by the bounds.
func (b Bounds) Width() int {
	return b.MaxX - b.MinX + 1
}

// Height returns the number of rows covered by the bounds.
func (b Bounds) Height() int {
	return b.MaxY - b.MinY + 1
}

// Contains reports whether the coordinate falls inside the bounds.
func (b Bounds) Contains(c Coord) bool {
	return c.X >= b.MinX && c.X <= b.MaxX && c.Y >= b.MinY && c.Y <= b.MaxY
}
