// Package schematic models a wafer's physical die layout and validates
// strategy sampling points against it. Layout data arrives as a
// normalized boundary list produced by an upstream CAD parser; this
// package never reads GDSII/DXF/SVG itself.
package schematic

import (
	"github.com/c360studio/semwafer/wafer"
)

// Bounds is an axis-aligned rectangle in layout coordinates.
type Bounds struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 {
	return b.XMax - b.XMin
}

// Height returns the vertical extent.
func (b Bounds) Height() float64 {
	return b.YMax - b.YMin
}

// Boundary is one die's physical footprint on the wafer.
type Boundary struct {
	// DieID identifies the die within its schematic.
	DieID string `json:"die_id"`

	// XMin, YMin, XMax, YMax delimit the die rectangle (inclusive).
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`

	// CenterX, CenterY locate the die centroid. Parsers usually supply
	// these; NewBoundary and decoding derive the midpoint when absent.
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`

	// Available reports whether the die may be sampled.
	Available bool `json:"available"`

	// Metadata carries parser-specific attributes.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewBoundary builds a boundary for the given rectangle with the
// centroid at the midpoint.
func NewBoundary(dieID string, xMin, yMin, xMax, yMax float64) Boundary {
	return Boundary{
		DieID:     dieID,
		XMin:      xMin,
		YMin:      yMin,
		XMax:      xMax,
		YMax:      yMax,
		CenterX:   (xMin + xMax) / 2,
		CenterY:   (yMin + yMax) / 2,
		Available: true,
	}
}

// Bounds returns the die rectangle.
func (b Boundary) Bounds() Bounds {
	return Bounds{XMin: b.XMin, YMin: b.YMin, XMax: b.XMax, YMax: b.YMax}
}

// Width returns the die width.
func (b Boundary) Width() float64 {
	return b.XMax - b.XMin
}

// Height returns the die height.
func (b Boundary) Height() float64 {
	return b.YMax - b.YMin
}

// Area returns the die area.
func (b Boundary) Area() float64 {
	return b.Width() * b.Height()
}

// ContainsPoint reports whether the point lies within the die
// rectangle. Bounds are inclusive, so adjacent dies share their edge
// coordinates and lookups over touching rectangles are scan-order
// dependent.
func (b Boundary) ContainsPoint(x, y float64) bool {
	return b.XMin <= x && x <= b.XMax && b.YMin <= y && y <= b.YMax
}

// Die converts the boundary to a sampling die at its integer-truncated
// centroid, carrying availability through.
func (b Boundary) Die() wafer.Die {
	return wafer.Die{
		X:         int(b.CenterX),
		Y:         int(b.CenterY),
		Available: b.Available,
	}
}

// firstContaining returns the first boundary whose rectangle contains
// the point, or nil. Linear scan, first match wins.
func firstContaining(boundaries []Boundary, x, y float64) *Boundary {
	for i := range boundaries {
		if boundaries[i].ContainsPoint(x, y) {
			return &boundaries[i]
		}
	}
	return nil
}
