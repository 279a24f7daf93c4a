package schematic

import (
	"encoding/json"
	"fmt"
	"os"
)

// boundaryWire mirrors Boundary with optional centroid and availability
// so hand-written interchange files can omit them: an absent centroid
// takes the rectangle midpoint, absent availability defaults to true.
type boundaryWire struct {
	DieID     string         `json:"die_id"`
	XMin      float64        `json:"x_min"`
	YMin      float64        `json:"y_min"`
	XMax      float64        `json:"x_max"`
	YMax      float64        `json:"y_max"`
	CenterX   *float64       `json:"center_x,omitempty"`
	CenterY   *float64       `json:"center_y,omitempty"`
	Available *bool          `json:"available,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// UnmarshalJSON applies the midpoint-centroid and available=true
// defaults for absent fields.
func (b *Boundary) UnmarshalJSON(data []byte) error {
	var w boundaryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	b.DieID = w.DieID
	b.XMin, b.YMin, b.XMax, b.YMax = w.XMin, w.YMin, w.XMax, w.YMax
	b.Metadata = w.Metadata
	b.CenterX = (w.XMin + w.XMax) / 2
	if w.CenterX != nil {
		b.CenterX = *w.CenterX
	}
	b.CenterY = (w.YMin + w.YMax) / 2
	if w.CenterY != nil {
		b.CenterY = *w.CenterY
	}
	b.Available = true
	if w.Available != nil {
		b.Available = *w.Available
	}
	return nil
}

// Parse decodes a schematic from the normalized JSON interchange format
// produced by the layout parsers. A document without a format tag is
// marked unknown.
func Parse(data []byte) (*Schematic, error) {
	var s Schematic
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schematic: %w", err)
	}
	if s.Format == "" {
		s.Format = FormatUnknown
	}
	if s.CoordinateSystem == "" {
		s.CoordinateSystem = CoordCartesian
	}
	return &s, nil
}

// LoadFile reads and decodes a schematic interchange file.
func LoadFile(path string) (*Schematic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schematic: %w", err)
	}
	return Parse(data)
}

// EncodeJSON encodes the schematic in the interchange format, indented
// for readability.
func (s *Schematic) EncodeJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding schematic: %w", err)
	}
	return data, nil
}
