package wafer

import (
	"encoding/json"
	"fmt"
)

// mapFile is the JSON interchange shape for wafer maps: an explicit die
// list, a synthetic grid size, or nothing (fallback grid).
type mapFile struct {
	Dies     *[]Die `json:"dies,omitempty"`
	GridSize []int  `json:"grid_size,omitempty"`
}

// ParseMap decodes the wafer-map interchange format. A "dies" key takes
// precedence over "grid_size"; an object with neither yields Default().
func ParseMap(data []byte) (*Map, error) {
	var f mapFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing wafer map: %w", err)
	}
	switch {
	case f.Dies != nil:
		return NewMap(*f.Dies), nil
	case len(f.GridSize) == 2:
		return NewGrid(f.GridSize[0], f.GridSize[1]), nil
	case len(f.GridSize) != 0:
		return nil, fmt.Errorf("parsing wafer map: grid_size wants [width, height], got %d values", len(f.GridSize))
	default:
		return Default(), nil
	}
}

// MarshalJSON encodes the map as its die list.
func (m *Map) MarshalJSON() ([]byte, error) {
	dies := m.dies
	if dies == nil {
		dies = []Die{}
	}
	return json.Marshal(mapFile{Dies: &dies})
}

// UnmarshalJSON decodes any ParseMap-accepted shape in place.
func (m *Map) UnmarshalJSON(data []byte) error {
	parsed, err := ParseMap(data)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}
