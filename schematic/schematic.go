package schematic

import (
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semwafer/wafer"
)

// Format tags the file format a schematic was parsed from.
type Format string

const (
	// FormatGDSII is the GDSII stream format.
	FormatGDSII Format = "gdsii"
	// FormatDXF is the AutoCAD drawing exchange format.
	FormatDXF Format = "dxf"
	// FormatSVG is scalable vector graphics.
	FormatSVG Format = "svg"
	// FormatUnknown is used when the source format was not recorded.
	FormatUnknown Format = "unknown"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// CoordinateSystem tags how boundary coordinates are expressed.
type CoordinateSystem string

const (
	// CoordCartesian is plain cartesian layout coordinates.
	CoordCartesian CoordinateSystem = "cartesian"
	// CoordPolar is polar coordinates.
	CoordPolar CoordinateSystem = "polar"
	// CoordGDSIIUnits is raw GDSII database units.
	CoordGDSIIUnits CoordinateSystem = "gdsii_units"
	// CoordCADUnits is tool-specific CAD units.
	CoordCADUnits CoordinateSystem = "cad_units"
	// CoordNormalized is unit-square normalized coordinates.
	CoordNormalized CoordinateSystem = "normalized"
)

// String returns the string representation of the coordinate system.
func (c CoordinateSystem) String() string {
	return string(c)
}

// Metadata carries provenance extracted alongside the layout.
type Metadata struct {
	// OriginalFilename is the name of the uploaded source file.
	OriginalFilename string `json:"original_filename,omitempty"`

	// FileSize is the source file size in bytes.
	FileSize int64 `json:"file_size,omitempty"`

	// SoftwareInfo names the tool that produced the source file.
	SoftwareInfo string `json:"software_info,omitempty"`

	// Units names the physical unit of the coordinates.
	Units string `json:"units,omitempty"`

	// ScaleFactor converts source units to layout coordinates.
	ScaleFactor float64 `json:"scale_factor,omitempty"`

	// Custom carries any remaining parser attributes.
	Custom map[string]any `json:"custom_attributes,omitempty"`
}

// Schematic is a parsed wafer layout: a set of die boundaries plus the
// provenance needed to interpret them.
type Schematic struct {
	// ID uniquely identifies the schematic.
	ID string `json:"id"`

	// Filename is the layout file this schematic was parsed from.
	Filename string `json:"filename,omitempty"`

	// Format tags the source file format.
	Format Format `json:"format_type"`

	// UploadedAt is when the layout entered the system.
	UploadedAt time.Time `json:"upload_date"`

	// Boundaries lists the die footprints. Order matters: point lookup
	// is first match wins, and rectangles are assumed non-overlapping.
	Boundaries []Boundary `json:"die_boundaries"`

	// CoordinateSystem tags how boundary coordinates are expressed.
	CoordinateSystem CoordinateSystem `json:"coordinate_system"`

	// WaferSize is the nominal wafer diameter (e.g. "300mm").
	WaferSize string `json:"wafer_size,omitempty"`

	// Metadata carries source-file provenance.
	Metadata *Metadata `json:"metadata,omitempty"`
}

// New creates an empty schematic with a fresh ID.
func New(filename string, format Format) *Schematic {
	return &Schematic{
		ID:               uuid.NewString(),
		Filename:         filename,
		Format:           format,
		UploadedAt:       time.Now().UTC(),
		CoordinateSystem: CoordCartesian,
	}
}

// DieCount returns the number of die boundaries.
func (s *Schematic) DieCount() int {
	return len(s.Boundaries)
}

// AvailableDieCount returns the number of sampleable dies.
func (s *Schematic) AvailableDieCount() int {
	n := 0
	for _, b := range s.Boundaries {
		if b.Available {
			n++
		}
	}
	return n
}

// LayoutBounds returns the rectangle enclosing every die boundary and
// false when the schematic has no boundaries.
func (s *Schematic) LayoutBounds() (Bounds, bool) {
	if len(s.Boundaries) == 0 {
		return Bounds{}, false
	}
	lb := s.Boundaries[0].Bounds()
	for _, b := range s.Boundaries[1:] {
		if b.XMin < lb.XMin {
			lb.XMin = b.XMin
		}
		if b.YMin < lb.YMin {
			lb.YMin = b.YMin
		}
		if b.XMax > lb.XMax {
			lb.XMax = b.XMax
		}
		if b.YMax > lb.YMax {
			lb.YMax = b.YMax
		}
	}
	return lb, true
}

// DieAt returns the first boundary containing the point, or nil.
func (s *Schematic) DieAt(x, y float64) *Boundary {
	return firstContaining(s.Boundaries, x, y)
}

// WaferMap converts the layout to a sampling die map, one die per
// boundary at its integer-truncated centroid, in boundary order.
func (s *Schematic) WaferMap() *wafer.Map {
	dies := make([]wafer.Die, len(s.Boundaries))
	for i, b := range s.Boundaries {
		dies[i] = b.Die()
	}
	return wafer.NewMap(dies)
}

// Statistics summarizes the layout for reporting.
type Statistics struct {
	DieCount          int              `json:"die_count"`
	AvailableDieCount int              `json:"available_die_count"`
	LayoutBounds      Bounds           `json:"layout_bounds"`
	LayoutWidth       float64          `json:"layout_width"`
	LayoutHeight      float64          `json:"layout_height"`
	CoordinateSystem  CoordinateSystem `json:"coordinate_system"`
	Format            Format           `json:"format_type"`
	WaferSize         string           `json:"wafer_size,omitempty"`
}

// Statistics computes the layout summary. An empty schematic reports
// zero bounds.
func (s *Schematic) Statistics() Statistics {
	lb, _ := s.LayoutBounds()
	return Statistics{
		DieCount:          s.DieCount(),
		AvailableDieCount: s.AvailableDieCount(),
		LayoutBounds:      lb,
		LayoutWidth:       lb.Width(),
		LayoutHeight:      lb.Height(),
		CoordinateSystem:  s.CoordinateSystem,
		Format:            s.Format,
		WaferSize:         s.WaferSize,
	}
}
