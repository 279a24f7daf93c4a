package schematic

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semwafer/wafer"
)

// Status is the final outcome of a validation run.
type Status string

const (
	// StatusPass indicates no conflicts or warnings were found.
	StatusPass Status = "pass"
	// StatusWarning indicates warnings but no errors.
	StatusWarning Status = "warning"
	// StatusFail indicates at least one error-severity conflict.
	StatusFail Status = "fail"
	// StatusNotValidated is the pre-run default; the validator never
	// assigns it.
	StatusNotValidated Status = "not_validated"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized validation status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPass, StatusWarning, StatusFail, StatusNotValidated:
		return true
	default:
		return false
	}
}

// Severity ranks how serious a conflict is.
type Severity string

const (
	// SeverityError blocks deployment.
	SeverityError Severity = "error"
	// SeverityWarning needs review but does not block.
	SeverityWarning Severity = "warning"
	// SeverityInfo is purely informational.
	SeverityInfo Severity = "info"
)

// ConflictType classifies a conflict between a sampling point and the
// die layout.
type ConflictType string

const (
	// ConflictOutOfBounds marks a point outside every die boundary.
	ConflictOutOfBounds ConflictType = "out_of_bounds"
	// ConflictUnavailableDie marks a point on a die excluded from
	// sampling.
	ConflictUnavailableDie ConflictType = "unavailable_die"
	// ConflictMisaligned marks a point off its die's sampling site.
	ConflictMisaligned ConflictType = "misaligned"
	// ConflictValidationError marks a run that failed before points
	// could be classified.
	ConflictValidationError ConflictType = "validation_error"
)

// Conflict records one clash between the strategy and the layout.
type Conflict struct {
	// Type classifies the conflict.
	Type ConflictType `json:"conflict_type"`

	// StrategyPoint is the sampling point that clashed.
	StrategyPoint wafer.Coord `json:"strategy_point"`

	// Description explains the clash.
	Description string `json:"description"`

	// Severity ranks the clash.
	Severity Severity `json:"severity"`

	// Recommendation suggests a fix, when one is known.
	Recommendation string `json:"recommendation,omitempty"`

	// AffectedDieID names the die involved, when one exists.
	AffectedDieID string `json:"affected_die_id,omitempty"`
}

// Warning records a run-level observation not tied to a single point.
type Warning struct {
	// Type classifies the warning (e.g. "low_coverage").
	Type string `json:"warning_type"`

	// Description explains the observation.
	Description string `json:"description"`

	// AffectedArea delimits the layout region concerned, when known.
	AffectedArea *Bounds `json:"affected_area,omitempty"`

	// Recommendation suggests a fix, when one is known.
	Recommendation string `json:"recommendation,omitempty"`
}

// WarningLowCoverage is raised when coverage falls below the warning
// threshold.
const WarningLowCoverage = "low_coverage"

// Result is the report of one validation run: classification of every
// sampling point against the die layout, plus derived scores and
// advisory recommendations.
type Result struct {
	// ValidationID uniquely identifies this run.
	ValidationID string `json:"validation_id"`

	// SchematicID names the layout validated against.
	SchematicID string `json:"schematic_id,omitempty"`

	// StrategyID names the strategy whose points were validated.
	StrategyID string `json:"strategy_id,omitempty"`

	// ValidatedAt is when the run happened.
	ValidatedAt time.Time `json:"validation_date"`

	// Status is the final outcome.
	Status Status `json:"validation_status"`

	// Conflicts lists per-point clashes in point order.
	Conflicts []Conflict `json:"conflicts"`

	// Warnings lists run-level observations.
	Warnings []Warning `json:"warnings"`

	// AlignmentScore grades the run in [0, 1], rounded to 3 decimals.
	AlignmentScore float64 `json:"alignment_score"`

	// CoveragePercentage is valid points over total points, in [0, 100].
	CoveragePercentage float64 `json:"coverage_percentage"`

	// TotalStrategyPoints is how many points the strategy produced.
	TotalStrategyPoints int `json:"total_strategy_points"`

	// ValidStrategyPoints is how many points landed on a die.
	ValidStrategyPoints int `json:"valid_strategy_points"`

	// Recommendations are advisory hints derived from the scores.
	Recommendations []string `json:"recommendations,omitempty"`
}

// NewResult creates an empty, not-yet-validated result.
func NewResult(schematicID, strategyID string) *Result {
	return &Result{
		ValidationID: uuid.NewString(),
		SchematicID:  schematicID,
		StrategyID:   strategyID,
		ValidatedAt:  time.Now().UTC(),
		Status:       StatusNotValidated,
	}
}

// AddConflict appends a per-point conflict.
func (r *Result) AddConflict(c Conflict) {
	r.Conflicts = append(r.Conflicts, c)
}

// AddWarning appends a run-level warning.
func (r *Result) AddWarning(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// HasErrors reports whether any conflict is error severity.
func (r *Result) HasErrors() bool {
	for _, c := range r.Conflicts {
		if c.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any run-level warning or warning-severity
// conflict exists.
func (r *Result) HasWarnings() bool {
	if len(r.Warnings) > 0 {
		return true
	}
	for _, c := range r.Conflicts {
		if c.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// IsValid reports whether the run passed cleanly.
func (r *Result) IsValid() bool {
	return r.Status == StatusPass && !r.HasErrors()
}

// ErrorCount returns the number of error-severity conflicts.
func (r *Result) ErrorCount() int {
	n := 0
	for _, c := range r.Conflicts {
		if c.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns run-level warnings plus warning-severity
// conflicts.
func (r *Result) WarningCount() int {
	n := len(r.Warnings)
	for _, c := range r.Conflicts {
		if c.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// ScoreAlignment computes and stores the alignment score: the valid
// fraction minus 0.1 per error and 0.05 per warning, clamped to zero
// and rounded to three decimals. Zero points scores zero.
func (r *Result) ScoreAlignment() float64 {
	if r.TotalStrategyPoints == 0 {
		r.AlignmentScore = 0
		return 0
	}

	base := float64(r.ValidStrategyPoints) / float64(r.TotalStrategyPoints)
	penalty := 0.1*float64(r.ErrorCount()) + 0.05*float64(r.WarningCount())

	score := math.Max(0, base-penalty)
	r.AlignmentScore = math.Round(score*1000) / 1000
	return r.AlignmentScore
}

// Summary is the condensed view of a result for listings and logs.
type Summary struct {
	ValidationID       string    `json:"validation_id"`
	SchematicID        string    `json:"schematic_id,omitempty"`
	StrategyID         string    `json:"strategy_id,omitempty"`
	ValidatedAt        time.Time `json:"validation_date"`
	Status             Status    `json:"validation_status"`
	AlignmentScore     float64   `json:"alignment_score"`
	CoveragePercentage float64   `json:"coverage_percentage"`
	TotalPoints        int       `json:"total_points"`
	ValidPoints        int       `json:"valid_points"`
	ErrorCount         int       `json:"error_count"`
	WarningCount       int       `json:"warning_count"`
	IsValid            bool      `json:"is_valid"`
	Recommendations    []string  `json:"recommendations,omitempty"`
}

// Summary condenses the result.
func (r *Result) Summary() Summary {
	return Summary{
		ValidationID:       r.ValidationID,
		SchematicID:        r.SchematicID,
		StrategyID:         r.StrategyID,
		ValidatedAt:        r.ValidatedAt,
		Status:             r.Status,
		AlignmentScore:     r.AlignmentScore,
		CoveragePercentage: r.CoveragePercentage,
		TotalPoints:        r.TotalStrategyPoints,
		ValidPoints:        r.ValidStrategyPoints,
		ErrorCount:         r.ErrorCount(),
		WarningCount:       r.WarningCount(),
		IsValid:            r.IsValid(),
		Recommendations:    r.Recommendations,
	}
}
