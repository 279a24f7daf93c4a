package schematic

import (
	"fmt"
	"log/slog"

	"github.com/c360studio/semwafer/metrics"
	"github.com/c360studio/semwafer/rule"
	"github.com/c360studio/semwafer/strategy"
	"github.com/c360studio/semwafer/wafer"
)

// Policy thresholds. Coverage below warnCoveragePct raises a warning;
// the rest only shape recommendations.
const (
	warnCoveragePct      = 90.0
	recommendCoveragePct = 80.0
	recommendScore       = 0.7
	recommendWarnings    = 5
)

// Validator cross-checks strategy sampling points against a die layout.
// Stateless; safe for concurrent use.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a validator. A nil logger falls back to
// slog.Default().
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate classifies every sampling point against the die boundaries
// and returns the scored report. A point outside every boundary is an
// out_of_bounds error; a point on an unavailable die is an
// unavailable_die warning but still counts as valid for coverage; a
// point on an available die is valid. Boundary lookup is first match
// wins, so overlapping rectangles resolve in list order.
func (v *Validator) Validate(points []wafer.Die, boundaries []Boundary) *Result {
	res := NewResult("", "")
	res.TotalStrategyPoints = len(points)

	valid := 0
	for _, p := range points {
		b := firstContaining(boundaries, float64(p.X), float64(p.Y))
		switch {
		case b == nil:
			res.AddConflict(Conflict{
				Type:           ConflictOutOfBounds,
				StrategyPoint:  p.Coord(),
				Description:    fmt.Sprintf("Strategy point (%d, %d) is outside all die boundaries", p.X, p.Y),
				Severity:       SeverityError,
				Recommendation: "Adjust strategy rules to stay within die boundaries",
			})
		case !b.Available:
			res.AddConflict(Conflict{
				Type:           ConflictUnavailableDie,
				StrategyPoint:  p.Coord(),
				Description:    fmt.Sprintf("Strategy point (%d, %d) targets unavailable die %s", p.X, p.Y, b.DieID),
				Severity:       SeverityWarning,
				Recommendation: "Consider marking die as available or adjust strategy",
				AffectedDieID:  b.DieID,
			})
			// Reachable, just flagged.
			valid++
		default:
			valid++
		}
	}

	res.ValidStrategyPoints = valid
	if res.TotalStrategyPoints > 0 {
		res.CoveragePercentage = float64(valid) / float64(res.TotalStrategyPoints) * 100
		if res.CoveragePercentage < warnCoveragePct {
			res.AddWarning(Warning{
				Type:           WarningLowCoverage,
				Description:    fmt.Sprintf("Strategy coverage is only %.1f%%", res.CoveragePercentage),
				Recommendation: "Consider adjusting strategy rules to improve coverage",
			})
		}
	}

	switch {
	case res.HasErrors():
		res.Status = StatusFail
	case res.HasWarnings():
		res.Status = StatusWarning
	default:
		res.Status = StatusPass
	}

	res.ScoreAlignment()
	res.Recommendations = recommendations(res)

	metrics.ValidationsTotal.WithLabelValues(res.Status.String()).Inc()
	metrics.AlignmentScore.Observe(res.AlignmentScore)
	v.logger.Info("validation completed",
		"status", res.Status,
		"score", res.AlignmentScore,
		"points", res.TotalStrategyPoints,
		"conflicts", len(res.Conflicts))

	return res
}

// ValidateDefinition runs the full pipeline: compile the definition,
// execute it against the schematic's wafer map, and validate the
// resulting points against the schematic's boundaries. Failures before
// classification are reported inside the result as a single
// validation_error conflict with status fail, so callers always get a
// structured report, never an error.
func (v *Validator) ValidateDefinition(compiler *strategy.Compiler, def *strategy.Definition, sch *Schematic) *Result {
	strategyID := ""
	if def != nil {
		strategyID = def.ID
	}

	compiled, err := compiler.Compile(def)
	if err != nil {
		v.logger.Error("validation aborted",
			"schematic_id", sch.ID,
			"strategy_id", strategyID,
			"error", err)
		res := NewResult(sch.ID, strategyID)
		res.Status = StatusFail
		res.AddConflict(Conflict{
			Type:        ConflictValidationError,
			Description: fmt.Sprintf("Validation failed with error: %v", err),
			Severity:    SeverityError,
		})
		metrics.ValidationsTotal.WithLabelValues(res.Status.String()).Inc()
		return res
	}

	points := compiled.Execute(rule.NewExecutionContext(sch.WaferMap()))
	res := v.Validate(points, sch.Boundaries)
	res.SchematicID = sch.ID
	res.StrategyID = strategyID
	return res
}

// recommendations derives the advisory hints. Order is stable; none of
// these feed back into scoring.
func recommendations(res *Result) []string {
	var out []string
	if res.AlignmentScore < recommendScore {
		out = append(out, "Consider adjusting strategy rules to better align with die layout")
	}
	if res.CoveragePercentage < recommendCoveragePct {
		out = append(out, "Increase sampling density to improve wafer coverage")
	}
	if n := res.ErrorCount(); n > 0 {
		out = append(out, fmt.Sprintf("Fix %d critical errors before deploying strategy", n))
	}
	if len(res.Warnings) > recommendWarnings {
		out = append(out, "Review and address validation warnings for optimal performance")
	}
	return out
}
