package schematic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResult(t *testing.T) {
	r := NewResult("sch-1", "strat-1")

	assert.NotEmpty(t, r.ValidationID)
	assert.Equal(t, "sch-1", r.SchematicID)
	assert.Equal(t, "strat-1", r.StrategyID)
	assert.Equal(t, StatusNotValidated, r.Status)
	assert.False(t, r.ValidatedAt.IsZero())
	assert.False(t, r.IsValid(), "not-yet-validated is not valid")
}

func TestResult_HasErrorsHasWarnings(t *testing.T) {
	r := NewResult("", "")
	assert.False(t, r.HasErrors())
	assert.False(t, r.HasWarnings())

	r.AddConflict(Conflict{Type: ConflictUnavailableDie, Severity: SeverityWarning})
	assert.False(t, r.HasErrors())
	assert.True(t, r.HasWarnings())

	r.AddConflict(Conflict{Type: ConflictOutOfBounds, Severity: SeverityError})
	assert.True(t, r.HasErrors())

	r2 := NewResult("", "")
	r2.AddWarning(Warning{Type: WarningLowCoverage})
	assert.False(t, r2.HasErrors())
	assert.True(t, r2.HasWarnings(), "standalone warnings count")
}

func TestResult_ScoreAlignment(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		valid     int
		errors    int
		conflicts int // warning-severity conflicts
		warnings  int // standalone warnings
		want      float64
	}{
		{"no points", 0, 0, 0, 0, 0, 0},
		{"perfect", 10, 10, 0, 0, 0, 1.0},
		{"one error", 10, 9, 1, 0, 0, 0.8},
		{"one warning conflict", 10, 10, 0, 1, 0, 0.95},
		{"standalone warning", 10, 10, 0, 0, 1, 0.95},
		{"mixed thirds", 3, 2, 1, 1, 1, 0.467},
		{"clamped at zero", 4, 1, 5, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResult("", "")
			r.TotalStrategyPoints = tt.total
			r.ValidStrategyPoints = tt.valid
			for i := 0; i < tt.errors; i++ {
				r.AddConflict(Conflict{Severity: SeverityError})
			}
			for i := 0; i < tt.conflicts; i++ {
				r.AddConflict(Conflict{Severity: SeverityWarning})
			}
			for i := 0; i < tt.warnings; i++ {
				r.AddWarning(Warning{Type: WarningLowCoverage})
			}

			got := r.ScoreAlignment()
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Equal(t, got, r.AlignmentScore, "score is stored")
		})
	}
}

func TestResult_Counts(t *testing.T) {
	r := NewResult("", "")
	r.AddConflict(Conflict{Severity: SeverityError})
	r.AddConflict(Conflict{Severity: SeverityError})
	r.AddConflict(Conflict{Severity: SeverityWarning})
	r.AddWarning(Warning{Type: WarningLowCoverage})

	assert.Equal(t, 2, r.ErrorCount())
	assert.Equal(t, 2, r.WarningCount(), "warning conflicts plus standalone warnings")
}

func TestResult_Summary(t *testing.T) {
	r := NewResult("sch-9", "strat-9")
	r.Status = StatusWarning
	r.TotalStrategyPoints = 5
	r.ValidStrategyPoints = 5
	r.CoveragePercentage = 100
	r.AddConflict(Conflict{Type: ConflictUnavailableDie, Severity: SeverityWarning})
	r.ScoreAlignment()
	r.Recommendations = []string{"hint"}

	s := r.Summary()
	assert.Equal(t, r.ValidationID, s.ValidationID)
	assert.Equal(t, "sch-9", s.SchematicID)
	assert.Equal(t, StatusWarning, s.Status)
	assert.Equal(t, 5, s.TotalPoints)
	assert.Equal(t, 5, s.ValidPoints)
	assert.Zero(t, s.ErrorCount)
	assert.Equal(t, 1, s.WarningCount)
	assert.False(t, s.IsValid)
	assert.InDelta(t, 0.95, s.AlignmentScore, 1e-9)
	require.Len(t, s.Recommendations, 1)
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPass.IsValid())
	assert.True(t, StatusNotValidated.IsValid())
	assert.False(t, Status("maybe").IsValid())
}
