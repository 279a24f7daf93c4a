package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/c360studio/semwafer/schematic"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS validations (
	validation_id        TEXT PRIMARY KEY,
	schematic_id         TEXT NOT NULL,
	strategy_id          TEXT NOT NULL,
	status               TEXT NOT NULL,
	alignment_score      REAL NOT NULL,
	coverage_pct         REAL NOT NULL,
	total_points         INTEGER NOT NULL,
	valid_points         INTEGER NOT NULL,
	conflicts_json       TEXT NOT NULL,
	warnings_json        TEXT NOT NULL,
	recommendations_json TEXT NOT NULL,
	validated_by         TEXT NOT NULL DEFAULT '',
	validated_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_validations_strategy
ON validations(strategy_id);

CREATE INDEX IF NOT EXISTS idx_validations_schematic
ON validations(schematic_id);

CREATE TABLE IF NOT EXISTS schematics (
	schematic_id   TEXT PRIMARY KEY,
	filename       TEXT NOT NULL,
	format_type    TEXT NOT NULL,
	wafer_size     TEXT NOT NULL DEFAULT '',
	die_count      INTEGER NOT NULL,
	available_dies INTEGER NOT NULL,
	uploaded_at    TEXT NOT NULL
);
`

// HistoryStore keeps validation reports and schematic summaries in
// SQLite so past runs stay queryable across restarts.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens (or creates) the history database and runs
// migrations. Use ":memory:" for an ephemeral store.
func NewHistoryStore(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// Close closes the underlying database connection.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// RecordValidation persists one validation report. The conflict and
// warning lists are stored as JSON alongside the summary columns.
func (h *HistoryStore) RecordValidation(ctx context.Context, res *schematic.Result, validatedBy string) error {
	conflicts, err := json.Marshal(res.Conflicts)
	if err != nil {
		return fmt.Errorf("marshal conflicts: %w", err)
	}
	warnings, err := json.Marshal(res.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	recommendations, err := json.Marshal(res.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO validations
		(validation_id, schematic_id, strategy_id, status, alignment_score,
		 coverage_pct, total_points, valid_points, conflicts_json,
		 warnings_json, recommendations_json, validated_by, validated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ValidationID,
		res.SchematicID,
		res.StrategyID,
		res.Status.String(),
		res.AlignmentScore,
		res.CoveragePercentage,
		res.TotalStrategyPoints,
		res.ValidStrategyPoints,
		string(conflicts),
		string(warnings),
		string(recommendations),
		validatedBy,
		res.ValidatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record validation: %w", err)
	}
	return nil
}

// GetValidation loads one validation report by id.
func (h *HistoryStore) GetValidation(ctx context.Context, validationID string) (*schematic.Result, error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT validation_id, schematic_id, strategy_id, status,
		       alignment_score, coverage_pct, total_points, valid_points,
		       conflicts_json, warnings_json, recommendations_json,
		       validated_at
		FROM validations WHERE validation_id = ?`, validationID)

	res, err := scanValidation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get validation: %w", err)
	}
	return res, nil
}

// ValidationFilter narrows ListValidations. Zero-value fields match
// everything.
type ValidationFilter struct {
	// SchematicID matches runs against this schematic.
	SchematicID string

	// StrategyID matches runs of this strategy.
	StrategyID string

	// Limit caps the number of rows returned; 0 means no cap.
	Limit int
}

// ListValidations returns validation summaries, newest first.
func (h *HistoryStore) ListValidations(ctx context.Context, filter ValidationFilter) ([]schematic.Summary, error) {
	query := `
		SELECT validation_id, schematic_id, strategy_id, status,
		       alignment_score, coverage_pct, total_points, valid_points,
		       conflicts_json, warnings_json, recommendations_json,
		       validated_at
		FROM validations WHERE 1=1`
	var args []any
	if filter.SchematicID != "" {
		query += " AND schematic_id = ?"
		args = append(args, filter.SchematicID)
	}
	if filter.StrategyID != "" {
		query += " AND strategy_id = ?"
		args = append(args, filter.StrategyID)
	}
	query += " ORDER BY validated_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list validations: %w", err)
	}
	defer rows.Close()

	var out []schematic.Summary
	for rows.Next() {
		res, err := scanValidation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan validation: %w", err)
		}
		out = append(out, res.Summary())
	}
	return out, rows.Err()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanValidation(s scanner) (*schematic.Result, error) {
	var res schematic.Result
	var status, conflicts, warnings, recommendations, validatedAt string

	err := s.Scan(
		&res.ValidationID,
		&res.SchematicID,
		&res.StrategyID,
		&status,
		&res.AlignmentScore,
		&res.CoveragePercentage,
		&res.TotalStrategyPoints,
		&res.ValidStrategyPoints,
		&conflicts,
		&warnings,
		&recommendations,
		&validatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.Status = schematic.Status(status)
	if err := json.Unmarshal([]byte(conflicts), &res.Conflicts); err != nil {
		return nil, fmt.Errorf("unmarshal conflicts: %w", err)
	}
	if err := json.Unmarshal([]byte(warnings), &res.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshal warnings: %w", err)
	}
	if err := json.Unmarshal([]byte(recommendations), &res.Recommendations); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	if res.ValidatedAt, err = time.Parse(time.RFC3339Nano, validatedAt); err != nil {
		return nil, fmt.Errorf("parse validated_at: %w", err)
	}
	return &res, nil
}

// SchematicRecord is one row of the schematic summary table.
type SchematicRecord struct {
	ID            string    `json:"schematic_id"`
	Filename      string    `json:"filename"`
	Format        string    `json:"format_type"`
	WaferSize     string    `json:"wafer_size,omitempty"`
	DieCount      int       `json:"die_count"`
	AvailableDies int       `json:"available_dies"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// RecordSchematic upserts the schematic's summary row.
func (h *HistoryStore) RecordSchematic(ctx context.Context, s *schematic.Schematic) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO schematics
		(schematic_id, filename, format_type, wafer_size, die_count,
		 available_dies, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.Filename,
		s.Format.String(),
		s.WaferSize,
		s.DieCount(),
		s.AvailableDieCount(),
		s.UploadedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record schematic: %w", err)
	}
	return nil
}

// ListSchematics returns all recorded schematic summaries, newest first.
func (h *HistoryStore) ListSchematics(ctx context.Context) ([]SchematicRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT schematic_id, filename, format_type, wafer_size, die_count,
		       available_dies, uploaded_at
		FROM schematics ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list schematics: %w", err)
	}
	defer rows.Close()

	var out []SchematicRecord
	for rows.Next() {
		var rec SchematicRecord
		var uploadedAt string
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Format, &rec.WaferSize,
			&rec.DieCount, &rec.AvailableDies, &uploadedAt); err != nil {
			return nil, fmt.Errorf("scan schematic: %w", err)
		}
		if rec.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt); err != nil {
			return nil, fmt.Errorf("parse uploaded_at: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
