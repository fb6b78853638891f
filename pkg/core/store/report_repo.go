package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"consensus_valuation/pkg/core/consensus"
)

// ReportRecord is one persisted analysis run: the numeric analysis as a
// JSONB document plus the rendered markdown.
type ReportRecord struct {
	ID            uuid.UUID           `json:"id"`
	Ticker        string              `json:"ticker"`
	AsOf          time.Time           `json:"as_of"`
	OverallSignal string              `json:"overall_signal"`
	Analysis      *consensus.Analysis `json:"analysis"`
	Markdown      string              `json:"markdown"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ReportRepository stores and retrieves analysis runs. One record per
// (ticker, data vintage); re-running the same day replaces the record.
type ReportRepository interface {
	Save(ctx context.Context, rec *ReportRecord) error
	LatestByTicker(ctx context.Context, ticker string) (*ReportRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*ReportRecord, error)
}

// PgReportRepository persists records in Postgres.
//
// Schema assumption (managed outside this package):
//
//	CREATE TABLE IF NOT EXISTS valuation_reports (
//	  id UUID PRIMARY KEY,
//	  ticker TEXT NOT NULL,
//	  as_of DATE NOT NULL,
//	  overall_signal TEXT NOT NULL,
//	  analysis_json JSONB NOT NULL,
//	  report_markdown TEXT NOT NULL,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  UNIQUE (ticker, as_of)
//	);
type PgReportRepository struct{}

func NewPgReportRepository() *PgReportRepository {
	return &PgReportRepository{}
}

var _ ReportRepository = (*PgReportRepository)(nil)

func (r *PgReportRepository) Save(ctx context.Context, rec *ReportRecord) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Ticker = strings.ToUpper(strings.TrimSpace(rec.Ticker))

	jsonData, err := json.Marshal(rec.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO valuation_reports (id, ticker, as_of, overall_signal, analysis_json, report_markdown, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, as_of)
		DO UPDATE SET
			overall_signal = EXCLUDED.overall_signal,
			analysis_json = EXCLUDED.analysis_json,
			report_markdown = EXCLUDED.report_markdown,
			created_at = EXCLUDED.created_at;
	`

	_, err = pool.Exec(ctx, query,
		rec.ID, rec.Ticker, rec.AsOf, rec.OverallSignal, jsonData, rec.Markdown, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save report for %s: %w", rec.Ticker, err)
	}
	return nil
}

func (r *PgReportRepository) LatestByTicker(ctx context.Context, ticker string) (*ReportRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT id, ticker, as_of, overall_signal, analysis_json, report_markdown, created_at
		FROM valuation_reports
		WHERE ticker = $1
		ORDER BY as_of DESC
		LIMIT 1`

	rec, err := scanRecord(pool.QueryRow(ctx, query, strings.ToUpper(strings.TrimSpace(ticker))))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no report found for ticker %s", ticker)
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return rec, nil
}

func (r *PgReportRepository) ListRecent(ctx context.Context, limit int) ([]*ReportRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, ticker, as_of, overall_signal, analysis_json, report_markdown, created_at
		FROM valuation_reports
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var records []*ReportRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read report rows: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*ReportRecord, error) {
	rec := &ReportRecord{}
	var jsonData []byte
	if err := row.Scan(&rec.ID, &rec.Ticker, &rec.AsOf, &rec.OverallSignal, &jsonData, &rec.Markdown, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(jsonData, &rec.Analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return rec, nil
}
