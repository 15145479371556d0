package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// reportsSchema creates the reports table. Tags and attachments are stored
// as JSONB to keep the row shape aligned with the file store's records.
const reportsSchema = `
CREATE TABLE IF NOT EXISTS research_reports (
	report_id       TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	report_date     TIMESTAMPTZ NOT NULL,
	author          TEXT NOT NULL DEFAULT '',
	report_type     TEXT NOT NULL DEFAULT '',
	source_url      TEXT NOT NULL DEFAULT '',
	attachment_urls JSONB NOT NULL DEFAULT '[]',
	normalized_text TEXT NOT NULL DEFAULT '',
	tags            JSONB NOT NULL DEFAULT '[]',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore implements Store on a PostgreSQL table. Identity-keyed
// upserts make concurrent appends from the refresher and foreground runs
// safe without additional locking.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, reportsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure reports schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// AppendNew inserts reports, ignoring ids already present, and returns the
// number inserted.
func (s *PostgresStore) AppendNew(ctx context.Context, reports []*types.ResearchReport) (int, error) {
	inserted := 0
	for _, r := range reports {
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO research_reports
			   (report_id, title, report_date, author, report_type, source_url, attachment_urls, normalized_text, tags)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (report_id) DO NOTHING`,
			r.ReportID, r.Title, r.Date, r.Author, r.ReportType, r.SourceURL,
			jsonStrings(r.AttachmentURLs), r.NormalizedText, jsonStrings(r.Tags),
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert report %s: %w", r.ReportID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// LoadAll returns every stored report, newest first.
func (s *PostgresStore) LoadAll(ctx context.Context) ([]*types.ResearchReport, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT report_id, title, report_date, author, report_type, source_url, attachment_urls, normalized_text, tags
		 FROM research_reports
		 ORDER BY report_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	defer rows.Close()

	var reports []*types.ResearchReport
	for rows.Next() {
		var r types.ResearchReport
		if err := rows.Scan(&r.ReportID, &r.Title, &r.Date, &r.Author, &r.ReportType,
			&r.SourceURL, &r.AttachmentURLs, &r.NormalizedText, &r.Tags); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate report rows: %w", err)
	}
	return reports, nil
}

// jsonStrings never returns nil so JSONB columns always get arrays.
func jsonStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
