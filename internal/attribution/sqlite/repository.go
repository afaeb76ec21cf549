// Package sqlite persists the attribution store snapshot in a local
// SQLite database so enrichment survives process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/antonhoreis/analytics-dashboard/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS attribution_records (
	email      TEXT PRIMARY KEY,
	campaign   TEXT NOT NULL,
	source     TEXT NOT NULL,
	medium     TEXT NOT NULL,
	content    TEXT NOT NULL,
	term       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshot_meta (
	id                     INTEGER PRIMARY KEY CHECK (id = 1),
	last_refreshed_through TEXT NOT NULL
);
`

// Repository implements attribution.SnapshotRepository on SQLite.
type Repository struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (or creates) the snapshot database at path and applies the
// schema. Use ":memory:" in tests.
func Open(path string, log *zap.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply snapshot schema: %w", err)
	}

	log.Info("Attribution snapshot database opened", zap.String("path", path))
	return &Repository{db: db, log: log}, nil
}

// Load returns all persisted records and the freshness watermark. A fresh
// database yields no records and a zero watermark.
func (r *Repository) Load(ctx context.Context) ([]domain.AttributionRecord, time.Time, error) {
	var watermark time.Time
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT last_refreshed_through FROM snapshot_meta WHERE id = 1`).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		// Never seeded.
	case err != nil:
		return nil, time.Time{}, fmt.Errorf("load watermark: %w", err)
	default:
		watermark, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("parse watermark %q: %w", raw, err)
		}
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT email, campaign, source, medium, content, term, created_at
		 FROM attribution_records`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var records []domain.AttributionRecord
	for rows.Next() {
		var rec domain.AttributionRecord
		var createdAt string
		if err := rows.Scan(&rec.Email, &rec.Dimensions.Campaign,
			&rec.Dimensions.Source, &rec.Dimensions.Medium,
			&rec.Dimensions.Content, &rec.Dimensions.Term, &createdAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan record: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("iterate records: %w", err)
	}

	return records, watermark, nil
}

// Save replaces the persisted snapshot atomically.
func (r *Repository) Save(ctx context.Context, records []domain.AttributionRecord, watermark time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attribution_records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attribution_records
			 (email, campaign, source, medium, content, term, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.Email, rec.Dimensions.Campaign, rec.Dimensions.Source,
			rec.Dimensions.Medium, rec.Dimensions.Content, rec.Dimensions.Term,
			rec.CreatedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.Email, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, last_refreshed_through) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET last_refreshed_through = excluded.last_refreshed_through`,
		watermark.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save watermark: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}
