// Package history keeps a SQLite record of every generated report.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/glucosereport/internal/types"
	"github.com/chrissnell/glucosereport/pkg/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationTable tracks the applied history schema version
const MigrationTable = "history_migrations"

const dateLayout = "2006-01-02"

// Store is a SQLite-backed report history
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Entry is one recorded report
type Entry struct {
	ID          string            `json:"id"`
	Source      string            `json:"source"`
	Image       string            `json:"image"`
	GeneratedAt time.Time         `json:"generated_at"`
	WindowStart time.Time         `json:"window_start"`
	WindowEnd   time.Time         `json:"window_end"`
	Readings    int               `json:"readings"`
	Skipped     int               `json:"skipped"`
	WeeklyAvg   float64           `json:"weekly_average"`
	StdDev      float64           `json:"std_dev"`
	InRange     types.TimeInRange `json:"time_in_range"`
}

// Open opens or creates the history database at path and brings its schema up to date
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := OpenDB(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := NewMigrator(db).MigrateUp(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// OpenDB opens or creates the history database at path without touching its
// schema. Schema maintenance goes through NewMigrator.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// A single connection keeps pragmas and the schema on one handle
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewMigrator returns a migrator for the history schema on db
func NewMigrator(db *sql.DB) *migrate.Migrator {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return migrate.NewMigrator(db, migrate.NewFSProvider(sub, MigrationTable))
}

// DB returns the underlying database handle
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a summary and its daily rows in a single transaction and
// returns the new report id.
func (s *Store) Record(ctx context.Context, sum *types.Summary, image string) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (id, source, image, generated_at, window_start, window_end,
		                     readings, skipped, weekly_average, std_dev,
		                     tir_low, tir_target, tir_high)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sum.Source, image,
		s.now().UTC().Format(time.RFC3339Nano),
		sum.WindowStart.Format(time.RFC3339), sum.WindowEnd.Format(time.RFC3339),
		sum.Readings, sum.Skipped, sum.WeeklyAvg, sum.StdDev,
		sum.InRange.Low, sum.InRange.Target, sum.InRange.High,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_summaries (report_id, date, min, max, mean, count)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare daily insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range sum.Daily {
		if _, err := stmt.ExecContext(ctx, id, d.Date.Format(dateLayout), d.Min, d.Max, d.Mean, d.Count); err != nil {
			return "", fmt.Errorf("failed to insert daily summary for %s: %w", d.Date.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit report: %w", err)
	}
	return id, nil
}

// Recent returns up to limit reports, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, image, generated_at, window_start, window_end,
		       readings, skipped, weekly_average, std_dev,
		       tir_low, tir_target, tir_high
		FROM reports
		ORDER BY generated_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var generated, start, end string
		err := rows.Scan(&e.ID, &e.Source, &e.Image, &generated, &start, &end,
			&e.Readings, &e.Skipped, &e.WeeklyAvg, &e.StdDev,
			&e.InRange.Low, &e.InRange.Target, &e.InRange.High)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if e.GeneratedAt, err = time.Parse(time.RFC3339Nano, generated); err != nil {
			return nil, fmt.Errorf("report %s: bad generated_at: %w", e.ID, err)
		}
		if e.WindowStart, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("report %s: bad window_start: %w", e.ID, err)
		}
		if e.WindowEnd, err = time.Parse(time.RFC3339, end); err != nil {
			return nil, fmt.Errorf("report %s: bad window_end: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Daily returns the daily summaries recorded for a report, oldest day first
func (s *Store) Daily(ctx context.Context, reportID string) ([]types.DailySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, min, max, mean, count
		FROM daily_summaries
		WHERE report_id = ?
		ORDER BY date`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summaries: %w", err)
	}
	defer rows.Close()

	var days []types.DailySummary
	for rows.Next() {
		var d types.DailySummary
		var date string
		if err := rows.Scan(&date, &d.Min, &d.Max, &d.Mean, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily summary: %w", err)
		}
		if d.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("bad date %q: %w", date, err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
