package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteTime keeps received_at sortable as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

// SQLite stores submissions in a local SQLite file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating storage dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS submissions (
		id              TEXT PRIMARY KEY,
		received_at     TEXT NOT NULL,
		source          TEXT NOT NULL,
		title           TEXT NOT NULL,
		session_date    TEXT NOT NULL,
		session_type    TEXT NOT NULL,
		status          TEXT NOT NULL,
		session_page_id TEXT,
		sets_created    INTEGER NOT NULL DEFAULT 0,
		duration_ms     INTEGER NOT NULL DEFAULT 0,
		error_message   TEXT
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating submissions table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// InsertSubmission stores one submission record.
func (s *SQLite) InsertSubmission(ctx context.Context, sub Submission) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, received_at, source, title, session_date, session_type,
		 status, session_page_id, sets_created, duration_ms, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID.String(), sub.ReceivedAt.UTC().Format(sqliteTime), sub.Source, sub.Title, sub.Date, sub.Type,
		sub.Status, sub.SessionPageID, sub.SetsCreated, sub.DurationMs, sub.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

// RecentSubmissions returns the newest submissions first.
func (s *SQLite) RecentSubmissions(ctx context.Context, limit int) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, received_at, source, title, session_date, session_type,
		 status, session_page_id, sets_created, duration_ms, error_message
		 FROM submissions
		 ORDER BY received_at DESC
		 LIMIT ?`,
		clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying submissions: %w", err)
	}
	defer rows.Close()

	var result []Submission
	for rows.Next() {
		var (
			sub      Submission
			received string
		)
		if err := rows.Scan(&sub.ID, &received, &sub.Source, &sub.Title, &sub.Date, &sub.Type,
			&sub.Status, &sub.SessionPageID, &sub.SetsCreated, &sub.DurationMs, &sub.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		if sub.ReceivedAt, err = time.Parse(sqliteTime, received); err != nil {
			return nil, fmt.Errorf("parsing received_at %q: %w", received, err)
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
