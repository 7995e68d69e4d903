package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a pgxpool.Pool and stores submissions in PostgreSQL.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// InsertSubmission stores one submission record.
func (db *DB) InsertSubmission(ctx context.Context, sub Submission) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO submissions (id, received_at, source, title, session_date, session_type,
		 status, session_page_id, sets_created, duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		sub.ID, sub.ReceivedAt, sub.Source, sub.Title, sub.Date, sub.Type,
		sub.Status, sub.SessionPageID, sub.SetsCreated, sub.DurationMs, sub.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

// RecentSubmissions returns the newest submissions first.
func (db *DB) RecentSubmissions(ctx context.Context, limit int) ([]Submission, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, received_at, source, title, session_date, session_type,
		 status, session_page_id, sets_created, duration_ms, error_message
		 FROM submissions
		 ORDER BY received_at DESC
		 LIMIT $1`,
		clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying submissions: %w", err)
	}
	defer rows.Close()

	var result []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.ReceivedAt, &s.Source, &s.Title, &s.Date, &s.Type,
			&s.Status, &s.SessionPageID, &s.SetsCreated, &s.DurationMs, &s.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
