package storage

import (
	"context"
	"fmt"
)

// Store persists submission records. Implementations are safe for
// concurrent use.
type Store interface {
	InsertSubmission(ctx context.Context, sub Submission) error
	RecentSubmissions(ctx context.Context, limit int) ([]Submission, error)
	Close() error
}

// Compile-time checks.
var (
	_ Store = (*DB)(nil)
	_ Store = (*SQLite)(nil)
	_ Store = Nop{}
)

// Open returns the Store for driver. An empty driver disables the
// submission log and returns Nop.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "":
		return Nop{}, nil
	case "sqlite":
		return OpenSQLite(ctx, dsn)
	case "postgres":
		if err := RunMigrations(dsn); err != nil {
			return nil, err
		}
		return New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}

// Nop discards submissions.
type Nop struct{}

func (Nop) InsertSubmission(context.Context, Submission) error { return nil }

func (Nop) RecentSubmissions(context.Context, int) ([]Submission, error) { return nil, nil }

func (Nop) Close() error { return nil }

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}
