package upload

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB tracks which sessions have been logged to avoid re-sending them.
// A session is identified by its file, its position in the file and the
// hash of its payload, so editing one entry re-sends only that entry.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS uploaded_sessions (
		path            TEXT NOT NULL,
		idx             INTEGER NOT NULL,
		hash            TEXT NOT NULL,
		session_page_id TEXT NOT NULL,
		uploaded_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (path, idx)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsUploaded checks if the entry at relPath/idx was logged with the same hash.
func (s *StateDB) IsUploaded(relPath string, idx int, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM uploaded_sessions WHERE path = ? AND idx = ? AND hash = ?`,
		relPath, idx, hash,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkUploaded records that an entry was logged as sessionPageID.
func (s *StateDB) MarkUploaded(relPath string, idx int, hash, sessionPageID string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO uploaded_sessions (path, idx, hash, session_page_id) VALUES (?, ?, ?, ?)`,
		relPath, idx, hash, sessionPageID,
	)
	return err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// hashPayload returns the hex SHA-256 of a payload.
func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
