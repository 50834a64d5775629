package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gbsl/edsync/internal/core/ports"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a ports.StateStore over an ItemTable key/value database,
// the layout editors use for installation-wide state.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (creating if needed) the state database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ItemTable (
		key TEXT UNIQUE ON CONFLICT REPLACE,
		value BLOB
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Get implements ports.StateStore
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM ItemTable WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(value), true, nil
}

// Set implements ports.StateStore
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `INSERT OR REPLACE INTO ItemTable (key, value) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, key, []byte(value)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ ports.StateStore = (*SQLiteStore)(nil)
