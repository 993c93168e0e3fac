package clientstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gymhub/internal/adapters/storage"
)

// SQLiteStore implements Store using the client_state table.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new client state store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves the record stored under key.
// PRE: key is non-empty
// POST: Returns the value or ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM client_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client state %s: %w", key, err)
	}
	return value, nil
}

// Put writes value under key, replacing any previous record.
// POST: The record is persisted (last write wins)
func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put client state %s: %w", key, err)
	}
	return nil
}

// Delete removes the record under key. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM client_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete client state %s: %w", key, err)
	}
	return nil
}
