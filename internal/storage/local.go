package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// LocalStore is the offline backup mirror: a key-to-string table in a SQLite
// file. It is always written on save so the last known document survives both
// remote backends being unreachable.
type LocalStore struct {
	db *sql.DB
}

// NewLocalStore opens (or creates) the backup database at path.
func NewLocalStore(path string) (*LocalStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup database: %w", err)
	}

	// A single writer keeps SQLite happy.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS backup_store (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create backup table: %w", err)
	}

	return &LocalStore{db: db}, nil
}

// Get returns the value for key and whether it was present.
func (s *LocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM backup_store WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read backup: %w", err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *LocalStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backup_store (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM backup_store WHERE key = ?`, key,
	); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

// Close closes the backup database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}
