// Package store persists the user directory and the expense ledger as two
// JSON blobs under fixed keys in a local SQLite key-value table.
//
// Loads are fail-soft: a missing or unparsable blob is "no data yet", not
// an error. Saves are whole-collection overwrites; callers are expected to
// reload before mutating.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gastos/internal/core"

	_ "modernc.org/sqlite"
)

const (
	usersKey  = "usuariosFamilia"
	ledgerKey = "gastosFamilia"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadUsers returns the full user directory, empty when nothing was saved
// yet or the stored blob does not parse.
func (s *Store) LoadUsers(ctx context.Context) ([]core.User, error) {
	raw, ok, err := s.get(ctx, usersKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []core.User{}, nil
	}

	var users []core.User
	if err := json.Unmarshal(raw, &users); err != nil {
		slog.WarnContext(ctx, "User directory blob unparsable, treating as empty",
			"key", usersKey, "error", err)
		return []core.User{}, nil
	}
	return users, nil
}

// SaveUsers overwrites the whole user directory.
func (s *Store) SaveUsers(ctx context.Context, users []core.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return s.put(ctx, usersKey, raw)
}

// LoadLedger returns the owner→expenses mapping, empty when nothing was
// saved yet or the stored blob does not parse.
func (s *Store) LoadLedger(ctx context.Context) (core.Ledger, error) {
	raw, ok, err := s.get(ctx, ledgerKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return core.Ledger{}, nil
	}

	var ledger core.Ledger
	if err := json.Unmarshal(raw, &ledger); err != nil {
		slog.WarnContext(ctx, "Ledger blob unparsable, treating as empty",
			"key", ledgerKey, "error", err)
		return core.Ledger{}, nil
	}
	if ledger == nil {
		ledger = core.Ledger{}
	}
	return ledger, nil
}

// SaveLedger overwrites the whole ledger.
func (s *Store) SaveLedger(ctx context.Context, ledger core.Ledger) error {
	raw, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	return s.put(ctx, ledgerKey, raw)
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	return nil
}
