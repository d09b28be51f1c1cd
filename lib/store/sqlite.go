// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SQLiteConfig holds the parameters for opening a SQLite-backed store.
type SQLiteConfig struct {
	// Path is the database file. The parent directory must exist; the
	// file is created if missing. ":memory:" works only with PoolSize
	// 1, since each in-memory connection is a separate database.
	Path string

	// PoolSize is the number of pooled connections. If zero or
	// negative, defaults to max(runtime.NumCPU(), 4). SQLite
	// serializes writers regardless; extra connections serve
	// concurrent views.
	PoolSize int

	// Logger receives open/close messages. Nil discards.
	Logger *slog.Logger
}

const recordsSchema = `
CREATE TABLE IF NOT EXISTS records (
	key   TEXT PRIMARY KEY NOT NULL,
	value BLOB NOT NULL
) WITHOUT ROWID;
`

// connectionPragmas are applied to every pooled connection before use.
var connectionPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=OFF",
	"PRAGMA cache_size=-8192",
	"PRAGMA temp_store=MEMORY",
}

// SQLite is a Store backed by one SQLite table.
type SQLite struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// OpenSQLite opens (creating if needed) the database at cfg.Path and
// ensures the records table exists on every connection.
func OpenSQLite(cfg SQLiteConfig) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store: sqlite path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = max(runtime.NumCPU(), 4)
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", cfg.Path, err)
	}

	logger.Info("sqlite store opened",
		"path", cfg.Path,
		"pool_size", poolSize,
	)

	return &SQLite{pool: pool, logger: logger, path: cfg.Path}, nil
}

func prepareConnection(conn *sqlite.Conn) error {
	for _, pragma := range connectionPragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, recordsSchema, nil); err != nil {
		return fmt.Errorf("store: creating schema: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	defer s.pool.Put(conn)

	var value []byte
	found := false
	err = sqlitex.Execute(conn, "SELECT value FROM records WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *SQLite) List(ctx context.Context, prefix string) ([]Entry, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", prefix, err)
	}
	defer s.pool.Put(conn)

	var entries []Entry
	err = sqlitex.Execute(conn,
		"SELECT key, value FROM records WHERE substr(key, 1, ?2) = ?1 ORDER BY key",
		&sqlitex.ExecOptions{
			Args: []any{prefix, len(prefix)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				value := make([]byte, stmt.ColumnLen(1))
				stmt.ColumnBytes(1, value)
				entries = append(entries, Entry{Key: stmt.ColumnText(0), Value: value})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", prefix, err)
	}
	return entries, nil
}

func (s *SQLite) Apply(ctx context.Context, writes []Write) (err error) {
	if len(writes) == 0 {
		return nil
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("store: apply: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	for _, write := range writes {
		if write.Delete {
			err = sqlitex.Execute(conn, "DELETE FROM records WHERE key = ?", &sqlitex.ExecOptions{
				Args: []any{write.Key},
			})
		} else {
			err = sqlitex.Execute(conn,
				"INSERT INTO records (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
				&sqlitex.ExecOptions{
					Args: []any{write.Key, write.Value},
				})
		}
		if err != nil {
			return fmt.Errorf("store: write %s: %w", write.Key, err)
		}
	}
	return nil
}

// Close closes every pooled connection, blocking until borrowed
// connections are returned.
func (s *SQLite) Close() error {
	if err := s.pool.Close(); err != nil {
		s.logger.Error("sqlite store close error", "path", s.path, "error", err)
		return fmt.Errorf("store: closing %s: %w", s.path, err)
	}
	s.logger.Info("sqlite store closed", "path", s.path)
	return nil
}
