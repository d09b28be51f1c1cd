// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Write is one element of an atomic batch. A Write with Delete set
// removes Key and ignores Value.
type Write struct {
	Key    string
	Value  []byte
	Delete bool
}

// Entry is a key and its stored value, as returned by List.
type Entry struct {
	Key   string
	Value []byte
}

// Store is a durable key-value store with atomic batches. Implementations
// are safe for concurrent use.
type Store interface {
	// Get returns the value stored at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns every entry whose key starts with prefix, in
	// ascending key order.
	List(ctx context.Context, prefix string) ([]Entry, error)

	// Apply commits all writes or none of them. Later writes to the
	// same key win.
	Apply(ctx context.Context, writes []Write) error

	// Close releases the backend's resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config selects and configures a backend.
type Config struct {
	// Backend is BackendMemory or BackendSQLite.
	Backend string

	// Path is the SQLite database file. Required for BackendSQLite.
	Path string

	// PoolSize is the SQLite connection pool size. Zero picks a
	// default.
	PoolSize int

	// Logger receives backend lifecycle messages. Nil discards.
	Logger *slog.Logger
}

// Open constructs the backend named by cfg.Backend.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendSQLite:
		return OpenSQLite(SQLiteConfig{
			Path:     cfg.Path,
			PoolSize: cfg.PoolSize,
			Logger:   cfg.Logger,
		})
	default:
		return nil, fmt.Errorf("store: unknown backend %q (expected %q or %q)", cfg.Backend, BackendMemory, BackendSQLite)
	}
}
