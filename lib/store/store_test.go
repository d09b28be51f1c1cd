// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqliteStore, err := OpenSQLite(SQLiteConfig{
		Path:     filepath.Join(t.TempDir(), "museum.db"),
		PoolSize: 2,
	})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqliteStore,
	}
}

func TestStoreContract(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := backend.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
			}

			err := backend.Apply(ctx, []Write{
				{Key: "receipt/0002", Value: []byte("b")},
				{Key: "receipt/0001", Value: []byte("a")},
				{Key: "account/alice", Value: []byte("x")},
				{Key: "account/alice", Value: []byte("y")},
			})
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}

			value, err := backend.Get(ctx, "account/alice")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(value) != "y" {
				t.Errorf("Get = %q, want last write in batch to win", value)
			}

			entries, err := backend.List(ctx, "receipt/")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(entries) != 2 || entries[0].Key != "receipt/0001" || entries[1].Key != "receipt/0002" {
				t.Fatalf("List = %+v, want both receipts in key order", entries)
			}

			err = backend.Apply(ctx, []Write{
				{Key: "receipt/0001", Delete: true},
				{Key: "receipt/0003", Value: []byte("c")},
			})
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			entries, _ = backend.List(ctx, "receipt/")
			if len(entries) != 2 || entries[0].Key != "receipt/0002" || entries[1].Key != "receipt/0003" {
				t.Fatalf("List after delete = %+v", entries)
			}

			if err := backend.Apply(ctx, nil); err != nil {
				t.Errorf("Apply(nil) = %v", err)
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "museum.db")
	ctx := context.Background()

	first, err := OpenSQLite(SQLiteConfig{Path: path, PoolSize: 1})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := first.Apply(ctx, []Write{{Key: "account/museum", Value: []byte{1, 2, 3}}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := OpenSQLite(SQLiteConfig{Path: path, PoolSize: 1})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	value, err := second.Get(ctx, "account/museum")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if len(value) != 3 || value[2] != 3 {
		t.Errorf("Get after reopen = %v", value)
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	if _, err := Open(Config{Backend: "etcd"}); err == nil {
		t.Fatal("Open(etcd) succeeded")
	}
	if _, err := Open(Config{Backend: BackendSQLite}); err == nil {
		t.Fatal("Open(sqlite) without a path succeeded")
	}
}
