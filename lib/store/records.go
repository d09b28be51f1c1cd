// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/museum/lib/codec"
)

// Records stores CBOR-encoded values as sealed records in a Store.
type Records struct {
	backend     Store
	compression Compression
}

// NewRecords wraps backend. New records are sealed with compression;
// existing records are read whatever compression they were written with.
func NewRecords(backend Store, compression Compression) *Records {
	return &Records{backend: backend, compression: compression}
}

// Backend returns the underlying store.
func (r *Records) Backend() Store {
	return r.backend
}

// Load decodes the record at key into value. A missing key returns
// ErrNotFound.
func (r *Records) Load(ctx context.Context, key string, value any) error {
	record, err := r.backend.Get(ctx, key)
	if err != nil {
		return err
	}
	return decodeRecord(key, record, value)
}

// Scan calls visit for every record under prefix in key order. visit
// receives a decode function bound to that record.
func (r *Records) Scan(ctx context.Context, prefix string, visit func(key string, decode func(value any) error) error) error {
	entries, err := r.backend.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		decode := func(value any) error {
			return decodeRecord(entry.Key, entry.Value, value)
		}
		if err := visit(entry.Key, decode); err != nil {
			return err
		}
	}
	return nil
}

// Put encodes value into a Write for a later Apply.
func (r *Records) Put(key string, value any) (Write, error) {
	payload, err := codec.Marshal(value)
	if err != nil {
		return Write{}, fmt.Errorf("encoding %s: %w", key, err)
	}
	record, err := Seal(payload, r.compression)
	if err != nil {
		return Write{}, fmt.Errorf("sealing %s: %w", key, err)
	}
	return Write{Key: key, Value: record}, nil
}

// Delete returns a Write removing key.
func (r *Records) Delete(key string) Write {
	return Write{Key: key, Delete: true}
}

// Apply commits writes atomically.
func (r *Records) Apply(ctx context.Context, writes []Write) error {
	return r.backend.Apply(ctx, writes)
}

func decodeRecord(key string, record []byte, value any) error {
	payload, err := Unseal(record)
	if err != nil {
		return fmt.Errorf("record %s: %w", key, err)
	}
	if err := codec.Unmarshal(payload, value); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}
