// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-process Store. Values are copied on the way in and
// on the way out.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.records[key]
	if !exists {
		return nil, ErrNotFound
	}
	return slices.Clone(value), nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []Entry
	for key, value := range m.records {
		if strings.HasPrefix(key, prefix) {
			entries = append(entries, Entry{Key: key, Value: slices.Clone(value)})
		}
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Key, b.Key)
	})
	return entries, nil
}

func (m *Memory) Apply(ctx context.Context, writes []Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, write := range writes {
		if write.Delete {
			delete(m.records, write.Key)
			continue
		}
		m.records[write.Key] = slices.Clone(write.Value)
	}
	return nil
}

// Close is a no-op; the contents are dropped with the value.
func (m *Memory) Close() error {
	return nil
}
