// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

// Ring is a bounded append-only log. Items is a circular buffer whose
// oldest element sits at Start once the buffer is full.
type Ring[T any] struct {
	Capacity int `cbor:"capacity"`
	Items    []T `cbor:"items"`
	Start    int `cbor:"start"`
}

// NewRing returns an empty ring. Panics if capacity is not positive.
func NewRing[T any](capacity int) Ring[T] {
	if capacity <= 0 {
		panic("ledger: ring capacity must be positive")
	}
	return Ring[T]{Capacity: capacity, Items: make([]T, 0, capacity)}
}

// Append adds entry, evicting the oldest entry when the ring is full.
// Existing entries keep their relative order.
func (r *Ring[T]) Append(entry T) {
	if len(r.Items) < r.Capacity {
		r.Items = append(r.Items, entry)
		return
	}
	r.Items[r.Start] = entry
	r.Start = (r.Start + 1) % r.Capacity
}

// Len returns the number of retained entries.
func (r *Ring[T]) Len() int {
	return len(r.Items)
}

// Entries returns a copy of the retained entries, oldest first.
func (r *Ring[T]) Entries() []T {
	entries := make([]T, 0, len(r.Items))
	entries = append(entries, r.Items[r.Start:]...)
	entries = append(entries, r.Items[:r.Start]...)
	return entries
}
