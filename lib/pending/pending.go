// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pending

import (
	"cmp"
	"slices"
	"time"

	"github.com/bureau-foundation/museum/lib/fault"
)

// Kind names the cross-entity operation a pending record tracks.
type Kind string

const (
	// CreateExhibit reserves an exhibit name while its creation is
	// being dispatched to the derived child address.
	CreateExhibit Kind = "create_exhibit"

	// RemoveExhibit marks an exhibit Removing while its teardown is
	// being dispatched.
	RemoveExhibit Kind = "remove_exhibit"

	// ReleaseDonations serializes donation releases for one exhibit.
	ReleaseDonations Kind = "release_donations"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case CreateExhibit, RemoveExhibit, ReleaseDonations:
		return true
	}
	return false
}

// Operation is one in-flight two-phase operation. S is the entity's
// snapshot type.
type Operation[S any] struct {
	Kind Kind `cbor:"kind"`

	// Target is the exhibit name or account the operation acts on.
	Target string `cbor:"target"`

	// ReceiptID identifies the dispatch whose callback resolves this
	// operation. Empty until BindReceipt.
	ReceiptID string `cbor:"receipt_id,omitempty"`

	// Snapshot is the pre-dispatch state needed to roll back, or the
	// captured values the commit path uses.
	Snapshot S `cbor:"snapshot"`

	// StartedAt is Unix nanoseconds at Begin.
	StartedAt int64 `cbor:"started_at"`
}

// Summary is the snapshot-free view of an operation returned by the
// entities' get_pending views.
type Summary struct {
	Kind      Kind   `json:"kind"`
	Target    string `json:"target"`
	ReceiptID string `json:"receipt_id,omitempty"`
	StartedAt int64  `json:"started_at"`
}

// Age returns how long the operation has been outstanding at now.
func (s Summary) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.StartedAt))
}

// Tracker holds an entity's outstanding operations. The zero value is
// ready to use.
type Tracker[S any] struct {
	Operations map[string]Operation[S] `cbor:"operations"`
}

func keyOf(kind Kind, target string) string {
	return string(kind) + "/" + target
}

// Begin registers a new operation. It fails with Conflict if an
// operation with the same kind and target is already outstanding.
func (t *Tracker[S]) Begin(kind Kind, target string, snapshot S, now time.Time) error {
	if !kind.Valid() {
		return fault.Invalid("unknown pending operation kind %q", kind)
	}
	key := keyOf(kind, target)
	if _, exists := t.Operations[key]; exists {
		return fault.Conflicting("%s for %q is already in flight", kind, target)
	}
	if t.Operations == nil {
		t.Operations = make(map[string]Operation[S])
	}
	t.Operations[key] = Operation[S]{
		Kind:      kind,
		Target:    target,
		Snapshot:  snapshot,
		StartedAt: now.UnixNano(),
	}
	return nil
}

// BindReceipt records the receipt of the dispatch that Begin guarded.
func (t *Tracker[S]) BindReceipt(kind Kind, target, receiptID string) error {
	key := keyOf(kind, target)
	operation, exists := t.Operations[key]
	if !exists {
		return fault.Missing("no %s in flight for %q", kind, target)
	}
	operation.ReceiptID = receiptID
	t.Operations[key] = operation
	return nil
}

// Has reports whether an operation of kind is outstanding for target.
func (t *Tracker[S]) Has(kind Kind, target string) bool {
	_, exists := t.Operations[keyOf(kind, target)]
	return exists
}

// Get returns the outstanding operation of kind for target.
func (t *Tracker[S]) Get(kind Kind, target string) (Operation[S], bool) {
	operation, exists := t.Operations[keyOf(kind, target)]
	return operation, exists
}

// Resolve matches a delivered callback to its operation, runs the
// kind-specific transition, and removes the record. An unknown key or
// a receipt that does not match the bound dispatch fails with NotFound
// and the transition is not run. If the transition fails the record is
// kept and the error returned.
func (t *Tracker[S]) Resolve(kind Kind, target, receiptID string, transition func(Operation[S]) error) error {
	key := keyOf(kind, target)
	operation, exists := t.Operations[key]
	if !exists {
		return fault.Missing("no %s in flight for %q", kind, target)
	}
	if operation.ReceiptID != receiptID {
		return fault.Missing("%s for %q is waiting on receipt %q, not %q", kind, target, operation.ReceiptID, receiptID)
	}
	if err := transition(operation); err != nil {
		return err
	}
	delete(t.Operations, key)
	return nil
}

// Len returns the number of outstanding operations.
func (t *Tracker[S]) Len() int {
	return len(t.Operations)
}

// Summaries lists outstanding operations, oldest first.
func (t *Tracker[S]) Summaries() []Summary {
	summaries := make([]Summary, 0, len(t.Operations))
	for _, operation := range t.Operations {
		summaries = append(summaries, Summary{
			Kind:      operation.Kind,
			Target:    operation.Target,
			ReceiptID: operation.ReceiptID,
			StartedAt: operation.StartedAt,
		})
	}
	slices.SortFunc(summaries, func(a, b Summary) int {
		if byTime := cmp.Compare(a.StartedAt, b.StartedAt); byTime != 0 {
			return byTime
		}
		return cmp.Compare(keyOf(a.Kind, a.Target), keyOf(b.Kind, b.Target))
	})
	return summaries
}
