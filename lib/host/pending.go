// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"time"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/codec"
	"github.com/bureau-foundation/museum/lib/pending"
)

// PendingViewMethod is the view every entity kind that tracks two-phase
// operations exposes. It returns []pending.Summary.
const PendingViewMethod = "get_pending"

// PendingOperation is one outstanding two-phase operation and the
// entity holding it.
type PendingOperation struct {
	Entity account.ID `json:"entity"`
	pending.Summary
	Age time.Duration `json:"age"`
}

// ListPending collects outstanding operations from every deployed
// entity that exposes get_pending, oldest first within each entity.
// Entities answer the question themselves; the host has no notion of
// which receipts they consider unresolved.
func (h *Host) ListPending(ctx context.Context) ([]PendingOperation, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var deployed []account.ID
	err := h.records.Scan(ctx, accountPrefix, func(key string, decode func(any) error) error {
		var record AccountRecord
		if err := decode(&record); err != nil {
			return err
		}
		if record.Kind != "" && len(record.State) > 0 {
			deployed = append(deployed, record.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	var operations []PendingOperation
	for _, id := range deployed {
		result, err := h.execute(h.newBatch(ctx), invocation{
			target:   id,
			method:   PendingViewMethod,
			caller:   id,
			signer:   id,
			readOnly: true,
		})
		if err != nil {
			continue
		}
		encoded, err := encodeResult(result)
		if err != nil {
			return nil, err
		}
		var summaries []pending.Summary
		if err := codec.Unmarshal(encoded, &summaries); err != nil {
			return nil, err
		}
		for _, summary := range summaries {
			operations = append(operations, PendingOperation{
				Entity:  id,
				Summary: summary,
				Age:     summary.Age(now),
			})
		}
	}
	return operations, nil
}

// WarnStale logs every pending operation older than threshold at Warn
// and returns how many there were. No operation is cancelled: an
// outstanding callback is always eventually delivered or the receipt
// is still queued for an operator to inspect.
func (h *Host) WarnStale(ctx context.Context, threshold time.Duration) (int, error) {
	operations, err := h.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	stale := 0
	for _, operation := range operations {
		if operation.Age < threshold {
			continue
		}
		stale++
		h.logger.Warn("pending operation outstanding",
			"entity", operation.Entity,
			"kind", operation.Kind,
			"target", operation.Target,
			"receipt", operation.ReceiptID,
			"age", operation.Age,
		)
	}
	return stale, nil
}
