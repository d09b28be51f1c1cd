// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/store"
)

// Step delivers the oldest queued receipt. It reports false when the
// queue is empty.
func (h *Host) Step(ctx context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	receipts, err := h.records.Backend().List(ctx, receiptPrefix)
	if err != nil {
		return false, fmt.Errorf("host: listing receipts: %w", err)
	}
	if len(receipts) == 0 {
		return false, nil
	}
	var receipt Receipt
	if err := h.records.Load(ctx, receipts[0].Key, &receipt); err != nil {
		return false, fmt.Errorf("host: loading %s: %w", receipts[0].Key, err)
	}
	return true, h.deliver(ctx, receipt)
}

// Deliver delivers the queued receipt with the given ID, regardless of
// its position in the queue.
func (h *Host) Deliver(ctx context.Context, receiptID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var receipt Receipt
	err := h.records.Load(ctx, receiptKey(receiptID), &receipt)
	if errors.Is(err, store.ErrNotFound) {
		return fault.Missing("receipt %s is not queued", receiptID)
	}
	if err != nil {
		return fmt.Errorf("host: loading receipt %s: %w", receiptID, err)
	}
	return h.deliver(ctx, receipt)
}

// Drain delivers receipts until the queue is empty, including the
// callbacks that deliveries produce. It returns the number delivered.
func (h *Host) Drain(ctx context.Context) (int, error) {
	delivered := 0
	for {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		more, err := h.Step(ctx)
		if err != nil {
			return delivered, err
		}
		if !more {
			return delivered, nil
		}
		delivered++
	}
}

// Run delivers receipts as they are queued until ctx is cancelled.
// Storage failures stop the loop and are returned; entity failures are
// outcomes, not errors, and never stop it.
func (h *Host) Run(ctx context.Context) error {
	h.logger.Info("delivery loop started", "batch", h.deliveryBatch)
	defer h.logger.Info("delivery loop stopped")

	for {
		exhausted := false
		for range h.deliveryBatch {
			more, err := h.Step(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if !more {
				exhausted = true
				break
			}
		}
		if !exhausted {
			// A full batch went out; go around again after
			// giving cancellation a chance.
			h.signal()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-h.notify:
		}
	}
}

// deliver executes one receipt and commits its effects together with
// the receipt's removal from the queue. Caller holds h.mu.
func (h *Host) deliver(ctx context.Context, receipt Receipt) error {
	b := h.newBatch(ctx)
	b.consume(receipt.ID)

	if receipt.IsCallback() {
		return h.deliverCallback(b, receipt)
	}

	err := h.apply(b, receipt)
	var storage *storageError
	if errors.As(err, &storage) {
		return err
	}
	if err != nil && !receipt.Deposit.IsZero() {
		// The target never took the deposit; return it to the
		// dispatcher.
		if creditErr := b.credit(receipt.Origin, receipt.Deposit); creditErr != nil {
			return fmt.Errorf("host: returning %d to %s: %w", receipt.Deposit, receipt.Origin, creditErr)
		}
	}

	outcome := outcomeOf(receipt.ID, err)
	if receipt.Callback != "" {
		b.enqueue(Receipt{
			ID:       b.nextReceiptID(),
			Origin:   receipt.Target,
			Signer:   receipt.Signer,
			Target:   receipt.Origin,
			Method:   receipt.Callback,
			Args:     receipt.CallbackArgs,
			Outcome:  &outcome,
			QueuedAt: h.clock.Now().UnixNano(),
		})
	}
	if commitErr := b.commit(); commitErr != nil {
		return commitErr
	}

	h.logger.Info("receipt delivered",
		"receipt", receipt.ID,
		"origin", receipt.Origin,
		"target", receipt.Target,
		"method", receipt.Method,
		"deposit", receipt.Deposit,
		"success", outcome.Success,
		"error", outcome.Error,
	)
	return nil
}

// apply runs a call or transfer receipt against its target. On error
// nothing about the target has been staged in b.
func (h *Host) apply(b *batch, receipt Receipt) error {
	if receipt.Deploy != "" {
		if !receipt.Target.IsChildOf(receipt.Origin) {
			return fault.Denied("%s cannot deploy %s: not a direct child", receipt.Origin, receipt.Target)
		}
		if _, registered := h.kinds[receipt.Deploy]; !registered {
			return fault.Invalid("unknown entity kind %q", receipt.Deploy)
		}
		exists, err := b.exists(receipt.Target)
		if err != nil {
			return err
		}
		if exists {
			return fault.New(fault.DuplicateName, "account %s already exists", receipt.Target)
		}
		b.put(AccountRecord{
			ID:        receipt.Target,
			Kind:      receipt.Deploy,
			CreatedAt: h.clock.Now().UnixNano(),
		})
	}

	var err error
	if receipt.Method == "" {
		err = b.credit(receipt.Target, receipt.Deposit)
	} else {
		_, err = h.execute(b, invocation{
			target:  receipt.Target,
			method:  receipt.Method,
			args:    receipt.Args,
			caller:  receipt.Origin,
			signer:  receipt.Signer,
			deposit: receipt.Deposit,
		})
	}
	if err != nil && receipt.Deploy != "" {
		b.forget(receipt.Target)
	}
	return err
}

// deliverCallback runs a callback receipt. A failing callback consumes
// the receipt and is logged; there is nobody left to report to.
func (h *Host) deliverCallback(b *batch, receipt Receipt) error {
	_, err := h.execute(b, invocation{
		target:  receipt.Target,
		method:  receipt.Method,
		args:    receipt.Args,
		caller:  receipt.Target,
		signer:  receipt.Signer,
		outcome: receipt.Outcome,
	})
	var storage *storageError
	if errors.As(err, &storage) {
		return err
	}
	// A failed execute staged nothing, so the commit only consumes
	// the receipt.
	if commitErr := b.commit(); commitErr != nil {
		return commitErr
	}

	if err != nil {
		h.logger.Error("callback failed",
			"receipt", receipt.ID,
			"answers", receipt.Outcome.ReceiptID,
			"target", receipt.Target,
			"method", receipt.Method,
			"error", err,
		)
		return nil
	}
	h.logger.Info("callback delivered",
		"receipt", receipt.ID,
		"answers", receipt.Outcome.ReceiptID,
		"target", receipt.Target,
		"method", receipt.Method,
		"success", receipt.Outcome.Success,
	)
	return nil
}
