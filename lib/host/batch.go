// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/store"
)

// storageError marks a failure of the store itself, as opposed to an
// entity refusing an operation. Delivery aborts on storage errors
// instead of turning them into a failed outcome.
type storageError struct {
	err error
}

func (e *storageError) Error() string { return e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

// batch accumulates the effects of one top-level operation (an external
// invocation or one receipt delivery) and commits them atomically.
// Reads see the batch's own uncommitted writes.
type batch struct {
	host *Host
	ctx  context.Context

	accounts map[account.ID]AccountRecord
	dirty    map[account.ID]bool

	queued   []Receipt
	consumed []string

	sequence uint64
}

func (h *Host) newBatch(ctx context.Context) *batch {
	return &batch{
		host:     h,
		ctx:      ctx,
		accounts: make(map[account.ID]AccountRecord),
		dirty:    make(map[account.ID]bool),
		sequence: h.sequence,
	}
}

// account returns a copy of id's record. Mutations become visible only
// through put.
func (b *batch) account(id account.ID) (AccountRecord, error) {
	if record, cached := b.accounts[id]; cached {
		return record, nil
	}
	var record AccountRecord
	err := b.host.records.Load(b.ctx, accountPrefix+string(id), &record)
	if errors.Is(err, store.ErrNotFound) {
		return AccountRecord{}, fault.Missing("account %s does not exist", id)
	}
	if err != nil {
		return AccountRecord{}, &storageError{fmt.Errorf("host: loading account %s: %w", id, err)}
	}
	b.accounts[id] = record
	return record, nil
}

func (b *batch) exists(id account.ID) (bool, error) {
	_, err := b.account(id)
	if fault.Is(err, fault.NotFound) {
		return false, nil
	}
	return err == nil, err
}

func (b *batch) put(record AccountRecord) {
	b.accounts[record.ID] = record
	b.dirty[record.ID] = true
}

// forget drops an account created earlier in this batch.
func (b *batch) forget(id account.ID) {
	delete(b.accounts, id)
	delete(b.dirty, id)
}

func (b *batch) credit(id account.ID, amount account.Amount) error {
	record, err := b.account(id)
	if err != nil {
		return err
	}
	balance, err := record.Balance.Add(amount)
	if err != nil {
		return fault.Invalid("crediting %s: %v", id, err)
	}
	record.Balance = balance
	b.put(record)
	return nil
}

func (b *batch) nextReceiptID() string {
	b.sequence++
	return formatReceiptID(b.sequence)
}

func (b *batch) enqueue(receipts ...Receipt) {
	b.queued = append(b.queued, receipts...)
}

func (b *batch) consume(receiptID string) {
	b.consumed = append(b.consumed, receiptID)
}

// commit writes every dirty account, queued receipt, consumed receipt
// deletion, and the receipt sequence as one store batch.
func (b *batch) commit() error {
	records := b.host.records
	var writes []store.Write
	for id := range b.dirty {
		write, err := records.Put(accountPrefix+string(id), b.accounts[id])
		if err != nil {
			return fmt.Errorf("host: %w", err)
		}
		writes = append(writes, write)
	}
	for _, receipt := range b.queued {
		write, err := records.Put(receiptKey(receipt.ID), receipt)
		if err != nil {
			return fmt.Errorf("host: %w", err)
		}
		writes = append(writes, write)
	}
	for _, id := range b.consumed {
		writes = append(writes, records.Delete(receiptKey(id)))
	}
	if b.sequence != b.host.sequence {
		write, err := records.Put(sequenceKey, b.sequence)
		if err != nil {
			return fmt.Errorf("host: %w", err)
		}
		writes = append(writes, write)
	}

	if err := records.Apply(b.ctx, writes); err != nil {
		return &storageError{fmt.Errorf("host: committing batch: %w", err)}
	}
	b.host.sequence = b.sequence
	if len(b.queued) > 0 {
		b.host.signal()
	}
	return nil
}
