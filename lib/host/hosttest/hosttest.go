// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hosttest drives a host over an in-memory store for entity
// tests: accounts, invocations, views, and explicit control over
// receipt delivery, all failing the test on infrastructure errors.
package hosttest

import (
	"context"
	"testing"
	"time"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/clock"
	"github.com/bureau-foundation/museum/lib/codec"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/store"
)

// Epoch is the fake clock's starting time.
var Epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Harness wraps a Host with test-failing helpers.
type Harness struct {
	Host  *host.Host
	Clock *clock.FakeClock
	t     testing.TB
}

// New builds a host over a fresh in-memory store with a fake clock at
// Epoch, and lets register add entity kinds.
func New(t testing.TB, register func(*host.Host)) *Harness {
	t.Helper()
	fakeClock := clock.Fake(Epoch)
	records := store.NewRecords(store.NewMemory(), store.CompressionNone)
	instance, err := host.New(context.Background(), host.Config{Records: records, Clock: fakeClock})
	if err != nil {
		t.Fatalf("host.New: %v", err)
	}
	register(instance)
	return &Harness{Host: instance, Clock: fakeClock, t: t}
}

// CreateAccount creates a plain account or fails the test.
func (h *Harness) CreateAccount(id account.ID, balance account.Amount) {
	h.t.Helper()
	if err := h.Host.CreateAccount(context.Background(), id, balance); err != nil {
		h.t.Fatalf("CreateAccount(%s): %v", id, err)
	}
}

// Deploy deploys kind at id or fails the test.
func (h *Harness) Deploy(id account.ID, kind host.Kind) {
	h.t.Helper()
	if err := h.Host.Deploy(context.Background(), id, kind); err != nil {
		h.t.Fatalf("Deploy(%s, %s): %v", id, kind, err)
	}
}

// Invoke calls target.method as caller and returns the entity's error
// unchanged, so tests can assert on it.
func (h *Harness) Invoke(caller, target account.ID, method string, args any, deposit account.Amount) (codec.RawMessage, error) {
	h.t.Helper()
	encoded, err := host.EncodeArgs(args)
	if err != nil {
		h.t.Fatalf("encoding %s args: %v", method, err)
	}
	return h.Host.Invoke(context.Background(), host.Invocation{
		Caller:  caller,
		Target:  target,
		Method:  method,
		Args:    encoded,
		Deposit: deposit,
	})
}

// MustInvoke is Invoke that fails the test on error.
func (h *Harness) MustInvoke(caller, target account.ID, method string, args any, deposit account.Amount) codec.RawMessage {
	h.t.Helper()
	result, err := h.Invoke(caller, target, method, args, deposit)
	if err != nil {
		h.t.Fatalf("%s calling %s.%s: %v", caller, target, method, err)
	}
	return result
}

// View runs a view and decodes its result into out (if non-nil).
func (h *Harness) View(target account.ID, method string, args any, out any) error {
	h.t.Helper()
	encoded, err := host.EncodeArgs(args)
	if err != nil {
		h.t.Fatalf("encoding %s args: %v", method, err)
	}
	result, err := h.Host.View(context.Background(), target, method, encoded)
	if err != nil {
		return err
	}
	if out != nil {
		if err := codec.Unmarshal(result, out); err != nil {
			h.t.Fatalf("decoding %s.%s result: %v", target, method, err)
		}
	}
	return nil
}

// MustView is View that fails the test on error.
func (h *Harness) MustView(target account.ID, method string, args any, out any) {
	h.t.Helper()
	if err := h.View(target, method, args, out); err != nil {
		h.t.Fatalf("viewing %s.%s: %v", target, method, err)
	}
}

// Balance returns id's balance.
func (h *Harness) Balance(id account.ID) account.Amount {
	h.t.Helper()
	info, err := h.Host.Account(context.Background(), id)
	if err != nil {
		h.t.Fatalf("Account(%s): %v", id, err)
	}
	return info.Balance
}

// Exists reports whether id is an account.
func (h *Harness) Exists(id account.ID) bool {
	h.t.Helper()
	_, err := h.Host.Account(context.Background(), id)
	return err == nil
}

// Receipts returns the queued receipts in delivery order.
func (h *Harness) Receipts() []host.Receipt {
	h.t.Helper()
	receipts, err := h.Host.Receipts(context.Background())
	if err != nil {
		h.t.Fatalf("Receipts: %v", err)
	}
	return receipts
}

// Deliver delivers one receipt by ID.
func (h *Harness) Deliver(receiptID string) {
	h.t.Helper()
	if err := h.Host.Deliver(context.Background(), receiptID); err != nil {
		h.t.Fatalf("Deliver(%s): %v", receiptID, err)
	}
}

// Drain delivers every queued receipt, including the callbacks that
// deliveries produce, and returns how many were delivered.
func (h *Harness) Drain() int {
	h.t.Helper()
	delivered, err := h.Host.Drain(context.Background())
	if err != nil {
		h.t.Fatalf("Drain: %v", err)
	}
	return delivered
}
