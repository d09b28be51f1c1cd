// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/clock"
	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/store"
)

// Store key layout.
const (
	accountPrefix = "account/"
	receiptPrefix = "receipt/"
	sequenceKey   = "meta/sequence"
)

// defaultDeliveryBatch bounds how many receipts Run delivers before
// checking for cancellation again.
const defaultDeliveryBatch = 64

// Config holds the dependencies of a Host.
type Config struct {
	// Records is the durable store. Required.
	Records *store.Records

	// Clock supplies invocation timestamps. Nil uses the real clock.
	Clock clock.Clock

	// Logger receives dispatch and delivery logs. Nil discards.
	Logger *slog.Logger

	// DeliveryBatch is the number of receipts Run delivers per wakeup
	// before re-checking its context. Zero uses a default.
	DeliveryBatch int
}

// Host runs entities. It is safe for concurrent use.
type Host struct {
	records       *store.Records
	clock         clock.Clock
	logger        *slog.Logger
	deliveryBatch int

	// mu serializes invocations and deliveries. Views hold it shared.
	mu sync.RWMutex

	kinds map[Kind]Factory

	// sequence is the last receipt sequence number committed.
	sequence uint64

	// notify wakes Run when a commit queued new receipts.
	notify chan struct{}
}

// AccountRecord is the stored form of an account.
type AccountRecord struct {
	ID      account.ID     `cbor:"id"`
	Balance account.Amount `cbor:"balance"`

	// Kind is the deployed entity kind; empty for a plain account.
	Kind Kind `cbor:"kind,omitempty"`

	// State is the entity's CBOR-encoded state, empty until its first
	// successful invocation.
	State []byte `cbor:"state,omitempty"`

	CreatedAt int64 `cbor:"created_at"`
}

// AccountInfo is the public view of an account.
type AccountInfo struct {
	ID        account.ID     `json:"id"`
	Balance   account.Amount `json:"balance"`
	Kind      Kind           `json:"kind,omitempty"`
	CreatedAt int64          `json:"created_at"`
}

// New creates a host over cfg.Records, resuming the receipt sequence
// from the store.
func New(ctx context.Context, cfg Config) (*Host, error) {
	if cfg.Records == nil {
		return nil, fmt.Errorf("host: Records is required")
	}
	host := &Host{
		records:       cfg.Records,
		clock:         cfg.Clock,
		logger:        cfg.Logger,
		deliveryBatch: cfg.DeliveryBatch,
		kinds:         make(map[Kind]Factory),
		notify:        make(chan struct{}, 1),
	}
	if host.clock == nil {
		host.clock = clock.Real()
	}
	if host.logger == nil {
		host.logger = slog.New(slog.DiscardHandler)
	}
	if host.deliveryBatch <= 0 {
		host.deliveryBatch = defaultDeliveryBatch
	}

	err := cfg.Records.Load(ctx, sequenceKey, &host.sequence)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("host: loading receipt sequence: %w", err)
	}
	return host, nil
}

// Register makes kind deployable. Registering a kind twice panics.
func (h *Host) Register(kind Kind, factory Factory) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.kinds[kind]; exists {
		panic(fmt.Sprintf("host: kind %q registered twice", kind))
	}
	h.kinds[kind] = factory
}

// HasKind reports whether kind is registered.
func (h *Host) HasKind(kind Kind) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.kinds[kind]
	return exists
}

// CreateAccount creates a plain account holding balance.
func (h *Host) CreateAccount(ctx context.Context, id account.ID, balance account.Amount) error {
	if err := id.Validate(); err != nil {
		return fault.Invalid("%v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	b := h.newBatch(ctx)
	exists, err := b.exists(id)
	if err != nil {
		return err
	}
	if exists {
		return fault.Conflicting("account %s already exists", id)
	}
	b.put(AccountRecord{ID: id, Balance: balance, CreatedAt: h.clock.Now().UnixNano()})
	if err := b.commit(); err != nil {
		return err
	}
	h.logger.Info("account created", "account", id, "balance", balance)
	return nil
}

// Deploy installs an entity kind on id, creating the account with a
// zero balance if it does not exist. The entity starts with empty
// state; callers initialize it with an ordinary invocation.
func (h *Host) Deploy(ctx context.Context, id account.ID, kind Kind) error {
	if err := id.Validate(); err != nil {
		return fault.Invalid("%v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, registered := h.kinds[kind]; !registered {
		return fault.Invalid("unknown entity kind %q", kind)
	}

	b := h.newBatch(ctx)
	record, err := b.account(id)
	switch {
	case fault.Is(err, fault.NotFound):
		record = AccountRecord{ID: id, CreatedAt: h.clock.Now().UnixNano()}
	case err != nil:
		return err
	case record.Kind != "":
		return fault.Conflicting("account %s already runs %q", id, record.Kind)
	}
	record.Kind = kind
	record.State = nil
	b.put(record)
	if err := b.commit(); err != nil {
		return err
	}
	h.logger.Info("entity deployed", "account", id, "kind", kind)
	return nil
}

// Account returns the public view of id.
func (h *Host) Account(ctx context.Context, id account.ID) (AccountInfo, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	record, err := h.newBatch(ctx).account(id)
	if err != nil {
		return AccountInfo{}, err
	}
	return AccountInfo{
		ID:        record.ID,
		Balance:   record.Balance,
		Kind:      record.Kind,
		CreatedAt: record.CreatedAt,
	}, nil
}

// Accounts lists every account in ID order.
func (h *Host) Accounts(ctx context.Context) ([]AccountInfo, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var accounts []AccountInfo
	err := h.records.Scan(ctx, accountPrefix, func(key string, decode func(any) error) error {
		var record AccountRecord
		if err := decode(&record); err != nil {
			return err
		}
		accounts = append(accounts, AccountInfo{
			ID:        record.ID,
			Balance:   record.Balance,
			Kind:      record.Kind,
			CreatedAt: record.CreatedAt,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("host: listing accounts: %w", err)
	}
	return accounts, nil
}

// Receipts lists queued receipts in delivery order.
func (h *Host) Receipts(ctx context.Context) ([]Receipt, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.queuedReceipts(ctx)
}

func (h *Host) queuedReceipts(ctx context.Context) ([]Receipt, error) {
	var receipts []Receipt
	err := h.records.Scan(ctx, receiptPrefix, func(key string, decode func(any) error) error {
		var receipt Receipt
		if err := decode(&receipt); err != nil {
			return err
		}
		receipts = append(receipts, receipt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("host: listing receipts: %w", err)
	}
	return receipts, nil
}

func (h *Host) signal() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}
