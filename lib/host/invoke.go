// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/codec"
	"github.com/bureau-foundation/museum/lib/fault"
)

// Invocation is an external call into an entity.
type Invocation struct {
	Caller  account.ID
	Target  account.ID
	Method  string
	Args    Args
	Deposit account.Amount
}

// invocation is one method execution inside a batch.
type invocation struct {
	target   account.ID
	method   string
	args     Args
	caller   account.ID
	signer   account.ID
	deposit  account.Amount
	outcome  *Outcome
	readOnly bool
}

// Invoke runs a method on behalf of an existing account. The deposit
// is debited from the caller and credited to the target; if the method
// fails nothing changes, the deposit included.
func (h *Host) Invoke(ctx context.Context, request Invocation) (codec.RawMessage, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b := h.newBatch(ctx)
	caller, err := b.account(request.Caller)
	if err != nil {
		return nil, err
	}
	if !request.Deposit.IsZero() {
		remaining, err := caller.Balance.Sub(request.Deposit)
		if err != nil {
			return nil, fault.Invalid("%s cannot attach %d: balance is %d", request.Caller, request.Deposit, caller.Balance)
		}
		caller.Balance = remaining
		b.put(caller)
	}

	result, err := h.execute(b, invocation{
		target:  request.Target,
		method:  request.Method,
		args:    request.Args,
		caller:  request.Caller,
		signer:  request.Caller,
		deposit: request.Deposit,
	})
	if err != nil {
		h.logger.Debug("invocation failed",
			"caller", request.Caller,
			"target", request.Target,
			"method", request.Method,
			"error", err,
		)
		return nil, err
	}
	encoded, err := encodeResult(result)
	if err != nil {
		return nil, err
	}
	if err := b.commit(); err != nil {
		return nil, err
	}
	h.logger.Debug("invocation committed",
		"caller", request.Caller,
		"target", request.Target,
		"method", request.Method,
		"deposit", request.Deposit,
		"dispatched", len(b.queued),
	)
	return encoded, nil
}

// View runs a view method against committed state.
func (h *Host) View(ctx context.Context, target account.ID, method string, args Args) (codec.RawMessage, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	b := h.newBatch(ctx)
	result, err := h.execute(b, invocation{
		target:   target,
		method:   method,
		args:     args,
		caller:   target,
		signer:   target,
		readOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}

// execute loads the target entity, runs one method, and on success
// stages the new state, balance, and dispatched receipts in b. On
// failure b is untouched.
func (h *Host) execute(b *batch, inv invocation) (any, error) {
	record, err := b.account(inv.target)
	if err != nil {
		return nil, err
	}
	if record.Kind == "" {
		return nil, fault.Invalid("%s has no deployed entity", inv.target)
	}
	factory, registered := h.kinds[record.Kind]
	if !registered {
		return nil, fmt.Errorf("host: %s runs unregistered kind %q", inv.target, record.Kind)
	}
	entity := factory()
	if len(record.State) > 0 {
		if err := codec.Unmarshal(record.State, entity); err != nil {
			return nil, &storageError{fmt.Errorf("host: decoding state of %s: %w", inv.target, err)}
		}
	}

	method, exists := entity.Methods()[inv.method]
	if !exists {
		return nil, fault.Missing("%s (%s) has no method %q", inv.target, record.Kind, inv.method)
	}
	if inv.readOnly && !method.View {
		return nil, fault.Denied("%s.%s is not a view", inv.target, inv.method)
	}
	if method.Callback && inv.outcome == nil {
		return nil, fault.Denied("%s.%s is a callback and can only be reached by delivery", inv.target, inv.method)
	}
	if !method.Callback && inv.outcome != nil {
		return nil, fault.Denied("%s.%s is not a callback", inv.target, inv.method)
	}
	if !inv.deposit.IsZero() && !method.Payable {
		return nil, fault.Invalid("%s.%s does not accept a deposit", inv.target, inv.method)
	}
	balance, err := record.Balance.Add(inv.deposit)
	if err != nil {
		return nil, fault.Invalid("%s: %v", inv.target, err)
	}

	call := &Call{
		Self:     inv.target,
		Caller:   inv.caller,
		Signer:   inv.signer,
		Deposit:  inv.deposit,
		Now:      h.clock.Now(),
		ReadOnly: inv.readOnly,
		batch:    b,
		balance:  balance,
		outcome:  inv.outcome,
	}
	result, err := runSafely(method, call, inv.args)
	if err != nil {
		return nil, err
	}
	if inv.readOnly {
		return result, nil
	}

	state, err := codec.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("host: encoding state of %s: %w", inv.target, err)
	}
	record.State = state
	record.Balance = call.balance
	b.put(record)
	b.enqueue(call.queued...)
	for _, receipt := range call.queued {
		h.logger.Debug("receipt dispatched",
			"receipt", receipt.ID,
			"origin", receipt.Origin,
			"target", receipt.Target,
			"method", receipt.Method,
			"deposit", receipt.Deposit,
			"callback", receipt.Callback,
		)
	}
	return result, nil
}

// runSafely converts a panicking method into an Internal error so one
// faulty entity cannot take the host down.
func runSafely(method Method, call *Call, args Args) (result any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("host: %s panicked: %v\n%s", call.Self, recovered, debug.Stack())
		}
	}()
	return method.Run(call, args)
}

func encodeResult(result any) (codec.RawMessage, error) {
	if result == nil {
		return nil, nil
	}
	encoded, err := codec.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("host: encoding result: %w", err)
	}
	return encoded, nil
}
