// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"time"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/codec"
	"github.com/bureau-foundation/museum/lib/fault"
)

// Call is the context of one method execution: who is calling, with
// what payment, at what time, and the handle for dispatching to other
// accounts. A Call is valid only during its method's Run.
type Call struct {
	// Self is the account executing the method.
	Self account.ID

	// Caller is the immediate predecessor: the external account for a
	// direct invocation, the dispatching entity for a delivered call,
	// or Self for a callback.
	Caller account.ID

	// Signer is the external account that started the chain.
	Signer account.ID

	// Deposit is the payment attached to this invocation. It is
	// already included in Balance.
	Deposit account.Amount

	// Now is the invocation timestamp.
	Now time.Time

	// ReadOnly is set for views.
	ReadOnly bool

	batch   *batch
	balance account.Amount
	outcome *Outcome
	queued  []Receipt
}

// Dispatch describes a cross-entity request.
type Dispatch struct {
	Target account.ID

	// Method to run on Target. Empty for a plain transfer.
	Method string
	Args   any

	// Deposit is debited from the caller's balance and forwarded.
	Deposit account.Amount

	// Deploy creates Target with this kind before running Method.
	// Target must be a direct child of the dispatcher.
	Deploy Kind

	// Callback names a Callback method on the dispatcher that
	// receives the outcome. Empty for fire-and-forget.
	Callback     string
	CallbackArgs any
}

// Balance returns the executing account's balance net of this call's
// outgoing deposits.
func (c *Call) Balance() account.Amount {
	return c.balance
}

// Outcome returns the result being delivered to a callback method.
// The second result is false outside callback execution.
func (c *Call) Outcome() (Outcome, bool) {
	if c.outcome == nil {
		return Outcome{}, false
	}
	return *c.outcome, true
}

// Dispatch queues d and returns the receipt ID its callback's Outcome
// will carry. Nothing is queued if the method later fails.
func (c *Call) Dispatch(d Dispatch) (string, error) {
	if c.ReadOnly {
		return "", fault.Denied("views cannot dispatch")
	}
	if err := d.Target.Validate(); err != nil {
		return "", fault.Invalid("dispatch target: %v", err)
	}
	if d.Method == "" && d.Callback == "" && d.Deposit.IsZero() {
		return "", fault.Invalid("empty transfer to %s", d.Target)
	}
	remaining, err := c.balance.Sub(d.Deposit)
	if err != nil {
		return "", fault.Invalid("%s cannot forward %d: balance is %d", c.Self, d.Deposit, c.balance)
	}
	args, err := EncodeArgs(d.Args)
	if err != nil {
		return "", err
	}
	callbackArgs, err := EncodeArgs(d.CallbackArgs)
	if err != nil {
		return "", err
	}

	receipt := Receipt{
		ID:           c.batch.nextReceiptID(),
		Origin:       c.Self,
		Signer:       c.Signer,
		Target:       d.Target,
		Method:       d.Method,
		Args:         args,
		Deposit:      d.Deposit,
		Deploy:       d.Deploy,
		Callback:     d.Callback,
		CallbackArgs: callbackArgs,
		QueuedAt:     c.Now.UnixNano(),
	}
	c.balance = remaining
	c.queued = append(c.queued, receipt)
	return receipt.ID, nil
}

// Transfer sends amount to another account with no callback.
func (c *Call) Transfer(to account.ID, amount account.Amount) (string, error) {
	return c.Dispatch(Dispatch{Target: to, Deposit: amount})
}

// View runs a view method on another account against the current
// state and returns its encoded result.
func (c *Call) View(target account.ID, method string, args any) (codec.RawMessage, error) {
	encoded, err := EncodeArgs(args)
	if err != nil {
		return nil, err
	}
	result, err := c.batch.host.execute(c.batch, invocation{
		target:   target,
		method:   method,
		args:     encoded,
		caller:   c.Self,
		signer:   c.Signer,
		readOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}
