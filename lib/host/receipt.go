// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/fault"
)

// Receipt is a queued cross-entity message. A receipt with a nil
// Outcome is a call (or, with an empty Method, a plain transfer); a
// receipt with an Outcome is the callback answering an earlier call.
type Receipt struct {
	ID string `json:"id"`

	// Origin is the account that produced the receipt: the dispatcher
	// for a call, the dispatch target for a callback.
	Origin account.ID `json:"origin"`

	// Signer is the external account whose invocation started the
	// chain.
	Signer account.ID `json:"signer"`

	Target account.ID `json:"target"`

	// Method is the entry point to run on Target. Empty for a plain
	// transfer of Deposit.
	Method string `json:"method,omitempty"`
	Args   Args   `json:"args,omitempty"`

	// Deposit is the amount forwarded with the receipt. It has already
	// been debited from Origin.
	Deposit account.Amount `json:"deposit,omitempty"`

	// Deploy, if set, creates Target with this kind before the method
	// runs. Target must be a direct child of Origin and must not exist.
	Deploy Kind `json:"deploy,omitempty"`

	// Callback is the method on Origin that receives the outcome, and
	// CallbackArgs its arguments. Empty means no callback.
	Callback     string `json:"callback,omitempty"`
	CallbackArgs Args   `json:"callback_args,omitempty"`

	// Outcome is set on callback receipts only.
	Outcome *Outcome `json:"outcome,omitempty"`

	// QueuedAt is Unix nanoseconds at dispatch.
	QueuedAt int64 `json:"queued_at"`
}

// IsCallback reports whether r answers an earlier dispatch.
func (r *Receipt) IsCallback() bool {
	return r.Outcome != nil
}

// Describe renders "target.method" for logs, or "transfer to target".
func (r *Receipt) Describe() string {
	if r.Method == "" {
		return fmt.Sprintf("transfer of %d to %s", r.Deposit, r.Target)
	}
	return fmt.Sprintf("%s.%s", r.Target, r.Method)
}

// Outcome is the result of a delivered call, carried to the
// dispatcher's callback.
type Outcome struct {
	// ReceiptID is the call receipt this outcome answers; it is the
	// ID Dispatch returned to the dispatcher.
	ReceiptID string `json:"receipt_id"`

	Success bool       `json:"success"`
	Code    fault.Code `json:"code,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Err reconstructs the failure as a *fault.Error, or nil on success.
func (o Outcome) Err() error {
	if o.Success {
		return nil
	}
	return fault.FromWire(string(o.Code), o.Error)
}

func outcomeOf(receiptID string, err error) Outcome {
	if err == nil {
		return Outcome{ReceiptID: receiptID, Success: true}
	}
	message := err.Error()
	var classified *fault.Error
	if errors.As(err, &classified) {
		message = classified.Message
	}
	return Outcome{
		ReceiptID: receiptID,
		Code:      fault.CodeOf(err),
		Error:     message,
	}
}

func receiptKey(id string) string {
	return receiptPrefix + id
}

func formatReceiptID(sequence uint64) string {
	return fmt.Sprintf("%016x", sequence)
}
