// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"github.com/bureau-foundation/museum/lib/codec"
	"github.com/bureau-foundation/museum/lib/fault"
)

// Kind names a registered entity type ("museum", "meme").
type Kind string

// Entity is the decoded state of one deployed account. Implementations
// are pointers to CBOR-encodable structs; exported fields are the
// persisted state.
type Entity interface {
	// Methods returns the entry points bound to this value.
	Methods() map[string]Method
}

// Factory returns a zero-state entity ready to have stored state
// decoded into it.
type Factory func() Entity

// Method is one entry point of an entity.
type Method struct {
	// View methods only read state. They may be invoked through
	// [Host.View] and [Call.View]; they cannot dispatch or transfer.
	View bool

	// Payable methods accept an attached deposit. A deposit attached
	// to any other method is refused with a validation error.
	Payable bool

	// Callback methods are reachable only by delivery of a callback
	// receipt; [Call.Outcome] reports the dispatch result.
	Callback bool

	// Run executes the method. A non-nil error discards every effect
	// of the invocation.
	Run func(call *Call, args Args) (any, error)
}

// Args is the CBOR-encoded argument record of an invocation.
type Args []byte

// Decode decodes the arguments into value. Empty arguments leave value
// untouched. Malformed arguments are a validation error.
func (a Args) Decode(value any) error {
	if len(a) == 0 {
		return nil
	}
	if err := codec.Unmarshal(a, value); err != nil {
		return fault.Invalid("malformed arguments: %v", err)
	}
	return nil
}

// EncodeArgs encodes value as invocation arguments. A nil value
// encodes as empty arguments.
func EncodeArgs(value any) (Args, error) {
	if value == nil {
		return nil, nil
	}
	if raw, ok := value.(Args); ok {
		return raw, nil
	}
	data, err := codec.Marshal(value)
	if err != nil {
		return nil, fault.Invalid("encoding arguments: %v", err)
	}
	return data, nil
}

// DecodeArgs decodes args into a new T.
func DecodeArgs[T any](args Args) (T, error) {
	var value T
	err := args.Decode(&value)
	return value, err
}
