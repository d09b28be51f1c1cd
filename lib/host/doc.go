// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package host is the runtime museum entities execute in. It supplies
// everything an entity treats as an external collaborator: the caller
// identity, attached payments and balances, the clock, durable state,
// and asynchronous cross-entity invocation with exactly-once callback
// delivery.
//
// # Entities
//
// An entity is a Go value registered under a [Kind] with a [Factory].
// Each invocation gets a fresh value from the factory, decodes the
// account's stored CBOR state into it, runs one [Method], and on
// success encodes the value back. Nothing an entity does is persisted
// unless the whole method returns nil: state, balance changes, and the
// receipts it dispatched are committed in one atomic store batch, so a
// failed method never leaves partial effects.
//
// # Receipts
//
// [Call.Dispatch] queues a [Receipt] addressed to another account.
// Receipts are delivered later, one at a time, by [Host.Step],
// [Host.Deliver], or the [Host.Run] loop. Delivering a receipt runs the
// target method (optionally deploying the target first) and then, if
// the dispatcher named a callback, queues exactly one callback receipt
// back to the dispatcher carrying an [Outcome]. The consumed receipt,
// the target's new state, and the callback receipt are one batch: a
// crash between delivery and callback is impossible.
//
// If the target fails, the forwarded deposit is credited back to the
// dispatching entity. Getting it back to a user is the dispatching
// entity's job, done in its callback.
//
// Callback methods ([Method].Callback) are reachable only through
// callback receipts. An external [Host.Invoke] or an ordinary dispatch
// naming one is refused with PermissionDenied, so an outcome can never
// be forged by an arbitrary caller.
//
// # Concurrency
//
// The host executes one invocation or delivery at a time across all
// entities. Views take a shared lock and may run concurrently with
// each other.
package host
