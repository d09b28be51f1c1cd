// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pending records in-flight two-phase cross-entity operations
// so the callback that eventually arrives can be matched and
// reconciled.
//
// An entity that dispatches a request to another entity cannot wait
// for the answer: the dispatching call returns immediately and the
// host delivers the outcome later as a separate callback invocation.
// Between the two, the entity holds an [Operation] in its [Tracker],
// keyed by {kind, target}. The key enforces "one at a time" rules (one
// creation per name, one release per exhibit) and the operation's
// Snapshot carries whatever the callback needs to commit or roll back.
//
// The tracker is persisted as part of the entity's state, so an
// operation outstanding across a daemon restart is still resolvable
// when its callback is delivered.
//
// Lifecycle of one operation:
//
//	Begin       -> Idle to Dispatched (Conflict if the key is taken)
//	BindReceipt -> records which dispatch the callback will answer
//	Resolve     -> Dispatched to Committed or RolledBack, then removed
//
// Resolve refuses unknown keys and mismatched receipts with NotFound
// and does not run the transition, so duplicate or forged callbacks
// cannot change state.
package pending
