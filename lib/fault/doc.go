// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fault defines the error taxonomy shared by every museum
// entity and by the host that runs them.
//
// Each entry point fails with exactly one [Code]. The code survives
// wrapping and crossing the socket protocol: the server writes it into
// the response envelope and the client rebuilds a *[Error], so callers
// match failures the same way in-process and over the wire:
//
//	if errors.Is(err, fault.ErrNotFound) { ... }
//	if fault.Is(err, fault.Conflict) { ... }
//
// Infrastructure failures (storage, codec, transport) are not faults.
// They are ordinary wrapped errors and [CodeOf] reports them as
// [Internal].
package fault
