// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used for ledger
// timestamps, pending-operation ages, and the stale-operation watchdog.
//
// Production code holds a [Clock] field and is built with [Real]. Tests
// build it with [Fake], which stands still until Advance is called:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	h := host.New(host.Config{Clock: c, ...})
//	c.Advance(time.Minute) // every ledger entry after this is one minute later
//
// Ledger entries need a monotonic timestamp. Real strips nothing from
// time.Now, so comparisons between two Real readings use the monotonic
// reading; FakeClock only moves forward because Advance rejects
// negative durations.
package clock
