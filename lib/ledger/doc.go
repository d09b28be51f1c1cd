// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledger provides the append-bounded logs an exhibit keeps for
// votes, comments, and donations.
//
// Each log is a [Ring]: it retains only the most recent Capacity
// entries, evicting the oldest on overflow, in O(1) per append. A ring
// is a display window, never a source of truth. The authoritative
// numbers are the running aggregates kept beside it: [Votes].Score is
// the sum of every vote value ever accepted and [Donations].Total is
// the sum of every accepted donation minus what was released. Neither
// aggregate is ever recomputed from the window.
//
// All types here are plain values persisted inside exhibit state with
// CBOR; they hold no locks and assume the caller serializes access.
package ledger
