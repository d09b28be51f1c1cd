// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package exhibit implements the meme entity: one exhibit of a museum,
// with its identity, category, and three bounded ledgers (votes,
// comments, donations).
//
// An exhibit is deployed by its museum at the address
// "<name>.<museum>" and initialized in the same delivery. The museum is
// the only account allowed to release the exhibit's donations or to
// retire it; anybody may vote, comment, or donate while the exhibit is
// Active.
//
// # Donation release
//
// release_donations transfers the current donation total to a target
// account and returns immediately. The amount is captured in a
// ReleaseDonations pending operation and releaseInFlight is set, so a
// second release is refused with Conflict until the host delivers
// on_donations_released. On success the captured amount (not the live
// total, which may have grown since) is subtracted from the total; on
// failure the host has already returned the funds to the exhibit's
// balance and only the flag is cleared.
//
// # Retirement
//
// retire moves the exhibit to Removing and sends its whole balance back
// to the museum. A Removing exhibit refuses every mutating call with
// Conflict but still answers views. The account stays deployed, which
// keeps its name reserved in the museum.
package exhibit
