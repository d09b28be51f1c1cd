// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package account provides account identifiers and balances for the
// museum host.
//
// Every addressable thing (a user, a museum registry, an exhibit) is
// an account with an [ID]. Exhibit addresses are derived, never stored:
// [Child] joins an exhibit name onto its museum's ID, so
// "usain" under "museum" is always "usain.museum". A registry can reach
// any of its exhibits from the name alone, and [ID.Parent] recovers the
// owning registry from an exhibit address.
//
// [Amount] is an opaque, non-negative balance. It is not a currency:
// there is no denomination or rounding, only checked addition and
// subtraction so that no code path can wrap a balance around.
package account
