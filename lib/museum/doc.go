// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package museum implements the registry entity: a named museum with
// owners, contributors, and an ordered collection of exhibits that
// live as separate child accounts.
//
// # Two-phase operations
//
// Creating, removing, and releasing funds from an exhibit each cross
// an entity boundary. The museum method registers a pending operation,
// dispatches a request to the exhibit's derived address
// ("<name>.<museum>"), and returns. The host later delivers exactly one
// callback, which resolves the pending operation by kind:
//
//	add_meme               CreateExhibit     on_meme_created
//	remove_meme            RemoveExhibit     on_meme_removed
//	release_meme_donations ReleaseDonations  on_release_requested
//
// A CreateExhibit operation reserves its name until resolution, so two
// concurrent add_meme calls for one name cannot both dispatch. When a
// creation fails the attached deposit has already bounced back to the
// museum; on_meme_created forwards it to the contributor who paid it.
//
// Removed names stay reserved: the retired exhibit keeps its address,
// so the name is recorded as retired and add_meme refuses it.
package museum
