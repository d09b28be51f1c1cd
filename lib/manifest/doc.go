// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest reads declarative museum manifests and applies them
// to a host as ordinary invocations.
//
// Manifests are authored as JSONC (JSON with // and /* */ comments and
// trailing commas):
//
//	{
//	  "museum": "museum",
//	  "name": "Meme Museum",
//	  "owners": ["alice"],
//	  "contributors": ["bob"],
//	  "memes": [
//	    {"name": "usain", "title": "usain refrain", "category": 0},
//	  ],
//	}
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes to a [Manifest]
//  2. Validate: structural checks, returned as a list of issues
//  3. Apply: deploy the museum, initialize it, add contributors, and
//     dispatch one add_meme per exhibit
//
// Apply only dispatches exhibit creation. The exhibits appear in the
// museum's list once the host delivers their creation receipts.
package manifest
