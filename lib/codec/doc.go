// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the museum's single CBOR configuration.
//
// CBOR is used for every internal byte boundary: entity state records
// in the store, dispatch and callback receipts, call arguments, and the
// museumd socket protocol. JSON appears only at the edges a human
// touches (CLI --json output, JSONC manifests).
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Two
// entities with the same logical state always persist identical bytes,
// which is what lets the store detect a corrupted record by digest.
//
// Struct tags follow one rule: a type that is only ever CBOR uses
// `cbor` tags; a type that is also printed as JSON by the CLI uses
// `json` tags, which fxamacker/cbor reads as a fallback. Never both on
// one field.
package codec
