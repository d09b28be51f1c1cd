// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package store is the persistent key-value layer the museum host keeps
// entity state and the receipt queue in.
//
// A [Store] exposes point reads, ordered prefix scans, and one write
// primitive: [Store.Apply], which commits a batch of puts and deletes
// atomically. The host commits every invocation (entity records, the
// receipts it produced, the receipt it consumed) as one batch, so a
// crash can never leave a callback half delivered.
//
// Two backends are provided:
//
//   - [NewMemory]: a map guarded by a mutex. Used by tests and by
//     museumd when store.backend is "memory".
//   - [OpenSQLite]: a single-table SQLite database opened through a
//     WAL-mode connection pool (zombiezen.com/go/sqlite). Batches run
//     inside an IMMEDIATE transaction.
//
// Values written through [Records] are sealed: CBOR-encoded, optionally
// compressed with LZ4 or zstd, and prefixed with a BLAKE3 keyed digest
// of the uncompressed bytes. [Records.Load] verifies the digest before
// decoding, so on-disk corruption surfaces as an error instead of as
// silently wrong entity state.
package store
