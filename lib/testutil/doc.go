// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for museum packages.
//
// [SocketDir] and [SocketPath] place Unix sockets under /tmp, since
// t.TempDir() can exceed the 108-byte sun_path limit.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern for tests that wait on goroutines (the delivery loop, the
// socket server). They are the only place tests use wall-clock
// timeouts.
//
// [UniqueID] generates identifiers that are also valid account IDs,
// for tests that share a host or a socket server.
//
// All helpers call t.Fatalf on failure. This package has no
// museum-internal dependencies.
package testutil
