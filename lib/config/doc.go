// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for museumd.
//
// Configuration is loaded from a single file specified by either the
// MUSEUM_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production defaults are stricter: the
// store must be SQLite-backed so that state survives a restart.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${MUSEUM_ROOT}, and ${VAR:-default} patterns are expanded.
// No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Paths, Store, Ledger, Host
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other museum packages; cmd/museumd
// translates its sections into the store, exhibit, and host configs.
package config
