// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the museum CLI.
//
// The central type is [Command]: a named subcommand with optional
// nested [Command.Subcommands], a params struct whose tagged fields
// become pflag flags (see [BindFlags]), and a Run function. Commands
// are assembled into a tree in cmd/museum/commands and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing,
// and help output with examples. Unknown subcommands and flags get a
// "did you mean" suggestion by edit distance.
//
// Commands reach museumd through [DaemonConnection] (the --socket
// flag) and act for the account named by [Signer] (the --as flag).
// Errors are classified by [CategoryOf], which maps entity fault
// codes to process exit codes.
package cli
