// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the socket protocol museumd serves and the
// CLI speaks.
//
// Each connection carries exactly one request and one response, both
// single CBOR values. A request is a map with an "action" key plus
// action-specific fields. A response is a [Response] envelope: ok,
// and on failure the error message and its fault code, so that
// [Client.Call] can rebuild a *fault.Error and callers can match
// failures with errors.Is end to end.
//
// The package provides building blocks, not a runtime: museumd
// registers its actions on a [SocketServer] in its own main.
package service
