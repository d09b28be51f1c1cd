// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Museum is the command-line client for museumd.
//
// Usage:
//
//	museum account create|show|list
//	museum museum deploy|init|show|pending
//	museum museum owner add|remove
//	museum museum contributor add|remove|join|leave
//	museum meme add|remove|list|show|vote|batch-vote|comment|donate|release
//	museum meme votes|comments|donations
//	museum manifest validate|apply
//	museum status|receipts|version
//
// The exit status classifies failures: 2 for invalid input or a broken
// entity rule, 3 not found, 4 permission denied, 5 conflict, 6 museumd
// unreachable, 1 anything else.
package main
