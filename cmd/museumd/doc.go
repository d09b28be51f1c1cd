// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// museumd hosts museum and meme entities and serves them over a Unix
// socket.
//
// It opens the configured record store, resumes any queued receipts,
// and runs three loops until SIGINT or SIGTERM: the socket server,
// the receipt delivery loop, and a watchdog that logs pending
// operations older than host.pending_warn_after.
//
// Socket actions (CBOR request maps, see lib/service):
//
//	status                                      liveness, build, and queue depth
//	create-account  {account, balance}          plain funded account
//	deploy          {account, kind}             deploy "museum" or "meme"
//	call            {caller, target, method, args, deposit}
//	view            {target, method, args}
//	account         {account}                   balance and kind
//	accounts                                    every account
//	receipts                                    queued receipts in delivery order
//	pending         {target}                    outstanding two-phase operations
//	apply-manifest  {caller, manifest}          deploy and seed a museum
//
// Configuration comes from --config or MUSEUM_CONFIG (see lib/config).
package main
