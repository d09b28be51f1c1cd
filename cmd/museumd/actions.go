// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/codec"
	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/manifest"
	"github.com/bureau-foundation/museum/lib/service"
	"github.com/bureau-foundation/museum/lib/version"
)

// registerActions registers every socket action on server.
func (d *Daemon) registerActions(server *service.SocketServer) {
	server.Handle("status", d.handleStatus)
	server.Handle("create-account", d.handleCreateAccount)
	server.Handle("deploy", d.handleDeploy)
	server.Handle("call", d.handleCall)
	server.Handle("view", d.handleView)
	server.Handle("account", d.handleAccount)
	server.Handle("accounts", d.handleAccounts)
	server.Handle("receipts", d.handleReceipts)
	server.Handle("pending", d.handlePending)
	server.Handle("apply-manifest", d.handleApplyManifest)
}

// decodeRequest unmarshals the action's fields from raw.
func decodeRequest[T any](raw []byte) (T, error) {
	var request T
	if err := codec.Unmarshal(raw, &request); err != nil {
		return request, fault.Invalid("decoding request: %v", err)
	}
	return request, nil
}

// statusResponse is the reply to "status".
type statusResponse struct {
	Build         version.Build `cbor:"build"`
	UptimeSeconds float64       `cbor:"uptime_seconds"`
	Accounts      int           `cbor:"accounts"`
	Receipts      int           `cbor:"receipts"`
	Pending       int           `cbor:"pending"`
}

func (d *Daemon) handleStatus(ctx context.Context, raw []byte) (any, error) {
	accounts, err := d.host.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	receipts, err := d.host.Receipts(ctx)
	if err != nil {
		return nil, err
	}
	operations, err := d.host.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return statusResponse{
		Build:         version.Current(),
		UptimeSeconds: d.clock.Now().Sub(d.startedAt).Seconds(),
		Accounts:      len(accounts),
		Receipts:      len(receipts),
		Pending:       len(operations),
	}, nil
}

type createAccountRequest struct {
	Account account.ID     `cbor:"account"`
	Balance account.Amount `cbor:"balance"`
}

func (d *Daemon) handleCreateAccount(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[createAccountRequest](raw)
	if err != nil {
		return nil, err
	}
	if err := d.host.CreateAccount(ctx, request.Account, request.Balance); err != nil {
		return nil, err
	}
	return d.host.Account(ctx, request.Account)
}

type deployRequest struct {
	Account account.ID `cbor:"account"`
	Kind    host.Kind  `cbor:"kind"`
}

func (d *Daemon) handleDeploy(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[deployRequest](raw)
	if err != nil {
		return nil, err
	}
	if !d.host.HasKind(request.Kind) {
		return nil, fault.Invalid("unknown entity kind %q", request.Kind)
	}
	if err := d.host.Deploy(ctx, request.Account, request.Kind); err != nil {
		return nil, err
	}
	return d.host.Account(ctx, request.Account)
}

type callRequest struct {
	Caller  account.ID       `cbor:"caller"`
	Target  account.ID       `cbor:"target"`
	Method  string           `cbor:"method"`
	Args    codec.RawMessage `cbor:"args,omitempty"`
	Deposit account.Amount   `cbor:"deposit,omitempty"`
}

// handleCall invokes a method and returns its encoded result unchanged,
// so the response data is exactly what the method returned.
func (d *Daemon) handleCall(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[callRequest](raw)
	if err != nil {
		return nil, err
	}
	result, err := d.host.Invoke(ctx, host.Invocation{
		Caller:  request.Caller,
		Target:  request.Target,
		Method:  request.Method,
		Args:    host.Args(request.Args),
		Deposit: request.Deposit,
	})
	if err != nil {
		return nil, err
	}
	return rawResult(result), nil
}

type viewRequest struct {
	Target account.ID       `cbor:"target"`
	Method string           `cbor:"method"`
	Args   codec.RawMessage `cbor:"args,omitempty"`
}

func (d *Daemon) handleView(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[viewRequest](raw)
	if err != nil {
		return nil, err
	}
	result, err := d.host.View(ctx, request.Target, request.Method, host.Args(request.Args))
	if err != nil {
		return nil, err
	}
	return rawResult(result), nil
}

// rawResult keeps a method's empty result from being encoded as an
// empty byte string.
func rawResult(result codec.RawMessage) any {
	if len(result) == 0 {
		return nil
	}
	return result
}

type accountRequest struct {
	Account account.ID `cbor:"account"`
}

func (d *Daemon) handleAccount(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[accountRequest](raw)
	if err != nil {
		return nil, err
	}
	return d.host.Account(ctx, request.Account)
}

func (d *Daemon) handleAccounts(ctx context.Context, raw []byte) (any, error) {
	return d.host.Accounts(ctx)
}

func (d *Daemon) handleReceipts(ctx context.Context, raw []byte) (any, error) {
	return d.host.Receipts(ctx)
}

type pendingRequest struct {
	// Target limits the listing to one entity. Empty lists all.
	Target account.ID `cbor:"target,omitempty"`
}

func (d *Daemon) handlePending(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[pendingRequest](raw)
	if err != nil {
		return nil, err
	}
	operations, err := d.host.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if request.Target.IsZero() {
		return operations, nil
	}
	filtered := make([]host.PendingOperation, 0, len(operations))
	for _, operation := range operations {
		if operation.Entity == request.Target {
			filtered = append(filtered, operation)
		}
	}
	return filtered, nil
}

type applyManifestRequest struct {
	Caller   account.ID         `cbor:"caller"`
	Manifest *manifest.Manifest `cbor:"manifest"`
}

func (d *Daemon) handleApplyManifest(ctx context.Context, raw []byte) (any, error) {
	request, err := decodeRequest[applyManifestRequest](raw)
	if err != nil {
		return nil, err
	}
	if request.Manifest == nil {
		return nil, fault.Invalid("missing required field: manifest")
	}
	result, err := manifest.Apply(ctx, d.host, request.Caller, request.Manifest)
	if err != nil {
		return nil, err
	}
	d.logger.Info("manifest applied",
		"museum", result.Museum,
		"caller", request.Caller,
		"memes", len(result.Receipts),
	)
	return result, nil
}
