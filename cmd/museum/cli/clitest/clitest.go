// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clitest runs a scripted museumd socket for command tests. It
// records every request and answers each action from a table of
// replies, so command tests can assert on exactly what was sent.
package clitest

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/museum/lib/codec"
	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/service"
	"github.com/bureau-foundation/museum/lib/testutil"
)

// Reply produces the response to one request.
type Reply func(request Request) (any, error)

// Returns is a Reply that always answers value.
func Returns(value any) Reply {
	return func(Request) (any, error) { return value, nil }
}

// Fails is a Reply that always answers err.
func Fails(err error) Reply {
	return func(Request) (any, error) { return nil, err }
}

// Request is one recorded request.
type Request struct {
	Action string
	Fields map[string]any
	raw    []byte
}

// Decode decodes the whole request into out.
func (r Request) Decode(t testing.TB, out any) {
	t.Helper()
	if err := codec.Unmarshal(r.raw, out); err != nil {
		t.Fatalf("decoding %s request: %v", r.Action, err)
	}
}

// Args decodes the request's "args" field into out.
func (r Request) Args(t testing.TB, out any) {
	t.Helper()
	if err := r.DecodeArgs(out); err != nil {
		t.Fatalf("decoding %s args: %v", r.Action, err)
	}
}

// DecodeArgs is Args for use inside a Reply, which runs on the
// server's goroutine and must not fail the test directly.
func (r Request) DecodeArgs(out any) error {
	var envelope struct {
		Args codec.RawMessage `cbor:"args"`
	}
	if err := codec.Unmarshal(r.raw, &envelope); err != nil {
		return err
	}
	if len(envelope.Args) == 0 {
		return fault.Invalid("%s request has no args", r.Action)
	}
	return codec.Unmarshal(envelope.Args, out)
}

// Daemon is a running fake museumd.
type Daemon struct {
	SocketPath string

	mu       sync.Mutex
	requests []Request
}

// Start serves replies on a fresh socket until the test ends. Actions
// without a reply answer not_found, as museumd does.
func Start(t *testing.T, replies map[string]Reply) *Daemon {
	t.Helper()
	daemon := &Daemon{SocketPath: testutil.SocketPath(t, "museumd")}
	server := service.NewSocketServer(daemon.SocketPath, nil)
	for action, reply := range replies {
		server.Handle(action, daemon.handler(action, reply))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx)
	}()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "fake daemon ready")
	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, done, 5*time.Second, "fake daemon to stop"); err != nil {
			t.Errorf("fake daemon: %v", err)
		}
	})
	return daemon
}

func (d *Daemon) handler(action string, reply Reply) service.ActionFunc {
	return func(_ context.Context, raw []byte) (any, error) {
		var fields map[string]any
		if err := codec.Unmarshal(raw, &fields); err != nil {
			return nil, fault.Invalid("decoding request: %v", err)
		}
		request := Request{Action: action, Fields: fields, raw: slices.Clone(raw)}
		d.mu.Lock()
		d.requests = append(d.requests, request)
		d.mu.Unlock()
		return reply(request)
	}
}

// Requests returns every request received so far, in order.
func (d *Daemon) Requests() []Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.requests)
}

// Only returns the single request received, failing the test if there
// were zero or several.
func (d *Daemon) Only(t testing.TB) Request {
	t.Helper()
	requests := d.Requests()
	if len(requests) != 1 {
		t.Fatalf("got %d requests, want exactly 1", len(requests))
	}
	return requests[0]
}
