// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"context"
	"log/slog"
	"testing"

	"github.com/bureau-foundation/museum/cmd/museum/cli"
	"github.com/bureau-foundation/museum/cmd/museum/cli/clitest"
	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/host"
)

func run(t *testing.T, daemon *clitest.Daemon, args ...string) error {
	t.Helper()
	args = append(args, "--socket", daemon.SocketPath)
	return Command().ExecuteContext(context.Background(), args, slog.New(slog.DiscardHandler))
}

func TestCreate(t *testing.T) {
	daemon := clitest.Start(t, map[string]clitest.Reply{
		"create-account": clitest.Returns(host.AccountInfo{ID: "alice", Balance: 100}),
	})
	if err := run(t, daemon, "create", "alice", "--balance", "100"); err != nil {
		t.Fatalf("create: %v", err)
	}
	var request struct {
		Account account.ID     `cbor:"account"`
		Balance account.Amount `cbor:"balance"`
	}
	daemon.Only(t).Decode(t, &request)
	if request.Account != "alice" || request.Balance != 100 {
		t.Errorf("request = %+v", request)
	}
}

func TestShowMissing(t *testing.T) {
	daemon := clitest.Start(t, map[string]clitest.Reply{
		"account": clitest.Fails(fault.Missing("account nobody does not exist")),
	})
	err := run(t, daemon, "show", "nobody")
	if cli.CategoryOf(err) != cli.CategoryNotFound {
		t.Errorf("got %v, want not_found", err)
	}
}

func TestUnreachableDaemon(t *testing.T) {
	err := Command().ExecuteContext(context.Background(),
		[]string{"list", "--socket", t.TempDir() + "/missing.sock"}, slog.New(slog.DiscardHandler))
	if cli.CategoryOf(err) != cli.CategoryTransient {
		t.Errorf("got %v, want a transient error", err)
	}
	if cli.HintOf(err) == "" {
		t.Error("unreachable daemon error carries no hint")
	}
}
