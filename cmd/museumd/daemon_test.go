// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"slices"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/clock"
	"github.com/bureau-foundation/museum/lib/config"
	"github.com/bureau-foundation/museum/lib/exhibit"
	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/manifest"
	"github.com/bureau-foundation/museum/lib/museum"
	"github.com/bureau-foundation/museum/lib/service"
	"github.com/bureau-foundation/museum/lib/store"
	"github.com/bureau-foundation/museum/lib/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// recordHandler forwards records at Warn and above to a channel.
type recordHandler struct {
	records chan<- slog.Record
}

func (h recordHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (h recordHandler) Handle(_ context.Context, record slog.Record) error {
	select {
	case h.records <- record:
	default:
	}
	return nil
}

func (h recordHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h recordHandler) WithGroup(string) slog.Handler      { return h }

// newTestDaemon builds a daemon over an in-memory store with a fake
// clock at epoch.
func newTestDaemon(t *testing.T, logger *slog.Logger) (*Daemon, *clock.FakeClock) {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Backend = "memory"
	cfg.Host.WatchInterval = time.Minute
	cfg.Host.PendingWarnAfter = 5 * time.Minute
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fakeClock := clock.Fake(epoch)
	daemon, err := newDaemon(context.Background(), cfg, store.NewMemory(), fakeClock, logger)
	if err != nil {
		t.Fatalf("newDaemon: %v", err)
	}
	return daemon, fakeClock
}

// startSocket serves daemon's actions on a fresh socket until the test
// ends. Receipts are not delivered unless the test drains them.
func startSocket(t *testing.T, daemon *Daemon) *service.Client {
	t.Helper()
	socketPath := testutil.SocketPath(t, "museumd")
	server := service.NewSocketServer(socketPath, nil)
	daemon.registerActions(server)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx)
	}()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")
	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, done, 5*time.Second, "Serve to return"); err != nil {
			t.Errorf("Serve: %v", err)
		}
	})
	return service.NewClient(socketPath)
}

func call(t *testing.T, client *service.Client, action string, fields map[string]any, result any) {
	t.Helper()
	if err := client.Call(context.Background(), action, fields, result); err != nil {
		t.Fatalf("%s: %v", action, err)
	}
}

func drain(t *testing.T, daemon *Daemon) {
	t.Helper()
	if _, err := daemon.host.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
}

// setupMuseum creates alice with 100 and an initialized museum she
// owns.
func setupMuseum(t *testing.T, client *service.Client) {
	t.Helper()
	call(t, client, "create-account", map[string]any{"account": "alice", "balance": 100}, nil)
	call(t, client, "deploy", map[string]any{"account": "museum", "kind": museum.Kind}, nil)
	call(t, client, "call", map[string]any{
		"caller": "alice",
		"target": "museum",
		"method": museum.MethodInit,
		"args":   museum.InitArgs{Name: "Memes", Owners: []account.ID{"alice"}},
	}, nil)
}

func TestAccountActions(t *testing.T) {
	daemon, _ := newTestDaemon(t, nil)
	client := startSocket(t, daemon)

	var created host.AccountInfo
	call(t, client, "create-account", map[string]any{"account": "alice", "balance": 100}, &created)
	if created.ID != "alice" || created.Balance != 100 || created.Kind != "" {
		t.Errorf("create-account = %+v", created)
	}

	err := client.Call(context.Background(), "create-account", map[string]any{"account": "alice"}, nil)
	if !fault.Is(err, fault.Conflict) {
		t.Errorf("duplicate create-account: got %v, want conflict", err)
	}
	err = client.Call(context.Background(), "create-account", map[string]any{"account": "A"}, nil)
	if !fault.Is(err, fault.Validation) {
		t.Errorf("invalid account id: got %v, want validation", err)
	}

	var deployed host.AccountInfo
	call(t, client, "deploy", map[string]any{"account": "museum", "kind": museum.Kind}, &deployed)
	if deployed.Kind != museum.Kind {
		t.Errorf("deploy kind = %q, want %q", deployed.Kind, museum.Kind)
	}
	err = client.Call(context.Background(), "deploy", map[string]any{"account": "other", "kind": "gallery"}, nil)
	if !fault.Is(err, fault.Validation) {
		t.Errorf("unknown kind: got %v, want validation", err)
	}

	var shown host.AccountInfo
	call(t, client, "account", map[string]any{"account": "alice"}, &shown)
	if shown.Balance != 100 {
		t.Errorf("account balance = %d, want 100", shown.Balance)
	}
	err = client.Call(context.Background(), "account", map[string]any{"account": "nobody"}, nil)
	if !fault.Is(err, fault.NotFound) {
		t.Errorf("missing account: got %v, want not_found", err)
	}

	var accounts []host.AccountInfo
	call(t, client, "accounts", nil, &accounts)
	if len(accounts) != 2 {
		t.Errorf("accounts = %d, want 2", len(accounts))
	}
}

func TestCallAndView(t *testing.T) {
	daemon, _ := newTestDaemon(t, nil)
	client := startSocket(t, daemon)
	setupMuseum(t, client)

	var receiptID string
	call(t, client, "call", map[string]any{
		"caller":  "alice",
		"target":  "museum",
		"method":  museum.MethodAddMeme,
		"args":    museum.AddMemeArgs{Name: "usain", Title: "Usain", Data: "https://example.org/usain.png", Category: exhibit.CategoryA},
		"deposit": 3,
	}, &receiptID)
	if receiptID == "" {
		t.Fatal("add_meme returned an empty receipt ID")
	}

	var receipts []host.Receipt
	call(t, client, "receipts", nil, &receipts)
	if len(receipts) != 1 || receipts[0].ID != receiptID {
		t.Fatalf("receipts = %+v, want the add_meme dispatch", receipts)
	}

	var operations []host.PendingOperation
	call(t, client, "pending", map[string]any{"target": "museum"}, &operations)
	if len(operations) != 1 || operations[0].Target != "usain" || operations[0].ReceiptID != receiptID {
		t.Fatalf("pending = %+v", operations)
	}
	call(t, client, "pending", map[string]any{"target": "elsewhere"}, &operations)
	if len(operations) != 0 {
		t.Errorf("pending for another entity = %+v, want none", operations)
	}

	drain(t, daemon)

	var memes []string
	call(t, client, "view", map[string]any{"target": "museum", "method": museum.MethodGetMemeList}, &memes)
	if !slices.Equal(memes, []string{"usain"}) {
		t.Errorf("meme list = %v, want [usain]", memes)
	}

	call(t, client, "call", map[string]any{
		"caller": "alice",
		"target": "usain.museum",
		"method": exhibit.MethodVote,
		"args":   exhibit.VoteArgs{Value: 1},
	}, nil)
	var score int64
	call(t, client, "view", map[string]any{
		"target": "museum",
		"method": museum.MethodMuseumToMemeProxy,
		"args":   museum.ProxyArgs{Name: "usain", ViewFunction: exhibit.MethodGetVoteScore},
	}, &score)
	if score != 1 {
		t.Errorf("proxied score = %d, want 1", score)
	}

	err := client.Call(context.Background(), "call", map[string]any{
		"caller": "alice",
		"target": "museum",
		"method": museum.MethodRemoveOwner,
		"args":   museum.AccountArgs{Account: "alice"},
	}, nil)
	if !fault.Is(err, fault.InvariantViolation) {
		t.Errorf("removing the last owner: got %v, want invariant_violation", err)
	}

	err = client.Call(context.Background(), "view", map[string]any{"target": "museum", "method": museum.MethodAddMeme}, nil)
	if !fault.Is(err, fault.PermissionDenied) {
		t.Errorf("viewing a call method: got %v, want permission_denied", err)
	}

	var status statusResponse
	call(t, client, "status", nil, &status)
	if status.Accounts != 3 || status.Receipts != 0 || status.Pending != 0 {
		t.Errorf("status = %+v, want 3 accounts and an empty queue", status)
	}
}

func TestApplyManifest(t *testing.T) {
	daemon, _ := newTestDaemon(t, nil)
	client := startSocket(t, daemon)
	call(t, client, "create-account", map[string]any{"account": "alice", "balance": 100}, nil)

	document := &manifest.Manifest{
		Museum:       "museum",
		Name:         "Memes",
		Owners:       []account.ID{"alice"},
		Contributors: []account.ID{"bob"},
		Memes: []manifest.Meme{
			{Name: "usain", Title: "Usain", Data: "usain.png", Category: exhibit.CategoryB},
			{Name: "doge", Title: "Doge", Data: "doge.png", Category: exhibit.CategoryD, Deposit: 5},
		},
	}
	var result manifest.Result
	call(t, client, "apply-manifest", map[string]any{"caller": "alice", "manifest": document}, &result)
	if result.Museum != "museum" || len(result.Receipts) != 2 {
		t.Fatalf("apply-manifest = %+v", result)
	}

	drain(t, daemon)

	var memes []string
	call(t, client, "view", map[string]any{"target": "museum", "method": museum.MethodGetMemeList}, &memes)
	if !slices.Equal(memes, []string{"usain", "doge"}) {
		t.Errorf("meme list = %v, want [usain doge]", memes)
	}
	var contributors []account.ID
	call(t, client, "view", map[string]any{"target": "museum", "method": museum.MethodGetContributorList}, &contributors)
	if !slices.Contains(contributors, "bob") {
		t.Errorf("contributors = %v, want bob included", contributors)
	}

	err := client.Call(context.Background(), "apply-manifest", map[string]any{"caller": "alice"}, nil)
	if !fault.Is(err, fault.Validation) {
		t.Errorf("missing manifest: got %v, want validation", err)
	}
}

func TestServeDeliversAndStops(t *testing.T) {
	daemon, _ := newTestDaemon(t, nil)
	socketPath := testutil.SocketPath(t, "museumd")
	server := service.NewSocketServer(socketPath, nil)
	daemon.registerActions(server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- daemon.serve(ctx, server)
	}()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")

	client := service.NewClient(socketPath)
	setupMuseum(t, client)
	call(t, client, "call", map[string]any{
		"caller":  "alice",
		"target":  "museum",
		"method":  museum.MethodAddMeme,
		"args":    museum.AddMemeArgs{Name: "usain", Title: "Usain", Data: "usain.png"},
		"deposit": 3,
	}, nil)

	// The delivery loop runs in real time; poll until the callback lands.
	deadline := time.Now().Add(5 * time.Second)
	for {
		var count int
		call(t, client, "view", map[string]any{"target": "museum", "method": museum.MethodGetMemeCount}, &count)
		if count == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("meme was not delivered by the running daemon")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "serve to return"); err != nil {
		t.Errorf("serve: %v", err)
	}
}

func TestWatchWarnsAboutStaleOperations(t *testing.T) {
	records := make(chan slog.Record, 16)
	daemon, fakeClock := newTestDaemon(t, slog.New(recordHandler{records: records}))
	client := startSocket(t, daemon)
	setupMuseum(t, client)
	call(t, client, "call", map[string]any{
		"caller":  "alice",
		"target":  "museum",
		"method":  museum.MethodAddMeme,
		"args":    museum.AddMemeArgs{Name: "usain", Title: "Usain", Data: "usain.png"},
		"deposit": 3,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- daemon.watch(ctx)
	}()
	defer func() {
		cancel()
		if err := testutil.RequireReceive(t, done, 5*time.Second, "watch to return"); err != nil {
			t.Errorf("watch: %v", err)
		}
	}()

	// The ticker is registered by the goroutine; keep advancing until
	// a tick lands after registration.
	deadline := time.Now().Add(5 * time.Second)
	for {
		fakeClock.Advance(6 * time.Minute)
		select {
		case record := <-records:
			if record.Message != "pending operation outstanding" && record.Message != "stale pending operations" {
				t.Fatalf("unexpected warning %q", record.Message)
			}
			return
		case <-time.After(20 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatal("no stale-operation warning was logged")
		}
	}
}
