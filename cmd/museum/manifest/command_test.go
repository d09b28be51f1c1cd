// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/museum/cmd/museum/cli"
	"github.com/bureau-foundation/museum/cmd/museum/cli/clitest"
	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/manifest"
)

const document = `{
	"museum": "museum",
	"name": "Meme Museum",
	"owners": ["alice"],
	"memes": [
		{"name": "usain", "title": "usain refrain", "category": 0}, // trailing comma below
	],
}`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "museum.jsonc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

func execute(args ...string) error {
	return Command().ExecuteContext(context.Background(), args, slog.New(slog.DiscardHandler))
}

func TestValidate(t *testing.T) {
	if err := execute("validate", writeManifest(t, document)); err != nil {
		t.Errorf("validate: %v", err)
	}

	err := execute("validate", writeManifest(t, `{"museum": "museum", "name": "", "owners": []}`))
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Errorf("got %v, want a validation error", err)
	}

	err = execute("validate", filepath.Join(t.TempDir(), "absent.jsonc"))
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Errorf("missing file: got %v, want a validation error", err)
	}
}

func TestApply(t *testing.T) {
	daemon := clitest.Start(t, map[string]clitest.Reply{
		"apply-manifest": clitest.Returns(manifest.Result{
			Museum:   "museum",
			Receipts: map[string]string{"usain": "r-00000001"},
		}),
	})

	err := execute("apply", writeManifest(t, document), "--as", "alice", "--socket", daemon.SocketPath)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	var request struct {
		Caller   account.ID         `cbor:"caller"`
		Manifest *manifest.Manifest `cbor:"manifest"`
	}
	daemon.Only(t).Decode(t, &request)
	if request.Caller != "alice" {
		t.Errorf("caller = %q, want alice", request.Caller)
	}
	if request.Manifest == nil || request.Manifest.Name != "Meme Museum" || len(request.Manifest.Memes) != 1 {
		t.Errorf("manifest = %+v", request.Manifest)
	}
}

func TestApplyRejectsInvalidBeforeSending(t *testing.T) {
	daemon := clitest.Start(t, nil)
	err := execute("apply", writeManifest(t, `{"museum": "museum"}`), "--as", "alice", "--socket", daemon.SocketPath)
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Errorf("got %v, want a validation error", err)
	}
	if requests := daemon.Requests(); len(requests) != 0 {
		t.Errorf("%d requests reached the daemon", len(requests))
	}
}
