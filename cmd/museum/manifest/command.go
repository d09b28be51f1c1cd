// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest implements the "museum manifest" subcommands, which
// check and apply JSONC museum manifests.
package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/bureau-foundation/museum/cmd/museum/cli"
	"github.com/bureau-foundation/museum/lib/manifest"
)

// Command returns the "manifest" command with its subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "manifest",
		Summary: "Check and apply museum manifests",
		Description: `A manifest describes a whole museum in one JSONC file: its account,
name, owners, contributors, and memes. Comments and trailing commas are
allowed.

Applying a manifest deploys and initializes the museum, registers the
contributors, and dispatches every meme, acting as --as (which must be
one of the manifest's owners and pays every deposit).`,
		Subcommands: []*cli.Command{
			validateCommand(),
			applyCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Check a manifest without contacting museumd",
				Command:     "museum manifest validate museum.jsonc",
			},
			{
				Description: "Build the museum it describes",
				Command:     "museum manifest apply museum.jsonc --as alice",
			},
		},
	}
}

// load reads path and prints every validation issue to stderr.
func load(path string) (*manifest.Manifest, error) {
	document, err := manifest.ReadFile(path)
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	if issues := manifest.Validate(document); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, issue)
		}
		return nil, cli.Validation("%s: %d issue(s)", path, len(issues))
	}
	return document, nil
}

type validateParams struct {
	cli.JSONOutput
}

func validateCommand() *cli.Command {
	var params validateParams

	return &cli.Command{
		Name:    "validate",
		Summary: "Check a manifest without applying it",
		Usage:   "museum manifest validate <file.jsonc> [flags]",
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if err := cli.ExactArgs(args, "file"); err != nil {
				return err
			}
			document, err := load(args[0])
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(document); done {
				return err
			}
			fmt.Printf("%s: museum %s with %d meme(s)\n", args[0], document.Museum, len(document.Memes))
			return nil
		},
	}
}

type applyParams struct {
	cli.DaemonConnection
	cli.Signer
	cli.JSONOutput
}

func applyCommand() *cli.Command {
	var params applyParams

	return &cli.Command{
		Name:    "apply",
		Summary: "Apply a manifest through museumd",
		Usage:   "museum manifest apply <file.jsonc> --as <owner> [flags]",
		Description: `Validate the manifest locally, then have museumd apply it. Memes are
created asynchronously: their receipts are printed and they appear in
"museum meme list" as museumd delivers them.

Steps are not atomic as a group. If one fails, the earlier steps stay
applied and the error names the failing step.`,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "file"); err != nil {
				return err
			}
			caller, err := params.Account()
			if err != nil {
				return err
			}
			document, err := load(args[0])
			if err != nil {
				return err
			}

			var result manifest.Result
			err = params.Call(ctx, "apply-manifest", map[string]any{
				"caller":   caller,
				"manifest": document,
			}, &result)
			if err != nil {
				return err
			}
			logger.Info("manifest applied", "museum", result.Museum, "memes", len(result.Receipts))

			if done, err := params.EmitJSON(result); done {
				return err
			}
			names := make([]string, 0, len(result.Receipts))
			for name := range result.Receipts {
				names = append(names, name)
			}
			slices.Sort(names)
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name, result.Receipts[name]})
			}
			cli.Heading(os.Stdout, result.Museum.String())
			cli.Table(os.Stdout, []string{"MEME", "RECEIPT"}, rows, "no memes")
			return nil
		},
	}
}
