// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete museum CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	accountcmd "github.com/bureau-foundation/museum/cmd/museum/account"
	"github.com/bureau-foundation/museum/cmd/museum/cli"
	manifestcmd "github.com/bureau-foundation/museum/cmd/museum/manifest"
	memecmd "github.com/bureau-foundation/museum/cmd/museum/meme"
	registrycmd "github.com/bureau-foundation/museum/cmd/museum/registry"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/version"
)

// Root builds and returns the complete museum CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "museum",
		Description: `museum: a registry of memes.

Talks to a running museumd over its Unix socket (--socket or
$MUSEUM_SOCKET). Commands that change state act for the account given
by --as (or $MUSEUM_ACCOUNT).`,
		Subcommands: []*cli.Command{
			accountcmd.Command(),
			registrycmd.Command(),
			memecmd.Command(),
			manifestcmd.Command(),
			statusCommand(),
			receiptsCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Printf("museum %s\n", version.Full())
					return nil
				},
			},
		},
	}
}

// daemonStatus mirrors museumd's "status" response.
type daemonStatus struct {
	Build         version.Build `json:"build"`
	UptimeSeconds float64       `json:"uptime_seconds"`
	Accounts      int           `json:"accounts"`
	Receipts      int           `json:"receipts"`
	Pending       int           `json:"pending"`
}

type statusParams struct {
	cli.DaemonConnection
	cli.JSONOutput
}

func statusCommand() *cli.Command {
	var params statusParams

	return &cli.Command{
		Name:    "status",
		Summary: "Show museumd's version and queue depth",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if err := cli.ExactArgs(args); err != nil {
				return err
			}
			var status daemonStatus
			if err := params.Call(ctx, "status", nil, &status); err != nil {
				return err
			}
			if done, err := params.EmitJSON(status); done {
				return err
			}
			cli.Heading(os.Stdout, "museumd "+status.Build.String())
			cli.Details(os.Stdout, []cli.Field{
				{Label: "socket", Value: params.SocketPath},
				{Label: "uptime", Value: fmt.Sprintf("%.0fs", status.UptimeSeconds)},
				{Label: "accounts", Value: strconv.Itoa(status.Accounts)},
				{Label: "queued receipts", Value: strconv.Itoa(status.Receipts)},
				{Label: "pending operations", Value: strconv.Itoa(status.Pending)},
			})
			return nil
		},
	}
}

type receiptsParams struct {
	cli.DaemonConnection
	cli.JSONOutput
}

func receiptsCommand() *cli.Command {
	var params receiptsParams

	return &cli.Command{
		Name:    "receipts",
		Summary: "List receipts queued for delivery",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if err := cli.ExactArgs(args); err != nil {
				return err
			}
			var receipts []host.Receipt
			if err := params.Call(ctx, "receipts", nil, &receipts); err != nil {
				return err
			}
			if done, err := params.EmitJSON(receipts); done {
				return err
			}
			rows := make([][]string, 0, len(receipts))
			for _, receipt := range receipts {
				rows = append(rows, []string{receipt.ID, receipt.Describe()})
			}
			cli.Table(os.Stdout, []string{"RECEIPT", "DELIVERS"}, rows, "queue is empty")
			return nil
		},
	}
}
