// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package account implements the "museum account" subcommands: plain
// account creation and balance inspection.
package account

import (
	"context"
	"log/slog"
	"os"

	"github.com/bureau-foundation/museum/cmd/museum/cli"
	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/host"
)

// Command returns the "account" command with its subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "account",
		Summary: "Create and inspect accounts",
		Description: `Create plain accounts and show balances.

Accounts are identified by dot-separated names such as "alice" or
"usain.museum". A meme's account is always a direct child of its
museum's account.`,
		Subcommands: []*cli.Command{
			createCommand(),
			showCommand(),
			listCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Create a funded account",
				Command:     "museum account create alice --balance 100",
			},
			{
				Description: "Show a meme's balance",
				Command:     "museum account show usain.museum",
			},
		},
	}
}

type createParams struct {
	cli.DaemonConnection
	cli.JSONOutput
	Balance uint64 `flag:"balance" desc:"initial balance"`
}

func createCommand() *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a plain account",
		Usage:   "museum account create <account> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "account"); err != nil {
				return err
			}
			id, err := cli.ParseAccount("account", args[0])
			if err != nil {
				return err
			}

			var info host.AccountInfo
			err = params.Call(ctx, "create-account", map[string]any{
				"account": id,
				"balance": account.Amount(params.Balance),
			}, &info)
			if err != nil {
				return err
			}
			logger.Info("account created", "account", id, "balance", info.Balance)

			if done, err := params.EmitJSON(info); done {
				return err
			}
			printAccount(info)
			return nil
		},
	}
}

type showParams struct {
	cli.DaemonConnection
	cli.JSONOutput
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show an account's balance and kind",
		Usage:   "museum account show <account> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if err := cli.ExactArgs(args, "account"); err != nil {
				return err
			}
			id, err := cli.ParseAccount("account", args[0])
			if err != nil {
				return err
			}

			var info host.AccountInfo
			if err := params.Call(ctx, "account", map[string]any{"account": id}, &info); err != nil {
				return err
			}
			if done, err := params.EmitJSON(info); done {
				return err
			}
			printAccount(info)
			return nil
		},
	}
}

type listParams struct {
	cli.DaemonConnection
	cli.JSONOutput
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List every account",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if err := cli.ExactArgs(args); err != nil {
				return err
			}
			var accounts []host.AccountInfo
			if err := params.Call(ctx, "accounts", nil, &accounts); err != nil {
				return err
			}
			if done, err := params.EmitJSON(accounts); done {
				return err
			}

			rows := make([][]string, 0, len(accounts))
			for _, info := range accounts {
				rows = append(rows, []string{info.ID.String(), info.Balance.String(), kindOf(info)})
			}
			cli.Table(os.Stdout, []string{"ACCOUNT", "BALANCE", "KIND"}, rows, "no accounts")
			return nil
		},
	}
}

func printAccount(info host.AccountInfo) {
	cli.Heading(os.Stdout, info.ID.String())
	cli.Details(os.Stdout, []cli.Field{
		{Label: "balance", Value: info.Balance.String()},
		{Label: "kind", Value: kindOf(info)},
		{Label: "created", Value: cli.Timestamp(info.CreatedAt)},
	})
}

func kindOf(info host.AccountInfo) string {
	if info.Kind == "" {
		return "plain"
	}
	return string(info.Kind)
}
