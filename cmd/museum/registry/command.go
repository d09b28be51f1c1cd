// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry implements the "museum museum" subcommands: deploying
// and initializing a museum, inspecting it, and managing its owner and
// contributor rosters.
package registry

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/bureau-foundation/museum/cmd/museum/cli"
	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/museum"
)

// Command returns the "museum" command with its subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "museum",
		Summary: "Deploy, initialize, and administer museums",
		Description: `Administer a museum: the registry that creates memes at child
accounts and controls who may add them.

Owners manage the rosters and may remove memes or release their
donations. Contributors may add memes. Any account may join or leave
the contributor list on its own behalf.`,
		Subcommands: []*cli.Command{
			deployCommand(),
			initCommand(),
			showCommand(),
			pendingCommand(),
			ownerCommand(),
			contributorCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Deploy and initialize a museum owned by alice",
				Command:     "museum museum deploy museum && museum museum init museum --name Memes --owner alice --as alice",
			},
			{
				Description: "Let bob add memes",
				Command:     "museum museum contributor add museum bob --as alice",
			},
		},
	}
}

type deployParams struct {
	cli.DaemonConnection
	cli.JSONOutput
}

func deployCommand() *cli.Command {
	var params deployParams

	return &cli.Command{
		Name:    "deploy",
		Summary: "Deploy a museum entity on an account",
		Usage:   "museum museum deploy <museum> [flags]",
		Description: `Deploy a museum on the given account, creating the account if it does
not exist. The museum must then be initialized with "museum museum init".`,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum"); err != nil {
				return err
			}
			id, err := cli.ParseAccount("museum", args[0])
			if err != nil {
				return err
			}
			var info host.AccountInfo
			if err := params.Call(ctx, "deploy", map[string]any{"account": id, "kind": museum.Kind}, &info); err != nil {
				return err
			}
			logger.Info("museum deployed", "museum", id)
			if done, err := params.EmitJSON(info); done {
				return err
			}
			return nil
		},
	}
}

type initParams struct {
	cli.DaemonConnection
	cli.Signer
	Name   string   `flag:"name" desc:"display name"`
	Owners []string `flag:"owner" desc:"initial owner (repeatable)"`
}

func initCommand() *cli.Command {
	var params initParams

	return &cli.Command{
		Name:    "init",
		Summary: "Initialize a deployed museum",
		Usage:   "museum museum init <museum> --name <name> --owner <account>... [flags]",
		Description: `Initialize a museum with its name and initial owners. A museum can
be initialized exactly once; the owners also become contributors.`,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum"); err != nil {
				return err
			}
			id, err := cli.ParseAccount("museum", args[0])
			if err != nil {
				return err
			}
			caller, err := params.Account()
			if err != nil {
				return err
			}
			if params.Name == "" {
				return cli.Validation("--name is required")
			}
			owners := make([]account.ID, 0, len(params.Owners))
			for _, raw := range params.Owners {
				owner, err := cli.ParseAccount("owner", raw)
				if err != nil {
					return err
				}
				owners = append(owners, owner)
			}

			err = params.Invoke(ctx, caller, id, museum.MethodInit, museum.InitArgs{
				Name:   params.Name,
				Owners: owners,
			}, 0, nil)
			if err != nil {
				return err
			}
			logger.Info("museum initialized", "museum", id, "name", params.Name, "owners", len(owners))
			return nil
		},
	}
}

// summary is the combined output of "museum museum show".
type summary struct {
	Account      account.ID   `json:"account"`
	Info         museum.Info  `json:"info"`
	Owners       []account.ID `json:"owners"`
	Contributors []account.ID `json:"contributors"`
	Memes        []string     `json:"memes"`
}

type showParams struct {
	cli.DaemonConnection
	cli.JSONOutput
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show a museum's name, rosters, and memes",
		Usage:   "museum museum show <museum> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum"); err != nil {
				return err
			}
			id, err := cli.ParseAccount("museum", args[0])
			if err != nil {
				return err
			}

			result := summary{Account: id}
			views := []struct {
				method string
				out    any
			}{
				{museum.MethodGetMuseum, &result.Info},
				{museum.MethodGetOwnerList, &result.Owners},
				{museum.MethodGetContributorList, &result.Contributors},
				{museum.MethodGetMemeList, &result.Memes},
			}
			for _, view := range views {
				if err := params.View(ctx, id, view.method, nil, view.out); err != nil {
					return err
				}
			}
			if done, err := params.EmitJSON(result); done {
				return err
			}

			cli.Heading(os.Stdout, result.Info.Name)
			cli.Details(os.Stdout, []cli.Field{
				{Label: "account", Value: id.String()},
				{Label: "created", Value: cli.Timestamp(result.Info.CreatedAt)},
				{Label: "owners", Value: joinAccounts(result.Owners)},
				{Label: "contributors", Value: joinAccounts(result.Contributors)},
				{Label: "memes", Value: joinNames(result.Memes)},
			})
			return nil
		},
	}
}

type pendingParams struct {
	cli.DaemonConnection
	cli.JSONOutput
}

func pendingCommand() *cli.Command {
	var params pendingParams

	return &cli.Command{
		Name:    "pending",
		Summary: "List outstanding cross-account operations",
		Usage:   "museum museum pending [museum] [flags]",
		Description: `List operations that have been dispatched but whose callback has not
yet been delivered: meme creations, removals, and donation releases.
With no argument, lists them for every entity (museums and memes).`,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			fields := map[string]any{}
			switch len(args) {
			case 0:
			case 1:
				id, err := cli.ParseAccount("museum", args[0])
				if err != nil {
					return err
				}
				fields["target"] = id
			default:
				return cli.Validation("expected at most one <museum>, got %d arguments", len(args))
			}

			var operations []host.PendingOperation
			if err := params.Call(ctx, "pending", fields, &operations); err != nil {
				return err
			}
			if done, err := params.EmitJSON(operations); done {
				return err
			}

			rows := make([][]string, 0, len(operations))
			for _, operation := range operations {
				rows = append(rows, []string{
					operation.Entity.String(),
					string(operation.Kind),
					operation.Target,
					operation.ReceiptID,
					operation.Age.String(),
				})
			}
			cli.Table(os.Stdout, []string{"ENTITY", "KIND", "TARGET", "RECEIPT", "AGE"}, rows, "no pending operations")
			return nil
		},
	}
}

func joinAccounts(ids []account.ID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	return joinNames(names)
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
