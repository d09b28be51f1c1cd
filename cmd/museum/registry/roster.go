// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/museum/cmd/museum/cli"
	"github.com/bureau-foundation/museum/lib/museum"
)

func ownerCommand() *cli.Command {
	return &cli.Command{
		Name:    "owner",
		Summary: "Add or remove owners",
		Subcommands: []*cli.Command{
			rosterCommand("add", "Add an owner (owners only)", museum.MethodAddOwner),
			rosterCommand("remove", "Remove an owner (owners only; the last owner stays)", museum.MethodRemoveOwner),
		},
	}
}

func contributorCommand() *cli.Command {
	return &cli.Command{
		Name:    "contributor",
		Summary: "Manage contributors",
		Subcommands: []*cli.Command{
			rosterCommand("add", "Add a contributor (owners only)", museum.MethodAddContributor),
			rosterCommand("remove", "Remove a contributor (owners only)", museum.MethodRemoveContributor),
			selfCommand("join", "Join the contributor list as --as", museum.MethodAddMyselfAsContributor),
			selfCommand("leave", "Leave the contributor list as --as", museum.MethodRemoveMyselfAsContributor),
		},
	}
}

type rosterParams struct {
	cli.DaemonConnection
	cli.Signer
}

// rosterCommand builds a command that calls method with another
// account as its argument.
func rosterCommand(name, summary, method string) *cli.Command {
	var params rosterParams

	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   "museum museum <owner|contributor> " + name + " <museum> <account> --as <owner>",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum", "account"); err != nil {
				return err
			}
			id, err := cli.ParseAccount("museum", args[0])
			if err != nil {
				return err
			}
			subject, err := cli.ParseAccount("account", args[1])
			if err != nil {
				return err
			}
			caller, err := params.Account()
			if err != nil {
				return err
			}
			if err := params.Invoke(ctx, caller, id, method, museum.AccountArgs{Account: subject}, 0, nil); err != nil {
				return err
			}
			logger.Info("roster updated", "museum", id, "method", method, "account", subject)
			return nil
		},
	}
}

type selfParams struct {
	cli.DaemonConnection
	cli.Signer
}

// selfCommand builds a command that calls an argument-free method as
// the signer.
func selfCommand(name, summary, method string) *cli.Command {
	var params selfParams

	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   "museum museum contributor " + name + " <museum> --as <account>",
		Params:  func() any { return &params },
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
			if err := params.Invoke(ctx, caller, id, method, nil, 0, nil); err != nil {
				return err
			}
			logger.Info("roster updated", "museum", id, "method", method, "account", caller)
			return nil
		},
	}
}
