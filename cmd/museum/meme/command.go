// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package meme implements the "museum meme" subcommands: adding and
// removing memes through their museum, voting, commenting, donating,
// and reading a meme's recent activity.
//
// Every meme lives at a child account of its museum ("usain" in museum
// "museum" is "usain.museum"). Writes go to that account directly,
// except add, remove, and release, which the museum mediates. Reads go
// through the museum's proxy view so only the museum account needs to
// be known.
package meme

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/bureau-foundation/museum/cmd/museum/cli"
	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/exhibit"
	"github.com/bureau-foundation/museum/lib/museum"
)

// Command returns the "meme" command with its subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "meme",
		Summary: "Add, vote on, comment on, and donate to memes",
		Description: `Work with the memes of a museum.

Adding a meme dispatches its creation to the meme's own account; the
meme appears in "museum meme list" once museumd delivers the creation
and its callback. The same holds for removal and donation release.`,
		Subcommands: []*cli.Command{
			addCommand(),
			removeCommand(),
			listCommand(),
			showCommand(),
			voteCommand(),
			batchVoteCommand(),
			commentCommand(),
			donateCommand(),
			releaseCommand(),
			recentCommand("votes", "Show recent votes and the score", exhibit.MethodGetRecentVotes),
			recentCommand("comments", "Show recent comments", exhibit.MethodGetRecentComments),
			recentCommand("donations", "Show recent donations and the total", exhibit.MethodGetRecentDonations),
		},
		Examples: []cli.Example{
			{
				Description: "Add a meme with the minimum deposit",
				Command:     "museum meme add museum usain --title 'Usain Bolt' --data https://example.org/usain.png --as bob",
			},
			{
				Description: "Downvote a meme (negative values follow --)",
				Command:     "museum meme vote museum usain --as carol -- -1",
			},
			{
				Description: "Release a meme's donations to its creator",
				Command:     "museum meme release museum usain bob --as alice",
			},
		},
	}
}

// target parses the <museum> <meme> positional pair.
func target(args []string) (account.ID, string, account.ID, error) {
	museumID, err := cli.ParseAccount("museum", args[0])
	if err != nil {
		return "", "", "", err
	}
	address, err := cli.MemeAddress(museumID, args[1])
	if err != nil {
		return "", "", "", err
	}
	return museumID, args[1], address, nil
}

type addParams struct {
	cli.DaemonConnection
	cli.Signer
	cli.JSONOutput
	Title    string `flag:"title" desc:"meme title"`
	Data     string `flag:"data" desc:"meme payload, usually an image URL"`
	Category int    `flag:"category" desc:"category: 0, 1, 2, or 4"`
	Deposit  uint64 `flag:"deposit" default:"3" desc:"deposit attached to the creation"`
}

func addCommand() *cli.Command {
	var params addParams

	return &cli.Command{
		Name:    "add",
		Summary: "Add a meme to a museum (contributors only)",
		Usage:   "museum meme add <museum> <meme> --title <title> [flags]",
		Description: `Create a meme at <meme>.<museum>. The deposit funds the meme's
account and must be at least the configured minimum. If creation
fails the deposit is refunded to --as.

Prints the receipt ID of the dispatched creation.`,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum", "meme"); err != nil {
				return err
			}
			museumID, name, address, err := target(args)
			if err != nil {
				return err
			}
			caller, err := params.Account()
			if err != nil {
				return err
			}
			category := exhibit.Category(params.Category)
			if params.Category < 0 || params.Category > 255 || !category.Valid() {
				return cli.Validation("--category %d is not one of 0, 1, 2, 4", params.Category)
			}

			var receiptID string
			err = params.Invoke(ctx, caller, museumID, museum.MethodAddMeme, museum.AddMemeArgs{
				Name:     name,
				Title:    params.Title,
				Data:     params.Data,
				Category: category,
			}, account.Amount(params.Deposit), &receiptID)
			if err != nil {
				return err
			}
			logger.Info("meme creation dispatched", "museum", museumID, "meme", address, "receipt", receiptID)

			if done, err := params.EmitJSON(map[string]any{"meme": address, "receipt": receiptID}); done {
				return err
			}
			cli.Details(os.Stdout, []cli.Field{
				{Label: "meme", Value: address.String()},
				{Label: "receipt", Value: receiptID},
			})
			return nil
		},
	}
}

type removeParams struct {
	cli.DaemonConnection
	cli.Signer
}

func removeCommand() *cli.Command {
	var params removeParams

	return &cli.Command{
		Name:    "remove",
		Summary: "Retire a meme (owners only)",
		Usage:   "museum meme remove <museum> <meme> --as <owner>",
		Description: `Retire a meme. It stops accepting votes, comments, and donations
and leaves the museum's list. Its name stays reserved and its account
keeps its balance.`,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum", "meme"); err != nil {
				return err
			}
			museumID, name, _, err := target(args)
			if err != nil {
				return err
			}
			caller, err := params.Account()
			if err != nil {
				return err
			}
			var receiptID string
			if err := params.Invoke(ctx, caller, museumID, museum.MethodRemoveMeme, museum.NameArgs{Name: name}, 0, &receiptID); err != nil {
				return err
			}
			logger.Info("meme removal dispatched", "museum", museumID, "meme", name, "receipt", receiptID)
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
		Summary: "List a museum's memes",
		Usage:   "museum meme list <museum> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum"); err != nil {
				return err
			}
			museumID, err := cli.ParseAccount("museum", args[0])
			if err != nil {
				return err
			}
			var names []string
			if err := params.View(ctx, museumID, museum.MethodGetMemeList, nil, &names); err != nil {
				return err
			}
			if done, err := params.EmitJSON(names); done {
				return err
			}

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				address, err := cli.MemeAddress(museumID, name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{name, address.String()})
			}
			cli.Table(os.Stdout, []string{"MEME", "ACCOUNT"}, rows, "no memes")
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
		Summary: "Show a meme",
		Usage:   "museum meme show <museum> <meme> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum", "meme"); err != nil {
				return err
			}
			museumID, name, address, err := target(args)
			if err != nil {
				return err
			}
			var snapshot exhibit.Snapshot
			if err := proxy(ctx, &params.DaemonConnection, museumID, name, exhibit.MethodGetMeme, &snapshot); err != nil {
				return err
			}
			if done, err := params.EmitJSON(snapshot); done {
				return err
			}

			cli.Heading(os.Stdout, snapshot.Title)
			cli.Details(os.Stdout, []cli.Field{
				{Label: "account", Value: address.String()},
				{Label: "data", Value: snapshot.Data},
				{Label: "category", Value: snapshot.Category.String()},
				{Label: "creator", Value: snapshot.Creator.String()},
				{Label: "created", Value: cli.Timestamp(snapshot.CreatedAt)},
				{Label: "state", Value: string(snapshot.Lifecycle)},
				{Label: "score", Value: cli.Signed(snapshot.VoteScore)},
				{Label: "donations", Value: snapshot.DonationsTotal.String()},
				{Label: "comments", Value: strconv.Itoa(len(snapshot.RecentComments))},
			})
			return nil
		},
	}
}

// proxy reads a meme view through its museum.
func proxy(ctx context.Context, connection *cli.DaemonConnection, museumID account.ID, name, method string, out any) error {
	return connection.View(ctx, museumID, museum.MethodMuseumToMemeProxy, museum.ProxyArgs{
		Name:         name,
		ViewFunction: method,
	}, out)
}
