// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package meme

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/bureau-foundation/museum/cmd/museum/cli"
	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/exhibit"
	"github.com/bureau-foundation/museum/lib/ledger"
	"github.com/bureau-foundation/museum/lib/museum"
)

// parseVote accepts "up", "down", or a signed integer that fits in
// int8. Range rules beyond that are the meme's to enforce.
func parseVote(raw string) (int8, error) {
	switch raw {
	case "up":
		return 1, nil
	case "down":
		return -1, nil
	}
	value, err := strconv.ParseInt(raw, 10, 8)
	if err != nil {
		return 0, cli.Validation("<value> must be up, down, or an integer from %d to %d", math.MinInt8, math.MaxInt8)
	}
	return int8(value), nil
}

type voteParams struct {
	cli.DaemonConnection
	cli.Signer
}

func voteCommand() *cli.Command {
	var params voteParams

	return &cli.Command{
		Name:    "vote",
		Summary: "Vote on a meme",
		Usage:   "museum meme vote <museum> <meme> <up|down|value> --as <account>",
		Description: `Record a vote of +1 or -1. Each vote is added to the score; voting
again adds again.`,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum", "meme", "value"); err != nil {
				return err
			}
			_, _, address, err := target(args)
			if err != nil {
				return err
			}
			value, err := parseVote(args[2])
			if err != nil {
				return err
			}
			caller, err := params.Account()
			if err != nil {
				return err
			}
			if err := params.Invoke(ctx, caller, address, exhibit.MethodVote, exhibit.VoteArgs{Value: value}, 0, nil); err != nil {
				return err
			}
			logger.Info("vote recorded", "meme", address, "value", value)
			return nil
		},
	}
}

type batchVoteParams struct {
	cli.DaemonConnection
	cli.Signer
	Batch bool `flag:"batch" desc:"mark as a pre-aggregated batch, allowing magnitudes up to 127"`
}

func batchVoteCommand() *cli.Command {
	var params batchVoteParams

	return &cli.Command{
		Name:    "batch-vote",
		Summary: "Record a pre-aggregated vote",
		Usage:   "museum meme batch-vote <museum> <meme> <value> [--batch] --as <account>",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum", "meme", "value"); err != nil {
				return err
			}
			_, _, address, err := target(args)
			if err != nil {
				return err
			}
			value, err := parseVote(args[2])
			if err != nil {
				return err
			}
			caller, err := params.Account()
			if err != nil {
				return err
			}
			request := exhibit.BatchVoteArgs{Value: value, IsBatch: params.Batch}
			if err := params.Invoke(ctx, caller, address, exhibit.MethodBatchVote, request, 0, nil); err != nil {
				return err
			}
			logger.Info("vote recorded", "meme", address, "value", value, "batch", params.Batch)
			return nil
		},
	}
}

type commentParams struct {
	cli.DaemonConnection
	cli.Signer
}

func commentCommand() *cli.Command {
	var params commentParams

	return &cli.Command{
		Name:    "comment",
		Summary: "Comment on a meme",
		Usage:   "museum meme comment <museum> <meme> <text>... --as <account>",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) < 3 {
				return cli.Validation("expected <museum> <meme> <text>, got %d argument(s)", len(args))
			}
			_, _, address, err := target(args)
			if err != nil {
				return err
			}
			caller, err := params.Account()
			if err != nil {
				return err
			}
			text := strings.Join(args[2:], " ")
			if err := params.Invoke(ctx, caller, address, exhibit.MethodAddComment, exhibit.CommentArgs{Text: text}, 0, nil); err != nil {
				return err
			}
			logger.Info("comment added", "meme", address, "length", len(text))
			return nil
		},
	}
}

type donateParams struct {
	cli.DaemonConnection
	cli.Signer
}

func donateCommand() *cli.Command {
	var params donateParams

	return &cli.Command{
		Name:    "donate",
		Summary: "Donate to a meme",
		Usage:   "museum meme donate <museum> <meme> <amount> --as <account>",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum", "meme", "amount"); err != nil {
				return err
			}
			_, _, address, err := target(args)
			if err != nil {
				return err
			}
			amount, err := account.ParseAmount(args[2])
			if err != nil {
				return cli.Validation("<amount>: %v", err)
			}
			caller, err := params.Account()
			if err != nil {
				return err
			}
			var total account.Amount
			if err := params.Invoke(ctx, caller, address, exhibit.MethodDonate, nil, amount, &total); err != nil {
				return err
			}
			logger.Info("donation recorded", "meme", address, "amount", amount, "total", total)
			return nil
		},
	}
}

type releaseParams struct {
	cli.DaemonConnection
	cli.Signer
}

func releaseCommand() *cli.Command {
	var params releaseParams

	return &cli.Command{
		Name:    "release",
		Summary: "Release a meme's donations (owners only)",
		Usage:   "museum meme release <museum> <meme> <target> --as <owner>",
		Description: `Ask the meme to transfer its whole donation total to <target>. The
total is reset only once the transfer is confirmed.`,
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum", "meme", "target"); err != nil {
				return err
			}
			museumID, name, _, err := target(args)
			if err != nil {
				return err
			}
			recipient, err := cli.ParseAccount("target", args[2])
			if err != nil {
				return err
			}
			caller, err := params.Account()
			if err != nil {
				return err
			}
			var receiptID string
			err = params.Invoke(ctx, caller, museumID, museum.MethodReleaseMemeDonations, museum.ReleaseArgs{
				Name:   name,
				Target: recipient,
			}, 0, &receiptID)
			if err != nil {
				return err
			}
			logger.Info("donation release dispatched", "museum", museumID, "meme", name, "target", recipient, "receipt", receiptID)
			return nil
		},
	}
}

type recentParams struct {
	cli.DaemonConnection
	cli.JSONOutput
}

// recentCommand builds a command that prints one of a meme's
// recent-entry windows.
func recentCommand(name, summary, method string) *cli.Command {
	var params recentParams

	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   "museum meme " + name + " <museum> <meme> [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if err := cli.ExactArgs(args, "museum", "meme"); err != nil {
				return err
			}
			museumID, meme, _, err := target(args)
			if err != nil {
				return err
			}
			connection := &params.DaemonConnection

			switch method {
			case exhibit.MethodGetRecentVotes:
				var votes []ledger.Vote
				var score int64
				if err := proxy(ctx, connection, museumID, meme, method, &votes); err != nil {
					return err
				}
				if err := proxy(ctx, connection, museumID, meme, exhibit.MethodGetVoteScore, &score); err != nil {
					return err
				}
				if done, err := params.EmitJSON(map[string]any{"score": score, "recent": nonNil(votes)}); done {
					return err
				}
				fmt.Printf("score %s\n", cli.Signed(score))
				rows := make([][]string, 0, len(votes))
				for _, vote := range votes {
					rows = append(rows, []string{vote.Voter.String(), cli.Signed(int64(vote.Value)), cli.Timestamp(vote.CreatedAt)})
				}
				cli.Table(os.Stdout, []string{"VOTER", "VALUE", "AT"}, rows, "no votes")

			case exhibit.MethodGetRecentComments:
				var comments []ledger.Comment
				if err := proxy(ctx, connection, museumID, meme, method, &comments); err != nil {
					return err
				}
				if done, err := params.EmitJSON(comments); done {
					return err
				}
				rows := make([][]string, 0, len(comments))
				for _, comment := range comments {
					rows = append(rows, []string{comment.Author.String(), cli.Timestamp(comment.CreatedAt), comment.Text})
				}
				cli.Table(os.Stdout, []string{"AUTHOR", "AT", "TEXT"}, rows, "no comments")

			case exhibit.MethodGetRecentDonations:
				var donations []ledger.Donation
				var total account.Amount
				if err := proxy(ctx, connection, museumID, meme, method, &donations); err != nil {
					return err
				}
				if err := proxy(ctx, connection, museumID, meme, exhibit.MethodGetDonationsTotal, &total); err != nil {
					return err
				}
				if done, err := params.EmitJSON(map[string]any{"total": total, "recent": nonNil(donations)}); done {
					return err
				}
				fmt.Printf("total %s\n", total)
				rows := make([][]string, 0, len(donations))
				for _, donation := range donations {
					rows = append(rows, []string{donation.Donor.String(), donation.Amount.String(), cli.Timestamp(donation.CreatedAt)})
				}
				cli.Table(os.Stdout, []string{"DONOR", "AMOUNT", "AT"}, rows, "no donations")

			default:
				return cli.Internal("no renderer for %s", method)
			}
			return nil
		},
	}
}

// nonNil keeps JSON output an array when a window is empty.
func nonNil[T any](entries []T) []T {
	if entries == nil {
		return []T{}
	}
	return entries
}
