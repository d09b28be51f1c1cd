// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package exhibit

import (
	"fmt"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/ledger"
	"github.com/bureau-foundation/museum/lib/pending"
)

// Kind is the host kind exhibits are deployed as.
const Kind host.Kind = "meme"

// Method names.
const (
	MethodInit                = "init"
	MethodGetMeme             = "get_meme"
	MethodVote                = "vote"
	MethodBatchVote           = "batch_vote"
	MethodGetRecentVotes      = "get_recent_votes"
	MethodGetVoteScore        = "get_vote_score"
	MethodAddComment          = "add_comment"
	MethodGetRecentComments   = "get_recent_comments"
	MethodDonate              = "donate"
	MethodGetDonationsTotal   = "get_donations_total"
	MethodGetRecentDonations  = "get_recent_donations"
	MethodReleaseDonations    = "release_donations"
	MethodOnDonationsReleased = "on_donations_released"
	MethodRetire              = "retire"
	MethodGetPending          = host.PendingViewMethod
)

// ViewMethods lists the read-only methods a museum may proxy.
var ViewMethods = []string{
	MethodGetMeme,
	MethodGetRecentVotes,
	MethodGetVoteScore,
	MethodGetRecentComments,
	MethodGetDonationsTotal,
	MethodGetRecentDonations,
	MethodGetPending,
}

// Category classifies an exhibit. The values are fixed; 3 is not a
// category.
type Category uint8

const (
	CategoryA Category = 0
	CategoryB Category = 1
	CategoryC Category = 2
	CategoryD Category = 4
)

// Valid reports whether c is one of the defined categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryA, CategoryB, CategoryC, CategoryD:
		return true
	}
	return false
}

func (c Category) String() string {
	switch c {
	case CategoryA:
		return "A"
	case CategoryB:
		return "B"
	case CategoryC:
		return "C"
	case CategoryD:
		return "D"
	default:
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
}

// Lifecycle is an exhibit's operating state.
type Lifecycle string

const (
	Active   Lifecycle = "active"
	Removing Lifecycle = "removing"
)

// Config holds the limits every exhibit is created with.
type Config struct {
	// VoteWindow, CommentWindow, and DonationWindow are the
	// capacities of the recent-entry logs.
	VoteWindow     int
	CommentWindow  int
	DonationWindow int

	// MaxCommentLength bounds a comment, in characters.
	MaxCommentLength int

	// VoteBound bounds the magnitude of a single vote.
	VoteBound int8

	// BatchVoteBound bounds the magnitude of a batch_vote with
	// is_batch set.
	BatchVoteBound int8

	// MinimumDeposit is the least an exhibit must be created with.
	MinimumDeposit account.Amount
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		VoteWindow:       10,
		CommentWindow:    10,
		DonationWindow:   10,
		MaxCommentLength: 500,
		VoteBound:        1,
		BatchVoteBound:   127,
		MinimumDeposit:   3,
	}
}

// ReleaseSnapshot is what a ReleaseDonations pending operation
// captures at dispatch.
type ReleaseSnapshot struct {
	Amount account.Amount `cbor:"amount"`
	Target account.ID     `cbor:"target"`
}

// Exhibit is the persisted state of one meme.
type Exhibit struct {
	Name      string     `cbor:"name"`
	Title     string     `cbor:"title"`
	Data      string     `cbor:"data"`
	Category  Category   `cbor:"category"`
	Museum    account.ID `cbor:"museum"`
	Creator   account.ID `cbor:"creator"`
	CreatedAt int64      `cbor:"created_at"`

	Lifecycle       Lifecycle `cbor:"lifecycle"`
	ReleaseInFlight bool      `cbor:"release_in_flight"`

	Votes     ledger.Votes                     `cbor:"votes"`
	Comments  ledger.Ring[ledger.Comment]      `cbor:"comments"`
	Donations ledger.Donations                 `cbor:"donations"`
	Pending   pending.Tracker[ReleaseSnapshot] `cbor:"pending"`

	config Config
}

// Factory returns the host factory for exhibits created with config.
func Factory(config Config) host.Factory {
	return func() host.Entity {
		return &Exhibit{config: config}
	}
}

// Methods binds the exhibit's entry points.
func (e *Exhibit) Methods() map[string]host.Method {
	return map[string]host.Method{
		MethodInit:                {Payable: true, Run: e.init},
		MethodGetMeme:             {View: true, Run: e.getMeme},
		MethodVote:                {Run: e.vote},
		MethodBatchVote:           {Run: e.batchVote},
		MethodGetRecentVotes:      {View: true, Run: e.getRecentVotes},
		MethodGetVoteScore:        {View: true, Run: e.getVoteScore},
		MethodAddComment:          {Run: e.addComment},
		MethodGetRecentComments:   {View: true, Run: e.getRecentComments},
		MethodDonate:              {Payable: true, Run: e.donate},
		MethodGetDonationsTotal:   {View: true, Run: e.getDonationsTotal},
		MethodGetRecentDonations:  {View: true, Run: e.getRecentDonations},
		MethodReleaseDonations:    {Run: e.releaseDonations},
		MethodOnDonationsReleased: {Callback: true, Run: e.onDonationsReleased},
		MethodRetire:              {Run: e.retire},
		MethodGetPending:          {View: true, Run: e.getPending},
	}
}

// Arguments.

type InitArgs struct {
	Title    string   `json:"title"`
	Data     string   `json:"data"`
	Category Category `json:"category"`
}

type VoteArgs struct {
	Value int8 `json:"value"`
}

type BatchVoteArgs struct {
	Value   int8 `json:"value"`
	IsBatch bool `json:"is_batch"`
}

type CommentArgs struct {
	Text string `json:"text"`
}

type ReleaseArgs struct {
	Target account.ID `json:"target"`
}

// Snapshot is the get_meme view: every field except pending-operation
// bookkeeping.
type Snapshot struct {
	Name            string            `json:"name"`
	Title           string            `json:"title"`
	Data            string            `json:"data"`
	Category        Category          `json:"category"`
	Museum          account.ID        `json:"museum"`
	Creator         account.ID        `json:"creator"`
	CreatedAt       int64             `json:"created_at"`
	Lifecycle       Lifecycle         `json:"lifecycle"`
	ReleaseInFlight bool              `json:"release_in_flight"`
	VoteScore       int64             `json:"vote_score"`
	DonationsTotal  account.Amount    `json:"donations_total"`
	RecentVotes     []ledger.Vote     `json:"recent_votes"`
	RecentComments  []ledger.Comment  `json:"recent_comments"`
	RecentDonations []ledger.Donation `json:"recent_donations"`
}
