// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package exhibit

import (
	"strings"
	"unicode/utf8"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/ledger"
	"github.com/bureau-foundation/museum/lib/pending"
)

func (e *Exhibit) initialized() bool {
	return e.Name != ""
}

func (e *Exhibit) requireInitialized() error {
	if !e.initialized() {
		return fault.Conflicting("exhibit is not initialized")
	}
	return nil
}

// requireActive guards every mutating entry point.
func (e *Exhibit) requireActive() error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if e.Lifecycle != Active {
		return fault.Conflicting("exhibit %q is %s", e.Name, e.Lifecycle)
	}
	return nil
}

func (e *Exhibit) requireMuseum(call *host.Call) error {
	if call.Caller != e.Museum {
		return fault.Denied("only museum %s may do this, not %s", e.Museum, call.Caller)
	}
	return nil
}

func (e *Exhibit) init(call *host.Call, args host.Args) (any, error) {
	if e.initialized() {
		return nil, fault.New(fault.OnceOnly, "exhibit %s is already initialized", call.Self)
	}
	request, err := host.DecodeArgs[InitArgs](args)
	if err != nil {
		return nil, err
	}
	if !call.Self.IsChildOf(call.Caller) {
		return nil, fault.Denied("%s can only be initialized by its museum, not %s", call.Self, call.Caller)
	}
	if strings.TrimSpace(request.Title) == "" {
		return nil, fault.Invalid("title must not be blank")
	}
	if !request.Category.Valid() {
		return nil, fault.Invalid("category %d is not one of 0, 1, 2, 4", uint8(request.Category))
	}
	if call.Deposit < e.config.MinimumDeposit {
		return nil, fault.Invalid("creating an exhibit requires a deposit of at least %d, got %d", e.config.MinimumDeposit, call.Deposit)
	}

	e.Name = call.Self.Name()
	e.Title = request.Title
	e.Data = request.Data
	e.Category = request.Category
	e.Museum = call.Caller
	e.Creator = call.Signer
	e.CreatedAt = call.Now.UnixNano()
	e.Lifecycle = Active
	e.ReleaseInFlight = false
	e.Votes = ledger.NewVotes(e.config.VoteWindow)
	e.Comments = ledger.NewRing[ledger.Comment](e.config.CommentWindow)
	e.Donations = ledger.NewDonations(e.config.DonationWindow)
	e.Pending = pending.Tracker[ReleaseSnapshot]{}
	return nil, nil
}

func (e *Exhibit) getMeme(call *host.Call, args host.Args) (any, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	return Snapshot{
		Name:            e.Name,
		Title:           e.Title,
		Data:            e.Data,
		Category:        e.Category,
		Museum:          e.Museum,
		Creator:         e.Creator,
		CreatedAt:       e.CreatedAt,
		Lifecycle:       e.Lifecycle,
		ReleaseInFlight: e.ReleaseInFlight,
		VoteScore:       e.Votes.Score,
		DonationsTotal:  e.Donations.Total,
		RecentVotes:     e.Votes.Recent.Entries(),
		RecentComments:  e.Comments.Entries(),
		RecentDonations: e.Donations.Recent.Entries(),
	}, nil
}

func (e *Exhibit) vote(call *host.Call, args host.Args) (any, error) {
	request, err := host.DecodeArgs[VoteArgs](args)
	if err != nil {
		return nil, err
	}
	return e.recordVote(call, request.Value, false)
}

// batchVote applies a pre-aggregated vote. With is_batch set the
// magnitude may reach BatchVoteBound; otherwise it is an ordinary vote.
func (e *Exhibit) batchVote(call *host.Call, args host.Args) (any, error) {
	request, err := host.DecodeArgs[BatchVoteArgs](args)
	if err != nil {
		return nil, err
	}
	return e.recordVote(call, request.Value, request.IsBatch)
}

func (e *Exhibit) recordVote(call *host.Call, value int8, batch bool) (any, error) {
	if err := e.requireActive(); err != nil {
		return nil, err
	}
	bound := e.config.VoteBound
	if batch {
		bound = e.config.BatchVoteBound
	}
	if value > bound || value < -bound {
		return nil, fault.Invalid("vote %d is outside [-%d, %d]", value, bound, bound)
	}
	err := e.Votes.Record(ledger.Vote{
		Voter:     call.Caller,
		Value:     value,
		Batch:     batch,
		CreatedAt: call.Now.UnixNano(),
	})
	if err != nil {
		return nil, err
	}
	return e.Votes.Score, nil
}

func (e *Exhibit) getRecentVotes(call *host.Call, args host.Args) (any, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	return e.Votes.Recent.Entries(), nil
}

func (e *Exhibit) getVoteScore(call *host.Call, args host.Args) (any, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	return e.Votes.Score, nil
}

func (e *Exhibit) addComment(call *host.Call, args host.Args) (any, error) {
	if err := e.requireActive(); err != nil {
		return nil, err
	}
	request, err := host.DecodeArgs[CommentArgs](args)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(request.Text) == "" {
		return nil, fault.Invalid("comment must not be empty")
	}
	if length := utf8.RuneCountInString(request.Text); length > e.config.MaxCommentLength {
		return nil, fault.Invalid("comment is %d characters, the limit is %d", length, e.config.MaxCommentLength)
	}
	e.Comments.Append(ledger.Comment{
		Author:    call.Caller,
		Text:      request.Text,
		CreatedAt: call.Now.UnixNano(),
	})
	return nil, nil
}

func (e *Exhibit) getRecentComments(call *host.Call, args host.Args) (any, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	return e.Comments.Entries(), nil
}

func (e *Exhibit) donate(call *host.Call, args host.Args) (any, error) {
	if err := e.requireActive(); err != nil {
		return nil, err
	}
	err := e.Donations.Record(ledger.Donation{
		Donor:     call.Caller,
		Amount:    call.Deposit,
		CreatedAt: call.Now.UnixNano(),
	})
	if err != nil {
		return nil, err
	}
	return e.Donations.Total, nil
}

func (e *Exhibit) getDonationsTotal(call *host.Call, args host.Args) (any, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	return e.Donations.Total, nil
}

func (e *Exhibit) getRecentDonations(call *host.Call, args host.Args) (any, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	return e.Donations.Recent.Entries(), nil
}

// releaseDonations sends the donation total to a target and returns the
// receipt ID of the transfer.
func (e *Exhibit) releaseDonations(call *host.Call, args host.Args) (any, error) {
	if err := e.requireActive(); err != nil {
		return nil, err
	}
	if err := e.requireMuseum(call); err != nil {
		return nil, err
	}
	request, err := host.DecodeArgs[ReleaseArgs](args)
	if err != nil {
		return nil, err
	}
	if err := request.Target.Validate(); err != nil {
		return nil, fault.Invalid("release target: %v", err)
	}
	if e.ReleaseInFlight {
		return nil, fault.Conflicting("a donation release for %q is already in flight", e.Name)
	}
	amount := e.Donations.Total
	if amount.IsZero() {
		return nil, fault.Invalid("exhibit %q has no donations to release", e.Name)
	}

	snapshot := ReleaseSnapshot{Amount: amount, Target: request.Target}
	if err := e.Pending.Begin(pending.ReleaseDonations, e.Name, snapshot, call.Now); err != nil {
		return nil, err
	}
	receiptID, err := call.Dispatch(host.Dispatch{
		Target:   request.Target,
		Deposit:  amount,
		Callback: MethodOnDonationsReleased,
	})
	if err != nil {
		return nil, err
	}
	if err := e.Pending.BindReceipt(pending.ReleaseDonations, e.Name, receiptID); err != nil {
		return nil, err
	}
	e.ReleaseInFlight = true
	return receiptID, nil
}

func (e *Exhibit) onDonationsReleased(call *host.Call, args host.Args) (any, error) {
	outcome, _ := call.Outcome()
	err := e.Pending.Resolve(pending.ReleaseDonations, e.Name, outcome.ReceiptID, func(operation pending.Operation[ReleaseSnapshot]) error {
		return e.settleRelease(operation, outcome)
	})
	return nil, err
}

// settleRelease is the per-kind transition for a resolved pending
// operation. Exhibits only ever track releases.
func (e *Exhibit) settleRelease(operation pending.Operation[ReleaseSnapshot], outcome host.Outcome) error {
	switch operation.Kind {
	case pending.ReleaseDonations:
		if outcome.Success {
			if err := e.Donations.Release(operation.Snapshot.Amount); err != nil {
				return err
			}
		}
		e.ReleaseInFlight = false
		return nil
	case pending.CreateExhibit, pending.RemoveExhibit:
		return fault.New(fault.InvariantViolation, "exhibit cannot resolve a %s operation", operation.Kind)
	default:
		return fault.New(fault.InvariantViolation, "unknown pending kind %q", operation.Kind)
	}
}

// retire moves the exhibit to Removing and returns its balance to the
// museum. It returns the amount sent.
func (e *Exhibit) retire(call *host.Call, args host.Args) (any, error) {
	if err := e.requireActive(); err != nil {
		return nil, err
	}
	if err := e.requireMuseum(call); err != nil {
		return nil, err
	}
	if e.ReleaseInFlight {
		return nil, fault.Conflicting("exhibit %q has a donation release in flight", e.Name)
	}
	e.Lifecycle = Removing
	balance := call.Balance()
	if balance.IsZero() {
		return account.Amount(0), nil
	}
	if _, err := call.Transfer(e.Museum, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (e *Exhibit) getPending(call *host.Call, args host.Args) (any, error) {
	return e.Pending.Summaries(), nil
}
