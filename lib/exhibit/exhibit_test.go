// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package exhibit_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/exhibit"
	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/host/hosttest"
	"github.com/bureau-foundation/museum/lib/ledger"
	"github.com/bureau-foundation/museum/lib/pending"
)

const (
	museumID  account.ID = "museum"
	exhibitID account.ID = "usain.museum"
)

var usain = exhibit.InitArgs{
	Title:    "usain refrain",
	Data:     "https://9gag.com/gag/ayMDG8Y",
	Category: exhibit.CategoryA,
}

// newExhibit deploys an uninitialized exhibit under a plain "museum"
// account, so tests can play the museum's role directly.
func newExhibit(t *testing.T) *hosttest.Harness {
	t.Helper()
	harness := hosttest.New(t, func(h *host.Host) {
		h.Register(exhibit.Kind, exhibit.Factory(exhibit.DefaultConfig()))
	})
	harness.CreateAccount(museumID, 1000)
	harness.CreateAccount("alice", 1000)
	harness.CreateAccount("bob", 1000)
	harness.Deploy(exhibitID, exhibit.Kind)
	return harness
}

func newInitializedExhibit(t *testing.T) *hosttest.Harness {
	t.Helper()
	harness := newExhibit(t)
	harness.MustInvoke(museumID, exhibitID, exhibit.MethodInit, usain, 3)
	return harness
}

func requireCode(t *testing.T, err error, code fault.Code) {
	t.Helper()
	if got := fault.CodeOf(err); got != code {
		t.Fatalf("error = %v (code %q), want code %q", err, got, code)
	}
}

func snapshot(t *testing.T, harness *hosttest.Harness) exhibit.Snapshot {
	t.Helper()
	var meme exhibit.Snapshot
	harness.MustView(exhibitID, exhibit.MethodGetMeme, nil, &meme)
	return meme
}

func TestInit(t *testing.T) {
	harness := newExhibit(t)

	tests := []struct {
		name    string
		caller  account.ID
		args    exhibit.InitArgs
		deposit account.Amount
		code    fault.Code
	}{
		{"NotTheMuseum", "alice", usain, 3, fault.PermissionDenied},
		{"BlankTitle", museumID, exhibit.InitArgs{Title: "  ", Category: exhibit.CategoryA}, 3, fault.Validation},
		{"CategoryGap", museumID, exhibit.InitArgs{Title: "t", Category: 3}, 3, fault.Validation},
		{"CategoryOutOfRange", museumID, exhibit.InitArgs{Title: "t", Category: 9}, 3, fault.Validation},
		{"DepositTooSmall", museumID, usain, 2, fault.Validation},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := harness.Invoke(test.caller, exhibitID, exhibit.MethodInit, test.args, test.deposit)
			requireCode(t, err, test.code)
		})
	}

	_, err := harness.Invoke(museumID, exhibitID, exhibit.MethodGetMeme, nil, 0)
	requireCode(t, err, fault.Conflict)

	harness.MustInvoke(museumID, exhibitID, exhibit.MethodInit, usain, 3)
	_, err = harness.Invoke(museumID, exhibitID, exhibit.MethodInit, usain, 3)
	requireCode(t, err, fault.OnceOnly)

	meme := snapshot(t, harness)
	if meme.Name != "usain" || meme.Title != usain.Title || meme.Data != usain.Data || meme.Category != exhibit.CategoryA {
		t.Errorf("identity = %+v", meme)
	}
	if meme.Museum != museumID || meme.Lifecycle != exhibit.Active || meme.CreatedAt != hosttest.Epoch.UnixNano() {
		t.Errorf("state = %+v", meme)
	}
	if meme.VoteScore != 0 || meme.DonationsTotal != 0 || len(meme.RecentVotes) != 0 {
		t.Errorf("ledgers not zeroed: %+v", meme)
	}
	if got := harness.Balance(exhibitID); got != 3 {
		t.Errorf("exhibit balance = %d, want the 3 deposit", got)
	}
}

func TestVotes(t *testing.T) {
	harness := newInitializedExhibit(t)

	values := []int8{1, 1, -1, 1, 0, 1, 1, -1, 1, 1, 1, -1}
	var want int64
	for index, value := range values {
		harness.Clock.Advance(time.Second)
		voter := account.ID("alice")
		if index%2 == 1 {
			voter = "bob"
		}
		harness.MustInvoke(voter, exhibitID, exhibit.MethodVote, exhibit.VoteArgs{Value: value}, 0)
		want += int64(value)
	}

	var score int64
	harness.MustView(exhibitID, exhibit.MethodGetVoteScore, nil, &score)
	if score != want {
		t.Errorf("score = %d, want %d", score, want)
	}

	var recent []ledger.Vote
	harness.MustView(exhibitID, exhibit.MethodGetRecentVotes, nil, &recent)
	if len(recent) != 10 {
		t.Fatalf("recent votes = %d, want the window of 10", len(recent))
	}
	for index, vote := range recent {
		offset := len(values) - 10 + index
		if vote.Value != values[offset] {
			t.Fatalf("recent[%d] = %+v, want value %d", index, vote, values[offset])
		}
		if wantAt := hosttest.Epoch.Add(time.Duration(offset+1) * time.Second).UnixNano(); vote.CreatedAt != wantAt {
			t.Errorf("recent[%d].CreatedAt = %d, want %d", index, vote.CreatedAt, wantAt)
		}
	}

	t.Run("Bounds", func(t *testing.T) {
		_, err := harness.Invoke("alice", exhibitID, exhibit.MethodVote, exhibit.VoteArgs{Value: 2}, 0)
		requireCode(t, err, fault.Validation)
		_, err = harness.Invoke("alice", exhibitID, exhibit.MethodBatchVote, exhibit.BatchVoteArgs{Value: 50}, 0)
		requireCode(t, err, fault.Validation)
		_, err = harness.Invoke("alice", exhibitID, exhibit.MethodBatchVote, exhibit.BatchVoteArgs{Value: -128, IsBatch: true}, 0)
		requireCode(t, err, fault.Validation)

		var unchanged int64
		harness.MustView(exhibitID, exhibit.MethodGetVoteScore, nil, &unchanged)
		if unchanged != want {
			t.Fatalf("rejected votes changed the score to %d", unchanged)
		}
	})

	t.Run("Batch", func(t *testing.T) {
		harness.MustInvoke("alice", exhibitID, exhibit.MethodBatchVote, exhibit.BatchVoteArgs{Value: 50, IsBatch: true}, 0)
		var after int64
		harness.MustView(exhibitID, exhibit.MethodGetVoteScore, nil, &after)
		if after != want+50 {
			t.Errorf("score after batch = %d, want %d", after, want+50)
		}
		var votes []ledger.Vote
		harness.MustView(exhibitID, exhibit.MethodGetRecentVotes, nil, &votes)
		if last := votes[len(votes)-1]; !last.Batch || last.Value != 50 || last.Voter != "alice" {
			t.Errorf("last vote = %+v, want alice's batch of 50", last)
		}
	})
}

func TestComments(t *testing.T) {
	harness := newInitializedExhibit(t)

	for _, text := range []string{"", "   ", strings.Repeat("é", 501)} {
		_, err := harness.Invoke("bob", exhibitID, exhibit.MethodAddComment, exhibit.CommentArgs{Text: text}, 0)
		requireCode(t, err, fault.Validation)
	}
	harness.MustInvoke("bob", exhibitID, exhibit.MethodAddComment, exhibit.CommentArgs{Text: strings.Repeat("é", 500)}, 0)
	harness.MustInvoke("alice", exhibitID, exhibit.MethodAddComment, exhibit.CommentArgs{Text: "classic"}, 0)

	var comments []ledger.Comment
	harness.MustView(exhibitID, exhibit.MethodGetRecentComments, nil, &comments)
	if len(comments) != 2 || comments[0].Author != "bob" || comments[1].Text != "classic" {
		t.Errorf("comments = %+v", comments)
	}
}

func TestDonations(t *testing.T) {
	harness := newInitializedExhibit(t)

	_, err := harness.Invoke("alice", exhibitID, exhibit.MethodDonate, nil, 0)
	requireCode(t, err, fault.Validation)

	harness.MustInvoke("alice", exhibitID, exhibit.MethodDonate, nil, 3)
	harness.MustInvoke("bob", exhibitID, exhibit.MethodDonate, nil, 5)

	var total account.Amount
	harness.MustView(exhibitID, exhibit.MethodGetDonationsTotal, nil, &total)
	if total != 8 {
		t.Errorf("total = %d, want 8", total)
	}
	var recent []ledger.Donation
	harness.MustView(exhibitID, exhibit.MethodGetRecentDonations, nil, &recent)
	if len(recent) != 2 || recent[0].Donor != "alice" || recent[1].Amount != 5 {
		t.Errorf("recent donations = %+v", recent)
	}
	if got := harness.Balance(exhibitID); got != 11 {
		t.Errorf("exhibit balance = %d, want 3 + 8", got)
	}
	if got := harness.Balance("alice"); got != 997 {
		t.Errorf("alice balance = %d, want 997", got)
	}
}

func donated(t *testing.T) *hosttest.Harness {
	t.Helper()
	harness := newInitializedExhibit(t)
	harness.MustInvoke("alice", exhibitID, exhibit.MethodDonate, nil, 3)
	harness.MustInvoke("bob", exhibitID, exhibit.MethodDonate, nil, 5)
	return harness
}

func TestReleaseDonations(t *testing.T) {
	harness := donated(t)
	release := exhibit.ReleaseArgs{Target: "alice"}

	_, err := harness.Invoke("alice", exhibitID, exhibit.MethodReleaseDonations, release, 0)
	requireCode(t, err, fault.PermissionDenied)

	harness.MustInvoke(museumID, exhibitID, exhibit.MethodReleaseDonations, release, 0)

	_, err = harness.Invoke(museumID, exhibitID, exhibit.MethodReleaseDonations, release, 0)
	requireCode(t, err, fault.Conflict)

	meme := snapshot(t, harness)
	if !meme.ReleaseInFlight || meme.DonationsTotal != 8 {
		t.Fatalf("during flight: in flight %v, total %d; want true, 8", meme.ReleaseInFlight, meme.DonationsTotal)
	}
	var operations []pending.Summary
	harness.MustView(exhibitID, exhibit.MethodGetPending, nil, &operations)
	if len(operations) != 1 || operations[0].Kind != pending.ReleaseDonations || operations[0].Target != "usain" {
		t.Fatalf("pending = %+v", operations)
	}

	// A donation arriving after dispatch survives the release.
	harness.MustInvoke("bob", exhibitID, exhibit.MethodDonate, nil, 2)

	if delivered := harness.Drain(); delivered != 2 {
		t.Errorf("delivered %d receipts, want transfer + callback", delivered)
	}

	meme = snapshot(t, harness)
	if meme.ReleaseInFlight || meme.DonationsTotal != 2 {
		t.Errorf("after release: in flight %v, total %d; want false, 2", meme.ReleaseInFlight, meme.DonationsTotal)
	}
	if len(meme.RecentDonations) != 3 {
		t.Errorf("release touched the donation history: %+v", meme.RecentDonations)
	}
	if got := harness.Balance("alice"); got != 1000-3+8 {
		t.Errorf("alice balance = %d, want %d", got, 1000-3+8)
	}
	if got := harness.Balance(exhibitID); got != 3+2 {
		t.Errorf("exhibit balance = %d, want deposit plus the late donation", got)
	}
	var remaining []pending.Summary
	harness.MustView(exhibitID, exhibit.MethodGetPending, nil, &remaining)
	if len(remaining) != 0 {
		t.Errorf("pending after release = %+v", remaining)
	}
}

func TestReleaseFailureRollsBack(t *testing.T) {
	harness := donated(t)

	harness.MustInvoke(museumID, exhibitID, exhibit.MethodReleaseDonations, exhibit.ReleaseArgs{Target: "ghost"}, 0)
	if got := harness.Balance(exhibitID); got != 3 {
		t.Fatalf("balance in flight = %d, want 3", got)
	}
	harness.Drain()

	meme := snapshot(t, harness)
	if meme.ReleaseInFlight || meme.DonationsTotal != 8 {
		t.Errorf("after failed release: in flight %v, total %d; want false, 8", meme.ReleaseInFlight, meme.DonationsTotal)
	}
	if got := harness.Balance(exhibitID); got != 11 {
		t.Errorf("balance after bounce = %d, want 11", got)
	}

	// The flag is clear, so a new release can go out.
	harness.MustInvoke(museumID, exhibitID, exhibit.MethodReleaseDonations, exhibit.ReleaseArgs{Target: "bob"}, 0)
}

func TestReleaseCallbackCannotBeForged(t *testing.T) {
	harness := donated(t)
	harness.MustInvoke(museumID, exhibitID, exhibit.MethodReleaseDonations, exhibit.ReleaseArgs{Target: "alice"}, 0)

	for _, caller := range []account.ID{"alice", museumID} {
		_, err := harness.Invoke(caller, exhibitID, exhibit.MethodOnDonationsReleased, nil, 0)
		if !errors.Is(err, fault.ErrPermissionDenied) {
			t.Errorf("%s invoking the callback = %v, want permission denied", caller, err)
		}
	}
	if meme := snapshot(t, harness); !meme.ReleaseInFlight || meme.DonationsTotal != 8 {
		t.Errorf("forged callback changed state: %+v", meme)
	}
}

func TestNothingToRelease(t *testing.T) {
	harness := newInitializedExhibit(t)
	_, err := harness.Invoke(museumID, exhibitID, exhibit.MethodReleaseDonations, exhibit.ReleaseArgs{Target: "alice"}, 0)
	requireCode(t, err, fault.Validation)
}

func TestRetire(t *testing.T) {
	harness := donated(t)

	_, err := harness.Invoke("alice", exhibitID, exhibit.MethodRetire, nil, 0)
	requireCode(t, err, fault.PermissionDenied)

	harness.MustInvoke(museumID, exhibitID, exhibit.MethodReleaseDonations, exhibit.ReleaseArgs{Target: "alice"}, 0)
	_, err = harness.Invoke(museumID, exhibitID, exhibit.MethodRetire, nil, 0)
	requireCode(t, err, fault.Conflict)
	harness.Drain()

	museumBefore := harness.Balance(museumID)
	harness.MustInvoke(museumID, exhibitID, exhibit.MethodRetire, nil, 0)
	harness.Drain()
	if got := harness.Balance(museumID); got != museumBefore+3 {
		t.Errorf("museum balance = %d, want %d (the exhibit's remaining deposit)", got, museumBefore+3)
	}
	if got := harness.Balance(exhibitID); got != 0 {
		t.Errorf("retired exhibit balance = %d, want 0", got)
	}

	blocked := []struct {
		method  string
		args    any
		deposit account.Amount
	}{
		{exhibit.MethodVote, exhibit.VoteArgs{Value: 1}, 0},
		{exhibit.MethodBatchVote, exhibit.BatchVoteArgs{Value: 1}, 0},
		{exhibit.MethodAddComment, exhibit.CommentArgs{Text: "hello"}, 0},
		{exhibit.MethodDonate, nil, 1},
		{exhibit.MethodReleaseDonations, exhibit.ReleaseArgs{Target: "alice"}, 0},
		{exhibit.MethodRetire, nil, 0},
	}
	for _, call := range blocked {
		caller := account.ID("alice")
		if call.method == exhibit.MethodReleaseDonations || call.method == exhibit.MethodRetire {
			caller = museumID
		}
		_, err := harness.Invoke(caller, exhibitID, call.method, call.args, call.deposit)
		if !errors.Is(err, fault.ErrConflict) {
			t.Errorf("%s on a removing exhibit = %v, want conflict", call.method, err)
		}
	}

	if meme := snapshot(t, harness); meme.Lifecycle != exhibit.Removing {
		t.Errorf("lifecycle = %s, want removing", meme.Lifecycle)
	}
}
