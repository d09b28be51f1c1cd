// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/codec"
	"github.com/bureau-foundation/museum/lib/fault"
)

func TestRingKeepsMostRecentInOrder(t *testing.T) {
	t.Parallel()

	for _, appended := range []int{0, 1, 3, 4, 9, 10} {
		ring := NewRing[int](4)
		for i := 1; i <= appended; i++ {
			ring.Append(i)
		}

		wantLength := min(appended, 4)
		if ring.Len() != wantLength {
			t.Fatalf("after %d appends: Len = %d, want %d", appended, ring.Len(), wantLength)
		}
		entries := ring.Entries()
		for index, entry := range entries {
			want := appended - wantLength + index + 1
			if entry != want {
				t.Fatalf("after %d appends: Entries = %v, want last %d in order", appended, entries, wantLength)
			}
		}
	}
}

func TestRingSurvivesCBOR(t *testing.T) {
	t.Parallel()

	ring := NewRing[Comment](2)
	ring.Append(Comment{Author: "alice", Text: "first"})
	ring.Append(Comment{Author: "bob", Text: "second"})
	ring.Append(Comment{Author: "carol", Text: "third"})

	data, err := codec.Marshal(ring)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var restored Ring[Comment]
	if err := codec.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	restored.Append(Comment{Author: "dave", Text: "fourth"})
	entries := restored.Entries()
	if len(entries) != 2 || entries[0].Text != "third" || entries[1].Text != "fourth" {
		t.Fatalf("Entries after restore = %+v", entries)
	}
}

func TestVotesScoreIsAuthoritative(t *testing.T) {
	t.Parallel()

	votes := NewVotes(3)
	values := []int8{1, 1, -1, 1, 1, -1, 1}
	var want int64
	for _, value := range values {
		if err := votes.Record(Vote{Voter: "alice", Value: value}); err != nil {
			t.Fatalf("Record: %v", err)
		}
		want += int64(value)
	}

	if votes.Score != want {
		t.Errorf("Score = %d, want %d", votes.Score, want)
	}
	if votes.Recent.Len() != 3 {
		t.Errorf("window length = %d, want 3", votes.Recent.Len())
	}
}

func TestVotesOverflow(t *testing.T) {
	t.Parallel()

	votes := NewVotes(1)
	votes.Score = math.MaxInt64
	err := votes.Record(Vote{Value: 1})
	if !errors.Is(err, fault.ErrValidation) {
		t.Fatalf("Record at max score: %v, want validation", err)
	}
	if votes.Score != math.MaxInt64 || votes.Recent.Len() != 0 {
		t.Error("rejected vote mutated the tally")
	}
}

func TestDonations(t *testing.T) {
	t.Parallel()

	donations := NewDonations(10)

	if err := donations.Record(Donation{Donor: "alice", Amount: 0}); !errors.Is(err, fault.ErrValidation) {
		t.Fatalf("zero donation: %v, want validation", err)
	}
	if donations.Total != 0 || donations.Recent.Len() != 0 {
		t.Fatal("rejected donation mutated the tally")
	}

	for _, amount := range []account.Amount{3, 5} {
		if err := donations.Record(Donation{Donor: "alice", Amount: amount}); err != nil {
			t.Fatalf("Record(%d): %v", amount, err)
		}
	}
	if donations.Total != 8 {
		t.Fatalf("Total = %d, want 8", donations.Total)
	}

	if err := donations.Release(8); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if donations.Total != 0 {
		t.Errorf("Total after release = %d, want 0", donations.Total)
	}
	if donations.Recent.Len() != 2 {
		t.Errorf("release touched the history: %d entries", donations.Recent.Len())
	}
	if err := donations.Release(1); !errors.Is(err, fault.ErrInvariantViolation) {
		t.Errorf("over-release: %v, want invariant violation", err)
	}
}
