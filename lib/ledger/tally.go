// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"math"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/fault"
)

// Votes pairs the authoritative score with the recent-vote window.
type Votes struct {
	Score  int64      `cbor:"score"`
	Recent Ring[Vote] `cbor:"recent"`
}

// NewVotes returns an empty tally with a window of the given capacity.
func NewVotes(capacity int) Votes {
	return Votes{Recent: NewRing[Vote](capacity)}
}

// Record adds vote.Value to the score, then appends the vote to the
// window. Range checks belong to the caller; Record only refuses a
// score that would overflow.
func (v *Votes) Record(vote Vote) error {
	value := int64(vote.Value)
	if (value > 0 && v.Score > math.MaxInt64-value) || (value < 0 && v.Score < math.MinInt64-value) {
		return fault.Invalid("vote score overflow")
	}
	v.Score += value
	v.Recent.Append(vote)
	return nil
}

// Donations pairs the authoritative total with the recent-donation window.
type Donations struct {
	Total  account.Amount `cbor:"total"`
	Recent Ring[Donation] `cbor:"recent"`
}

// NewDonations returns an empty tally with a window of the given capacity.
func NewDonations(capacity int) Donations {
	return Donations{Recent: NewRing[Donation](capacity)}
}

// Record requires a positive amount, adds it to the total, and appends
// the donation to the window.
func (d *Donations) Record(donation Donation) error {
	if donation.Amount.IsZero() {
		return fault.Invalid("donation amount must be greater than zero")
	}
	total, err := d.Total.Add(donation.Amount)
	if err != nil {
		return fault.Invalid("donation total: %v", err)
	}
	d.Total = total
	d.Recent.Append(donation)
	return nil
}

// Release subtracts a released amount from the total. The window is a
// history and is left untouched.
func (d *Donations) Release(amount account.Amount) error {
	total, err := d.Total.Sub(amount)
	if err != nil {
		return fault.New(fault.InvariantViolation, "release exceeds donation total: %v", err)
	}
	d.Total = total
	return nil
}
