// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import "github.com/bureau-foundation/museum/lib/account"

// Vote is one accepted vote. CreatedAt is Unix nanoseconds.
type Vote struct {
	Voter     account.ID `json:"voter"`
	Value     int8       `json:"value"`
	Batch     bool       `json:"batch,omitempty"`
	CreatedAt int64      `json:"created_at"`
}

// Comment is one accepted comment.
type Comment struct {
	Author    account.ID `json:"author"`
	Text      string     `json:"text"`
	CreatedAt int64      `json:"created_at"`
}

// Donation is one accepted donation.
type Donation struct {
	Donor     account.ID     `json:"donor"`
	Amount    account.Amount `json:"amount"`
	CreatedAt int64          `json:"created_at"`
}
