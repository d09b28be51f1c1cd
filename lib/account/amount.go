// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"fmt"
	"math"
	"strconv"
)

// Amount is a non-negative balance in indivisible units.
type Amount uint64

// Add returns a+b, or an error if the sum does not fit.
func (a Amount) Add(b Amount) (Amount, error) {
	if b > math.MaxUint64-a {
		return 0, fmt.Errorf("amount overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// Sub returns a-b, or an error if b exceeds a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, fmt.Errorf("amount underflow: %d - %d", a, b)
	}
	return a - b, nil
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == 0
}

func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// ParseAmount parses a decimal amount.
func ParseAmount(raw string) (Amount, error) {
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return Amount(value), nil
}
