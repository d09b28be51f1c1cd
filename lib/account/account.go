// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"fmt"
	"strings"
)

const (
	minLength = 2
	maxLength = 64
)

// ID identifies an account. IDs are lowercase dot-separated segments,
// each made of a-z, 0-9, _ and -. The zero value is not a valid ID.
type ID string

// allowedChars is the set of characters permitted inside a segment.
var allowedChars [256]bool

func init() {
	for c := byte('a'); c <= 'z'; c++ {
		allowedChars[c] = true
	}
	for c := byte('0'); c <= '9'; c++ {
		allowedChars[c] = true
	}
	allowedChars['_'] = true
	allowedChars['-'] = true
}

// Parse validates raw and returns it as an ID.
func Parse(raw string) (ID, error) {
	if err := validate(raw); err != nil {
		return "", err
	}
	return ID(raw), nil
}

// MustParse is Parse for constants and tests. Panics on invalid input.
func MustParse(raw string) ID {
	id, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// Validate reports whether id is well formed.
func (id ID) Validate() error {
	return validate(string(id))
}

// String returns the raw identifier.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether id is the empty identifier.
func (id ID) IsZero() bool {
	return id == ""
}

// Parent returns the account one level up ("usain.museum" -> "museum")
// and false for a top-level account.
func (id ID) Parent() (ID, bool) {
	dot := strings.IndexByte(string(id), '.')
	if dot < 0 {
		return "", false
	}
	return id[dot+1:], true
}

// Name returns the first segment of id ("usain.museum" -> "usain").
func (id ID) Name() string {
	dot := strings.IndexByte(string(id), '.')
	if dot < 0 {
		return string(id)
	}
	return string(id[:dot])
}

// IsChildOf reports whether id is a direct child of parent.
func (id ID) IsChildOf(parent ID) bool {
	got, ok := id.Parent()
	return ok && got == parent
}

// Child derives the address of a direct sub-account. The name must be a
// single valid segment and the resulting ID must fit the length limit.
func Child(parent ID, name string) (ID, error) {
	if err := ValidateSegment(name); err != nil {
		return "", err
	}
	child := ID(name + "." + string(parent))
	if err := child.Validate(); err != nil {
		return "", fmt.Errorf("child of %s: %w", parent, err)
	}
	return child, nil
}

// ValidateSegment checks that name is usable as a single ID segment
// (no dots).
func ValidateSegment(name string) error {
	if name == "" {
		return fmt.Errorf("account name is empty")
	}
	for i := 0; i < len(name); i++ {
		if !allowedChars[name[i]] {
			return fmt.Errorf("account name %q: invalid character %q at position %d (allowed: a-z, 0-9, _, -)", name, name[i], i)
		}
	}
	return nil
}

func validate(raw string) error {
	if len(raw) < minLength || len(raw) > maxLength {
		return fmt.Errorf("account id %q is %d characters, must be %d to %d", raw, len(raw), minLength, maxLength)
	}
	for _, segment := range strings.Split(raw, ".") {
		if segment == "" {
			return fmt.Errorf("account id %q contains an empty segment", raw)
		}
		if err := ValidateSegment(segment); err != nil {
			return fmt.Errorf("account id %q: %w", raw, err)
		}
	}
	return nil
}
