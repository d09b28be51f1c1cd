// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package access holds a registry's owner and contributor sets and the
// permission predicates evaluated against them.
//
// A [Roster] is a value inside registry state. The predicates are pure;
// the Require helpers turn a failed predicate into a
// [fault.PermissionDenied] error so entry points can use them as
// one-line preconditions.
package access

import (
	"slices"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/fault"
)

// Roster is the permission state of a registry. Both sets are kept
// sorted so encoded state is deterministic.
type Roster struct {
	Owners       []account.ID `cbor:"owners"`
	Contributors []account.ID `cbor:"contributors"`
}

// NewRoster builds a roster with the given owners and no contributors.
// The owner list must be non-empty and every ID valid; duplicates are
// collapsed.
func NewRoster(owners []account.ID) (Roster, error) {
	if len(owners) == 0 {
		return Roster{}, fault.Invalid("owners must not be empty")
	}
	roster := Roster{Owners: []account.ID{}, Contributors: []account.ID{}}
	for _, owner := range owners {
		if err := owner.Validate(); err != nil {
			return Roster{}, fault.Invalid("owner: %v", err)
		}
		roster.Owners = insert(roster.Owners, owner)
	}
	return roster, nil
}

// IsOwner reports whether id is an owner.
func (r *Roster) IsOwner(id account.ID) bool {
	_, found := slices.BinarySearch(r.Owners, id)
	return found
}

// IsContributor reports whether id is in the contributor set. Owners
// are not implicitly contributors here; use [Roster.RequireContributor]
// for the "may create exhibits" check.
func (r *Roster) IsContributor(id account.ID) bool {
	_, found := slices.BinarySearch(r.Contributors, id)
	return found
}

// RequireOwner fails with PermissionDenied unless id is an owner.
func (r *Roster) RequireOwner(id account.ID) error {
	if !r.IsOwner(id) {
		return fault.Denied("%s is not an owner", id)
	}
	return nil
}

// RequireContributor fails with PermissionDenied unless id is a
// contributor or an owner.
func (r *Roster) RequireContributor(id account.ID) error {
	if !r.IsContributor(id) && !r.IsOwner(id) {
		return fault.Denied("%s is not a contributor or owner", id)
	}
	return nil
}

// AddOwner adds id to the owner set. Adding an existing owner is a no-op.
func (r *Roster) AddOwner(id account.ID) error {
	if err := id.Validate(); err != nil {
		return fault.Invalid("owner: %v", err)
	}
	r.Owners = insert(r.Owners, id)
	return nil
}

// RemoveOwner removes id from the owner set. Removing a non-owner is a
// no-op; removing the last owner fails with InvariantViolation and
// leaves the set unchanged.
func (r *Roster) RemoveOwner(id account.ID) error {
	if !r.IsOwner(id) {
		return nil
	}
	if len(r.Owners) == 1 {
		return fault.New(fault.InvariantViolation, "cannot remove %s: a museum must keep at least one owner", id)
	}
	r.Owners = remove(r.Owners, id)
	return nil
}

// AddContributor adds id to the contributor set. Idempotent.
func (r *Roster) AddContributor(id account.ID) error {
	if err := id.Validate(); err != nil {
		return fault.Invalid("contributor: %v", err)
	}
	r.Contributors = insert(r.Contributors, id)
	return nil
}

// RemoveContributor removes id from the contributor set. Idempotent.
func (r *Roster) RemoveContributor(id account.ID) {
	r.Contributors = remove(r.Contributors, id)
}

func insert(set []account.ID, id account.ID) []account.ID {
	index, found := slices.BinarySearch(set, id)
	if found {
		return set
	}
	return slices.Insert(set, index, id)
}

func remove(set []account.ID, id account.ID) []account.ID {
	index, found := slices.BinarySearch(set, id)
	if !found {
		return set
	}
	return slices.Delete(set, index, index+1)
}
