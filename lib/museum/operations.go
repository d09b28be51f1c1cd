// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package museum

import (
	"slices"
	"strings"

	"github.com/bureau-foundation/museum/lib/access"
	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/exhibit"
	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/pending"
)

func (m *Museum) initialized() bool {
	return m.Name != ""
}

func (m *Museum) requireInitialized() error {
	if !m.initialized() {
		return fault.Conflicting("museum is not initialized")
	}
	return nil
}

func (m *Museum) requireOwner(call *host.Call) error {
	if err := m.requireInitialized(); err != nil {
		return err
	}
	return m.Roster.RequireOwner(call.Caller)
}

func (m *Museum) hasExhibit(name string) bool {
	return slices.Contains(m.Exhibits, name)
}

func (m *Museum) isRetired(name string) bool {
	_, found := slices.BinarySearch(m.Retired, name)
	return found
}

func (m *Museum) init(call *host.Call, args host.Args) (any, error) {
	if m.initialized() {
		return nil, fault.New(fault.OnceOnly, "museum %s is already initialized", call.Self)
	}
	request, err := host.DecodeArgs[InitArgs](args)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(request.Name) == "" {
		return nil, fault.Invalid("museum name must not be blank")
	}
	roster, err := access.NewRoster(request.Owners)
	if err != nil {
		return nil, err
	}
	m.Name = request.Name
	m.Roster = roster
	m.CreatedAt = call.Now.UnixNano()
	m.Exhibits = []string{}
	m.Retired = []string{}
	m.Pending = pending.Tracker[Snapshot]{}
	return nil, nil
}

func (m *Museum) getMuseum(call *host.Call, args host.Args) (any, error) {
	if err := m.requireInitialized(); err != nil {
		return nil, err
	}
	return Info{
		Name:         m.Name,
		Owners:       len(m.Roster.Owners),
		Contributors: len(m.Roster.Contributors),
		Memes:        len(m.Exhibits),
		CreatedAt:    m.CreatedAt,
	}, nil
}

func (m *Museum) getOwnerList(call *host.Call, args host.Args) (any, error) {
	if err := m.requireInitialized(); err != nil {
		return nil, err
	}
	return m.Roster.Owners, nil
}

func (m *Museum) getContributorList(call *host.Call, args host.Args) (any, error) {
	if err := m.requireInitialized(); err != nil {
		return nil, err
	}
	return m.Roster.Contributors, nil
}

func (m *Museum) getMemeList(call *host.Call, args host.Args) (any, error) {
	if err := m.requireInitialized(); err != nil {
		return nil, err
	}
	return m.Exhibits, nil
}

func (m *Museum) getMemeCount(call *host.Call, args host.Args) (any, error) {
	if err := m.requireInitialized(); err != nil {
		return nil, err
	}
	return len(m.Exhibits), nil
}

func (m *Museum) addMyselfAsContributor(call *host.Call, args host.Args) (any, error) {
	if err := m.requireInitialized(); err != nil {
		return nil, err
	}
	return nil, m.Roster.AddContributor(call.Caller)
}

func (m *Museum) removeMyselfAsContributor(call *host.Call, args host.Args) (any, error) {
	if err := m.requireInitialized(); err != nil {
		return nil, err
	}
	m.Roster.RemoveContributor(call.Caller)
	return nil, nil
}

func (m *Museum) addContributor(call *host.Call, args host.Args) (any, error) {
	if err := m.requireOwner(call); err != nil {
		return nil, err
	}
	request, err := host.DecodeArgs[AccountArgs](args)
	if err != nil {
		return nil, err
	}
	return nil, m.Roster.AddContributor(request.Account)
}

func (m *Museum) removeContributor(call *host.Call, args host.Args) (any, error) {
	if err := m.requireOwner(call); err != nil {
		return nil, err
	}
	request, err := host.DecodeArgs[AccountArgs](args)
	if err != nil {
		return nil, err
	}
	m.Roster.RemoveContributor(request.Account)
	return nil, nil
}

func (m *Museum) addOwner(call *host.Call, args host.Args) (any, error) {
	if err := m.requireOwner(call); err != nil {
		return nil, err
	}
	request, err := host.DecodeArgs[AccountArgs](args)
	if err != nil {
		return nil, err
	}
	return nil, m.Roster.AddOwner(request.Account)
}

func (m *Museum) removeOwner(call *host.Call, args host.Args) (any, error) {
	if err := m.requireOwner(call); err != nil {
		return nil, err
	}
	request, err := host.DecodeArgs[AccountArgs](args)
	if err != nil {
		return nil, err
	}
	return nil, m.Roster.RemoveOwner(request.Account)
}

// addMeme reserves the name and dispatches creation of the exhibit at
// its derived address, forwarding the attached deposit. It returns the
// creation receipt ID.
func (m *Museum) addMeme(call *host.Call, args host.Args) (any, error) {
	if err := m.requireInitialized(); err != nil {
		return nil, err
	}
	if err := m.Roster.RequireContributor(call.Caller); err != nil {
		return nil, err
	}
	request, err := host.DecodeArgs[AddMemeArgs](args)
	if err != nil {
		return nil, err
	}
	address, err := account.Child(call.Self, request.Name)
	if err != nil {
		return nil, fault.Invalid("meme name: %v", err)
	}
	switch {
	case m.hasExhibit(request.Name):
		return nil, fault.New(fault.DuplicateName, "meme %q already exists", request.Name)
	case m.Pending.Has(pending.CreateExhibit, request.Name):
		return nil, fault.New(fault.DuplicateName, "meme %q is already being created", request.Name)
	case m.isRetired(request.Name):
		return nil, fault.New(fault.DuplicateName, "meme %q was removed and its name stays reserved", request.Name)
	}

	snapshot := Snapshot{Caller: call.Caller, Deposit: call.Deposit}
	if err := m.Pending.Begin(pending.CreateExhibit, request.Name, snapshot, call.Now); err != nil {
		return nil, err
	}
	receiptID, err := call.Dispatch(host.Dispatch{
		Target: address,
		Deploy: exhibit.Kind,
		Method: exhibit.MethodInit,
		Args: exhibit.InitArgs{
			Title:    request.Title,
			Data:     request.Data,
			Category: request.Category,
		},
		Deposit:      call.Deposit,
		Callback:     MethodOnMemeCreated,
		CallbackArgs: NameArgs{Name: request.Name},
	})
	if err != nil {
		return nil, err
	}
	if err := m.Pending.BindReceipt(pending.CreateExhibit, request.Name, receiptID); err != nil {
		return nil, err
	}
	return receiptID, nil
}

// removeMeme dispatches retirement of an exhibit. The name stays in the
// list until the exhibit confirms.
func (m *Museum) removeMeme(call *host.Call, args host.Args) (any, error) {
	if err := m.requireOwner(call); err != nil {
		return nil, err
	}
	request, err := host.DecodeArgs[NameArgs](args)
	if err != nil {
		return nil, err
	}
	if !m.hasExhibit(request.Name) {
		return nil, fault.Missing("meme %q does not exist", request.Name)
	}
	if m.Pending.Has(pending.ReleaseDonations, request.Name) {
		return nil, fault.Conflicting("meme %q has a donation release being requested", request.Name)
	}
	address, err := account.Child(call.Self, request.Name)
	if err != nil {
		return nil, fault.Invalid("meme name: %v", err)
	}

	snapshot := Snapshot{PriorState: exhibit.Active}
	if err := m.Pending.Begin(pending.RemoveExhibit, request.Name, snapshot, call.Now); err != nil {
		return nil, err
	}
	receiptID, err := call.Dispatch(host.Dispatch{
		Target:       address,
		Method:       exhibit.MethodRetire,
		Callback:     MethodOnMemeRemoved,
		CallbackArgs: NameArgs{Name: request.Name},
	})
	if err != nil {
		return nil, err
	}
	if err := m.Pending.BindReceipt(pending.RemoveExhibit, request.Name, receiptID); err != nil {
		return nil, err
	}
	return receiptID, nil
}

// releaseMemeDonations is the owner-authorized path to an exhibit's
// release_donations.
func (m *Museum) releaseMemeDonations(call *host.Call, args host.Args) (any, error) {
	if err := m.requireOwner(call); err != nil {
		return nil, err
	}
	request, err := host.DecodeArgs[ReleaseArgs](args)
	if err != nil {
		return nil, err
	}
	if !m.hasExhibit(request.Name) {
		return nil, fault.Missing("meme %q does not exist", request.Name)
	}
	if m.Pending.Has(pending.RemoveExhibit, request.Name) {
		return nil, fault.Conflicting("meme %q is being removed", request.Name)
	}
	if err := request.Target.Validate(); err != nil {
		return nil, fault.Invalid("release target: %v", err)
	}
	address, err := account.Child(call.Self, request.Name)
	if err != nil {
		return nil, fault.Invalid("meme name: %v", err)
	}

	snapshot := Snapshot{Target: request.Target}
	if err := m.Pending.Begin(pending.ReleaseDonations, request.Name, snapshot, call.Now); err != nil {
		return nil, err
	}
	receiptID, err := call.Dispatch(host.Dispatch{
		Target:       address,
		Method:       exhibit.MethodReleaseDonations,
		Args:         exhibit.ReleaseArgs{Target: request.Target},
		Callback:     MethodOnReleaseRequested,
		CallbackArgs: NameArgs{Name: request.Name},
	})
	if err != nil {
		return nil, err
	}
	if err := m.Pending.BindReceipt(pending.ReleaseDonations, request.Name, receiptID); err != nil {
		return nil, err
	}
	return receiptID, nil
}

func (m *Museum) onMemeCreated(call *host.Call, args host.Args) (any, error) {
	return nil, m.resolve(call, args, pending.CreateExhibit)
}

func (m *Museum) onMemeRemoved(call *host.Call, args host.Args) (any, error) {
	return nil, m.resolve(call, args, pending.RemoveExhibit)
}

func (m *Museum) onReleaseRequested(call *host.Call, args host.Args) (any, error) {
	return nil, m.resolve(call, args, pending.ReleaseDonations)
}

// resolve matches a callback to its pending operation and applies the
// commit or rollback for its kind.
func (m *Museum) resolve(call *host.Call, args host.Args, kind pending.Kind) error {
	request, err := host.DecodeArgs[NameArgs](args)
	if err != nil {
		return err
	}
	outcome, _ := call.Outcome()
	return m.Pending.Resolve(kind, request.Name, outcome.ReceiptID, func(operation pending.Operation[Snapshot]) error {
		return m.settle(call, operation, outcome)
	})
}

func (m *Museum) settle(call *host.Call, operation pending.Operation[Snapshot], outcome host.Outcome) error {
	name := operation.Target
	switch operation.Kind {
	case pending.CreateExhibit:
		if outcome.Success {
			m.Exhibits = append(m.Exhibits, name)
			return nil
		}
		if operation.Snapshot.Deposit.IsZero() {
			return nil
		}
		_, err := call.Transfer(operation.Snapshot.Caller, operation.Snapshot.Deposit)
		return err

	case pending.RemoveExhibit:
		if !outcome.Success {
			// The exhibit refused to retire and is still in its
			// prior state; only the pending record goes.
			return nil
		}
		m.Exhibits = slices.DeleteFunc(m.Exhibits, func(existing string) bool {
			return existing == name
		})
		index, found := slices.BinarySearch(m.Retired, name)
		if !found {
			m.Retired = slices.Insert(m.Retired, index, name)
		}
		return nil

	case pending.ReleaseDonations:
		// The exhibit tracks the transfer itself; the museum only
		// held the request open.
		return nil

	default:
		return fault.New(fault.InvariantViolation, "unknown pending kind %q", operation.Kind)
	}
}

// museumToMemeProxy relays a view of one exhibit unmodified.
func (m *Museum) museumToMemeProxy(call *host.Call, args host.Args) (any, error) {
	if err := m.requireInitialized(); err != nil {
		return nil, err
	}
	request, err := host.DecodeArgs[ProxyArgs](args)
	if err != nil {
		return nil, err
	}
	if !m.hasExhibit(request.Name) {
		return nil, fault.Missing("meme %q does not exist", request.Name)
	}
	if !slices.Contains(exhibit.ViewMethods, request.ViewFunction) {
		return nil, fault.Invalid("%q is not a meme view function", request.ViewFunction)
	}
	address, err := account.Child(call.Self, request.Name)
	if err != nil {
		return nil, fault.Invalid("meme name: %v", err)
	}
	return call.View(address, request.ViewFunction, nil)
}

func (m *Museum) getPending(call *host.Call, args host.Args) (any, error) {
	return m.Pending.Summaries(), nil
}
