// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package museum

import (
	"github.com/bureau-foundation/museum/lib/access"
	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/exhibit"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/pending"
)

// Kind is the host kind museums are deployed as.
const Kind host.Kind = "museum"

// Method names.
const (
	MethodInit                      = "init"
	MethodGetMuseum                 = "get_museum"
	MethodGetOwnerList              = "get_owner_list"
	MethodGetContributorList        = "get_contributor_list"
	MethodGetMemeList               = "get_meme_list"
	MethodGetMemeCount              = "get_meme_count"
	MethodAddMyselfAsContributor    = "add_myself_as_contributor"
	MethodRemoveMyselfAsContributor = "remove_myself_as_contributor"
	MethodAddMeme                   = "add_meme"
	MethodOnMemeCreated             = "on_meme_created"
	MethodAddContributor            = "add_contributor"
	MethodRemoveContributor         = "remove_contributor"
	MethodAddOwner                  = "add_owner"
	MethodRemoveOwner               = "remove_owner"
	MethodRemoveMeme                = "remove_meme"
	MethodOnMemeRemoved             = "on_meme_removed"
	MethodReleaseMemeDonations      = "release_meme_donations"
	MethodOnReleaseRequested        = "on_release_requested"
	MethodMuseumToMemeProxy         = "museum_to_meme_proxy"
	MethodGetPending                = host.PendingViewMethod
)

// Snapshot is what a museum pending operation captures at dispatch.
// Which fields are set depends on the operation kind.
type Snapshot struct {
	// Caller and Deposit identify who paid for a CreateExhibit and
	// how much to refund if it fails.
	Caller  account.ID     `cbor:"caller,omitempty"`
	Deposit account.Amount `cbor:"deposit,omitempty"`

	// PriorState is the exhibit's lifecycle before a RemoveExhibit.
	PriorState exhibit.Lifecycle `cbor:"prior_state,omitempty"`

	// Target is the recipient of a ReleaseDonations.
	Target account.ID `cbor:"target,omitempty"`
}

// Museum is the persisted state of one registry.
type Museum struct {
	Name      string        `cbor:"name"`
	Roster    access.Roster `cbor:"roster"`
	CreatedAt int64         `cbor:"created_at"`

	// Exhibits holds exhibit names in creation order.
	Exhibits []string `cbor:"exhibits"`

	// Retired holds removed exhibit names, sorted. Their accounts
	// still exist, so the names cannot be reused.
	Retired []string `cbor:"retired"`

	Pending pending.Tracker[Snapshot] `cbor:"pending"`
}

// Factory returns the host factory for museums.
func Factory() host.Factory {
	return func() host.Entity {
		return &Museum{}
	}
}

// Methods binds the museum's entry points.
func (m *Museum) Methods() map[string]host.Method {
	return map[string]host.Method{
		MethodInit:                      {Run: m.init},
		MethodGetMuseum:                 {View: true, Run: m.getMuseum},
		MethodGetOwnerList:              {View: true, Run: m.getOwnerList},
		MethodGetContributorList:        {View: true, Run: m.getContributorList},
		MethodGetMemeList:               {View: true, Run: m.getMemeList},
		MethodGetMemeCount:              {View: true, Run: m.getMemeCount},
		MethodAddMyselfAsContributor:    {Run: m.addMyselfAsContributor},
		MethodRemoveMyselfAsContributor: {Run: m.removeMyselfAsContributor},
		MethodAddMeme:                   {Payable: true, Run: m.addMeme},
		MethodOnMemeCreated:             {Callback: true, Run: m.onMemeCreated},
		MethodAddContributor:            {Run: m.addContributor},
		MethodRemoveContributor:         {Run: m.removeContributor},
		MethodAddOwner:                  {Run: m.addOwner},
		MethodRemoveOwner:               {Run: m.removeOwner},
		MethodRemoveMeme:                {Run: m.removeMeme},
		MethodOnMemeRemoved:             {Callback: true, Run: m.onMemeRemoved},
		MethodReleaseMemeDonations:      {Run: m.releaseMemeDonations},
		MethodOnReleaseRequested:        {Callback: true, Run: m.onReleaseRequested},
		MethodMuseumToMemeProxy:         {View: true, Run: m.museumToMemeProxy},
		MethodGetPending:                {View: true, Run: m.getPending},
	}
}

// Arguments.

type InitArgs struct {
	Name   string       `json:"name"`
	Owners []account.ID `json:"owners"`
}

type AccountArgs struct {
	Account account.ID `json:"account"`
}

type NameArgs struct {
	Name string `json:"name"`
}

type AddMemeArgs struct {
	Name     string           `json:"name"`
	Title    string           `json:"title"`
	Data     string           `json:"data"`
	Category exhibit.Category `json:"category"`
}

type ReleaseArgs struct {
	Name   string     `json:"name"`
	Target account.ID `json:"target"`
}

type ProxyArgs struct {
	Name         string `json:"name"`
	ViewFunction string `json:"view_function"`
}

// Info is the get_museum view.
type Info struct {
	Name         string `json:"name"`
	Owners       int    `json:"owners"`
	Contributors int    `json:"contributors"`
	Memes        int    `json:"memes"`
	CreatedAt    int64  `json:"created_at"`
}
