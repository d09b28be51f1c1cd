// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package museum_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/codec"
	"github.com/bureau-foundation/museum/lib/exhibit"
	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/host/hosttest"
	"github.com/bureau-foundation/museum/lib/museum"
	"github.com/bureau-foundation/museum/lib/pending"
)

const (
	museumID account.ID = "museum"
	usainID  account.ID = "usain.museum"
)

var usain = museum.AddMemeArgs{
	Name:     "usain",
	Title:    "usain refrain",
	Data:     "https://9gag.com/gag/ayMDG8Y",
	Category: exhibit.CategoryA,
}

func requireCode(t *testing.T, err error, code fault.Code) {
	t.Helper()
	if got := fault.CodeOf(err); got != code {
		t.Fatalf("error = %v (code %q), want code %q", err, got, code)
	}
}

// newMuseum deploys and initializes a museum owned by alice, with bob
// and carol as plain accounts.
func newMuseum(t *testing.T) *hosttest.Harness {
	t.Helper()
	harness := hosttest.New(t, func(h *host.Host) {
		h.Register(museum.Kind, museum.Factory())
		h.Register(exhibit.Kind, exhibit.Factory(exhibit.DefaultConfig()))
	})
	for _, id := range []account.ID{"alice", "bob", "carol"} {
		harness.CreateAccount(id, 1000)
	}
	harness.Deploy(museumID, museum.Kind)
	harness.MustInvoke("alice", museumID, museum.MethodInit, museum.InitArgs{
		Name:   "Meme Museum",
		Owners: []account.ID{"alice"},
	}, 0)
	return harness
}

func memeList(t *testing.T, harness *hosttest.Harness) []string {
	t.Helper()
	var names []string
	harness.MustView(museumID, museum.MethodGetMemeList, nil, &names)
	return names
}

func receiptID(t *testing.T, result codec.RawMessage) string {
	t.Helper()
	var id string
	if err := codec.Unmarshal(result, &id); err != nil {
		t.Fatalf("decoding receipt ID: %v", err)
	}
	return id
}

// findReceipt returns the queued receipt for target.method.
func findReceipt(t *testing.T, harness *hosttest.Harness, target account.ID, method string) string {
	t.Helper()
	for _, receipt := range harness.Receipts() {
		if receipt.Target == target && receipt.Method == method {
			return receipt.ID
		}
	}
	t.Fatalf("no queued receipt for %s.%s", target, method)
	return ""
}

func TestInit(t *testing.T) {
	harness := hosttest.New(t, func(h *host.Host) {
		h.Register(museum.Kind, museum.Factory())
	})
	harness.CreateAccount("alice", 0)
	harness.Deploy(museumID, museum.Kind)

	_, err := harness.Invoke("alice", museumID, museum.MethodGetMuseum, nil, 0)
	requireCode(t, err, fault.Conflict)

	_, err = harness.Invoke("alice", museumID, museum.MethodInit, museum.InitArgs{Name: " ", Owners: []account.ID{"alice"}}, 0)
	requireCode(t, err, fault.Validation)
	_, err = harness.Invoke("alice", museumID, museum.MethodInit, museum.InitArgs{Name: "m"}, 0)
	requireCode(t, err, fault.Validation)

	harness.MustInvoke("alice", museumID, museum.MethodInit, museum.InitArgs{
		Name:   "Meme Museum",
		Owners: []account.ID{"alice", "bob", "alice"},
	}, 0)
	_, err = harness.Invoke("alice", museumID, museum.MethodInit, museum.InitArgs{Name: "again", Owners: []account.ID{"alice"}}, 0)
	requireCode(t, err, fault.OnceOnly)

	var info museum.Info
	harness.MustView(museumID, museum.MethodGetMuseum, nil, &info)
	if info.Name != "Meme Museum" || info.Owners != 2 || info.Contributors != 0 || info.Memes != 0 {
		t.Errorf("info = %+v", info)
	}
	if info.CreatedAt != hosttest.Epoch.UnixNano() {
		t.Errorf("CreatedAt = %d, want %d", info.CreatedAt, hosttest.Epoch.UnixNano())
	}
}

// TestWalkthrough follows one exhibit from creation through voting,
// donations, and a release of the collected funds.
func TestWalkthrough(t *testing.T) {
	harness := newMuseum(t)

	harness.MustInvoke("alice", museumID, museum.MethodAddMeme, usain, 3)
	if got := memeList(t, harness); len(got) != 0 {
		t.Fatalf("meme listed before creation completed: %v", got)
	}
	if delivered := harness.Drain(); delivered != 2 {
		t.Errorf("creation delivered %d receipts, want deploy + callback", delivered)
	}
	if got := memeList(t, harness); !slices.Equal(got, []string{"usain"}) {
		t.Fatalf("memes = %v, want [usain]", got)
	}
	var count int
	harness.MustView(museumID, museum.MethodGetMemeCount, nil, &count)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	var meme exhibit.Snapshot
	harness.MustView(usainID, exhibit.MethodGetMeme, nil, &meme)
	if meme.Museum != museumID || meme.Creator != "alice" || meme.Title != usain.Title {
		t.Errorf("exhibit = %+v", meme)
	}

	harness.MustInvoke("alice", usainID, exhibit.MethodVote, exhibit.VoteArgs{Value: 1}, 0)
	harness.MustInvoke("bob", usainID, exhibit.MethodVote, exhibit.VoteArgs{Value: 1}, 0)
	harness.MustInvoke("alice", usainID, exhibit.MethodVote, exhibit.VoteArgs{Value: 1}, 0)
	harness.MustInvoke("alice", usainID, exhibit.MethodDonate, nil, 3)
	harness.MustInvoke("bob", usainID, exhibit.MethodDonate, nil, 5)

	var score int64
	harness.MustView(museumID, museum.MethodMuseumToMemeProxy, museum.ProxyArgs{Name: "usain", ViewFunction: exhibit.MethodGetVoteScore}, &score)
	if score != 3 {
		t.Errorf("proxied score = %d, want 3", score)
	}
	var total account.Amount
	harness.MustView(museumID, museum.MethodMuseumToMemeProxy, museum.ProxyArgs{Name: "usain", ViewFunction: exhibit.MethodGetDonationsTotal}, &total)
	if total != 8 {
		t.Errorf("proxied total = %d, want 8", total)
	}

	harness.MustInvoke("alice", museumID, museum.MethodReleaseMemeDonations, museum.ReleaseArgs{Name: "usain", Target: "carol"}, 0)
	harness.Drain()

	harness.MustView(usainID, exhibit.MethodGetDonationsTotal, nil, &total)
	if total != 0 {
		t.Errorf("total after release = %d, want 0", total)
	}
	if got := harness.Balance("carol"); got != 1008 {
		t.Errorf("carol balance = %d, want 1008", got)
	}
	if got := harness.Balance(usainID); got != 3 {
		t.Errorf("exhibit balance = %d, want its creation deposit", got)
	}

	var operations []pending.Summary
	harness.MustView(museumID, museum.MethodGetPending, nil, &operations)
	if len(operations) != 0 {
		t.Errorf("museum still pending: %+v", operations)
	}
}

func TestRoster(t *testing.T) {
	harness := newMuseum(t)

	ownerOnly := []struct {
		method string
		args   any
	}{
		{museum.MethodAddContributor, museum.AccountArgs{Account: "carol"}},
		{museum.MethodRemoveContributor, museum.AccountArgs{Account: "carol"}},
		{museum.MethodAddOwner, museum.AccountArgs{Account: "bob"}},
		{museum.MethodRemoveOwner, museum.AccountArgs{Account: "alice"}},
		{museum.MethodRemoveMeme, museum.NameArgs{Name: "usain"}},
		{museum.MethodReleaseMemeDonations, museum.ReleaseArgs{Name: "usain", Target: "bob"}},
	}
	for _, call := range ownerOnly {
		t.Run(call.method, func(t *testing.T) {
			_, err := harness.Invoke("bob", museumID, call.method, call.args, 0)
			requireCode(t, err, fault.PermissionDenied)
		})
	}

	_, err := harness.Invoke("bob", museumID, museum.MethodAddMeme, usain, 3)
	requireCode(t, err, fault.PermissionDenied)

	harness.MustInvoke("bob", museumID, museum.MethodAddMyselfAsContributor, nil, 0)
	harness.MustInvoke("bob", museumID, museum.MethodAddMyselfAsContributor, nil, 0)
	harness.MustInvoke("alice", museumID, museum.MethodAddContributor, museum.AccountArgs{Account: "carol"}, 0)

	var contributors []account.ID
	harness.MustView(museumID, museum.MethodGetContributorList, nil, &contributors)
	if !slices.Equal(contributors, []account.ID{"bob", "carol"}) {
		t.Fatalf("contributors = %v, want [bob carol]", contributors)
	}

	harness.MustInvoke("bob", museumID, museum.MethodAddMeme, usain, 3)

	harness.MustInvoke("carol", museumID, museum.MethodRemoveMyselfAsContributor, nil, 0)
	harness.MustInvoke("carol", museumID, museum.MethodRemoveMyselfAsContributor, nil, 0)
	_, err = harness.Invoke("carol", museumID, museum.MethodAddMeme, museum.AddMemeArgs{Name: "other", Title: "t"}, 3)
	requireCode(t, err, fault.PermissionDenied)

	_, err = harness.Invoke("alice", museumID, museum.MethodRemoveOwner, museum.AccountArgs{Account: "alice"}, 0)
	requireCode(t, err, fault.InvariantViolation)

	harness.MustInvoke("alice", museumID, museum.MethodAddOwner, museum.AccountArgs{Account: "carol"}, 0)
	harness.MustInvoke("carol", museumID, museum.MethodRemoveOwner, museum.AccountArgs{Account: "alice"}, 0)

	var owners []account.ID
	harness.MustView(museumID, museum.MethodGetOwnerList, nil, &owners)
	if !slices.Equal(owners, []account.ID{"carol"}) {
		t.Errorf("owners = %v, want [carol]", owners)
	}
	_, err = harness.Invoke("alice", museumID, museum.MethodAddContributor, museum.AccountArgs{Account: "alice"}, 0)
	requireCode(t, err, fault.PermissionDenied)
}

func TestAddMemeValidation(t *testing.T) {
	harness := newMuseum(t)

	for _, name := range []string{"", "Usain", "a.b", "has space"} {
		args := usain
		args.Name = name
		_, err := harness.Invoke("alice", museumID, museum.MethodAddMeme, args, 3)
		if fault.CodeOf(err) != fault.Validation {
			t.Errorf("name %q: error = %v, want validation", name, err)
		}
	}
	if receipts := harness.Receipts(); len(receipts) != 0 {
		t.Errorf("rejected calls queued receipts: %+v", receipts)
	}
}

func TestDuplicateNames(t *testing.T) {
	harness := newMuseum(t)

	harness.MustInvoke("alice", museumID, museum.MethodAddMeme, usain, 3)
	_, err := harness.Invoke("alice", museumID, museum.MethodAddMeme, usain, 3)
	requireCode(t, err, fault.DuplicateName)
	if receipts := harness.Receipts(); len(receipts) != 1 {
		t.Fatalf("queued %d receipts, want only the first creation", len(receipts))
	}
	if got := harness.Balance("alice"); got != 997 {
		t.Errorf("alice balance = %d, want the rejected deposit returned", got)
	}

	harness.Drain()
	_, err = harness.Invoke("alice", museumID, museum.MethodAddMeme, usain, 3)
	requireCode(t, err, fault.DuplicateName)
	if got := memeList(t, harness); !slices.Equal(got, []string{"usain"}) {
		t.Errorf("memes = %v", got)
	}
}

func TestFailedCreationRefundsContributor(t *testing.T) {
	harness := newMuseum(t)
	harness.MustInvoke("bob", museumID, museum.MethodAddMyselfAsContributor, nil, 0)

	harness.MustInvoke("bob", museumID, museum.MethodAddMeme, usain, 2)
	if got := harness.Balance("bob"); got != 998 {
		t.Fatalf("bob balance in flight = %d, want 998", got)
	}
	if delivered := harness.Drain(); delivered != 3 {
		t.Errorf("delivered %d receipts, want deploy, callback, and refund", delivered)
	}

	if got := harness.Balance("bob"); got != 1000 {
		t.Errorf("bob balance = %d, want the deposit refunded", got)
	}
	if got := harness.Balance(museumID); got != 0 {
		t.Errorf("museum kept %d", got)
	}
	if harness.Exists(usainID) {
		t.Error("failed creation left the exhibit account behind")
	}
	if got := memeList(t, harness); len(got) != 0 {
		t.Errorf("memes = %v, want none", got)
	}

	// The name is free again.
	harness.MustInvoke("bob", museumID, museum.MethodAddMeme, usain, 3)
	harness.Drain()
	if got := memeList(t, harness); !slices.Equal(got, []string{"usain"}) {
		t.Errorf("memes = %v, want [usain]", got)
	}
}

func TestOutOfOrderCreation(t *testing.T) {
	harness := newMuseum(t)

	first := usain
	first.Name = "first"
	second := usain
	second.Name = "second"
	firstReceipt := receiptID(t, harness.MustInvoke("alice", museumID, museum.MethodAddMeme, first, 3))
	secondReceipt := receiptID(t, harness.MustInvoke("alice", museumID, museum.MethodAddMeme, second, 3))

	harness.Deliver(secondReceipt)
	harness.Deliver(findReceipt(t, harness, museumID, museum.MethodOnMemeCreated))
	if got := memeList(t, harness); !slices.Equal(got, []string{"second"}) {
		t.Fatalf("memes = %v, want [second]", got)
	}

	harness.Deliver(firstReceipt)
	harness.Drain()
	if got := memeList(t, harness); !slices.Equal(got, []string{"second", "first"}) {
		t.Errorf("memes = %v, want completion order [second first]", got)
	}
}

func TestRemoveMeme(t *testing.T) {
	harness := newMuseum(t)
	harness.MustInvoke("alice", museumID, museum.MethodAddMeme, usain, 3)
	harness.Drain()

	_, err := harness.Invoke("alice", museumID, museum.MethodRemoveMeme, museum.NameArgs{Name: "ghost"}, 0)
	requireCode(t, err, fault.NotFound)

	harness.MustInvoke("alice", museumID, museum.MethodRemoveMeme, museum.NameArgs{Name: "usain"}, 0)
	_, err = harness.Invoke("alice", museumID, museum.MethodRemoveMeme, museum.NameArgs{Name: "usain"}, 0)
	requireCode(t, err, fault.Conflict)
	_, err = harness.Invoke("alice", museumID, museum.MethodReleaseMemeDonations, museum.ReleaseArgs{Name: "usain", Target: "bob"}, 0)
	requireCode(t, err, fault.Conflict)
	if got := memeList(t, harness); !slices.Equal(got, []string{"usain"}) {
		t.Fatalf("meme unlisted before the exhibit confirmed: %v", got)
	}

	harness.Drain()
	if got := memeList(t, harness); len(got) != 0 {
		t.Errorf("memes = %v, want none", got)
	}
	if got := harness.Balance(museumID); got != 3 {
		t.Errorf("museum balance = %d, want the retired exhibit's deposit", got)
	}

	_, err = harness.Invoke("alice", museumID, museum.MethodAddMeme, usain, 3)
	requireCode(t, err, fault.DuplicateName)
	_, err = harness.Invoke("alice", museumID, museum.MethodMuseumToMemeProxy, museum.ProxyArgs{Name: "usain", ViewFunction: exhibit.MethodGetMeme}, 0)
	requireCode(t, err, fault.NotFound)
}

func TestRemoveRefusedDuringRelease(t *testing.T) {
	harness := newMuseum(t)
	harness.MustInvoke("alice", museumID, museum.MethodAddMeme, usain, 3)
	harness.Drain()
	harness.MustInvoke("bob", usainID, exhibit.MethodDonate, nil, 5)

	// Let the exhibit start its transfer and answer the museum, but
	// hold the transfer itself.
	harness.MustInvoke("alice", museumID, museum.MethodReleaseMemeDonations, museum.ReleaseArgs{Name: "usain", Target: "carol"}, 0)
	harness.Deliver(findReceipt(t, harness, usainID, exhibit.MethodReleaseDonations))
	harness.Deliver(findReceipt(t, harness, museumID, museum.MethodOnReleaseRequested))

	harness.MustInvoke("alice", museumID, museum.MethodRemoveMeme, museum.NameArgs{Name: "usain"}, 0)
	harness.Deliver(findReceipt(t, harness, usainID, exhibit.MethodRetire))
	harness.Deliver(findReceipt(t, harness, museumID, museum.MethodOnMemeRemoved))

	if got := memeList(t, harness); !slices.Equal(got, []string{"usain"}) {
		t.Fatalf("memes = %v, want usain kept after the exhibit refused", got)
	}
	var meme exhibit.Snapshot
	harness.MustView(usainID, exhibit.MethodGetMeme, nil, &meme)
	if meme.Lifecycle != exhibit.Active {
		t.Errorf("lifecycle = %s, want active", meme.Lifecycle)
	}

	harness.Drain()
	harness.MustInvoke("alice", museumID, museum.MethodRemoveMeme, museum.NameArgs{Name: "usain"}, 0)
	harness.Drain()
	if got := memeList(t, harness); len(got) != 0 {
		t.Errorf("memes = %v, want none after the retry", got)
	}
}

func TestProxy(t *testing.T) {
	harness := newMuseum(t)
	harness.MustInvoke("alice", museumID, museum.MethodAddMeme, usain, 3)
	harness.Drain()

	err := harness.View(museumID, museum.MethodMuseumToMemeProxy, museum.ProxyArgs{Name: "ghost", ViewFunction: exhibit.MethodGetMeme}, nil)
	requireCode(t, err, fault.NotFound)
	err = harness.View(museumID, museum.MethodMuseumToMemeProxy, museum.ProxyArgs{Name: "usain", ViewFunction: exhibit.MethodVote}, nil)
	requireCode(t, err, fault.Validation)

	var meme exhibit.Snapshot
	harness.MustView(museumID, museum.MethodMuseumToMemeProxy, museum.ProxyArgs{Name: "usain", ViewFunction: exhibit.MethodGetMeme}, &meme)
	if meme.Name != "usain" || meme.Museum != museumID {
		t.Errorf("proxied meme = %+v", meme)
	}
}

func TestCallbacksCannotBeForged(t *testing.T) {
	harness := newMuseum(t)
	harness.MustInvoke("alice", museumID, museum.MethodAddMeme, usain, 3)

	for _, method := range []string{museum.MethodOnMemeCreated, museum.MethodOnMemeRemoved, museum.MethodOnReleaseRequested} {
		_, err := harness.Invoke("alice", museumID, method, museum.NameArgs{Name: "usain"}, 0)
		if !errors.Is(err, fault.ErrPermissionDenied) {
			t.Errorf("invoking %s = %v, want permission denied", method, err)
		}
	}
	if got := memeList(t, harness); len(got) != 0 {
		t.Errorf("forged callback listed %v", got)
	}

	var operations []pending.Summary
	harness.MustView(museumID, museum.MethodGetPending, nil, &operations)
	if len(operations) != 1 || operations[0].Kind != pending.CreateExhibit || operations[0].Target != "usain" {
		t.Errorf("pending = %+v", operations)
	}
}
