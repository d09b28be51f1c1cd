// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/codec"
	"github.com/bureau-foundation/museum/lib/fault"
	"github.com/bureau-foundation/museum/lib/host"
	"github.com/bureau-foundation/museum/lib/museum"
)

// Host is the subset of *host.Host a manifest is applied through.
type Host interface {
	Deploy(ctx context.Context, id account.ID, kind host.Kind) error
	Invoke(ctx context.Context, request host.Invocation) (codec.RawMessage, error)
}

// Result records what Apply dispatched.
type Result struct {
	Museum account.ID `json:"museum"`

	// Receipts maps each meme name to the receipt ID of its creation.
	Receipts map[string]string `json:"receipts"`
}

// Apply deploys and initializes the manifest's museum, registers its
// contributors, and dispatches every meme, all as caller. Caller must
// be one of the manifest's owners and pays every meme deposit.
//
// Apply stops at the first failing invocation. Invocations are atomic
// individually, not as a group: a failure part way leaves the earlier
// steps committed.
func Apply(ctx context.Context, target Host, caller account.ID, manifest *Manifest) (*Result, error) {
	if issues := Validate(manifest); len(issues) > 0 {
		return nil, fault.Invalid("invalid manifest: %s", strings.Join(issues, "; "))
	}
	if !slices.Contains(manifest.Owners, caller) {
		return nil, fault.Denied("%s is not an owner in the manifest for %s", caller, manifest.Museum)
	}

	if err := target.Deploy(ctx, manifest.Museum, museum.Kind); err != nil {
		return nil, fmt.Errorf("deploying %s: %w", manifest.Museum, err)
	}

	invoke := func(method string, args any, deposit account.Amount) (codec.RawMessage, error) {
		encoded, err := host.EncodeArgs(args)
		if err != nil {
			return nil, err
		}
		result, err := target.Invoke(ctx, host.Invocation{
			Caller:  caller,
			Target:  manifest.Museum,
			Method:  method,
			Args:    encoded,
			Deposit: deposit,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		return result, nil
	}

	if _, err := invoke(museum.MethodInit, museum.InitArgs{Name: manifest.Name, Owners: manifest.Owners}, 0); err != nil {
		return nil, err
	}
	for _, contributor := range manifest.Contributors {
		if _, err := invoke(museum.MethodAddContributor, museum.AccountArgs{Account: contributor}, 0); err != nil {
			return nil, err
		}
	}

	result := &Result{Museum: manifest.Museum, Receipts: make(map[string]string, len(manifest.Memes))}
	for _, meme := range manifest.Memes {
		encoded, err := invoke(museum.MethodAddMeme, museum.AddMemeArgs{
			Name:     meme.Name,
			Title:    meme.Title,
			Data:     meme.Data,
			Category: meme.Category,
		}, meme.depositOf())
		if err != nil {
			return result, fmt.Errorf("meme %q: %w", meme.Name, err)
		}
		var receiptID string
		if err := codec.Unmarshal(encoded, &receiptID); err != nil {
			return result, fmt.Errorf("meme %q: decoding receipt ID: %w", meme.Name, err)
		}
		result.Receipts[meme.Name] = receiptID
	}
	return result, nil
}
