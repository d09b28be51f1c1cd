// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"strings"

	"github.com/bureau-foundation/museum/lib/account"
)

// ExactArgs checks that args holds one value per name.
func ExactArgs(args []string, names ...string) error {
	if len(args) == len(names) {
		return nil
	}
	placeholders := make([]string, len(names))
	for i, name := range names {
		placeholders[i] = "<" + name + ">"
	}
	return Validation("expected %s, got %d argument(s)", strings.Join(placeholders, " "), len(args))
}

// ParseAccount validates a positional account argument.
func ParseAccount(label, raw string) (account.ID, error) {
	id, err := account.Parse(raw)
	if err != nil {
		return "", Validation("<%s>: %v", label, err)
	}
	return id, nil
}

// MemeAddress returns the account a museum's meme lives at.
func MemeAddress(museum account.ID, name string) (account.ID, error) {
	address, err := account.Child(museum, name)
	if err != nil {
		return "", Validation("<meme>: %v", err)
	}
	return address, nil
}

// Invoke runs a method on target as caller through the daemon's "call"
// action and decodes the method's result into result (if non-nil).
func (c *DaemonConnection) Invoke(ctx context.Context, caller, target account.ID, method string, args any, deposit account.Amount, result any) error {
	fields := map[string]any{
		"caller": caller,
		"target": target,
		"method": method,
	}
	if args != nil {
		fields["args"] = args
	}
	if !deposit.IsZero() {
		fields["deposit"] = deposit
	}
	return c.Call(ctx, "call", fields, result)
}

// View runs a view method through the daemon's "view" action.
func (c *DaemonConnection) View(ctx context.Context, target account.ID, method string, args any, result any) error {
	fields := map[string]any{
		"target": target,
		"method": method,
	}
	if args != nil {
		fields["args"] = args
	}
	return c.Call(ctx, "view", fields, result)
}
