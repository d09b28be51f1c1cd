// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/exhibit"
)

// Manifest declares one museum and its initial collection.
type Manifest struct {
	// Museum is the account the registry is deployed at.
	Museum account.ID `json:"museum"`

	// Name is the display name passed to init.
	Name string `json:"name"`

	Owners       []account.ID `json:"owners"`
	Contributors []account.ID `json:"contributors,omitempty"`

	Memes []Meme `json:"memes,omitempty"`
}

// Meme declares one exhibit. Deposit defaults to [DefaultDeposit].
type Meme struct {
	Name     string           `json:"name"`
	Title    string           `json:"title"`
	Data     string           `json:"data,omitempty"`
	Category exhibit.Category `json:"category"`
	Deposit  account.Amount   `json:"deposit,omitempty"`
}

// DefaultDeposit is attached to add_meme when a manifest entry names
// no deposit. It matches the exhibit's default creation minimum.
var DefaultDeposit = exhibit.DefaultConfig().MinimumDeposit

// depositOf returns the deposit to attach for m.
func (m Meme) depositOf() account.Amount {
	if m.Deposit.IsZero() {
		return DefaultDeposit
	}
	return m.Deposit
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result. Unknown fields are rejected so a misspelled
// key does not silently drop part of a collection.
func Parse(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.DisallowUnknownFields()
	var manifest Manifest
	if err := decoder.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &manifest, nil
}

// ReadFile reads and parses a JSONC manifest from disk.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	manifest, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}

// Validate checks a manifest for structural issues and returns one
// human-readable description per issue. An empty list means the
// manifest can be applied.
func Validate(manifest *Manifest) []string {
	var issues []string

	if err := manifest.Museum.Validate(); err != nil {
		issues = append(issues, fmt.Sprintf("museum: %v", err))
	}
	if strings.TrimSpace(manifest.Name) == "" {
		issues = append(issues, "name is required")
	}
	if len(manifest.Owners) == 0 {
		issues = append(issues, "at least one owner is required")
	}
	for index, owner := range manifest.Owners {
		if err := owner.Validate(); err != nil {
			issues = append(issues, fmt.Sprintf("owners[%d]: %v", index, err))
		}
	}
	for index, contributor := range manifest.Contributors {
		if err := contributor.Validate(); err != nil {
			issues = append(issues, fmt.Sprintf("contributors[%d]: %v", index, err))
		}
	}

	names := make(map[string]int, len(manifest.Memes))
	for index, meme := range manifest.Memes {
		prefix := fmt.Sprintf("memes[%d]", index)
		if firstIndex, exists := names[meme.Name]; exists {
			issues = append(issues, fmt.Sprintf("%s %q: duplicate meme name (first used at memes[%d])", prefix, meme.Name, firstIndex))
		} else {
			names[meme.Name] = index
		}
		if _, err := account.Child(manifest.Museum, meme.Name); err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
		}
		if strings.TrimSpace(meme.Title) == "" {
			issues = append(issues, fmt.Sprintf("%s %q: title is required", prefix, meme.Name))
		}
		if !meme.Category.Valid() {
			issues = append(issues, fmt.Sprintf("%s %q: category %d is not one of 0, 1, 2, 4", prefix, meme.Name, uint8(meme.Category)))
		}
	}

	return issues
}
