// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/museum/lib/account"
	"github.com/bureau-foundation/museum/lib/config"
	"github.com/bureau-foundation/museum/lib/service"
)

// Environment variables read for flag defaults.
const (
	SocketEnvVar  = "MUSEUM_SOCKET"
	AccountEnvVar = "MUSEUM_ACCOUNT"
)

// DaemonConnection manages the --socket flag for commands that talk to
// museumd. Embed it in a params struct; it implements [FlagBinder].
//
// Exported so that the embedded field is visible to reflection in
// [FlagsFromParams].
type DaemonConnection struct {
	SocketPath string
}

// AddFlags registers --socket, defaulting to $MUSEUM_SOCKET or the
// socket path of the default configuration.
func (c *DaemonConnection) AddFlags(flagSet *pflag.FlagSet) {
	socketDefault := config.Default().Paths.Socket
	if envSocket := os.Getenv(SocketEnvVar); envSocket != "" {
		socketDefault = envSocket
	}
	flagSet.StringVar(&c.SocketPath, "socket", socketDefault, "museumd socket path")
}

// Call sends one action to museumd. Failures reported by the daemon
// are returned unchanged so their fault code survives; failures to
// reach it become transient errors.
func (c *DaemonConnection) Call(ctx context.Context, action string, fields map[string]any, result any) error {
	err := service.NewClient(c.SocketPath).Call(ctx, action, fields, result)
	if err == nil {
		return nil
	}
	var serviceError *service.ServiceError
	if errors.As(err, &serviceError) {
		return err
	}
	return Transient("%w", err).
		WithHint("Is museumd running? Start it with 'museumd' or point --socket (or " + SocketEnvVar + ") at its socket.")
}

// Signer manages the --as flag naming the account a command acts for.
type Signer struct {
	As string
}

// AddFlags registers --as, defaulting to $MUSEUM_ACCOUNT.
func (s *Signer) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&s.As, "as", os.Getenv(AccountEnvVar), "account to act as (default: $"+AccountEnvVar+")")
}

// Account validates and returns the --as account.
func (s *Signer) Account() (account.ID, error) {
	if s.As == "" {
		return "", Validation("--as is required (or set %s)", AccountEnvVar)
	}
	id, err := account.Parse(s.As)
	if err != nil {
		return "", Validation("--as: %v", err)
	}
	return id, nil
}
