// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/museum/cmd/museum/cli"
	"github.com/bureau-foundation/museum/cmd/museum/commands"
)

func main() {
	if err := commands.Root().Execute(os.Args[1:]); err != nil {
		// Commands that print their own output return an ExitError
		// carrying the desired code.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if hint := cli.HintOf(err); hint != "" {
			fmt.Fprintf(os.Stderr, "\n%s\n", hint)
		}
		os.Exit(cli.ExitCode(err))
	}
}
