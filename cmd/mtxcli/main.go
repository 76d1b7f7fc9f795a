// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// mtxcli is a line-oriented Matrix chat client. Every line typed is
// either a /verb or a message for the configured room; session facts
// (access token, room ID, sync filter, sync cursor) are established on
// demand and cached in a per-user key store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(); err != nil {
		// Failures already reported to the user carry only an exit
		// code.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return rootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(os.Args[1:])
}
