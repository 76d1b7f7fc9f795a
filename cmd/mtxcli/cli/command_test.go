// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func newTestCommand(storeDir *string, verbosity *int, received *[]string) *Command {
	return &Command{
		Name:    "mtxcli",
		Summary: "Matrix chat client",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("mtxcli", pflag.ContinueOnError)
			flagSet.StringVar(storeDir, "store-dir", "", "key store directory")
			flagSet.CountVarP(verbosity, "verbose", "v", "increase log verbosity")
			return flagSet
		},
		Examples: []Example{
			{Description: "Use a scratch store", Command: "mtxcli --store-dir /tmp/mtxcli"},
		},
		Run: func(args []string) error {
			*received = args
			return nil
		},
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var storeDir string
	var verbosity int
	var received []string
	command := newTestCommand(&storeDir, &verbosity, &received)

	if err := command.Execute([]string{"--store-dir", "/tmp/store", "-vv", "extra"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if storeDir != "/tmp/store" {
		t.Errorf("store-dir = %q", storeDir)
	}
	if verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", verbosity)
	}
	if len(received) != 1 || received[0] != "extra" {
		t.Errorf("args = %v, want [extra]", received)
	}
}

func TestCommand_Execute_Help(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		t.Run(flag, func(t *testing.T) {
			var storeDir string
			var verbosity int
			var received []string
			var help bytes.Buffer
			command := newTestCommand(&storeDir, &verbosity, &received)
			command.HelpOutput = &help
			ran := false
			command.Run = func([]string) error { ran = true; return nil }

			if err := command.Execute([]string{"--store-dir", "x", flag}); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if ran {
				t.Error("Run called for help")
			}
			output := help.String()
			for _, want := range []string{"Matrix chat client", "Usage:\n  mtxcli [flags]", "--store-dir", "-v, --verbose", "# Use a scratch store"} {
				if !strings.Contains(output, want) {
					t.Errorf("help missing %q:\n%s", want, output)
				}
			}
		})
	}
}

func TestCommand_Execute_HelpAfterTerminator(t *testing.T) {
	var storeDir string
	var verbosity int
	var received []string
	command := newTestCommand(&storeDir, &verbosity, &received)
	command.HelpOutput = &bytes.Buffer{}

	if err := command.Execute([]string{"--", "--help"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(received) != 1 || received[0] != "--help" {
		t.Errorf("args = %v, want [--help]", received)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	var storeDir string
	var verbosity int
	var received []string
	command := newTestCommand(&storeDir, &verbosity, &received)

	err := command.Execute([]string{"--stor-dir", "/tmp"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	message := err.Error()
	if !strings.Contains(message, "did you mean --store-dir?") {
		t.Errorf("error missing suggestion: %s", message)
	}
	if !strings.Contains(message, "Run 'mtxcli --help' for usage.") {
		t.Errorf("error missing help pointer: %s", message)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	var storeDir string
	var verbosity int
	var received []string
	command := newTestCommand(&storeDir, &verbosity, &received)

	err := command.Execute([]string{"--completely-unrelated"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("unexpected suggestion: %s", err)
	}
}

func TestCommand_Execute_NoRun(t *testing.T) {
	command := &Command{Name: "mtxcli", HelpOutput: &bytes.Buffer{}}
	if err := command.Execute(nil); err == nil {
		t.Error("expected error for command without Run")
	}
}

func TestExitError(t *testing.T) {
	var err error = &ExitError{Code: 2}
	coder, ok := err.(interface{ ExitCode() int })
	if !ok || coder.ExitCode() != 2 {
		t.Errorf("ExitError does not report its code")
	}
	if err.Error() != "exit code 2" {
		t.Errorf("Error() = %q", err.Error())
	}
}
