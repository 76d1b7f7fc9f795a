// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// Command represents the program's command line.
type Command struct {
	// Name is the program name shown in usage and error messages.
	Name string

	// Summary is a one-line description.
	Summary string

	// Description is a detailed multi-line description shown in help
	// output in place of Summary.
	Description string

	// Usage is the usage string (e.g., "mtxcli [flags]"). If empty, it is
	// synthesized from Name.
	Usage string

	// Examples are shown in the help output after the flags.
	Examples []Example

	// Flags returns a configured *pflag.FlagSet. Called once per Execute
	// and again for help output. If nil, the command accepts no flags.
	Flags func() *pflag.FlagSet

	// Run executes the command with the positional args left after flag
	// parsing.
	Run func(args []string) error

	// HelpOutput receives help text. If nil, os.Stderr is used.
	HelpOutput io.Writer
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// Execute parses args and calls Run.
func (c *Command) Execute(args []string) error {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if isHelpFlag(arg) {
			c.PrintHelp(c.helpOutput())
			return nil
		}
	}

	if c.Flags != nil {
		flagSet := c.Flags()

		// pflag prints its own usage dump on error; ours carries a
		// suggestion instead.
		flagSet.SetOutput(io.Discard)
		flagSet.Usage = func() {}

		if err := flagSet.Parse(args); err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown shorthand flag") {
				// A fresh set: the failed parse may have left state behind.
				if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
					return fmt.Errorf("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
						errMsg, suggestion, c.Name)
				}
			}
			return fmt.Errorf("%s\n\nRun '%s --help' for usage.", errMsg, c.Name)
		}
		args = flagSet.Args()
	}

	if c.Run == nil {
		c.PrintHelp(c.helpOutput())
		return fmt.Errorf("no action defined for %q", c.Name)
	}
	return c.Run(args)
}

// PrintHelp writes structured help output to w.
func (c *Command) PrintHelp(w io.Writer) {
	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	if c.Usage != "" {
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	} else {
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", c.Name)
	}

	if c.Flags != nil {
		var flagHelp strings.Builder
		flagSet := c.Flags()
		flagSet.SetOutput(&flagHelp)
		flagSet.PrintDefaults()
		if flagHelp.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
			if example.Description != "" {
				fmt.Fprintln(w)
			}
		}
	}
}

func (c *Command) helpOutput() io.Writer {
	if c.HelpOutput != nil {
		return c.HelpOutput
	}
	return os.Stderr
}

// isHelpFlag returns true for common help flag variants.
func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help"
}
