// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the program-level command framework for mtxcli.
//
// [Command] holds a pflag.FlagSet factory and a Run function.
// [Command.Execute] handles help flags, flag parsing, and error messages
// that point at --help. Unknown flags get a suggestion when one is close
// by Levenshtein distance; [Suggest] exposes the same matching to the
// interactive shell's verb table.
//
// [NewCommandLogger] builds the program's slog logger, and [ExitError]
// carries a non-zero exit code for failures that have already been
// reported to the user.
package cli
