// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// Package shell is the interactive line interface of mtxcli.
//
// Each input line is split into a first token and the remainder. A
// first token starting with '/' names a verb (get, set, unset, login,
// logout, status, help, quit); anything else is a chat line handed to
// the session, and an empty line polls for new messages.
//
// Input comes from a [LineReader]: [NewLineReader] for pipes and files,
// [OpenTerminal] for an interactive terminal with line editing and
// history.
package shell
