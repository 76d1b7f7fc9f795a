// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Log formats accepted by NewCommandLogger.
const (
	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// NewCommandLogger creates the program's structured logger writing to
// w. With LogFormatAuto, a terminal gets slog.TextHandler and anything
// else (a file, a pipe into a log collector) gets slog.JSONHandler.
//
// Secrets must never be passed as attributes: the password and access
// token stay out of every log line regardless of level.
func NewCommandLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format {
	case LogFormatText:
		handler = slog.NewTextHandler(w, options)
	case LogFormatJSON:
		handler = slog.NewJSONHandler(w, options)
	default:
		if isTerminal(w) {
			handler = slog.NewTextHandler(w, options)
		} else {
			handler = slog.NewJSONHandler(w, options)
		}
	}
	return slog.New(handler)
}

// VerbosityLevel lowers base by one slog level step per -v.
func VerbosityLevel(base slog.Level, verbosity int) slog.Level {
	return base - slog.Level(4*verbosity)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
