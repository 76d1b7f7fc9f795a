// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds HTTP response body reads for the Matrix client.
package netutil

import (
	"io"
)

// MaxResponseSize caps JSON API response reads at 64 MB. An initial sync
// of a busy room is the largest legitimate response and stays far below it.
const MaxResponseSize int64 = 64 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize bytes.
// Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// ErrorBody reads an error response body for diagnostics. Read errors are
// ignored: a partial body is still useful in an error message.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	return string(data)
}
