// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"errors"
	"fmt"
)

// Pipeline stage failures returned by Session.Say. Each wraps the
// stage's underlying cause.
var (
	ErrNotConnected      = errors.New("not connected")
	ErrRoomUnresolved    = errors.New("could not find room_id")
	ErrFilterUnavailable = errors.New("could not create filter")
)

// RemoteError reports a failed homeserver call. Unwrap exposes the
// transport error, usually a *messaging.MatrixError.
type RemoteError struct {
	// Op is the homeserver operation, e.g. "whoami" or "sync".
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ConfigurationMissingError reports a key that must be set, or set to a
// usable value, before a pipeline stage can run.
type ConfigurationMissingError struct {
	Key string
	// Hint is the remediation shown to the operator.
	Hint string
}

func (e *ConfigurationMissingError) Error() string {
	return fmt.Sprintf("%s is not configured (%s)", e.Key, e.Hint)
}
