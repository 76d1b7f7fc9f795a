// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied is returned when a public caller tries to set or
// unset a reserved key.
var ErrPermissionDenied = errors.New("keystore: permission denied")

// ErrInvalidKey is returned for keys that cannot name a file in the store
// directory: empty keys, keys containing a path separator, and keys
// beginning with '.'.
var ErrInvalidKey = errors.New("keystore: invalid key")

// IOError reports a failure of the backing directory or of a key's file.
// The triggering operation made no change to the stored value.
type IOError struct {
	// Op is the store operation: "get", "set", or "unset".
	Op string
	// Key is the key being accessed.
	Key string
	// Err is the underlying filesystem error.
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("keystore: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
