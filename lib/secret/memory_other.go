// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package secret

// allocate falls back to the heap where mmap and mlock are unavailable.
// The contents are still zeroed on Close.
func allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func release([]byte) error { return nil }
