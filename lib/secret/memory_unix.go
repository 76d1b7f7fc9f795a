// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// allocate maps size bytes outside the Go heap and locks them into RAM.
func allocate(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}
	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock failed: %w", err)
	}
	// Core dump exclusion is best effort: MADV_DONTDUMP is Linux-only and
	// the buffer is still protected against swap without it.
	excludeFromDump(data)
	return data, nil
}

func release(data []byte) error {
	var firstError error
	if err := unix.Munlock(data); err != nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}
	return firstError
}
