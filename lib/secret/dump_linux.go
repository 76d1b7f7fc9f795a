// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import "golang.org/x/sys/unix"

func excludeFromDump(data []byte) {
	_ = unix.Madvise(data, unix.MADV_DONTDUMP)
}
