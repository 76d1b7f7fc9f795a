// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// Package version carries build version information for mtxcli.
//
// [Version] is the release version. It doubles as the store schema
// version: the migration engine stamps it into the session store at
// startup and the store reports it under the synthesized __version key.
// Commit and build time are injected at build time via -ldflags.
package version
