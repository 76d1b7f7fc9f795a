// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package chat

// Operator-facing configuration keys.
const (
	KeyUser     = "user"
	KeyUsername = "username"
	KeyServer   = "server"
	KeyPassword = "password"
	KeyRoom     = "room"
)

// Cached session facts. Public keys, but the engine owns their contents.
const (
	KeyToken        = "_token"
	KeyRoomID       = "_room_id"
	KeyFilter       = "_filter"
	KeySince        = "_since"
	KeyFilterDigest = "_filter_digest"
)

// SchemaVersionKey holds the store's schema version. Reserved.
const SchemaVersionKey = "__schema_version"
