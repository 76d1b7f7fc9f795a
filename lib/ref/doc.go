// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated Matrix identifier types.
//
// [UserID] (@localpart:server), [RoomID] (!opaque:server), [RoomAlias]
// (#localpart:server), and [ServerName] are immutable value types that
// are parsed once at a boundary (a homeserver response, the operator's
// configuration) and passed around typed afterwards. Each implements
// encoding.TextMarshaler and encoding.TextUnmarshaler, so JSON decoding
// of homeserver responses validates identifiers as a side effect. An
// empty JSON string decodes to the zero value.
//
// The types validate structure only (sigil, localpart, ':server'). They
// do not apply the stricter historical localpart grammar, because the
// client has to accept whatever identifiers a federated server hands out.
package ref
