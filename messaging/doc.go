// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging wraps the parts of the Matrix client-server API that
// a line-oriented chat client needs.
//
// [Client] is an unauthenticated client bound to one homeserver. It
// discovers the supported login flows and performs password login,
// returning a [DirectSession]. A session can also be rebuilt from a
// stored access token with [Client.SessionFromToken].
//
// [DirectSession] carries the access token in mmap-backed
// [secret.Buffer] memory (locked against swap, excluded from core dumps)
// and exposes the authenticated calls: WhoAmI, ResolveAlias,
// CreateFilter, Sync, and SendMessage. Callers must Close sessions to
// release the protected memory. [Session] is the interface form of the
// same surface.
//
// Outgoing text goes through [NewTextMessage], which renders markdown
// into the HTML formatted_body when the text contains any markup.
//
// All API errors are returned as [*MatrixError] with the standard Matrix
// error code (M_FORBIDDEN, M_NOT_FOUND, etc.) and HTTP status code.
// [IsMatrixError] tests for a specific error code. Request URLs are built
// by string concatenation rather than url.URL to avoid double-encoding of
// path segments such as room aliases.
package messaging
