// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"encoding/json"
	"time"
)

// Homeserver is the remote side of a session. Every method blocks until
// the server answers; a nil error is the only success signal. server is
// the homeserver base URL, e.g. "https://matrix.org".
type Homeserver interface {
	// CheckLoginTypes fails unless the server accepts password login.
	CheckLoginTypes(ctx context.Context, server string) error

	// Authenticate performs password login and returns an access token.
	Authenticate(ctx context.Context, server, username, password string) (string, error)

	// WhoAmI fails unless token is a live access token.
	WhoAmI(ctx context.Context, server, token string) error

	// ResolveRoom resolves a full room alias ("#room:host") to a room ID.
	ResolveRoom(ctx context.Context, server, alias, token string) (string, error)

	// CreateFilter uploads a sync filter and returns its ID.
	CreateFilter(ctx context.Context, request FilterRequest) (string, error)

	// Sync returns the next cursor and the rendered messages since the
	// previous one.
	Sync(ctx context.Context, request SyncRequest) (SyncResult, error)

	// Send posts text to the room.
	Send(ctx context.Context, server, roomID, text, token string) error
}

// FilterRequest carries the inputs of Homeserver.CreateFilter.
type FilterRequest struct {
	// User is the configured user, either "@name:host" or a bare name.
	User       string
	Server     string
	RoomID     string
	Token      string
	Definition json.RawMessage
}

// SyncRequest carries the inputs of Homeserver.Sync.
type SyncRequest struct {
	Server  string
	Filter  string
	Since   string
	Timeout time.Duration
	RoomID  string
	Token   string
}

// SyncResult is the outcome of a successful sync.
type SyncResult struct {
	// NextBatch is the cursor for the following sync.
	NextBatch string
	// Text holds one "sender> body" line per new message, each
	// newline-terminated. Empty when nothing arrived.
	Text string
}
