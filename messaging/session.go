// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"

	"github.com/betrusted-io/mtxcli/lib/ref"
)

// Session is the authenticated Matrix surface a chat front end uses.
// *DirectSession is the production implementation.
type Session interface {
	// UserID returns the fully-qualified Matrix user ID, or the zero
	// value when the session was built from a token and WhoAmI has not
	// run yet.
	UserID() ref.UserID

	// Close releases any resources held by the session. Idempotent.
	Close() error

	// WhoAmI validates the session and returns the user ID.
	WhoAmI(ctx context.Context) (ref.UserID, error)

	// ResolveAlias resolves a room alias to a room ID.
	ResolveAlias(ctx context.Context, alias ref.RoomAlias) (ref.RoomID, error)

	// CreateFilter uploads a sync filter definition for userID and
	// returns its ID.
	CreateFilter(ctx context.Context, userID ref.UserID, definition json.RawMessage) (string, error)

	// Sync performs an incremental sync with the homeserver.
	Sync(ctx context.Context, options SyncOptions) (*SyncResponse, error)

	// SendMessage sends a message to a room. Returns the event ID.
	SendMessage(ctx context.Context, roomID ref.RoomID, content MessageContent) (string, error)
}

// Compile-time check: *DirectSession implements Session.
var _ Session = (*DirectSession)(nil)
