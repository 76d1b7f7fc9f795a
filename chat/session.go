// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultServer is used when the configured user carries no server.
const DefaultServer = "https://matrix.org"

// DefaultSyncTimeout is the long-poll budget for each sync.
const DefaultSyncTimeout = 300 * time.Millisecond

// secureScheme prefixes the server part of a user ID.
const secureScheme = "https://"

// Store is the key/value store a session persists into.
// *keystore.Store implements it.
type Store interface {
	Get(key string) (string, bool, error)
	GetDefault(key, fallback string) string
	Set(key, value string) error
	Unset(key string) error
}

// Config holds the parameters for creating a Session.
type Config struct {
	// Store persists session facts. Required.
	Store Store

	// Homeserver performs the remote calls. Required.
	Homeserver Homeserver

	// Output receives operator-facing lines. Required.
	Output *Output

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger

	// DefaultServer replaces DefaultServer when non-empty.
	DefaultServer string

	// SyncTimeout replaces DefaultSyncTimeout when positive.
	SyncTimeout time.Duration

	// Filter is the sync filter definition. If nil, the built-in
	// definition is used.
	Filter *FilterTemplate
}

// Session holds the session facts for one process. Not safe for
// concurrent use: the caller serializes input lines.
type Session struct {
	store         Store
	homeserver    Homeserver
	output        *Output
	logger        *slog.Logger
	defaultServer string
	syncTimeout   time.Duration
	filter        *FilterTemplate

	user     string
	username string
	server   string
	token    string
	loggedIn bool
	roomID   string
	filterID string
	since    string
}

// New creates a Session hydrated from the store. The access token is
// read lazily at login and the session always starts logged out. A
// cached filter built from a different definition is discarded along
// with the sync cursor that depends on it.
func New(config Config) (*Session, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("chat: Store is required")
	}
	if config.Homeserver == nil {
		return nil, fmt.Errorf("chat: Homeserver is required")
	}
	if config.Output == nil {
		return nil, fmt.Errorf("chat: Output is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	defaultServer := config.DefaultServer
	if defaultServer == "" {
		defaultServer = DefaultServer
	}
	syncTimeout := config.SyncTimeout
	if syncTimeout <= 0 {
		syncTimeout = DefaultSyncTimeout
	}
	filter := config.Filter
	if filter == nil {
		filter = DefaultFilterTemplate()
	}

	s := &Session{
		store:         config.Store,
		homeserver:    config.Homeserver,
		output:        config.Output,
		logger:        logger,
		defaultServer: defaultServer,
		syncTimeout:   syncTimeout,
		filter:        filter,
	}
	s.user = s.store.GetDefault(KeyUser, "")
	s.username = s.store.GetDefault(KeyUsername, "")
	s.server = s.store.GetDefault(KeyServer, defaultServer)
	s.roomID = s.store.GetDefault(KeyRoomID, "")
	s.filterID = s.store.GetDefault(KeyFilter, "")
	s.since = s.store.GetDefault(KeySince, "")

	if s.filterID != "" && s.store.GetDefault(KeyFilterDigest, "") != filter.Digest() {
		s.logger.Info("filter definition changed, discarding cached filter",
			"filter", s.filterID,
		)
		if err := s.invalidate(KeyFilter, KeySince, KeyFilterDigest); err != nil {
			return nil, fmt.Errorf("chat: discarding stale filter: %w", err)
		}
	}

	s.logger.Debug("session hydrated",
		"user", s.user,
		"server", s.server,
		"room_id", s.roomID,
		"filter", s.filterID,
		"since", s.since,
	)
	return s, nil
}

// LoggedIn reports whether the current token has been verified or
// issued in this process.
func (s *Session) LoggedIn() bool { return s.loggedIn }

// User returns the configured user as typed.
func (s *Session) User() string { return s.user }

// Username returns the local part derived from the user.
func (s *Session) Username() string { return s.username }

// Server returns the homeserver base URL.
func (s *Session) Server() string { return s.server }

// Token returns the in-memory access token.
func (s *Session) Token() string { return s.token }

// RoomID returns the resolved room ID, empty when unresolved.
func (s *Session) RoomID() string { return s.roomID }

// FilterID returns the server-side filter ID, empty when unset.
func (s *Session) FilterID() string { return s.filterID }

// Since returns the sync cursor, empty before the first sync.
func (s *Session) Since() string { return s.since }

// Status returns the one-line session summary.
func (s *Session) Status() string {
	state := "not connected"
	if s.loggedIn {
		state = "logged in"
	}
	return fmt.Sprintf("status: %s. username = %s, server = %s", state, s.username, s.server)
}

// Get reads a key from the store.
func (s *Session) Get(key string) (string, bool, error) {
	return s.store.Get(key)
}

// Set writes a key. user, password, and room run their cascade; keys
// mirrored in memory are updated after the store accepts the value.
func (s *Session) Set(key, value string) error {
	switch key {
	case KeyUser:
		return s.ChangeIdentity(value)
	case KeyPassword:
		return s.ChangeCredential(value)
	case KeyRoom:
		return s.ChangeRoom(value)
	}
	if err := s.store.Set(key, value); err != nil {
		return err
	}
	s.mirror(key, value)
	return nil
}

// Unset removes a key. Keys mirrored in memory are cleared after the
// store removes them; removing the token also ends the login.
func (s *Session) Unset(key string) error {
	if err := s.store.Unset(key); err != nil {
		return err
	}
	s.mirror(key, "")
	return nil
}

// mirror copies a stored value into the matching session field.
func (s *Session) mirror(key, value string) {
	switch key {
	case KeyUser:
		s.user = value
	case KeyUsername:
		s.username = value
	case KeyServer:
		s.server = value
	case KeyToken:
		s.token = value
		s.loggedIn = false
	case KeyRoomID:
		s.roomID = value
	case KeyFilter:
		s.filterID = value
	case KeySince:
		s.since = value
	}
}

// invalidate unsets each key in order, clearing its session field as
// soon as the store has dropped it. Stops at the first failure.
func (s *Session) invalidate(keys ...string) error {
	for _, key := range keys {
		if err := s.store.Unset(key); err != nil {
			return err
		}
		s.mirror(key, "")
	}
	return nil
}

// ParseUser splits a user string into its local part and server URL.
// The local part starts after the first '@' (or at the beginning when
// there is none) and ends at the first ':' (or the end). The server is
// the text after that ':' behind https://, or defaultServer when there
// is no ':'.
func ParseUser(value, defaultServer string) (username, server string) {
	start := strings.IndexByte(value, '@') + 1
	end := strings.IndexByte(value, ':')
	if end < 0 {
		return value[start:], defaultServer
	}
	if start > end {
		// An '@' after the ':' belongs to the server part.
		start = 0
	}
	return value[start:end], secureScheme + value[end+1:]
}

// ChangeIdentity sets the user. The access token is dropped first, then
// the derived username and server are stored, then the user itself.
func (s *Session) ChangeIdentity(value string) error {
	username, server := ParseUser(value, s.defaultServer)
	s.logger.Debug("identity changed, dropping access token",
		"user", value,
		"username", username,
		"server", server,
	)
	if err := s.invalidate(KeyToken); err != nil {
		return err
	}
	if err := s.store.Set(KeyUsername, username); err != nil {
		return err
	}
	s.username = username
	if err := s.store.Set(KeyServer, server); err != nil {
		return err
	}
	s.server = server
	if err := s.store.Set(KeyUser, value); err != nil {
		return err
	}
	s.user = value
	return nil
}

// ChangeCredential sets the password after dropping the access token.
func (s *Session) ChangeCredential(value string) error {
	s.logger.Debug("credential changed, dropping access token")
	if err := s.invalidate(KeyToken); err != nil {
		return err
	}
	return s.store.Set(KeyPassword, value)
}

// ChangeRoom sets the room after dropping the resolved room ID, the
// sync cursor, and the filter.
func (s *Session) ChangeRoom(value string) error {
	s.logger.Debug("room changed, dropping room_id, since, and filter", "room", value)
	if err := s.invalidate(KeyRoomID, KeySince, KeyFilter, KeyFilterDigest); err != nil {
		return err
	}
	return s.store.Set(KeyRoom, value)
}
