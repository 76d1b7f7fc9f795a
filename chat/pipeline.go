// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Remediation hints printed when a stage lacks configuration.
const (
	hintUser          = "please /set user @USER:matrix.org"
	hintPassword      = "please /set password my-password"
	hintRoom          = "please /set room my-room-to-join"
	hintServer        = "please /set server my-matrix-server"
	hintInvalidServer = "please /set server my-matrix-server (INVALID)"
)

// Say processes one line of input. Missing session facts are
// established in order (login, room, filter), then new messages are
// read. Non-empty text is sent and, once the server accepts it, read
// back through a second sync. An empty line only polls.
func (s *Session) Say(ctx context.Context, text string) error {
	if !s.loggedIn {
		if err := s.Login(ctx); err != nil {
			s.output.Error(ErrNotConnected.Error())
			return fmt.Errorf("%w: %w", ErrNotConnected, err)
		}
	}
	if s.roomID == "" {
		if err := s.ResolveRoom(ctx); err != nil {
			s.output.Error(ErrRoomUnresolved.Error())
			return fmt.Errorf("%w: %w", ErrRoomUnresolved, err)
		}
	}
	if s.filterID == "" {
		if err := s.EnsureFilter(ctx); err != nil {
			s.output.Error(ErrFilterUnavailable.Error())
			return fmt.Errorf("%w: %w", ErrFilterUnavailable, err)
		}
	}

	// A failed read leaves the cursor where it was; the next line
	// redelivers anything missed.
	s.ReadMessages(ctx)

	if text == "" {
		return nil
	}
	if err := s.homeserver.Send(ctx, s.server, s.roomID, text, s.token); err != nil {
		s.logger.Warn("send failed",
			"server", s.server,
			"room_id", s.roomID,
			"error", err,
		)
		s.output.SendFailed(s.username, text)
		return &RemoteError{Op: "send", Err: err}
	}
	s.ReadMessages(ctx)
	return nil
}

// Login establishes an access token. A cached token is kept if the
// server still accepts it; otherwise the configured username and
// password are exchanged for a new one.
func (s *Session) Login(ctx context.Context) error {
	s.output.Line("logging in...")
	if err := s.login(ctx); err != nil {
		s.logger.Warn("login failed", "server", s.server, "error", err)
		s.output.Line("authentication failed")
		return err
	}
	s.output.Line("logged in")
	return nil
}

func (s *Session) login(ctx context.Context) error {
	s.loggedIn = false
	s.token = s.store.GetDefault(KeyToken, "")

	if s.token != "" {
		err := s.homeserver.WhoAmI(ctx, s.server, s.token)
		if err == nil {
			s.loggedIn = true
			return nil
		}
		s.logger.Debug("cached token rejected, logging in with password",
			"server", s.server,
			"error", err,
		)
	}

	if err := s.homeserver.CheckLoginTypes(ctx, s.server); err != nil {
		return &RemoteError{Op: "check login types", Err: err}
	}

	password := s.store.GetDefault(KeyPassword, "")
	var missing *ConfigurationMissingError
	if s.username == "" {
		s.output.Line(hintUser)
		missing = &ConfigurationMissingError{Key: KeyUser, Hint: hintUser}
	}
	if password == "" {
		s.output.Line(hintPassword)
		if missing == nil {
			missing = &ConfigurationMissingError{Key: KeyPassword, Hint: hintPassword}
		}
	}
	if missing != nil {
		return missing
	}

	token, err := s.homeserver.Authenticate(ctx, s.server, s.username, password)
	if err != nil {
		return &RemoteError{Op: "authenticate", Err: err}
	}
	if err := s.store.Set(KeyToken, token); err != nil {
		return err
	}
	s.token = token
	s.loggedIn = true
	return nil
}

// Logout forgets the access token. No server call is made; the token
// stays valid server-side until it expires or is revoked elsewhere.
// The session is logged out in memory even if the store cannot drop
// the token.
func (s *Session) Logout() error {
	err := s.store.Unset(KeyToken)
	s.token = ""
	s.loggedIn = false
	if err != nil {
		return err
	}
	s.output.Line("logged out")
	return nil
}

// ResolveRoom resolves the configured room to a room ID unless one is
// already cached. The alias is the room name with a leading '#', a ':',
// and the host part of the configured server.
func (s *Session) ResolveRoom(ctx context.Context) error {
	if s.roomID != "" {
		return nil
	}
	room := s.store.GetDefault(KeyRoom, "")
	if room == "" {
		s.output.Line(hintRoom)
		return &ConfigurationMissingError{Key: KeyRoom, Hint: hintRoom}
	}
	server := s.store.GetDefault(KeyServer, "")
	if server == "" {
		s.output.Line(hintServer)
		return &ConfigurationMissingError{Key: KeyServer, Hint: hintServer}
	}
	host := serverHost(server)
	if host == "" {
		s.output.Line(hintInvalidServer)
		return &ConfigurationMissingError{Key: KeyServer, Hint: hintInvalidServer}
	}

	alias := room
	if !strings.HasPrefix(alias, "#") {
		alias = "#" + alias
	}
	alias += ":" + host

	roomID, err := s.homeserver.ResolveRoom(ctx, s.server, alias, s.token)
	if err != nil {
		s.logger.Warn("room resolution failed",
			"server", s.server,
			"alias", alias,
			"error", err,
		)
		return &RemoteError{Op: "resolve room", Err: err}
	}
	if err := s.store.Set(KeyRoomID, roomID); err != nil {
		return err
	}
	s.roomID = roomID
	s.logger.Debug("room resolved", "alias", alias, "room_id", roomID)
	return nil
}

// serverHost returns the host (and port) of a server URL, or "" when
// the value is not an absolute URL with a host.
func serverHost(server string) string {
	parsed, err := url.Parse(server)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	return parsed.Host
}

// EnsureFilter creates the sync filter for the resolved room unless one
// is already cached. The definition's digest is stored before the
// filter ID, so a cached ID never outlives knowledge of its definition.
func (s *Session) EnsureFilter(ctx context.Context) error {
	if s.filterID != "" {
		return nil
	}
	definition, err := s.filter.Render(s.roomID)
	if err != nil {
		return err
	}
	filterID, err := s.homeserver.CreateFilter(ctx, FilterRequest{
		User:       s.user,
		Server:     s.server,
		RoomID:     s.roomID,
		Token:      s.token,
		Definition: definition,
	})
	if err != nil {
		s.logger.Warn("filter creation failed",
			"server", s.server,
			"room_id", s.roomID,
			"error", err,
		)
		return &RemoteError{Op: "create filter", Err: err}
	}
	if err := s.store.Set(KeyFilterDigest, s.filter.Digest()); err != nil {
		return err
	}
	if err := s.store.Set(KeyFilter, filterID); err != nil {
		return err
	}
	s.filterID = filterID
	s.logger.Debug("filter created", "room_id", s.roomID, "filter", filterID)
	return nil
}

// ReadMessages syncs once and prints whatever arrived. The cursor
// advances only after the new value is stored; on any failure the
// session is unchanged.
func (s *Session) ReadMessages(ctx context.Context) error {
	result, err := s.homeserver.Sync(ctx, SyncRequest{
		Server:  s.server,
		Filter:  s.filterID,
		Since:   s.since,
		Timeout: s.syncTimeout,
		RoomID:  s.roomID,
		Token:   s.token,
	})
	if err != nil {
		s.logger.Warn("sync failed",
			"server", s.server,
			"room_id", s.roomID,
			"error", err,
		)
		return &RemoteError{Op: "sync", Err: err}
	}
	if err := s.store.Set(KeySince, result.NextBatch); err != nil {
		s.logger.Error("storing sync cursor failed", "error", err)
		return err
	}
	s.since = result.NextBatch
	s.logger.Debug("synced", "since", s.since)
	if result.Text != "" {
		s.output.Raw(result.Text)
	}
	return nil
}
