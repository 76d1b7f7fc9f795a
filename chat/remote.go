// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/betrusted-io/mtxcli/lib/ref"
	"github.com/betrusted-io/mtxcli/lib/secret"
	"github.com/betrusted-io/mtxcli/messaging"
)

// ErrPasswordLoginUnsupported is returned by Remote.CheckLoginTypes when
// the homeserver offers no password login flow.
var ErrPasswordLoginUnsupported = errors.New("homeserver does not offer " + messaging.LoginTypePassword)

// RemoteConfig holds the parameters for creating a Remote.
type RemoteConfig struct {
	// HTTPClient is shared by every homeserver. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Markdown sends outgoing text with an HTML formatted body when it
	// contains markdown.
	Markdown bool
}

// Remote implements Homeserver with the Matrix client-server API.
// Access tokens are held in protected memory only for the duration of
// each call.
type Remote struct {
	httpClient *http.Client
	logger     *slog.Logger
	markdown   bool
	clients    map[string]*messaging.Client
}

// NewRemote creates a Remote.
func NewRemote(config RemoteConfig) *Remote {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Remote{
		httpClient: config.HTTPClient,
		logger:     logger,
		markdown:   config.Markdown,
		clients:    make(map[string]*messaging.Client),
	}
}

var _ Homeserver = (*Remote)(nil)

// client returns the cached Client for server, creating it on first use.
func (r *Remote) client(server string) (*messaging.Client, error) {
	if client, ok := r.clients[server]; ok {
		return client, nil
	}
	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: server,
		HTTPClient:    r.httpClient,
		Logger:        r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.clients[server] = client
	return client, nil
}

// withSession runs fn with a session built from token, closing it after.
func (r *Remote) withSession(server, token string, fn func(session messaging.Session) error) error {
	client, err := r.client(server)
	if err != nil {
		return err
	}
	session, err := client.SessionFromToken(ref.UserID{}, token)
	if err != nil {
		return err
	}
	defer session.Close()
	return fn(session)
}

// CheckLoginTypes fails unless server offers password login.
func (r *Remote) CheckLoginTypes(ctx context.Context, server string) error {
	client, err := r.client(server)
	if err != nil {
		return err
	}
	supported, err := client.SupportsLoginType(ctx, messaging.LoginTypePassword)
	if err != nil {
		return err
	}
	if !supported {
		return ErrPasswordLoginUnsupported
	}
	return nil
}

// Authenticate logs in with username and password and returns the new
// access token. The password is copied into protected memory for the
// request.
func (r *Remote) Authenticate(ctx context.Context, server, username, password string) (string, error) {
	client, err := r.client(server)
	if err != nil {
		return "", err
	}
	passwordBuffer, err := secret.NewFromString(password)
	if err != nil {
		return "", fmt.Errorf("protecting password: %w", err)
	}
	defer passwordBuffer.Close()

	session, err := client.Login(ctx, username, passwordBuffer)
	if err != nil {
		return "", err
	}
	defer session.Close()
	return session.AccessToken(), nil
}

// WhoAmI fails unless token is accepted by server.
func (r *Remote) WhoAmI(ctx context.Context, server, token string) error {
	return r.withSession(server, token, func(session messaging.Session) error {
		_, err := session.WhoAmI(ctx)
		return err
	})
}

// ResolveRoom resolves alias to a room ID.
func (r *Remote) ResolveRoom(ctx context.Context, server, alias, token string) (string, error) {
	roomAlias, err := ref.ParseRoomAlias(alias)
	if err != nil {
		return "", err
	}
	var roomID ref.RoomID
	err = r.withSession(server, token, func(session messaging.Session) error {
		roomID, err = session.ResolveAlias(ctx, roomAlias)
		return err
	})
	if err != nil {
		return "", err
	}
	return roomID.String(), nil
}

// CreateFilter uploads request.Definition for the configured user. A
// bare user name is qualified with the host of request.Server.
func (r *Remote) CreateFilter(ctx context.Context, request FilterRequest) (string, error) {
	userID, err := qualifyUser(request.User, request.Server)
	if err != nil {
		return "", err
	}
	var filterID string
	err = r.withSession(request.Server, request.Token, func(session messaging.Session) error {
		filterID, err = session.CreateFilter(ctx, userID, request.Definition)
		return err
	})
	if err != nil {
		return "", err
	}
	return filterID, nil
}

// qualifyUser turns the configured user into a full user ID.
func qualifyUser(user, server string) (ref.UserID, error) {
	if strings.HasPrefix(user, "@") && strings.Contains(user, ":") {
		return ref.ParseUserID(user)
	}
	serverName, err := ref.ServerNameFromURL(server)
	if err != nil {
		return ref.UserID{}, err
	}
	localpart, _ := ParseUser(user, server)
	return ref.NewUserID(localpart, serverName)
}

// Sync fetches new events and renders the messages of request.RoomID,
// one "sender> body" line each.
func (r *Remote) Sync(ctx context.Context, request SyncRequest) (SyncResult, error) {
	var response *messaging.SyncResponse
	err := r.withSession(request.Server, request.Token, func(session messaging.Session) error {
		var err error
		response, err = session.Sync(ctx, messaging.SyncOptions{
			Since:      request.Since,
			Filter:     request.Filter,
			Timeout:    int(request.Timeout.Milliseconds()),
			SetTimeout: true,
		})
		return err
	})
	if err != nil {
		return SyncResult{}, err
	}
	return SyncResult{
		NextBatch: response.NextBatch,
		Text:      renderTimeline(response, request.RoomID),
	}, nil
}

// renderTimeline renders the m.room.message events of roomID.
func renderTimeline(response *messaging.SyncResponse, roomID string) string {
	var builder strings.Builder
	for id, room := range response.Rooms.Join {
		if id.String() != roomID {
			continue
		}
		for _, event := range room.Timeline.Events {
			if event.Type != "m.room.message" {
				continue
			}
			body, ok := event.Content["body"].(string)
			if !ok {
				continue
			}
			sender := event.Sender.Localpart()
			if sender == "" {
				sender = event.Sender.String()
			}
			fmt.Fprintf(&builder, "%s> %s\n", sender, body)
		}
	}
	return builder.String()
}

// Send posts text to roomID.
func (r *Remote) Send(ctx context.Context, server, roomID, text, token string) error {
	room, err := ref.ParseRoomID(roomID)
	if err != nil {
		return err
	}
	content := messaging.NewPlainTextMessage(text)
	if r.markdown {
		content = messaging.NewTextMessage(text)
	}
	return r.withSession(server, token, func(session messaging.Session) error {
		_, err := session.SendMessage(ctx, room, content)
		return err
	})
}
