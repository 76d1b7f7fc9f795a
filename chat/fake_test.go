// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	"github.com/muesli/termenv"

	"github.com/betrusted-io/mtxcli/lib/keystore"
)

// fakeHomeserver records the order of calls and returns canned results.
// Each *Err field, when set, makes the matching call fail.
type fakeHomeserver struct {
	calls []string

	loginTypesErr error
	authErr       error
	whoamiErr     error
	resolveErr    error
	filterErr     error
	syncErr       error
	sendErr       error

	token    string
	roomID   string
	filterID string
	// syncTexts are returned by successive syncs; later syncs return "".
	syncTexts []string
	syncCount int

	authUsername string
	authPassword string
	aliases      []string
	filters      []FilterRequest
	syncs        []SyncRequest
	sent         []string
}

func newFakeHomeserver() *fakeHomeserver {
	return &fakeHomeserver{
		token:    "syt_new",
		roomID:   "!room:example.org",
		filterID: "f1",
	}
}

func (f *fakeHomeserver) CheckLoginTypes(ctx context.Context, server string) error {
	f.calls = append(f.calls, "check_login_types")
	return f.loginTypesErr
}

func (f *fakeHomeserver) Authenticate(ctx context.Context, server, username, password string) (string, error) {
	f.calls = append(f.calls, "authenticate")
	f.authUsername, f.authPassword = username, password
	if f.authErr != nil {
		return "", f.authErr
	}
	return f.token, nil
}

func (f *fakeHomeserver) WhoAmI(ctx context.Context, server, token string) error {
	f.calls = append(f.calls, "whoami")
	return f.whoamiErr
}

func (f *fakeHomeserver) ResolveRoom(ctx context.Context, server, alias, token string) (string, error) {
	f.calls = append(f.calls, "resolve_room")
	f.aliases = append(f.aliases, alias)
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.roomID, nil
}

func (f *fakeHomeserver) CreateFilter(ctx context.Context, request FilterRequest) (string, error) {
	f.calls = append(f.calls, "create_filter")
	f.filters = append(f.filters, request)
	if f.filterErr != nil {
		return "", f.filterErr
	}
	return f.filterID, nil
}

func (f *fakeHomeserver) Sync(ctx context.Context, request SyncRequest) (SyncResult, error) {
	f.calls = append(f.calls, "sync")
	f.syncs = append(f.syncs, request)
	if f.syncErr != nil {
		return SyncResult{}, f.syncErr
	}
	f.syncCount++
	result := SyncResult{NextBatch: fmt.Sprintf("s%d", f.syncCount)}
	if len(f.syncTexts) > 0 {
		result.Text = f.syncTexts[0]
		f.syncTexts = f.syncTexts[1:]
	}
	return result, nil
}

func (f *fakeHomeserver) Send(ctx context.Context, server, roomID, text, token string) error {
	f.calls = append(f.calls, "send")
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeHomeserver) expectCalls(t *testing.T, expected ...string) {
	t.Helper()
	if !slices.Equal(f.calls, expected) {
		t.Errorf("homeserver calls = %v, want %v", f.calls, expected)
	}
}

// failingStore wraps a Store and fails Set or Unset for chosen keys.
type failingStore struct {
	Store
	failSet   map[string]bool
	failUnset map[string]bool
}

func (f *failingStore) Set(key, value string) error {
	if f.failSet[key] {
		return &keystore.IOError{Op: "set", Key: key, Err: fmt.Errorf("disk full")}
	}
	return f.Store.Set(key, value)
}

func (f *failingStore) Unset(key string) error {
	if f.failUnset[key] {
		return &keystore.IOError{Op: "unset", Key: key, Err: fmt.Errorf("read-only filesystem")}
	}
	return f.Store.Unset(key)
}

// testEnv is a session wired to a real store in a temporary directory
// and a fake homeserver.
type testEnv struct {
	session    *Session
	store      *keystore.Store
	homeserver *fakeHomeserver
	output     *bytes.Buffer
}

func openStore(t *testing.T, preset map[string]string) *keystore.Store {
	t.Helper()
	store, err := keystore.Open(keystore.Config{
		Dir:            filepath.Join(t.TempDir(), "store"),
		CurrentVersion: "0.6.0",
	})
	if err != nil {
		t.Fatalf("keystore.Open: %v", err)
	}
	for key, value := range preset {
		if err := store.SetInternal(key, value); err != nil {
			t.Fatalf("presetting %s: %v", key, err)
		}
	}
	return store
}

func newTestEnv(t *testing.T, preset map[string]string) *testEnv {
	t.Helper()
	store := openStore(t, preset)
	homeserver := newFakeHomeserver()
	output := &bytes.Buffer{}
	session, err := New(Config{
		Store:      store,
		Homeserver: homeserver,
		Output:     NewOutput(output, termenv.Ascii),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testEnv{session: session, store: store, homeserver: homeserver, output: output}
}

// configuredPreset has everything needed to log in and resolve a room,
// but no cached facts.
func configuredPreset() map[string]string {
	return map[string]string{
		KeyUser:     "@alice:example.org",
		KeyUsername: "alice",
		KeyServer:   "https://example.org",
		KeyPassword: "hunter2",
		KeyRoom:     "lobby",
	}
}

// resolvedPreset adds a cached token, room ID, filter, and cursor.
func resolvedPreset() map[string]string {
	preset := configuredPreset()
	preset[KeyToken] = "syt_cached"
	preset[KeyRoomID] = "!room:example.org"
	preset[KeyFilter] = "f0"
	preset[KeyFilterDigest] = DefaultFilterTemplate().Digest()
	preset[KeySince] = "s0"
	return preset
}

func (e *testEnv) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	value, ok, err := e.store.Get(key)
	if err != nil {
		t.Fatalf("Get(%s): %v", key, err)
	}
	return value, ok
}
