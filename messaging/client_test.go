// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/betrusted-io/mtxcli/lib/ref"
	"github.com/betrusted-io/mtxcli/lib/secret"
)

// testBuffer creates a secret.Buffer from a string for testing. The buffer
// is automatically closed when the test completes.
func testBuffer(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromString(value)
	if err != nil {
		t.Fatalf("creating test buffer: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

func mustUserID(t *testing.T, raw string) ref.UserID {
	t.Helper()
	userID, err := ref.ParseUserID(raw)
	if err != nil {
		t.Fatalf("ParseUserID(%q): %v", raw, err)
	}
	return userID
}

// newTestClient starts an httptest server running handler and returns a
// Client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(ClientConfig{HomeserverURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func writeJSON(writer http.ResponseWriter, status int, body string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	io.WriteString(writer, body)
}

func TestNewClient(t *testing.T) {
	t.Run("valid URL", func(t *testing.T) {
		client, err := NewClient(ClientConfig{HomeserverURL: "https://matrix.org/"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client.HomeserverURL() != "https://matrix.org" {
			t.Errorf("trailing slash not trimmed: %s", client.HomeserverURL())
		}
	})

	t.Run("empty URL", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{}); err == nil {
			t.Fatal("expected error for empty URL")
		}
	})

	t.Run("invalid URL", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{HomeserverURL: "://invalid"}); err == nil {
			t.Fatal("expected error for invalid URL")
		}
	})

	t.Run("missing scheme", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{HomeserverURL: "matrix.org"}); err == nil {
			t.Fatal("expected error for URL without scheme")
		}
	})
}

func TestSupportsLoginType(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodGet || request.URL.Path != "/_matrix/client/v3/login" {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
		writeJSON(writer, http.StatusOK, `{"flows":[{"type":"m.login.sso"},{"type":"m.login.password"}]}`)
	})

	supported, err := client.SupportsLoginType(context.Background(), LoginTypePassword)
	if err != nil {
		t.Fatalf("SupportsLoginType failed: %v", err)
	}
	if !supported {
		t.Error("expected m.login.password to be supported")
	}

	supported, err = client.SupportsLoginType(context.Background(), "m.login.token")
	if err != nil {
		t.Fatalf("SupportsLoginType failed: %v", err)
	}
	if supported {
		t.Error("m.login.token reported as supported")
	}
}

func TestLogin(t *testing.T) {
	t.Run("successful login", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/_matrix/client/v3/login" {
				t.Errorf("unexpected path: %s", request.URL.Path)
				writer.WriteHeader(http.StatusNotFound)
				return
			}

			var body LoginRequest
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode request body: %v", err)
			}
			if body.Type != LoginTypePassword {
				t.Errorf("unexpected login type: %s", body.Type)
			}
			if body.Identifier.Type != "m.id.user" || body.Identifier.User != "@bob:test.local" {
				t.Errorf("unexpected identifier: %+v", body.Identifier)
			}
			if body.Password != "secret" {
				t.Errorf("unexpected password: %s", body.Password)
			}
			if body.InitialDeviceDisplayName != DefaultDeviceDisplayName {
				t.Errorf("unexpected device name: %s", body.InitialDeviceDisplayName)
			}

			writeJSON(writer, http.StatusOK, `{"user_id":"@bob:test.local","access_token":"syt_bob_token","device_id":"DEVICE2"}`)
		})

		session, err := client.Login(context.Background(), "@bob:test.local", testBuffer(t, "secret"))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		defer session.Close()

		if session.UserID().String() != "@bob:test.local" {
			t.Errorf("unexpected user ID: %s", session.UserID())
		}
		if session.AccessToken() != "syt_bob_token" {
			t.Errorf("unexpected access token: %s", session.AccessToken())
		}
		if session.DeviceID() != "DEVICE2" {
			t.Errorf("unexpected device ID: %s", session.DeviceID())
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, _ *http.Request) {
			writeJSON(writer, http.StatusForbidden, `{"errcode":"M_FORBIDDEN","error":"Invalid password"}`)
		})

		_, err := client.Login(context.Background(), "bob", testBuffer(t, "wrong"))
		if err == nil {
			t.Fatal("expected error for invalid credentials")
		}
		if !IsMatrixError(err, ErrCodeForbidden) {
			t.Errorf("expected M_FORBIDDEN error, got: %v", err)
		}
	})

	t.Run("response without token", func(t *testing.T) {
		client := newTestClient(t, func(writer http.ResponseWriter, _ *http.Request) {
			writeJSON(writer, http.StatusOK, `{"user_id":"@bob:test.local"}`)
		})

		if _, err := client.Login(context.Background(), "bob", testBuffer(t, "secret")); err == nil {
			t.Fatal("expected error for missing access token")
		}
	})

	t.Run("validation errors", func(t *testing.T) {
		client, _ := NewClient(ClientConfig{HomeserverURL: "http://localhost:1"})

		if _, err := client.Login(context.Background(), "", testBuffer(t, "password")); err == nil {
			t.Fatal("expected error for empty user")
		}
		if _, err := client.Login(context.Background(), "alice", nil); err == nil {
			t.Fatal("expected error for nil password")
		}
	})
}

func TestNonJSONErrorResponse(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusBadGateway)
		io.WriteString(writer, "<html>bad gateway</html>\n")
	})

	_, err := client.LoginFlows(context.Background())
	if err == nil {
		t.Fatal("expected error for 502")
	}
	if IsMatrixError(err, ErrCodeUnknown) {
		t.Error("non-JSON body decoded as a MatrixError")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "bad gateway") {
		t.Errorf("error should carry status and body, got: %v", err)
	}
}

func TestSessionFromToken(t *testing.T) {
	client, err := NewClient(ClientConfig{HomeserverURL: "http://localhost:1"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	session, err := client.SessionFromToken(mustUserID(t, "@alice:test.local"), "syt_token")
	if err != nil {
		t.Fatalf("SessionFromToken failed: %v", err)
	}
	defer session.Close()

	if session.UserID().String() != "@alice:test.local" {
		t.Errorf("unexpected user ID: %s", session.UserID())
	}
	if session.AccessToken() != "syt_token" {
		t.Errorf("unexpected access token: %s", session.AccessToken())
	}
	// DeviceID is empty when created from token (not from login).
	if session.DeviceID() != "" {
		t.Errorf("expected empty device ID, got: %s", session.DeviceID())
	}
}

func TestMatrixError(t *testing.T) {
	t.Run("error message format", func(t *testing.T) {
		err := &MatrixError{
			Code:       ErrCodeForbidden,
			Message:    "Access denied",
			StatusCode: 403,
		}
		expected := "matrix: M_FORBIDDEN (403): Access denied"
		if err.Error() != expected {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("IsMatrixError", func(t *testing.T) {
		err := &MatrixError{Code: ErrCodeNotFound, Message: "not found", StatusCode: 404}
		if !IsMatrixError(err, ErrCodeNotFound) {
			t.Error("IsMatrixError should match M_NOT_FOUND")
		}
		if IsMatrixError(err, ErrCodeForbidden) {
			t.Error("IsMatrixError should not match M_FORBIDDEN")
		}
	})

	t.Run("non-matrix error returns false", func(t *testing.T) {
		if IsMatrixError(context.Canceled, ErrCodeNotFound) {
			t.Error("IsMatrixError should return false for non-matrix errors")
		}
	})
}
