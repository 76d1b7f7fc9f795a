// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"net/url"
)

// ServerName is a validated Matrix server name (e.g., "example.org",
// "matrix.example.org:8448"). It appears after the ':' in user IDs and
// room aliases.
type ServerName struct {
	name string
}

// ParseServerName validates and wraps a raw server name.
func ParseServerName(raw string) (ServerName, error) {
	if err := validateServer(raw); err != nil {
		return ServerName{}, err
	}
	return ServerName{name: raw}, nil
}

// ServerNameFromURL extracts the host (with port, if any) of a homeserver
// base URL such as "https://matrix.org". Fails when the URL has no scheme
// or no host.
func ServerNameFromURL(homeserverURL string) (ServerName, error) {
	parsed, err := url.Parse(homeserverURL)
	if err != nil {
		return ServerName{}, fmt.Errorf("homeserver URL %q: %w", homeserverURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return ServerName{}, fmt.Errorf("homeserver URL %q: expected scheme://host", homeserverURL)
	}
	return ParseServerName(parsed.Host)
}

// String returns the server name.
func (s ServerName) String() string { return s.name }

// IsZero reports whether the ServerName is the zero value.
func (s ServerName) IsZero() bool { return s.name == "" }
