// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"
)

// filterDigestKey is the BLAKE3 key for filter definition digests: the
// ASCII domain name, zero-padded to 32 bytes.
var filterDigestKey = [32]byte{
	'm', 't', 'x', 'c', 'l', 'i', '.', 'f', 'i', 'l', 't', 'e', 'r',
}

// defaultFilter keeps only room messages in the timeline and drops
// presence, account data, and ephemeral events. The room list is filled
// in per room by FilterTemplate.Render.
const defaultFilter = `{
	// Only message events are rendered.
	"room": {
		"timeline": {"types": ["m.room.message"], "limit": 20},
		"state": {"types": []},
		"ephemeral": {"types": []},
		"account_data": {"types": []},
	},
	"presence": {"types": []},
	"account_data": {"types": []},
}`

// FilterTemplate is a sync filter definition not yet bound to a room.
type FilterTemplate struct {
	canonical []byte
	digest    string
}

// DefaultFilterTemplate returns the built-in filter.
func DefaultFilterTemplate() *FilterTemplate {
	template, err := ParseFilterTemplate([]byte(defaultFilter))
	if err != nil {
		panic("chat: built-in filter does not parse: " + err.Error())
	}
	return template
}

// ParseFilterTemplate parses a filter definition written as JSON with
// optional comments and trailing commas. The top level must be an
// object.
func ParseFilterTemplate(data []byte) (*FilterTemplate, error) {
	var definition map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &definition); err != nil {
		return nil, fmt.Errorf("parsing filter: %w", err)
	}
	if definition == nil {
		return nil, fmt.Errorf("parsing filter: top level must be an object")
	}
	if room, ok := definition["room"]; ok {
		if _, isObject := room.(map[string]any); !isObject {
			return nil, fmt.Errorf("parsing filter: \"room\" must be an object")
		}
	}

	// encoding/json sorts map keys, so formatting and comments in the
	// source do not affect the digest.
	canonical, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("encoding filter: %w", err)
	}

	hasher, err := blake3.NewKeyed(filterDigestKey[:])
	if err != nil {
		return nil, fmt.Errorf("filter digest: %w", err)
	}
	hasher.Write(canonical)

	return &FilterTemplate{
		canonical: canonical,
		digest:    hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// LoadFilterTemplate reads a filter definition file.
func LoadFilterTemplate(path string) (*FilterTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading filter %s: %w", path, err)
	}
	template, err := ParseFilterTemplate(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return template, nil
}

// Digest identifies the definition. Two templates with the same digest
// produce the same filter for any room.
func (f *FilterTemplate) Digest() string {
	return f.digest
}

// Render binds the template to roomID by setting room.rooms, replacing
// any room list the template carried.
func (f *FilterTemplate) Render(roomID string) (json.RawMessage, error) {
	var definition map[string]any
	if err := json.Unmarshal(f.canonical, &definition); err != nil {
		return nil, fmt.Errorf("decoding filter: %w", err)
	}
	room, _ := definition["room"].(map[string]any)
	if room == nil {
		room = make(map[string]any)
		definition["room"] = room
	}
	room["rooms"] = []string{roomID}

	rendered, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("encoding filter: %w", err)
	}
	return rendered, nil
}
