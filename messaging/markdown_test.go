// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"strings"
	"testing"
)

func TestNewTextMessage(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantFormatted string
	}{
		{"plain text", "hello world", ""},
		{"plain with punctuation", "it's 5 o'clock, ok?", ""},
		{"empty", "", ""},
		{"emphasis", "this is *important*", "<p>this is <em>important</em></p>"},
		{"strong", "**bold** move", "<p><strong>bold</strong> move</p>"},
		{"inline code", "run `make`", "<p>run <code>make</code></p>"},
		{"strikethrough", "~~old~~ new", "<p><del>old</del> new</p>"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			content := NewTextMessage(test.body)
			if content.MsgType != "m.text" || content.Body != test.body {
				t.Errorf("unexpected content: %+v", content)
			}
			if content.FormattedBody != test.wantFormatted {
				t.Errorf("formatted body = %q, want %q", content.FormattedBody, test.wantFormatted)
			}
			wantFormat := ""
			if test.wantFormatted != "" {
				wantFormat = FormatHTML
			}
			if content.Format != wantFormat {
				t.Errorf("format = %q, want %q", content.Format, wantFormat)
			}
		})
	}
}

func TestNewTextMessageLinkify(t *testing.T) {
	content := NewTextMessage("see https://matrix.org for details")
	if !strings.Contains(content.FormattedBody, `<a href="https://matrix.org">`) {
		t.Errorf("expected a link in formatted body, got %q", content.FormattedBody)
	}
}

func TestNewPlainTextMessage(t *testing.T) {
	content := NewPlainTextMessage("*not* markdown")
	if content.Format != "" || content.FormattedBody != "" {
		t.Errorf("plain message carries formatting: %+v", content)
	}
}
