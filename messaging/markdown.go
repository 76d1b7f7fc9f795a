// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// The goldmark configuration never changes, and parsing creates
// per-call state, so one instance is shared.
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.Strikethrough,
				extension.Linkify,
			),
		)
	})
	return markdownInstance
}

// NewTextMessage creates an m.text message. When body contains markdown
// markup, the rendered HTML is attached as the formatted body; plain text
// is sent body-only.
func NewTextMessage(body string) MessageContent {
	content := MessageContent{
		MsgType: "m.text",
		Body:    body,
	}
	if formatted, ok := renderMarkdown(body); ok {
		content.Format = FormatHTML
		content.FormattedBody = formatted
	}
	return content
}

// NewPlainTextMessage creates an m.text message with no formatted body.
func NewPlainTextMessage(body string) MessageContent {
	return MessageContent{
		MsgType: "m.text",
		Body:    body,
	}
}

// renderMarkdown renders body as HTML. The boolean is false when body is
// a single paragraph of unadorned text, where HTML would add nothing.
func renderMarkdown(body string) (string, bool) {
	if body == "" {
		return "", false
	}
	source := []byte(body)
	markdown := getMarkdown()
	document := markdown.Parser().Parse(text.NewReader(source))
	if document.FirstChild() == nil || isPlainParagraph(document) {
		return "", false
	}

	var buffer bytes.Buffer
	if err := markdown.Renderer().Render(&buffer, source, document); err != nil {
		return "", false
	}
	return string(bytes.TrimRight(buffer.Bytes(), "\n")), true
}

// isPlainParagraph reports whether document is exactly one paragraph
// made only of text nodes.
func isPlainParagraph(document ast.Node) bool {
	paragraph := document.FirstChild()
	if paragraph == nil || paragraph.NextSibling() != nil || paragraph.Kind() != ast.KindParagraph {
		return false
	}
	for child := paragraph.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Kind() != ast.KindText {
			return false
		}
	}
	return true
}
