// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Prompt prefixes every line the session prints about itself.
const Prompt = "mtxcli> "

// Output writes operator-facing lines. Error lines and the send-failure
// marker are coloured when the profile allows it.
type Output struct {
	writer       io.Writer
	errorStyle   lipgloss.Style
	failureStyle lipgloss.Style
}

// NewOutput returns an Output writing to writer with the given colour
// profile. termenv.Ascii disables styling entirely.
func NewOutput(writer io.Writer, profile termenv.Profile) *Output {
	// lipgloss re-detects the profile from the environment unless it is
	// set explicitly.
	renderer := lipgloss.NewRenderer(writer, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	return &Output{
		writer:       writer,
		errorStyle:   renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		failureStyle: renderer.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Line writes one prompt-prefixed line.
func (o *Output) Line(format string, args ...any) {
	fmt.Fprintf(o.writer, Prompt+format+"\n", args...)
}

// Error writes a prompt-prefixed "error: ..." line.
func (o *Output) Error(message string) {
	fmt.Fprintf(o.writer, "%s%s\n", Prompt, o.errorStyle.Render("error: "+message))
}

// Raw writes text exactly as given.
func (o *Output) Raw(text string) {
	io.WriteString(o.writer, text)
}

// SendFailed renders a message that did not reach the server. The
// marker lets the operator tell it apart from messages echoed by sync.
func (o *Output) SendFailed(username, text string) {
	fmt.Fprintf(o.writer, "%s> %s %s\n", username, text, o.failureStyle.Render("# FAILED TO SEND"))
}
