// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/betrusted-io/mtxcli/chat"
)

// lineReader reads newline-terminated lines from a stream.
type lineReader struct {
	reader *bufio.Reader
}

// NewLineReader returns a LineReader over r. Both "\n" and "\r\n" end a
// line; a final line without a terminator is still returned.
func NewLineReader(r io.Reader) LineReader {
	return &lineReader{reader: bufio.NewReader(r)}
}

func (l *lineReader) ReadLine() (string, error) {
	line, err := l.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// Terminal is a LineReader with line editing and history on a raw-mode
// terminal. Everything printed while it is open must go through Writer
// so the prompt is redrawn and newlines are translated.
type Terminal struct {
	terminal *term.Terminal
	fd       int
	state    *term.State
}

// OpenTerminal puts in into raw mode and returns a Terminal prompting
// with chat.Prompt. Close restores the previous mode.
func OpenTerminal(in, out *os.File) (*Terminal, error) {
	fd := int(in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	terminal := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, chat.Prompt)
	if width, height, err := term.GetSize(int(out.Fd())); err == nil {
		terminal.SetSize(width, height)
	}
	return &Terminal{terminal: terminal, fd: fd, state: state}, nil
}

// IsInteractive reports whether both in and out are terminals.
func IsInteractive(in, out *os.File) bool {
	return term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd()))
}

// ReadLine reads one edited line. Ctrl-D on an empty line returns
// io.EOF.
func (t *Terminal) ReadLine() (string, error) {
	return t.terminal.ReadLine()
}

// Writer returns the writer for output shown while the terminal is open.
func (t *Terminal) Writer() io.Writer {
	return t.terminal
}

// Close restores the terminal mode saved by OpenTerminal.
func (t *Terminal) Close() error {
	return term.Restore(t.fd, t.state)
}
