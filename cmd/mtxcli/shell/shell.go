// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/betrusted-io/mtxcli/chat"
	"github.com/betrusted-io/mtxcli/cmd/mtxcli/cli"
)

// Session is the chat session the shell drives. *chat.Session
// implements it.
type Session interface {
	Say(ctx context.Context, text string) error
	Login(ctx context.Context) error
	Logout() error
	Status() string
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Unset(key string) error
}

// LineReader yields input lines without their terminators. io.EOF ends
// the input.
type LineReader interface {
	ReadLine() (string, error)
}

// Config holds the parameters for creating a Shell.
type Config struct {
	// Session receives chat lines and verb actions. Required.
	Session Session

	// Input yields the lines to process. Required.
	Input LineReader

	// Output receives the shell's own lines. Required.
	Output *chat.Output

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// verb is one entry of the shell's command table.
type verb struct {
	name  string
	usage string
	// run handles the verb with the rest of the line. Returns true
	// when the shell should stop.
	run func(ctx context.Context, args string) bool
}

// Shell reads lines and dispatches them. Not safe for concurrent use.
type Shell struct {
	session Session
	input   LineReader
	output  *chat.Output
	logger  *slog.Logger
	verbs   []verb
}

// New creates a Shell.
func New(config Config) (*Shell, error) {
	if config.Session == nil {
		return nil, fmt.Errorf("shell: Session is required")
	}
	if config.Input == nil {
		return nil, fmt.Errorf("shell: Input is required")
	}
	if config.Output == nil {
		return nil, fmt.Errorf("shell: Output is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Shell{
		session: config.Session,
		input:   config.Input,
		output:  config.Output,
		logger:  logger,
	}
	// Alphabetical: help and the unknown-verb listing print this order.
	s.verbs = []verb{
		{name: "get", usage: "/get key", run: s.get},
		{name: "help", usage: "/help [cmd]", run: s.help},
		{name: "login", usage: "/login", run: s.login},
		{name: "logout", usage: "/logout", run: s.logout},
		{name: "quit", usage: "/quit", run: s.quit},
		{name: "set", usage: "/set key value", run: s.set},
		{name: "status", usage: "/status", run: s.status},
		{name: "unset", usage: "/unset key", run: s.unset},
	}
	return s, nil
}

// Run processes lines until /quit, the end of input, or cancellation
// of ctx. End of input is not an error; a failing input stream is.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.input.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("end of input")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if s.Execute(ctx, line) {
			return nil
		}
	}
}

// Execute handles one line and reports whether the shell should stop.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	token, rest := tokenize(line)
	if token == "" {
		s.say(ctx, "")
		return false
	}
	name, isVerb := strings.CutPrefix(token, "/")
	if !isVerb {
		text := token
		if rest != "" {
			text += " " + rest
		}
		s.say(ctx, text)
		return false
	}
	if v, ok := s.lookup(name); ok {
		return v.run(ctx, rest)
	}
	s.unknownVerb(name)
	return false
}

// tokenize splits line at the first run of spaces. Leading spaces are
// skipped; spacing inside the remainder is kept.
func tokenize(line string) (token, rest string) {
	line = strings.TrimLeft(line, " ")
	token, rest, _ = strings.Cut(line, " ")
	return token, strings.TrimLeft(rest, " ")
}

func (s *Shell) lookup(name string) (verb, bool) {
	for _, v := range s.verbs {
		if v.name == name {
			return v, true
		}
	}
	return verb{}, false
}

func (s *Shell) verbNames() []string {
	names := make([]string, len(s.verbs))
	for i, v := range s.verbs {
		names[i] = v.name
	}
	return names
}

func (s *Shell) unknownVerb(name string) {
	listing := make([]string, len(s.verbs))
	for i, v := range s.verbs {
		listing[i] = "/" + v.name
	}
	s.output.Raw("Commands: " + strings.Join(listing, ", ") + "\n")
	if suggestion := cli.Suggest(name, s.verbNames()); suggestion != "" && name != "" {
		s.output.Line("did you mean /%s?", suggestion)
	}
}

// say hands a chat line to the session. The session prints its own
// errors, so they are only logged here.
func (s *Shell) say(ctx context.Context, text string) {
	if err := s.session.Say(ctx, text); err != nil {
		s.logger.Debug("line not delivered", "error", err)
	}
}

// reportError prints a failed verb and logs it.
func (s *Shell) reportError(verbName string, err error) {
	s.logger.Warn("command failed", "verb", verbName, "error", err)
	s.output.Error(err.Error())
}

func (s *Shell) get(ctx context.Context, args string) bool {
	key, _ := tokenize(args)
	if key == "" {
		s.usage("get")
		return false
	}
	value, ok, err := s.session.Get(key)
	switch {
	case err != nil:
		s.reportError("get", err)
	case !ok:
		s.output.Line("%s is UNSET", key)
	default:
		s.output.Line("%s", value)
	}
	return false
}

// set takes the rest of the line after the key as the value, so values
// may contain spaces. Trailing spaces are dropped.
func (s *Shell) set(ctx context.Context, args string) bool {
	key, value := tokenize(args)
	value = strings.TrimRight(value, " ")
	if key == "" || value == "" {
		s.usage("set")
		return false
	}
	if err := s.session.Set(key, value); err != nil {
		s.reportError("set", err)
	}
	return false
}

func (s *Shell) unset(ctx context.Context, args string) bool {
	key, _ := tokenize(args)
	if key == "" {
		s.usage("unset")
		return false
	}
	if err := s.session.Unset(key); err != nil {
		s.reportError("unset", err)
	}
	return false
}

func (s *Shell) login(ctx context.Context, args string) bool {
	if err := s.session.Login(ctx); err != nil {
		s.logger.Debug("login failed", "error", err)
	}
	return false
}

func (s *Shell) logout(ctx context.Context, args string) bool {
	if err := s.session.Logout(); err != nil {
		s.reportError("logout", err)
	}
	return false
}

func (s *Shell) status(ctx context.Context, args string) bool {
	s.output.Line("%s", s.session.Status())
	return false
}

func (s *Shell) quit(ctx context.Context, args string) bool {
	return true
}

// help prints every verb's usage, or one verb's when named. The name
// may be given with or without its leading '/'.
func (s *Shell) help(ctx context.Context, args string) bool {
	name, _ := tokenize(args)
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		s.output.Line("available mtxcli commands:")
		for _, v := range s.verbs {
			s.output.Line("%s", v.usage)
		}
		return false
	}
	v, ok := s.lookup(name)
	if !ok {
		s.output.Line("unknown command: %s", name)
		return false
	}
	s.output.Line("%s", v.usage)
	return false
}

func (s *Shell) usage(name string) {
	v, _ := s.lookup(name)
	s.output.Line("%s", v.usage)
}
