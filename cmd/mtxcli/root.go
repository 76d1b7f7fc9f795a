// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/betrusted-io/mtxcli/chat"
	"github.com/betrusted-io/mtxcli/cmd/mtxcli/cli"
	"github.com/betrusted-io/mtxcli/cmd/mtxcli/shell"
	"github.com/betrusted-io/mtxcli/lib/config"
	"github.com/betrusted-io/mtxcli/lib/keystore"
	"github.com/betrusted-io/mtxcli/lib/migrate"
	"github.com/betrusted-io/mtxcli/lib/version"
)

func rootCommand(stdin, stdout *os.File, stderr io.Writer) *cli.Command {
	var (
		configPath  string
		storeDir    string
		verbosity   int
		showVersion bool
	)

	return &cli.Command{
		Name:    "mtxcli",
		Summary: "Line-oriented Matrix chat client",
		Description: `Line-oriented Matrix chat client.

Lines starting with '/' are commands (type /help for the list); any other
line is sent to the configured room, and an empty line checks for new
messages. Login, room resolution, and the sync filter happen on demand
and are cached in the key store between runs.`,
		Usage: "mtxcli [flags]",
		Examples: []cli.Example{
			{
				Description: "First run: configure an account and a room, then chat",
				Command:     "mtxcli\n  /set user @alice:matrix.org\n  /set password ********\n  /set room lobby",
			},
			{
				Description: "Use a separate store and a config file",
				Command:     "mtxcli --store-dir ~/work-chat --config ~/.config/mtxcli-work.yaml",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("mtxcli", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "configuration file (default $"+config.EnvironmentVariable+")")
			flagSet.StringVar(&storeDir, "store-dir", "", "key store directory (default: platform config directory)")
			flagSet.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
			flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
			return flagSet
		},
		Run: func(args []string) error {
			if showVersion {
				if verbosity > 0 {
					fmt.Fprintln(stdout, version.Full())
				} else {
					fmt.Fprintln(stdout, version.Info())
				}
				return nil
			}
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if storeDir != "" {
				cfg.StoreDir = storeDir
			}
			logger := cli.NewCommandLogger(stderr,
				cli.VerbosityLevel(cfg.Level(), verbosity),
				string(cfg.LogFormat),
			)
			return interactive(cfg, stdin, stdout, logger)
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// interactive runs the shell on the process's standard streams.
func interactive(cfg *config.Config, stdin, stdout *os.File, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The first signal cancels in-flight requests; a second one falls
	// through to the default handler, which matters while the shell is
	// blocked reading a pipe.
	go func() {
		<-ctx.Done()
		stop()
	}()

	profile := termenv.NewOutput(stdout).EnvColorProfile()
	var input shell.LineReader
	var writer io.Writer = stdout
	if shell.IsInteractive(stdin, stdout) {
		terminal, err := shell.OpenTerminal(stdin, stdout)
		if err != nil {
			return err
		}
		defer terminal.Close()
		input = terminal
		writer = terminal.Writer()
	} else {
		input = shell.NewLineReader(stdin)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeoutDuration()}
	return runShell(ctx, cfg, httpClient, input, chat.NewOutput(writer, profile), logger)
}

// runShell opens and migrates the store, hydrates the session, and
// processes input until it ends.
func runShell(ctx context.Context, cfg *config.Config, httpClient *http.Client, input shell.LineReader, output *chat.Output, logger *slog.Logger) error {
	session, err := openSession(ctx, cfg, httpClient, output, logger)
	if err != nil {
		return err
	}

	commandShell, err := shell.New(shell.Config{
		Session: session,
		Input:   input,
		Output:  output,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	err = commandShell.Run(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		logger.Debug("interrupted")
		return nil
	default:
		logger.Error("input stream failed", "error", err)
		return &cli.ExitError{Code: 1}
	}
}

func openSession(ctx context.Context, cfg *config.Config, httpClient *http.Client, output *chat.Output, logger *slog.Logger) (*chat.Session, error) {
	store, err := keystore.Open(keystore.Config{
		Dir:            cfg.ResolveStoreDir(),
		CurrentVersion: version.Short(),
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("key store opened", "dir", store.Dir())

	engine, err := migrate.New(migrate.Config{
		Store:          store,
		VersionKey:     chat.SchemaVersionKey,
		CurrentVersion: version.Short(),
		Migrations:     chat.Migrations(),
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	result, err := engine.Run(ctx)
	if err != nil {
		return nil, err
	}
	if len(result.Applied) > 0 || len(result.Failed) > 0 {
		logger.Info("key store migrated",
			"from", result.From,
			"to", version.Short(),
			"applied", result.Applied,
			"failed", result.Failed,
		)
	}

	var filter *chat.FilterTemplate
	if cfg.FilterFile != "" {
		filter, err = chat.LoadFilterTemplate(cfg.FilterFile)
		if err != nil {
			return nil, err
		}
	}

	remote := chat.NewRemote(chat.RemoteConfig{
		HTTPClient: httpClient,
		Logger:     logger,
		Markdown:   cfg.Markdown,
	})
	return chat.New(chat.Config{
		Store:         store,
		Homeserver:    remote,
		Output:        output,
		Logger:        logger,
		DefaultServer: cfg.DefaultServer,
		SyncTimeout:   cfg.SyncTimeoutDuration(),
		Filter:        filter,
	})
}
