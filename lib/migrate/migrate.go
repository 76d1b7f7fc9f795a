// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// Package migrate evolves the layout of a key/value store across
// application releases.
//
// The store carries a schema version under a reserved key. At startup
// [Engine.Run] compares it against each registered [Migration] and applies
// those whose target version is newer, in registration order. A migration
// that reports a change stamps its own target version immediately. After
// the loop the stored version is set to the application's current version
// unconditionally, even when a migration failed: failures are logged and
// never retried on a later launch.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/mod/semver"
)

// DefaultVersion is assumed when the store has no schema version yet.
// It sorts before every real release under both orderings.
const DefaultVersion = "0"

// Store is the subset of the key/value store the engine needs. The
// internal mutators must accept reserved keys.
type Store interface {
	Get(key string) (string, bool, error)
	SetInternal(key, value string) error
	UnsetInternal(key string) error
}

// Migration moves the store to Version. Apply reports whether it changed
// anything.
type Migration struct {
	Version string
	Apply   func(ctx context.Context, store Store) (bool, error)
}

// Ordering compares two version strings, returning a negative number when
// a sorts before b, zero when they are equal, and a positive number
// otherwise.
type Ordering func(a, b string) int

// Semantic orders versions as semantic versions. A leading "v" is
// optional. Versions that do not parse sort before all valid ones.
func Semantic(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

// Lexical orders versions as plain strings. Only correct while every
// version component stays a single digit.
func Lexical(a, b string) int {
	return strings.Compare(a, b)
}

func canonical(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// Config holds the parameters for an Engine.
type Config struct {
	// Store is the key/value store being migrated.
	Store Store

	// VersionKey is the reserved key holding the schema version.
	VersionKey string

	// CurrentVersion is the running application's version. Stamped into
	// VersionKey at the end of every run that had work to do.
	CurrentVersion string

	// Migrations are applied in this order.
	Migrations []Migration

	// Ordering compares versions. Defaults to Semantic.
	Ordering Ordering

	// Logger receives per-migration progress and failures. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// Engine applies migrations to a store.
type Engine struct {
	store          Store
	versionKey     string
	currentVersion string
	migrations     []Migration
	ordering       Ordering
	logger         *slog.Logger
}

// New validates config and returns an Engine.
func New(config Config) (*Engine, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("migrate: Store is required")
	}
	if config.VersionKey == "" {
		return nil, fmt.Errorf("migrate: VersionKey is required")
	}
	if config.CurrentVersion == "" {
		return nil, fmt.Errorf("migrate: CurrentVersion is required")
	}
	for index, migration := range config.Migrations {
		if migration.Version == "" {
			return nil, fmt.Errorf("migrate: migration %d has no version", index)
		}
		if migration.Apply == nil {
			return nil, fmt.Errorf("migrate: migration %s has no Apply function", migration.Version)
		}
	}
	ordering := config.Ordering
	if ordering == nil {
		ordering = Semantic
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:          config.Store,
		versionKey:     config.VersionKey,
		currentVersion: config.CurrentVersion,
		migrations:     config.Migrations,
		ordering:       ordering,
		logger:         logger,
	}, nil
}

// Result summarizes a Run.
type Result struct {
	// From is the stored version before the run.
	From string
	// Applied lists the target versions of migrations that ran and
	// reported a change.
	Applied []string
	// Failed lists the target versions of migrations that returned an
	// error.
	Failed []string
}

// Run applies every migration newer than the stored version and then
// stamps the current version. Migration failures are logged and recorded
// in the result; only a failure to read or stamp the version itself is
// returned as an error.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	stored, ok, err := e.store.Get(e.versionKey)
	if err != nil {
		return Result{}, fmt.Errorf("migrate: reading %s: %w", e.versionKey, err)
	}
	if !ok {
		stored = DefaultVersion
	}
	result := Result{From: stored}

	if stored == e.currentVersion {
		return result, nil
	}

	e.logger.Info("migrating store",
		"from", stored,
		"to", e.currentVersion,
	)

	for _, migration := range e.migrations {
		if e.ordering(stored, migration.Version) >= 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		changed, err := migration.Apply(ctx, e.store)
		if err != nil {
			e.logger.Error("migration failed",
				"version", migration.Version,
				"error", err,
			)
			result.Failed = append(result.Failed, migration.Version)
			continue
		}
		if !changed {
			e.logger.Debug("migration made no changes", "version", migration.Version)
			continue
		}
		result.Applied = append(result.Applied, migration.Version)
		if err := e.store.SetInternal(e.versionKey, migration.Version); err != nil {
			e.logger.Error("recording migration version failed",
				"version", migration.Version,
				"error", err,
			)
		}
	}

	if err := e.store.SetInternal(e.versionKey, e.currentVersion); err != nil {
		return result, fmt.Errorf("migrate: stamping %s=%s: %w", e.versionKey, e.currentVersion, err)
	}
	return result, nil
}
