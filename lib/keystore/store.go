// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ReservedPrefix marks keys owned by the framework.
	ReservedPrefix = "__"

	// CurrentVersionKey reads as the running application's version.
	CurrentVersionKey = ReservedPrefix + "version"

	directoryMode = 0o700
	fileMode      = 0o600
)

// Config holds the parameters for opening a Store.
type Config struct {
	// Dir is the directory holding one file per key. Created on first
	// access if missing.
	Dir string

	// CurrentVersion is returned for CurrentVersionKey.
	CurrentVersion string

	// Logger receives read failures swallowed by GetDefault. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// Store is a file-per-key string store.
type Store struct {
	dir            string
	currentVersion string
	logger         *slog.Logger
}

// Open returns a Store rooted at config.Dir. The directory is not touched
// until the first Get, Set, or Unset.
func Open(config Config) (*Store, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("keystore: Dir is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:            filepath.Clean(config.Dir),
		currentVersion: config.CurrentVersion,
		logger:         logger,
	}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// IsReserved reports whether key is in the framework namespace.
func IsReserved(key string) bool {
	return strings.HasPrefix(key, ReservedPrefix)
}

// Get returns the value stored under key. The boolean is false when the
// key is unset.
func (s *Store) Get(key string) (string, bool, error) {
	if key == CurrentVersionKey {
		return s.currentVersion, true, nil
	}
	path, err := s.path("get", key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &IOError{Op: "get", Key: key, Err: err}
	}
	return string(data), true, nil
}

// GetDefault returns the value stored under key, or fallback when the key
// is unset or cannot be read. Read errors are logged, not returned.
func (s *Store) GetDefault(key, fallback string) string {
	value, ok, err := s.Get(key)
	if err != nil {
		s.logger.Error("reading key failed, using default",
			"key", key,
			"error", err,
		)
		return fallback
	}
	if !ok {
		return fallback
	}
	return value
}

// Set stores value under key. Reserved keys are refused with
// ErrPermissionDenied.
func (s *Store) Set(key, value string) error {
	if IsReserved(key) {
		return fmt.Errorf("%w: may not set %q (keys beginning with %q are reserved)", ErrPermissionDenied, key, ReservedPrefix)
	}
	return s.write(key, value)
}

// Unset removes key. Removing an absent key succeeds. Reserved keys are
// refused with ErrPermissionDenied.
func (s *Store) Unset(key string) error {
	if IsReserved(key) {
		return fmt.Errorf("%w: may not unset %q (keys beginning with %q are reserved)", ErrPermissionDenied, key, ReservedPrefix)
	}
	return s.remove(key)
}

// SetInternal stores value under any key, reserved or not. For framework
// code only.
func (s *Store) SetInternal(key, value string) error {
	if key == CurrentVersionKey {
		return fmt.Errorf("%w: %q is synthesized from the running binary", ErrPermissionDenied, key)
	}
	return s.write(key, value)
}

// UnsetInternal removes any key, reserved or not. For framework code only.
func (s *Store) UnsetInternal(key string) error {
	if key == CurrentVersionKey {
		return fmt.Errorf("%w: %q is synthesized from the running binary", ErrPermissionDenied, key)
	}
	return s.remove(key)
}

func (s *Store) write(key, value string) error {
	path, err := s.path("set", key)
	if err != nil {
		return err
	}

	temporary, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return &IOError{Op: "set", Key: key, Err: err}
	}
	temporaryPath := temporary.Name()
	cleanup := func(cause error) error {
		temporary.Close()
		os.Remove(temporaryPath)
		return &IOError{Op: "set", Key: key, Err: cause}
	}

	if err := temporary.Chmod(fileMode); err != nil {
		return cleanup(err)
	}
	if _, err := temporary.WriteString(value); err != nil {
		return cleanup(err)
	}
	if err := temporary.Sync(); err != nil {
		return cleanup(err)
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return &IOError{Op: "set", Key: key, Err: err}
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return &IOError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *Store) remove(key string) error {
	path, err := s.path("unset", key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &IOError{Op: "unset", Key: key, Err: err}
	}
	return nil
}

// path validates key, makes sure the store directory exists, and returns
// the file backing key.
func (s *Store) path(op, key string) (string, error) {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if err := os.MkdirAll(s.dir, directoryMode); err != nil {
		return "", &IOError{Op: op, Key: key, Err: err}
	}
	return filepath.Join(s.dir, key), nil
}
