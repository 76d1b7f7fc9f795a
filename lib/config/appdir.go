// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	qualifier    = "io"
	organization = "Betrusted"
	application  = "mtxcli"
)

// AppDir returns the platform per-application configuration directory:
//
//	linux, BSDs  $XDG_CONFIG_HOME/mtxcli or ~/.config/mtxcli
//	darwin       ~/Library/Preferences/io.Betrusted.mtxcli
//	windows      %USERPROFILE%\AppData\Roaming\Betrusted\mtxcli
//
// When no home directory can be determined AppDir returns ".".
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return appDir(runtime.GOOS, home, os.Getenv("XDG_CONFIG_HOME"))
}

func appDir(goos, home, xdgConfigHome string) string {
	switch goos {
	case "darwin", "ios":
		if home == "" {
			return "."
		}
		return filepath.Join(home, "Library", "Preferences", qualifier+"."+organization+"."+application)
	case "windows":
		if home == "" {
			return "."
		}
		return filepath.Join(home, "AppData", "Roaming", organization, application)
	default:
		if filepath.IsAbs(xdgConfigHome) {
			return filepath.Join(xdgConfigHome, application)
		}
		if home == "" {
			return "."
		}
		return filepath.Join(home, ".config", application)
	}
}
