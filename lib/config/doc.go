// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for mtxcli.
//
// The configuration file is optional. When one is used it is named by
// either the MTXCLI_CONFIG environment variable (via [Load]) or the
// --config flag (via [LoadFile]); there is no automatic file search.
// Without a file, [Default] applies.
//
// ${VAR} and ${VAR:-default} references in path fields are expanded
// after loading. No other environment variables override config values.
//
// [AppDir] resolves the platform's per-application configuration
// directory, which is where the session store lives unless store_dir
// says otherwise.
//
// This package depends on no other mtxcli packages.
package config
