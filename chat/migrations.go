// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"

	"github.com/betrusted-io/mtxcli/lib/migrate"
)

// Migrations returns the store migrations in release order.
func Migrations() []migrate.Migration {
	return []migrate.Migration{
		{Version: "0.5.0", Apply: migrateV050},
		{Version: "0.6.0", Apply: migrateV060},
	}
}

// migrateV050 marks the first release that tracked a schema version.
// There was nothing to convert.
func migrateV050(ctx context.Context, store migrate.Store) (bool, error) {
	return false, nil
}

// migrateV060 drops the cached filter so the next line creates one with
// the room-scoped definition introduced in 0.6.0.
func migrateV060(ctx context.Context, store migrate.Store) (bool, error) {
	if err := store.UnsetInternal(KeyFilter); err != nil {
		return false, err
	}
	return true, nil
}
