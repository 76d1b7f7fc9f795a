// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// Package keystore is the durable key/value store behind mtxcli's
// session. Each key is one file in a per-application directory, named
// exactly by the key, holding the raw value bytes. No file exists for a
// key until it is first set, and an absent file means "unset".
//
// Keys beginning with [ReservedPrefix] belong to the framework. The
// public mutators [Store.Set] and [Store.Unset] refuse them with
// [ErrPermissionDenied]; framework code (the migration engine) writes
// them through [Store.SetInternal] and [Store.UnsetInternal].
// [CurrentVersionKey] is synthesized from the running binary's version
// and never touches the disk.
//
// Writes go through a temporary file and a rename, so a value on disk is
// always either the old value or the new one.
//
// The store is not safe for concurrent use. mtxcli processes one input
// line at a time, and every read and write happens on that goroutine.
package keystore
