// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds passwords and access tokens while they are in
// flight between the key store and the homeserver.
//
// On unix platforms a [Buffer] is backed by an anonymous mmap region that
// is locked against swap and excluded from core dumps. Other platforms
// fall back to a heap slice that is still zeroed on Close. Either way the
// buffer is zeroed on [Buffer.Close] and panics on any later read.
//
// The key store keeps its values as plain files, so this package does not
// make the password secret at rest. It bounds how long the material lives
// in process memory during a login or an authenticated request.
package secret
