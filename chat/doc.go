// Copyright 2026 The mtxcli Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat is the session engine behind mtxcli: the in-memory
// session facts, the rules that invalidate them, and the lazy pipeline
// that turns one line of input into login, room resolution, filter
// creation, sync, and send.
//
// A [Session] is hydrated once from the key/value store and mirrors the
// subset of keys it manages (see the Key constants). Changing an input
// the cached facts depend on runs a cascade that unsets those facts,
// both in the store and in memory, before the new value is written:
//
//	user      derives username and server, drops the access token
//	password  drops the access token
//	room      drops room ID, filter, and sync cursor
//
// [Session.Say] is the per-line entry point. Each stage runs only when
// its cached fact is missing, commits its result to the store before
// updating memory, and aborts the line on failure without retrying.
//
// The homeserver is reached through the [Homeserver] interface;
// [Remote] implements it with package messaging.
package chat
