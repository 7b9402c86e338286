// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

// Package uuidv7 wraps google/uuid to generate time-ordered UUIDv7 values.
//
// # Why UUIDv7?
//
// It is the storage key type for address rows and their history snapshots.
// Because it is time-sortable, it keeps the clustered index friendly in
// PostgreSQL and gives the iteration cursor a stable, insertion-ordered
// keyspace. Record uids, by contrast, are plain v4 — they are identities,
// not keys.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// # Safety
//
// It panics only if the OS random source is unavailable (extremely rare).
// This is acceptable as OS entropy failure is an unrecoverable system-level error.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuidv7: failed to generate UUID: " + err.Error())
	}

	return id.String()
}
