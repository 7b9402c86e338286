// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
Package namedvalue provides a small name→value store used to memoize
expensive aggregate computations.

Cached aggregates are the record count and the distinct vocabulary sets
(categories, tags, business items). The cache is an optimization, never a
precondition: a miss is not an error, callers recompute from the primary
store and repopulate as a side effect.

Counter operations are atomic in the backing store so that concurrent
create/delete traffic cannot lose updates.
*/
package namedvalue

import "context"

// Well-known value names.
const (
	// AddressQuantity is the cached total record count.
	AddressQuantity = "address_quantity"

	// CategoryItems, TagItems and BusinessItems are the cached
	// vocabulary sets.
	CategoryItems = "category_items"
	TagItems      = "tag_items"
	BusinessItems = "business_items"

	// ReindexCursor is the checkpoint of a running reindex job. It lets
	// the job resume after cancellation or a crash.
	ReindexCursor = "reindex_cursor"
)

// Store is the named-value cache contract.
//
// Scalar names hold a single string (or integer) value. Set-valued names
// hold an unordered member set. Absence is reported through the boolean
// return, never as an error.
type Store interface {
	// Get returns the value and whether the name exists.
	Get(ctx context.Context, name string) (string, bool, error)

	// Set stores a scalar value under the name.
	Set(ctx context.Context, name, value string) error

	// GetInt returns the integer value and whether the name exists.
	GetInt(ctx context.Context, name string) (int64, bool, error)

	// SetInt stores an integer value under the name.
	SetInt(ctx context.Context, name string, value int64) error

	// Increment atomically adds one to the counter and returns the new
	// value. An absent counter counts as zero.
	Increment(ctx context.Context, name string) (int64, error)

	// Decrement atomically subtracts one from the counter and returns
	// the new value. An absent counter counts as zero.
	Decrement(ctx context.Context, name string) (int64, error)

	// AddMembers adds members to a set-valued name.
	AddMembers(ctx context.Context, name string, members ...string) error

	// Members returns the member set and whether the name exists.
	Members(ctx context.Context, name string) ([]string, bool, error)

	// ReplaceMembers atomically replaces the whole member set.
	ReplaceMembers(ctx context.Context, name string, members ...string) error

	// Delete removes the name. Deleting an absent name is not an error.
	Delete(ctx context.Context, name string) error
}
