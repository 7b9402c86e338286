// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package address

import (
	"context"
	"time"
)

// Filter narrows primary-store listings. Field names in Equals and Char1
// refer to the filterable scalar fields; matching is case-insensitive via
// the derived projections. The set filters match records containing every
// given value.
type Filter struct {
	Equals map[string]string
	Char1  map[string]string

	Categories []string
	Tags       []string
	Businesses []string

	Kind  string
	Owner string

	// AlsoDeleted includes soft-deleted records, which default listings
	// exclude.
	AlsoDeleted bool
}

// Repository is the primary document store contract.
//
// Lookups for absent keys return dberr.ErrNotFound; the service translates
// that into a nil result for callers.
type Repository interface {
	// Insert stores a new record under its key.
	Insert(ctx context.Context, address *Address) error

	// Update replaces the stored record, recomputing all projections.
	Update(ctx context.Context, address *Address) error

	// GetByKey fetches by storage key, including soft-deleted records.
	GetByKey(ctx context.Context, key string) (*Address, error)

	// GetByUID fetches by the stable record identity.
	GetByUID(ctx context.Context, uid string) (*Address, error)

	// List returns one page with the total count across all pages.
	// Sort fields may carry a leading '-' for descending order; filterable
	// fields sort by their lowercase projection.
	List(ctx context.Context, filter Filter, sort []string, limit, offset int) ([]*Address, int, error)

	// Iterate walks records in key order from the given position,
	// exclusive. Stable within one cursor chain.
	Iterate(ctx context.Context, position string, limit int, filter Filter) ([]*Address, error)

	// DistinctValues recomputes a set-field vocabulary (category, tag,
	// business) from the live records.
	DistinctValues(ctx context.Context, field string) ([]string, error)

	// Count returns the number of live (not soft-deleted) records.
	Count(ctx context.Context) (int, error)

	// DeleteHard removes the row irreversibly.
	DeleteHard(ctx context.Context, key string) error
}

// Snapshot is one history entry: the full pre-image of a record taken
// before a mutation.
type Snapshot struct {
	ID         int64
	AddressKey string
	CreatedAt  time.Time
	CreatedBy  string
	Record     *Address
}

// HistoryRepository is the append-only audit store contract.
type HistoryRepository interface {
	// Snapshot stores the pre-image, called unconditionally before every
	// save mutation completes.
	Snapshot(ctx context.Context, user string, address *Address) error

	// ListSnapshots returns all snapshots of a record, newest first.
	ListSnapshots(ctx context.Context, key string) ([]Snapshot, error)

	// ArchiveDeleted copies the full record into the deleted-records
	// archive before it is marked deleted.
	ArchiveDeleted(ctx context.Context, user string, address *Address) error

	// GetDeleted returns the archived copy of a soft-deleted record.
	GetDeleted(ctx context.Context, key string) (*Address, error)

	// PurgeHistory removes every snapshot and archive row of a record.
	// Used by force deletion.
	PurgeHistory(ctx context.Context, key string) error
}
