// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package freedef

import (
	"context"
	"time"
)

// Repository is the persistence contract for the field catalogue.
type Repository interface {
	// Insert stores a new catalogue entry.
	Insert(ctx context.Context, field *Field) error

	// Update replaces an existing entry.
	Update(ctx context.Context, field *Field) error

	// GetByID fetches one entry.
	GetByID(ctx context.Context, id string) (*Field, error)

	// List returns all entries ordered by position, then label.
	List(ctx context.Context) ([]*Field, error)

	// Delete removes an entry.
	Delete(ctx context.Context, id string) error
}

// Snapshot is one history entry: the full pre-image of a catalogue entry
// taken before a save.
type Snapshot struct {
	ID        int64
	FieldID   string
	CreatedAt time.Time
	CreatedBy string
	Field     *Field
}

// HistoryRepository is the append-only audit store contract for catalogue
// edits. Deleting a catalogue entry leaves its history in place.
type HistoryRepository interface {
	// Snapshot stores the pre-image before a save mutation completes.
	Snapshot(ctx context.Context, user string, field *Field) error

	// ListSnapshots returns all snapshots of an entry, newest first.
	ListSnapshots(ctx context.Context, id string) ([]Snapshot, error)
}
