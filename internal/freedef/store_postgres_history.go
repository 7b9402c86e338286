// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package freedef

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karteiapp/kartei/internal/platform/apperr"
	"github.com/karteiapp/kartei/internal/platform/database/schema"
	"github.com/karteiapp/kartei/internal/platform/dberr"
)

// PostgresHistoryRepository stores pre-image snapshots of catalogue edits
// as opaque JSONB blobs keyed by the entry id plus a timestamp.
type PostgresHistoryRepository struct {
	db *pgxpool.Pool
}

var _ HistoryRepository = (*PostgresHistoryRepository)(nil)

func NewPostgresHistoryRepository(db *pgxpool.Pool) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

// Snapshot stores the pre-image of a catalogue entry before a save.
func (repository *PostgresHistoryRepository) Snapshot(ctx context.Context, user string, field *Field) error {
	blob, err := json.Marshal(field)
	if err != nil {
		return apperr.Internal(fmt.Errorf("marshal snapshot for %s: %w", field.ID, err))
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, NOW(), $2, $3)
	`,
		schema.FreeDefinedFieldHistory.Table,
		schema.FreeDefinedFieldHistory.FieldID, schema.FreeDefinedFieldHistory.CreatedAt,
		schema.FreeDefinedFieldHistory.CreatedBy, schema.FreeDefinedFieldHistory.Snapshot,
	)

	_, err = repository.db.Exec(ctx, query, field.ID, user, blob)
	return dberr.Wrap(err, "insert_free_defined_field_snapshot")
}

// ListSnapshots returns all snapshots of a catalogue entry, newest first.
func (repository *PostgresHistoryRepository) ListSnapshots(ctx context.Context, id string) ([]Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
	`,
		schema.FreeDefinedFieldHistory.ID, schema.FreeDefinedFieldHistory.FieldID,
		schema.FreeDefinedFieldHistory.CreatedAt, schema.FreeDefinedFieldHistory.CreatedBy,
		schema.FreeDefinedFieldHistory.Snapshot,
		schema.FreeDefinedFieldHistory.Table,
		schema.FreeDefinedFieldHistory.FieldID,
		schema.FreeDefinedFieldHistory.CreatedAt, schema.FreeDefinedFieldHistory.ID,
	)

	rows, err := repository.db.Query(ctx, query, id)
	if err != nil {
		return nil, dberr.Wrap(err, "list_free_defined_field_snapshots")
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snapshot Snapshot
		var blob []byte

		if err := rows.Scan(&snapshot.ID, &snapshot.FieldID, &snapshot.CreatedAt, &snapshot.CreatedBy, &blob); err != nil {
			return nil, dberr.Wrap(err, "scan_free_defined_field_snapshot")
		}

		field := &Field{}
		if err := json.Unmarshal(blob, field); err != nil {
			return nil, apperr.Internal(fmt.Errorf("decode snapshot %d: %w", snapshot.ID, err))
		}
		snapshot.Field = field

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}
