// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package address

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karteiapp/kartei/internal/platform/apperr"
	"github.com/karteiapp/kartei/internal/platform/database/schema"
	"github.com/karteiapp/kartei/internal/platform/dberr"
)

// PostgresHistoryRepository stores pre-image snapshots and the
// deleted-records archive. Snapshots are opaque JSONB blobs of the full
// record, keyed by the record's storage key plus a timestamp.
type PostgresHistoryRepository struct {
	db *pgxpool.Pool
}

var _ HistoryRepository = (*PostgresHistoryRepository)(nil)

func NewPostgresHistoryRepository(db *pgxpool.Pool) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

// Snapshot stores the pre-image of a record before a mutation.
func (repository *PostgresHistoryRepository) Snapshot(ctx context.Context, user string, address *Address) error {
	blob, err := json.Marshal(address)
	if err != nil {
		return apperr.Internal(fmt.Errorf("marshal snapshot for %s: %w", address.Key, err))
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, NOW(), $2, $3)
	`,
		schema.AddressHistory.Table,
		schema.AddressHistory.AddressKey, schema.AddressHistory.CreatedAt,
		schema.AddressHistory.CreatedBy, schema.AddressHistory.Snapshot,
	)

	_, err = repository.db.Exec(ctx, query, address.Key, user, blob)
	return dberr.Wrap(err, "insert_address_snapshot")
}

// ListSnapshots returns all snapshots of a record, newest first.
func (repository *PostgresHistoryRepository) ListSnapshots(ctx context.Context, key string) ([]Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
	`,
		schema.AddressHistory.ID, schema.AddressHistory.AddressKey,
		schema.AddressHistory.CreatedAt, schema.AddressHistory.CreatedBy,
		schema.AddressHistory.Snapshot,
		schema.AddressHistory.Table,
		schema.AddressHistory.AddressKey,
		schema.AddressHistory.CreatedAt, schema.AddressHistory.ID,
	)

	rows, err := repository.db.Query(ctx, query, key)
	if err != nil {
		return nil, dberr.Wrap(err, "list_address_snapshots")
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snapshot Snapshot
		var blob []byte

		if err := rows.Scan(&snapshot.ID, &snapshot.AddressKey, &snapshot.CreatedAt, &snapshot.CreatedBy, &blob); err != nil {
			return nil, dberr.Wrap(err, "scan_address_snapshot")
		}

		record := &Address{}
		if err := json.Unmarshal(blob, record); err != nil {
			return nil, apperr.Internal(fmt.Errorf("decode snapshot %d: %w", snapshot.ID, err))
		}
		snapshot.Record = record

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

// ArchiveDeleted copies the full record into the deleted-records archive.
// Re-deleting a record replaces its archive entry.
func (repository *PostgresHistoryRepository) ArchiveDeleted(ctx context.Context, user string, address *Address) error {
	blob, err := json.Marshal(address)
	if err != nil {
		return apperr.Internal(fmt.Errorf("marshal archive for %s: %w", address.Key, err))
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, NOW(), $2, $3)
		ON CONFLICT (%s) DO UPDATE
		SET %s = NOW(), %s = EXCLUDED.%s, %s = EXCLUDED.%s
	`,
		schema.DeletedAddress.Table,
		schema.DeletedAddress.AddressKey, schema.DeletedAddress.DeletedAt,
		schema.DeletedAddress.DeletedBy, schema.DeletedAddress.Snapshot,
		schema.DeletedAddress.AddressKey,
		schema.DeletedAddress.DeletedAt,
		schema.DeletedAddress.DeletedBy, schema.DeletedAddress.DeletedBy,
		schema.DeletedAddress.Snapshot, schema.DeletedAddress.Snapshot,
	)

	_, err = repository.db.Exec(ctx, query, address.Key, user, blob)
	return dberr.Wrap(err, "archive_deleted_address")
}

// GetDeleted returns the archived copy of a soft-deleted record.
func (repository *PostgresHistoryRepository) GetDeleted(ctx context.Context, key string) (*Address, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.DeletedAddress.Snapshot, schema.DeletedAddress.Table,
		schema.DeletedAddress.AddressKey,
	)

	var blob []byte
	if err := repository.db.QueryRow(ctx, query, key).Scan(&blob); err != nil {
		return nil, dberr.Wrap(err, "get_deleted_address")
	}

	record := &Address{}
	if err := json.Unmarshal(blob, record); err != nil {
		return nil, apperr.Internal(fmt.Errorf("decode archive for %s: %w", key, err))
	}

	return record, nil
}

// PurgeHistory removes every snapshot and archive row of a record.
func (repository *PostgresHistoryRepository) PurgeHistory(ctx context.Context, key string) error {
	historyQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.AddressHistory.Table, schema.AddressHistory.AddressKey,
	)
	if _, err := repository.db.Exec(ctx, historyQuery, key); err != nil {
		return dberr.Wrap(err, "purge_address_history")
	}

	archiveQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.DeletedAddress.Table, schema.DeletedAddress.AddressKey,
	)
	if _, err := repository.db.Exec(ctx, archiveQuery, key); err != nil {
		return dberr.Wrap(err, "purge_deleted_address")
	}

	return nil
}
