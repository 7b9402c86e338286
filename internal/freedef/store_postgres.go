// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package freedef

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karteiapp/kartei/internal/platform/database/schema"
	"github.com/karteiapp/kartei/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func columnList() string {
	return strings.Join(schema.FreeDefinedField.Columns(), ", ")
}

func writeArgs(field *Field) []any {
	return []any{
		field.ID, field.Group, field.Label, field.Position, field.Visible,
		field.ValueType, field.CreatedAt, field.CreatedBy, field.EditedAt,
		field.EditedBy,
	}
}

func scanField(row pgx.Row) (*Field, error) {
	var field Field
	err := row.Scan(
		&field.ID, &field.Group, &field.Label, &field.Position, &field.Visible,
		&field.ValueType, &field.CreatedAt, &field.CreatedBy, &field.EditedAt,
		&field.EditedBy,
	)
	if err != nil {
		return nil, err
	}
	return &field, nil
}

func (repo *PostgresRepository) Insert(ctx context.Context, field *Field) error {
	sql := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		schema.FreeDefinedField.Table, columnList())

	if _, err := repo.db.Exec(ctx, sql, writeArgs(field)...); err != nil {
		return dberr.Wrap(err, "free_defined_field_insert")
	}
	return nil
}

func (repo *PostgresRepository) Update(ctx context.Context, field *Field) error {
	columns := schema.FreeDefinedField.Columns()

	assignments := make([]string, 0, len(columns)-1)
	for i, column := range columns[1:] {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, i+2))
	}

	sql := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1`,
		schema.FreeDefinedField.Table, strings.Join(assignments, ", "), schema.FreeDefinedField.ID)

	tag, err := repo.db.Exec(ctx, sql, writeArgs(field)...)
	if err != nil {
		return dberr.Wrap(err, "free_defined_field_update")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "free_defined_field_update")
	}
	return nil
}

func (repo *PostgresRepository) GetByID(ctx context.Context, id string) (*Field, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columnList(), schema.FreeDefinedField.Table, schema.FreeDefinedField.ID)

	field, err := scanField(repo.db.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, dberr.Wrap(err, "free_defined_field_get")
	}
	return field, nil
}

func (repo *PostgresRepository) List(ctx context.Context) ([]*Field, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s`,
		columnList(), schema.FreeDefinedField.Table,
		schema.FreeDefinedField.Position, schema.FreeDefinedField.Label)

	rows, err := repo.db.Query(ctx, sql)
	if err != nil {
		return nil, dberr.Wrap(err, "free_defined_field_list")
	}
	defer rows.Close()

	var fields []*Field
	for rows.Next() {
		field, err := scanField(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "free_defined_field_list")
		}
		fields = append(fields, field)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "free_defined_field_list")
	}
	return fields, nil
}

func (repo *PostgresRepository) Delete(ctx context.Context, id string) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.FreeDefinedField.Table, schema.FreeDefinedField.ID)

	tag, err := repo.db.Exec(ctx, sql, id)
	if err != nil {
		return dberr.Wrap(err, "free_defined_field_delete")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "free_defined_field_delete")
	}
	return nil
}
