// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
PostgresRepository is the primary document store.

Design notes:
  - Case-insensitive filtering and sorting run against the derived
    lowercase and first-character projection columns, which are recomputed
    from the source fields on every write and never accepted from callers.
  - Set-field filters (category, tag, business) use native array
    containment (@>) served by GIN indexes.
  - Window Function: COUNT(*) OVER() retrieves total record counts in the
    same round trip as the page itself.
  - Sub-item collections travel in one JSONB column; merging happens in
    the model, the store reads and writes them wholesale.
*/
package address

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karteiapp/kartei/internal/platform/apperr"
	"github.com/karteiapp/kartei/internal/platform/database/schema"
	"github.com/karteiapp/kartei/internal/platform/dberr"
	"github.com/karteiapp/kartei/pkg/slice"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// columnList is the full column set in schema order.
func columnList() string {
	return strings.Join(schema.Address.Columns(), ", ")
}

// writeArgs renders the record into the full column set in schema order,
// recomputing every projection from its source field.
func writeArgs(address *Address) ([]any, error) {
	itemsJSON, err := json.Marshal(address.Items)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("marshal items for %s: %w", address.Key, err))
	}

	args := []any{
		address.Key, address.UID, address.Owner, address.Kind,
		address.CreatedAt, address.CreatedBy, address.EditedAt, address.EditedBy,
		address.DeletedAt,
		address.Organization, address.Position, address.Salutation,
		address.FirstName, address.LastName, address.Nickname,
		address.Street, address.Postcode, address.City,
		address.District, address.Region, address.Country, address.Gender,
	}

	// Lowercase projections, then first-character projections, both in
	// FilterableFields order to line up with the schema columns.
	for _, field := range FilterableFields {
		lower, _ := address.Projection(field)
		args = append(args, lower)
	}
	for _, field := range FilterableFields {
		_, char1 := address.Projection(field)
		args = append(args, char1)
	}

	args = append(args,
		emptyIfNil(address.CategoryItems),
		emptyIfNil(address.TagItems),
		emptyIfNil(address.BusinessItems),
		itemsJSON,
	)

	return args, nil
}

// emptyIfNil keeps array columns NOT NULL.
func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// scanAddress reads one row in schema column order.
func scanAddress(row pgx.Row, extra ...any) (*Address, error) {
	address := &Address{}
	var itemsJSON []byte

	// Projection columns are scanned and dropped; the model never holds
	// them authoritatively.
	var lowers, char1s [9]*string

	targets := []any{
		&address.Key, &address.UID, &address.Owner, &address.Kind,
		&address.CreatedAt, &address.CreatedBy, &address.EditedAt, &address.EditedBy,
		&address.DeletedAt,
		&address.Organization, &address.Position, &address.Salutation,
		&address.FirstName, &address.LastName, &address.Nickname,
		&address.Street, &address.Postcode, &address.City,
		&address.District, &address.Region, &address.Country, &address.Gender,
	}
	for i := range lowers {
		targets = append(targets, &lowers[i])
	}
	for i := range char1s {
		targets = append(targets, &char1s[i])
	}
	targets = append(targets,
		&address.CategoryItems, &address.TagItems, &address.BusinessItems,
		&itemsJSON,
	)
	targets = append(targets, extra...)

	if err := row.Scan(targets...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &address.Items); err != nil {
		return nil, apperr.Internal(fmt.Errorf("decode items for %s: %w", address.Key, err))
	}

	return address, nil
}

// placeholders renders "$1, $2, ..., $n".
func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

func (repository *PostgresRepository) Insert(ctx context.Context, address *Address) error {
	columns := schema.Address.Columns()
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		schema.Address.Table, columnList(), placeholders(len(columns)),
	)

	args, err := writeArgs(address)
	if err != nil {
		return err
	}

	_, err = repository.db.Exec(ctx, query, args...)
	return dberr.Wrap(err, "insert_address")
}

func (repository *PostgresRepository) Update(ctx context.Context, address *Address) error {
	columns := schema.Address.Columns()

	assignments := make([]string, 0, len(columns)-1)
	for i, column := range columns[1:] {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, i+2))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1`,
		schema.Address.Table, strings.Join(assignments, ", "), schema.Address.Key,
	)

	args, err := writeArgs(address)
	if err != nil {
		return err
	}

	cmd, err := repository.db.Exec(ctx, query, args...)
	if err != nil {
		return dberr.Wrap(err, "update_address")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) GetByKey(ctx context.Context, key string) (*Address, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columnList(), schema.Address.Table, schema.Address.Key,
	)

	address, err := scanAddress(repository.db.QueryRow(ctx, query, key))
	if err != nil {
		return nil, dberr.Wrap(err, "get_address_by_key")
	}
	return address, nil
}

func (repository *PostgresRepository) GetByUID(ctx context.Context, uid string) (*Address, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columnList(), schema.Address.Table, schema.Address.UID,
	)

	address, err := scanAddress(repository.db.QueryRow(ctx, query, uid))
	if err != nil {
		return nil, dberr.Wrap(err, "get_address_by_uid")
	}
	return address, nil
}

func (repository *PostgresRepository) List(ctx context.Context, filter Filter, sort []string, limit, offset int) ([]*Address, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total_count FROM %s WHERE TRUE`,
		columnList(), schema.Address.Table,
	))

	args := []any{}
	if err := appendFilter(&queryBuilder, filter, &args); err != nil {
		return nil, 0, err
	}

	orderBy, err := buildOrderBy(sort)
	if err != nil {
		return nil, 0, err
	}
	queryBuilder.WriteString(orderBy)

	args = append(args, limit, offset)
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	rows, err := repository.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_addresses")
	}
	defer rows.Close()

	var addresses []*Address
	total := 0

	for rows.Next() {
		address, err := scanAddress(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_address")
		}
		addresses = append(addresses, address)
	}

	return addresses, total, nil
}

func (repository *PostgresRepository) Iterate(ctx context.Context, position string, limit int, filter Filter) ([]*Address, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s FROM %s WHERE TRUE`,
		columnList(), schema.Address.Table,
	))

	args := []any{}
	if err := appendFilter(&queryBuilder, filter, &args); err != nil {
		return nil, err
	}

	if position != "" {
		args = append(args, position)
		queryBuilder.WriteString(fmt.Sprintf(" AND %s > $%d", schema.Address.Key, len(args)))
	}

	args = append(args, limit)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s LIMIT $%d", schema.Address.Key, len(args)))

	rows, err := repository.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, dberr.Wrap(err, "iterate_addresses")
	}
	defer rows.Close()

	var addresses []*Address
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_address")
		}
		addresses = append(addresses, address)
	}

	return addresses, nil
}

// setFieldColumns maps vocabulary names onto their array columns.
var setFieldColumns = map[string]string{
	"category": schema.Address.CategoryItems,
	"tag":      schema.Address.TagItems,
	"business": schema.Address.BusinessItems,
}

func (repository *PostgresRepository) DistinctValues(ctx context.Context, field string) ([]string, error) {
	column, found := setFieldColumns[field]
	if !found {
		return nil, apperr.InvalidQuery(fmt.Sprintf("Unknown set field %q", field))
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT unnest(%s) FROM %s WHERE %s IS NULL ORDER BY 1
	`, column, schema.Address.Table, schema.Address.DeletedAt)

	rows, err := repository.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "distinct_values")
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, dberr.Wrap(err, "scan_distinct_value")
		}
		values = append(values, value)
	}

	return values, nil
}

func (repository *PostgresRepository) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s IS NULL`,
		schema.Address.Table, schema.Address.DeletedAt,
	)

	var total int
	if err := repository.db.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_addresses")
	}
	return total, nil
}

func (repository *PostgresRepository) DeleteHard(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Address.Table, schema.Address.Key,
	)

	cmd, err := repository.db.Exec(ctx, query, key)
	if err != nil {
		return dberr.Wrap(err, "delete_address")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// appendFilter renders the filter into WHERE conditions.
func appendFilter(queryBuilder *strings.Builder, filter Filter, args *[]any) error {
	if !filter.AlsoDeleted {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s IS NULL", schema.Address.DeletedAt))
	}

	if filter.Kind != "" {
		*args = append(*args, filter.Kind)
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.Address.Kind, len(*args)))
	}

	if filter.Owner != "" {
		*args = append(*args, filter.Owner)
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", schema.Address.Owner, len(*args)))
	}

	for field, value := range filter.Equals {
		if !slice.Contains(FilterableFields, field) {
			return apperr.InvalidQuery(fmt.Sprintf("Unknown filter field %q", field))
		}
		*args = append(*args, strings.ToLower(value))
		queryBuilder.WriteString(fmt.Sprintf(" AND %s_lower = $%d", field, len(*args)))
	}

	for field, value := range filter.Char1 {
		if !slice.Contains(FilterableFields, field) {
			return apperr.InvalidQuery(fmt.Sprintf("Unknown filter field %q", field))
		}
		*args = append(*args, strings.ToLower(value))
		queryBuilder.WriteString(fmt.Sprintf(" AND %s_char1 = $%d", field, len(*args)))
	}

	setFilters := map[string][]string{
		schema.Address.CategoryItems: filter.Categories,
		schema.Address.TagItems:      filter.Tags,
		schema.Address.BusinessItems: filter.Businesses,
	}
	for column, values := range setFilters {
		if len(values) == 0 {
			continue
		}
		*args = append(*args, values)
		queryBuilder.WriteString(fmt.Sprintf(" AND %s @> $%d", column, len(*args)))
	}

	return nil
}

// buildOrderBy renders the sort spec; filterable fields sort by their
// lowercase projection. The key is the final tie-break so pages never
// overlap.
func buildOrderBy(sort []string) (string, error) {
	if len(sort) == 0 {
		return fmt.Sprintf(" ORDER BY %s", schema.Address.Key), nil
	}

	sortableColumns := map[string]string{
		"key":        schema.Address.Key,
		"uid":        schema.Address.UID,
		"owner":      schema.Address.Owner,
		"kind":       schema.Address.Kind,
		"created_at": schema.Address.CreatedAt,
		"edited_at":  schema.Address.EditedAt,
		"district":   schema.Address.District,
		"region":     schema.Address.Region,
		"country":    schema.Address.Country,
		"gender":     schema.Address.Gender,
	}
	for _, field := range FilterableFields {
		sortableColumns[field] = field + "_lower"
	}

	var clauses []string
	for _, field := range sort {
		direction := "ASC"
		name := field

		if strings.HasPrefix(name, "-") {
			direction = "DESC"
			name = name[1:]
		}

		column, found := sortableColumns[name]
		if !found {
			return "", apperr.InvalidQuery(fmt.Sprintf("Invalid sort field %q", field))
		}

		clauses = append(clauses, column+" "+direction)
	}

	clauses = append(clauses, schema.Address.Key)
	return " ORDER BY " + strings.Join(clauses, ", "), nil
}
