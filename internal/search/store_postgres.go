// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
PostgresIndex stores index documents in a dedicated table next to the
primary store.

Design notes:
  - Field tokens live in a JSONB array; structured field:value clauses
    become JSONB containment checks served by a GIN index.
  - Free-text terms match against a 'simple' tsvector built from the text
    tokens (folded duplicates included), so accented and folded spellings
    both hit.
  - Window Function: COUNT(*) OVER() retrieves total match counts in the
    same round trip as the page itself.
*/
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karteiapp/kartei/internal/platform/apperr"
	"github.com/karteiapp/kartei/internal/platform/database/schema"
	"github.com/karteiapp/kartei/internal/platform/dberr"
	"github.com/karteiapp/kartei/pkg/pagination"
)

// deleteBatchSize bounds each DELETE round trip during a full index wipe.
const deleteBatchSize = 200

// sortFieldPattern whitelists sort field names before they reach SQL.
var sortFieldPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

type PostgresIndex struct {
	db *pgxpool.Pool
}

var _ Index = (*PostgresIndex)(nil)

func NewPostgresIndex(db *pgxpool.Pool) *PostgresIndex {
	return &PostgresIndex{db: db}
}

// Put upserts the complete document under its id.
func (index *PostgresIndex) Put(ctx context.Context, doc Document) error {
	fieldsJSON, err := json.Marshal(doc.Fields)
	if err != nil {
		return apperr.Internal(fmt.Errorf("marshal document %s: %w", doc.DocID, err))
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, to_tsvector('simple', $3), NOW())
		ON CONFLICT (%s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()
	`,
		schema.SearchDocument.Table,
		schema.SearchDocument.DocID, schema.SearchDocument.Fields,
		schema.SearchDocument.Vector, schema.SearchDocument.UpdatedAt,
		schema.SearchDocument.DocID,
		schema.SearchDocument.Fields, schema.SearchDocument.Fields,
		schema.SearchDocument.Vector, schema.SearchDocument.Vector,
		schema.SearchDocument.UpdatedAt,
	)

	_, err = index.db.Exec(ctx, query, doc.DocID, fieldsJSON, vectorSource(doc.Fields))
	return dberr.Wrap(err, "put_search_document")
}

// Delete removes the document. Absent documents are ignored.
func (index *PostgresIndex) Delete(ctx context.Context, docID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.SearchDocument.Table, schema.SearchDocument.DocID,
	)

	_, err := index.db.Exec(ctx, query, docID)
	return dberr.Wrap(err, "delete_search_document")
}

// DeleteAll removes every document in fixed-size batches so the wipe never
// holds a long transaction.
func (index *PostgresIndex) DeleteAll(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s IN (SELECT %s FROM %s ORDER BY %s LIMIT $1)
	`,
		schema.SearchDocument.Table,
		schema.SearchDocument.DocID, schema.SearchDocument.DocID,
		schema.SearchDocument.Table, schema.SearchDocument.DocID,
	)

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		cmd, err := index.db.Exec(ctx, query, deleteBatchSize)
		if err != nil {
			return total, dberr.Wrap(err, "delete_all_search_documents")
		}

		affected := int(cmd.RowsAffected())
		total += affected

		if affected < deleteBatchSize {
			return total, nil
		}
	}
}

// Query executes a query string with offset pagination.
func (index *PostgresIndex) Query(ctx context.Context, queryString string, page, pageSize int, sort []string, returnedFields []string) (QueryResult, error) {
	parsed, err := ParseQuery(queryString)
	if err != nil {
		return QueryResult{}, err
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, %s, COUNT(*) OVER() AS total_count
		FROM %s
		WHERE TRUE
	`,
		schema.SearchDocument.DocID, schema.SearchDocument.Fields,
		schema.SearchDocument.Table,
	))

	args := []any{}

	// Structured clauses become JSONB containment checks. The containment
	// object omits the type key so it matches tokens of any type.
	for _, clause := range parsed.Clauses {
		containment, err := json.Marshal([]map[string]string{{"name": clause.Field, "value": clause.Value}})
		if err != nil {
			return QueryResult{}, apperr.Internal(err)
		}

		args = append(args, containment)
		queryBuilder.WriteString(fmt.Sprintf(" AND %s @> $%d::jsonb", schema.SearchDocument.Fields, len(args)))
	}

	// Free terms match against the tsvector.
	if len(parsed.Terms) > 0 {
		args = append(args, strings.Join(parsed.Terms, " "))
		queryBuilder.WriteString(fmt.Sprintf(" AND %s @@ websearch_to_tsquery('simple', $%d)", schema.SearchDocument.Vector, len(args)))
	}

	orderBy, err := buildOrderBy(sort, &args)
	if err != nil {
		return QueryResult{}, err
	}
	queryBuilder.WriteString(orderBy)

	args = append(args, pageSize, (page-1)*pageSize)
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	rows, err := index.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return QueryResult{}, dberr.Wrap(err, "query_search_documents")
	}
	defer rows.Close()

	result := QueryResult{}
	for rows.Next() {
		var docID string
		var fieldsJSON []byte
		var total int

		if err := rows.Scan(&docID, &fieldsJSON, &total); err != nil {
			return QueryResult{}, dberr.Wrap(err, "scan_search_document")
		}

		doc, err := decodeDocument(docID, fieldsJSON)
		if err != nil {
			return QueryResult{}, err
		}

		result.TotalMatches = total
		result.Documents = append(result.Documents, filterFields(doc, returnedFields))
	}

	return result, nil
}

// Iterate walks all documents ordered by id with a keyset cursor.
func (index *PostgresIndex) Iterate(ctx context.Context, cursor string, limit int) (IteratePage, error) {
	position, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return IteratePage{}, apperr.InvalidQuery("Invalid iteration cursor")
	}

	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s
		WHERE %s > $1
		ORDER BY %s
		LIMIT $2
	`,
		schema.SearchDocument.DocID, schema.SearchDocument.Fields,
		schema.SearchDocument.Table,
		schema.SearchDocument.DocID, schema.SearchDocument.DocID,
	)

	rows, err := index.db.Query(ctx, query, position, limit)
	if err != nil {
		return IteratePage{}, dberr.Wrap(err, "iterate_search_documents")
	}
	defer rows.Close()

	page := IteratePage{}
	lastDocID := ""

	for rows.Next() {
		var docID string
		var fieldsJSON []byte

		if err := rows.Scan(&docID, &fieldsJSON); err != nil {
			return IteratePage{}, dberr.Wrap(err, "scan_search_document")
		}

		doc, err := decodeDocument(docID, fieldsJSON)
		if err != nil {
			return IteratePage{}, err
		}

		page.Documents = append(page.Documents, doc)
		lastDocID = docID
	}

	if len(page.Documents) == limit {
		page.NextCursor = pagination.EncodeCursor(lastDocID)
	}

	return page, nil
}

// buildOrderBy renders the ORDER BY for the sort spec. Each sort field is
// resolved to its first token value inside the JSONB array.
func buildOrderBy(sort []string, args *[]any) (string, error) {
	if len(sort) == 0 {
		return fmt.Sprintf(" ORDER BY %s", schema.SearchDocument.DocID), nil
	}

	var clauses []string
	for _, field := range sort {
		direction := "ASC"
		name := field

		if strings.HasPrefix(name, "-") {
			direction = "DESC"
			name = name[1:]
		}

		if !sortFieldPattern.MatchString(name) {
			return "", apperr.InvalidQuery(fmt.Sprintf("Invalid sort field %q", field))
		}

		*args = append(*args, name)
		clauses = append(clauses, fmt.Sprintf(
			"(SELECT sf->>'value' FROM jsonb_array_elements(%s) sf WHERE sf->>'name' = $%d LIMIT 1) %s",
			schema.SearchDocument.Fields, len(*args), direction,
		))
	}

	// Stable tie-break so pages from the same query never overlap.
	clauses = append(clauses, schema.SearchDocument.DocID)

	return " ORDER BY " + strings.Join(clauses, ", "), nil
}

// vectorSource concatenates the free-text-searchable token values.
func vectorSource(fields []Field) string {
	var parts []string
	for _, field := range fields {
		if field.Type == TypeText {
			parts = append(parts, field.Value)
		}
	}
	return strings.Join(parts, " ")
}

// decodeDocument rebuilds a Document from its stored JSONB fields.
func decodeDocument(docID string, fieldsJSON []byte) (Document, error) {
	var fields []Field
	if err := json.Unmarshal(fieldsJSON, &fields); err != nil {
		return Document{}, apperr.Internal(fmt.Errorf("decode document %s: %w", docID, err))
	}
	return Document{DocID: docID, Fields: fields}, nil
}

// filterFields restricts a document to the requested field names.
func filterFields(doc Document, returnedFields []string) Document {
	if len(returnedFields) == 0 {
		return doc
	}

	wanted := make(map[string]bool, len(returnedFields))
	for _, name := range returnedFields {
		wanted[name] = true
	}

	filtered := Document{DocID: doc.DocID}
	for _, field := range doc.Fields {
		if wanted[field.Name] {
			filtered.Fields = append(filtered.Fields, field)
		}
	}

	return filtered
}
