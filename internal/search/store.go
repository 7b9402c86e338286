// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package search

import "context"

// QueryResult is one page of query matches together with the total count
// across all pages.
type QueryResult struct {
	Documents    []Document
	TotalMatches int
}

// IteratePage is one keyset page of an unbounded index walk. NextCursor is
// empty when the walk is exhausted.
type IteratePage struct {
	Documents  []Document
	NextCursor string
}

// Index is the derived search index contract.
//
// Put has replace semantics: the full document for the record is recomputed
// by the caller and upserted wholesale. Writes are last-write-wins per
// document id, which makes reindexing safe to run concurrently with live
// traffic.
type Index interface {
	// Put upserts the complete document.
	Put(ctx context.Context, doc Document) error

	// Delete removes the document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, docID string) error

	// DeleteAll removes every document in fixed-size batches and returns
	// the number removed.
	DeleteAll(ctx context.Context) (int, error)

	// Query executes a parsed query string with offset pagination.
	// Sort fields map 1:1 to indexed field names, a leading '-' requests
	// descending order. When returnedFields is non-empty only those
	// fields appear in the result documents.
	Query(ctx context.Context, queryString string, page, pageSize int, sort []string, returnedFields []string) (QueryResult, error)

	// Iterate walks all documents with a stable forward-only cursor.
	Iterate(ctx context.Context, cursor string, limit int) (IteratePage, error)
}
