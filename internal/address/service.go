// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package address

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/karteiapp/kartei/internal/jobs"
	"github.com/karteiapp/kartei/internal/namedvalue"
	"github.com/karteiapp/kartei/internal/platform/apperr"
	"github.com/karteiapp/kartei/internal/platform/authz"
	"github.com/karteiapp/kartei/internal/platform/constants"
	"github.com/karteiapp/kartei/internal/search"
	"github.com/karteiapp/kartei/pkg/format"
	"github.com/karteiapp/kartei/pkg/pagination"
	"github.com/karteiapp/kartei/pkg/uuidv7"
)

// Service implements the stable record contract: create, save, get, list,
// iterate, search, delete, reindex, and the cached vocabulary getters.
//
// # Write path
//
// Mutations normalize and validate first (atomic), snapshot the pre-image,
// commit to the primary store, then update the cache incrementally and
// schedule the index write off the request path. Index write failures
// never surface to the caller; the reindex operation is the repair path.
type Service struct {
	repo    Repository
	history HistoryRepository
	index   search.Index
	cache   namedvalue.Store
	auth    *authz.Authorizer
	runner  *jobs.Runner
	logger  *slog.Logger

	// fieldExceptions lists free-defined field names kept out of the
	// search index.
	fieldExceptions []string
}

func NewService(
	repo Repository,
	history HistoryRepository,
	index search.Index,
	cache namedvalue.Store,
	auth *authz.Authorizer,
	runner *jobs.Runner,
	logger *slog.Logger,
	fieldExceptions []string,
) *Service {
	return &Service{
		repo:            repo,
		history:         history,
		index:           index,
		cache:           cache,
		auth:            auth,
		runner:          runner,
		logger:          logger,
		fieldExceptions: fieldExceptions,
	}
}

// ListParams bundles the listing arguments. A non-empty Query routes the
// listing through the search index; otherwise the primary store filters
// directly. Both routes exclude soft-deleted records unless
// Filter.AlsoDeleted is set.
type ListParams struct {
	Query    string
	Filter   Filter
	Sort     []string
	Page     int
	PageSize int
}

// IterateResult is one page of a full-corpus walk.
type IterateResult struct {
	Records    []map[string]any
	NextCursor string
	TotalCount int
}

// Create validates and stores a new record owned by the calling user.
func (service *Service) Create(ctx context.Context, user string, input Input) (map[string]any, error) {
	if err := service.auth.Check(user, authz.AddressCreate); err != nil {
		return nil, err
	}

	address, err := ApplyCreate(input, user, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	address.Key = uuidv7.New()

	if err := service.repo.Insert(ctx, address); err != nil {
		return nil, err
	}

	service.bumpQuantity(ctx, +1)
	service.extendVocabularies(ctx, address)
	service.scheduleIndexPut(address)

	service.logger.InfoContext(ctx, "address_created",
		slog.String("key", address.Key),
		slog.String("user", user),
	)

	return address.ToDict(DictOptions{}), nil
}

// Save applies a partial update to an existing record. The pre-image is
// snapshotted into history before anything changes.
func (service *Service) Save(ctx context.Context, user, key string, input Input) (map[string]any, error) {
	prior, err := service.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := service.checkEditable(user, prior); err != nil {
		return nil, err
	}

	next, err := ApplySave(prior, input, user, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	// History first: every mutation leaves the pre-image behind.
	if err := service.history.Snapshot(ctx, user, prior); err != nil {
		return nil, err
	}

	if err := service.repo.Update(ctx, next); err != nil {
		return nil, err
	}

	service.extendVocabularies(ctx, next)
	service.scheduleIndexPut(next)

	service.logger.InfoContext(ctx, "address_saved",
		slog.String("key", key),
		slog.String("user", user),
	)

	return next.ToDict(DictOptions{}), nil
}

// Get returns the record dictionary, or nil when the key is unknown.
// Absence is not an error, so callers can tell "not found" from a fault.
func (service *Service) Get(ctx context.Context, key string) (map[string]any, error) {
	return service.GetWithOptions(ctx, key, DictOptions{})
}

// GetWithOptions is Get with caller-controlled field selection and
// metadata stripping.
func (service *Service) GetWithOptions(ctx context.Context, key string, opts DictOptions) (map[string]any, error) {
	address, err := service.repo.GetByKey(ctx, key)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return address.ToDict(opts), nil
}

// GetByUID returns the record dictionary by its stable identity, or nil.
func (service *Service) GetByUID(ctx context.Context, uid string) (map[string]any, error) {
	address, err := service.repo.GetByUID(ctx, uid)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return address.ToDict(DictOptions{}), nil
}

// List returns one page of records with the total count. The two filter
// routes (primary store, search index) are interchangeable at this
// interface.
func (service *Service) List(ctx context.Context, params ListParams) ([]map[string]any, int, error) {
	if params.PageSize <= 0 {
		params.PageSize = pagination.DefaultLimit
	}
	if params.Page <= 0 {
		params.Page = 1
	}

	if strings.TrimSpace(params.Query) == "" {
		return service.listPrimary(ctx, params)
	}
	return service.listIndexed(ctx, params)
}

// listPrimary filters on the projection columns of the primary store.
func (service *Service) listPrimary(ctx context.Context, params ListParams) ([]map[string]any, int, error) {
	offset := (params.Page - 1) * params.PageSize

	addresses, total, err := service.repo.List(ctx, params.Filter, params.Sort, params.PageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	dicts := make([]map[string]any, 0, len(addresses))
	for _, address := range addresses {
		dicts = append(dicts, address.ToDict(DictOptions{}))
	}

	return dicts, total, nil
}

// listIndexed routes the same filter arguments through the search index
// and resolves the matching documents back to primary-store records.
func (service *Service) listIndexed(ctx context.Context, params ListParams) ([]map[string]any, int, error) {
	queryString := search.BuildQuery(params.Query, filterClauses(params.Filter))

	result, err := service.index.Query(ctx, queryString, params.Page, params.PageSize, params.Sort, nil)
	if err != nil {
		return nil, 0, err
	}

	dicts := make([]map[string]any, 0, len(result.Documents))
	for _, doc := range result.Documents {
		address, err := service.repo.GetByKey(ctx, doc.DocID)
		if apperr.IsNotFound(err) {
			// The index lags the primary store; skip ghosts.
			continue
		}
		if err != nil {
			return nil, 0, err
		}

		if address.DeletedAt != nil && !params.Filter.AlsoDeleted {
			continue
		}
		dicts = append(dicts, address.ToDict(DictOptions{}))
	}

	return dicts, result.TotalMatches, nil
}

// filterClauses translates primary-store filter arguments into index query
// clauses.
func filterClauses(filter Filter) []search.Clause {
	var clauses []search.Clause

	for field, value := range filter.Equals {
		clauses = append(clauses, search.Clause{Field: field, Value: value})
	}
	for field, value := range filter.Char1 {
		clauses = append(clauses, search.Clause{Field: field + "_char1", Value: value})
	}
	for _, value := range filter.Categories {
		clauses = append(clauses, search.Clause{Field: "category", Value: value})
	}
	for _, value := range filter.Tags {
		clauses = append(clauses, search.Clause{Field: "tag", Value: value})
	}
	for _, value := range filter.Businesses {
		clauses = append(clauses, search.Clause{Field: "business", Value: value})
	}
	if filter.Kind != "" {
		clauses = append(clauses, search.Clause{Field: "kind", Value: filter.Kind})
	}
	if filter.Owner != "" {
		clauses = append(clauses, search.Clause{Field: "owner", Value: filter.Owner})
	}

	return clauses
}

// Iterate walks the corpus with a stable forward-only cursor.
func (service *Service) Iterate(ctx context.Context, cursor string, limit int, filter Filter) (IterateResult, error) {
	if limit <= 0 || limit > pagination.MaxLimit {
		limit = pagination.DefaultLimit
	}

	position, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return IterateResult{}, apperr.InvalidQuery("Invalid iteration cursor")
	}

	addresses, err := service.repo.Iterate(ctx, position, limit, filter)
	if err != nil {
		return IterateResult{}, err
	}

	total, err := service.repo.Count(ctx)
	if err != nil {
		return IterateResult{}, err
	}

	result := IterateResult{TotalCount: total}
	for _, address := range addresses {
		result.Records = append(result.Records, address.ToDict(DictOptions{}))
	}

	if len(addresses) == limit {
		result.NextCursor = pagination.EncodeCursor(addresses[len(addresses)-1].Key)
	}

	return result, nil
}

// defaultReturnedFields limits search results to the naming fields unless
// the caller asks for more.
var defaultReturnedFields = []string{"organization", "first_name", "last_name"}

// Search runs a raw query against the index and returns matching
// documents, not full records.
func (service *Service) Search(ctx context.Context, queryString string, page, pageSize int, returnedFields []string) (search.QueryResult, error) {
	if pageSize <= 0 {
		pageSize = pagination.DefaultLimit
	}
	if page <= 0 {
		page = 1
	}
	if len(returnedFields) == 0 {
		returnedFields = defaultReturnedFields
	}

	return service.index.Query(ctx, queryString, page, pageSize, nil, returnedFields)
}

// Delete removes a record: softly by default (archive plus deletion
// marker, remains fetchable by key), irreversibly when forced (row,
// history, and index document all purged).
func (service *Service) Delete(ctx context.Context, user, key string, force bool) error {
	prior, err := service.repo.GetByKey(ctx, key)
	if err != nil {
		return err
	}

	if err := service.checkDeletable(user, prior); err != nil {
		return err
	}

	wasLive := prior.DeletedAt == nil

	if force {
		if err := service.repo.DeleteHard(ctx, key); err != nil {
			return err
		}
		if err := service.history.PurgeHistory(ctx, key); err != nil {
			return err
		}
	} else {
		if prior.DeletedAt != nil {
			return nil
		}

		// Archive the intact pre-delete state first.
		if err := service.history.ArchiveDeleted(ctx, user, prior); err != nil {
			return err
		}

		now := time.Now().UTC()
		next := prior.Clone()
		next.DeletedAt = &now
		next.EditedAt = now
		next.EditedBy = user

		if err := service.repo.Update(ctx, next); err != nil {
			return err
		}
	}

	if wasLive {
		service.bumpQuantity(ctx, -1)
	}
	service.scheduleIndexDelete(key)

	service.logger.InfoContext(ctx, "address_deleted",
		slog.String("key", key),
		slog.String("user", user),
		slog.Bool("force", force),
	)

	return nil
}

// History returns all snapshots of a record, newest first.
func (service *Service) History(ctx context.Context, key string) ([]map[string]any, error) {
	snapshots, err := service.history.ListSnapshots(ctx, key)
	if err != nil {
		return nil, err
	}

	dicts := make([]map[string]any, 0, len(snapshots))
	for _, snapshot := range snapshots {
		dicts = append(dicts, map[string]any{
			"created_at": format.DateTimeISO(snapshot.CreatedAt),
			"created_by": snapshot.CreatedBy,
			"record":     snapshot.Record.ToDict(DictOptions{}),
		})
	}

	return dicts, nil
}

// GetDeleted returns the archived snapshot of a soft-deleted record, or
// nil when no archive entry exists.
func (service *Service) GetDeleted(ctx context.Context, key string) (map[string]any, error) {
	archived, err := service.history.GetDeleted(ctx, key)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return archived.ToDict(DictOptions{}), nil
}

// Categories returns the cached category vocabulary, recomputing from the
// primary store on a miss.
func (service *Service) Categories(ctx context.Context) ([]string, error) {
	return service.vocabulary(ctx, namedvalue.CategoryItems, "category")
}

// Tags returns the cached tag vocabulary.
func (service *Service) Tags(ctx context.Context) ([]string, error) {
	return service.vocabulary(ctx, namedvalue.TagItems, "tag")
}

// BusinessItems returns the cached business vocabulary.
func (service *Service) BusinessItems(ctx context.Context) ([]string, error) {
	return service.vocabulary(ctx, namedvalue.BusinessItems, "business")
}

// vocabulary serves a cached vocabulary with recompute-on-miss fallback.
// The recomputed value is what gets returned; the cache is repopulated as
// a side effect, never required.
func (service *Service) vocabulary(ctx context.Context, cacheName, field string) ([]string, error) {
	members, found, err := service.cache.Members(ctx, cacheName)
	if err != nil {
		service.logger.WarnContext(ctx, "vocabulary_cache_read_failed",
			slog.String("name", cacheName),
			slog.Any("error", err),
		)
	}
	if found {
		sort.Strings(members)
		return members, nil
	}

	values, err := service.repo.DistinctValues(ctx, field)
	if err != nil {
		return nil, err
	}

	if err := service.cache.ReplaceMembers(ctx, cacheName, values...); err != nil {
		service.logger.WarnContext(ctx, "vocabulary_cache_write_failed",
			slog.String("name", cacheName),
			slog.Any("error", err),
		)
	}

	if values == nil {
		values = []string{}
	}
	return values, nil
}

// RebuildVocabularies recomputes all three vocabulary caches from the
// primary store. Maintenance trigger, never automatic.
func (service *Service) RebuildVocabularies(ctx context.Context) error {
	vocabularies := map[string]string{
		namedvalue.CategoryItems: "category",
		namedvalue.TagItems:      "tag",
		namedvalue.BusinessItems: "business",
	}

	for cacheName, field := range vocabularies {
		values, err := service.repo.DistinctValues(ctx, field)
		if err != nil {
			return err
		}
		if err := service.cache.ReplaceMembers(ctx, cacheName, values...); err != nil {
			return err
		}
	}

	return nil
}

// RebuildQuantity recounts the live records into the quantity cache.
func (service *Service) RebuildQuantity(ctx context.Context) error {
	total, err := service.repo.Count(ctx)
	if err != nil {
		return err
	}
	return service.cache.SetInt(ctx, namedvalue.AddressQuantity, int64(total))
}

// Quantity returns the cached live record count, recounting on a miss.
func (service *Service) Quantity(ctx context.Context) (int, error) {
	cached, found, err := service.cache.GetInt(ctx, namedvalue.AddressQuantity)
	if err != nil {
		service.logger.WarnContext(ctx, "quantity_cache_read_failed", slog.Any("error", err))
	}
	if found {
		return int(cached), nil
	}

	total, err := service.repo.Count(ctx)
	if err != nil {
		return 0, err
	}

	if err := service.cache.SetInt(ctx, namedvalue.AddressQuantity, int64(total)); err != nil {
		service.logger.WarnContext(ctx, "quantity_cache_write_failed", slog.Any("error", err))
	}

	return total, nil
}

// StartReindex schedules a full index rebuild: wipe all documents, then
// replay every live record through the index in checkpointed batches.
// Idempotent and safe to run concurrently with live traffic (last write
// wins per document id).
func (service *Service) StartReindex(ctx context.Context) {
	service.logger.InfoContext(ctx, "reindex_requested")
	service.runner.Submit("reindex_all", service.runReindex)
}

// runReindex is the resumable reindex job. The iteration position is
// checkpointed in the named-value cache at every batch boundary, so a
// cancelled or crashed run resumes where it stopped instead of wiping the
// index again.
func (service *Service) runReindex(ctx context.Context) error {
	position, resuming, err := service.cache.Get(ctx, namedvalue.ReindexCursor)
	if err != nil {
		return err
	}

	if !resuming {
		removed, err := service.index.DeleteAll(ctx)
		if err != nil {
			return err
		}
		service.logger.InfoContext(ctx, "reindex_started", slog.Int("removed_documents", removed))
	} else {
		service.logger.InfoContext(ctx, "reindex_resumed", slog.String("position", position))
	}

	indexed := 0
	for {
		if err := ctx.Err(); err != nil {
			// Leave the checkpoint behind for the next run.
			return err
		}

		batch, err := service.repo.Iterate(ctx, position, constants.ReindexBatchSize, Filter{})
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(constants.ReindexWorkers)

		for _, address := range batch {
			doc := search.BuildDocument(address.SearchSource(), service.fieldExceptions)
			group.Go(func() error {
				return service.index.Put(groupCtx, doc)
			})
		}

		if err := group.Wait(); err != nil {
			return err
		}

		indexed += len(batch)
		position = batch[len(batch)-1].Key

		if err := service.cache.Set(ctx, namedvalue.ReindexCursor, position); err != nil {
			return err
		}

		if len(batch) < constants.ReindexBatchSize {
			break
		}
	}

	if resuming {
		if err := service.sweepStaleDocuments(ctx); err != nil {
			return err
		}
	}

	if err := service.cache.Delete(ctx, namedvalue.ReindexCursor); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "reindex_finished", slog.Int("indexed", indexed))
	return nil
}

// sweepStaleDocuments walks the index and removes documents whose record
// is gone or soft-deleted. A resumed reindex skips the initial wipe, so
// records deleted while the index lagged behind would otherwise keep
// their documents.
func (service *Service) sweepStaleDocuments(ctx context.Context) error {
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := service.index.Iterate(ctx, cursor, constants.ReindexBatchSize)
		if err != nil {
			return err
		}

		for _, doc := range page.Documents {
			address, err := service.repo.GetByKey(ctx, doc.DocID)
			if err != nil && !apperr.IsNotFound(err) {
				return err
			}
			if err == nil && address.DeletedAt == nil {
				continue
			}

			if err := service.index.Delete(ctx, doc.DocID); err != nil {
				return err
			}
			service.logger.InfoContext(ctx, "stale_document_removed", slog.String("doc_id", doc.DocID))
		}

		if page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}

// checkEditable resolves the edit permission by ownership.
func (service *Service) checkEditable(user string, address *Address) error {
	if address.Owner == user {
		return service.auth.Check(user, authz.OwnAddressEdit)
	}
	return service.auth.Check(user, authz.PublicAddressEdit)
}

// checkDeletable resolves the delete permission by ownership.
func (service *Service) checkDeletable(user string, address *Address) error {
	if address.Owner == user {
		return service.auth.Check(user, authz.OwnAddressDelete)
	}
	return service.auth.Check(user, authz.PublicAddressDelete)
}

// bumpQuantity adjusts the cached record count. Cache failures are logged,
// never propagated.
func (service *Service) bumpQuantity(ctx context.Context, delta int) {
	var err error
	if delta > 0 {
		_, err = service.cache.Increment(ctx, namedvalue.AddressQuantity)
	} else {
		_, err = service.cache.Decrement(ctx, namedvalue.AddressQuantity)
	}

	if err != nil {
		service.logger.WarnContext(ctx, "quantity_cache_update_failed", slog.Any("error", err))
	}
}

// extendVocabularies feeds new set values into the vocabulary caches, but
// only when a cache entry already exists: seeding a fresh set with one
// record's values would make it masquerade as the full vocabulary.
func (service *Service) extendVocabularies(ctx context.Context, address *Address) {
	vocabularies := []struct {
		name   string
		values []string
	}{
		{namedvalue.CategoryItems, address.CategoryItems},
		{namedvalue.TagItems, address.TagItems},
		{namedvalue.BusinessItems, address.BusinessItems},
	}

	for _, vocabulary := range vocabularies {
		if len(vocabulary.values) == 0 {
			continue
		}

		_, found, err := service.cache.Members(ctx, vocabulary.name)
		if err != nil || !found {
			continue
		}

		if err := service.cache.AddMembers(ctx, vocabulary.name, vocabulary.values...); err != nil {
			service.logger.WarnContext(ctx, "vocabulary_cache_update_failed",
				slog.String("name", vocabulary.name),
				slog.Any("error", err),
			)
		}
	}
}

// scheduleIndexPut rebuilds the record's index document off the request
// path.
func (service *Service) scheduleIndexPut(address *Address) {
	doc := search.BuildDocument(address.SearchSource(), service.fieldExceptions)

	service.runner.Submit(fmt.Sprintf("index_put_%s", address.Key), func(ctx context.Context) error {
		return service.index.Put(ctx, doc)
	})
}

// scheduleIndexDelete removes the record's index document off the request
// path.
func (service *Service) scheduleIndexDelete(key string) {
	service.runner.Submit(fmt.Sprintf("index_delete_%s", key), func(ctx context.Context) error {
		return service.index.Delete(ctx, key)
	})
}
