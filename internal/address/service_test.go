// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package address_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karteiapp/kartei/internal/address"
	"github.com/karteiapp/kartei/internal/jobs"
	"github.com/karteiapp/kartei/internal/platform/apperr"
	"github.com/karteiapp/kartei/internal/platform/authz"
	"github.com/karteiapp/kartei/internal/search"
	"github.com/karteiapp/kartei/pkg/opt"
	"github.com/karteiapp/kartei/pkg/pagination"
)

// fakeRepo is an in-memory Repository keyed by storage key.
type fakeRepo struct {
	mu        sync.Mutex
	records   map[string]*address.Address
	insertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[string]*address.Address{}}
}

func (repo *fakeRepo) Insert(_ context.Context, addr *address.Address) error {
	if repo.insertErr != nil {
		return repo.insertErr
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.records[addr.Key] = addr.Clone()
	return nil
}

func (repo *fakeRepo) Update(_ context.Context, addr *address.Address) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, found := repo.records[addr.Key]; !found {
		return apperr.NotFound("address")
	}
	repo.records[addr.Key] = addr.Clone()
	return nil
}

func (repo *fakeRepo) GetByKey(_ context.Context, key string) (*address.Address, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	record, found := repo.records[key]
	if !found {
		return nil, apperr.NotFound("address")
	}
	return record.Clone(), nil
}

func (repo *fakeRepo) GetByUID(_ context.Context, uid string) (*address.Address, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, record := range repo.records {
		if record.UID == uid {
			return record.Clone(), nil
		}
	}
	return nil, apperr.NotFound("address")
}

func (repo *fakeRepo) sortedKeys() []string {
	keys := make([]string, 0, len(repo.records))
	for key := range repo.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (repo *fakeRepo) List(_ context.Context, filter address.Filter, _ []string, limit, offset int) ([]*address.Address, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var matched []*address.Address
	for _, key := range repo.sortedKeys() {
		record := repo.records[key]
		if record.DeletedAt != nil && !filter.AlsoDeleted {
			continue
		}
		matched = append(matched, record.Clone())
	}

	total := len(matched)
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (repo *fakeRepo) Iterate(_ context.Context, position string, limit int, filter address.Filter) ([]*address.Address, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var page []*address.Address
	for _, key := range repo.sortedKeys() {
		if key <= position {
			continue
		}
		record := repo.records[key]
		if record.DeletedAt != nil && !filter.AlsoDeleted {
			continue
		}
		page = append(page, record.Clone())
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (repo *fakeRepo) DistinctValues(_ context.Context, field string) ([]string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	seen := map[string]bool{}
	for _, record := range repo.records {
		if record.DeletedAt != nil {
			continue
		}
		var values []string
		switch field {
		case "category":
			values = record.CategoryItems
		case "tag":
			values = record.TagItems
		case "business":
			values = record.BusinessItems
		}
		for _, value := range values {
			seen[value] = true
		}
	}

	distinct := make([]string, 0, len(seen))
	for value := range seen {
		distinct = append(distinct, value)
	}
	sort.Strings(distinct)
	return distinct, nil
}

func (repo *fakeRepo) Count(_ context.Context) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	count := 0
	for _, record := range repo.records {
		if record.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

func (repo *fakeRepo) DeleteHard(_ context.Context, key string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, found := repo.records[key]; !found {
		return apperr.NotFound("address")
	}
	delete(repo.records, key)
	return nil
}

// fakeHistory records snapshot and archive calls.
type fakeHistory struct {
	mu        sync.Mutex
	snapshots []*address.Address
	archived  map[string]*address.Address
	purged    []string
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{archived: map[string]*address.Address{}}
}

func (history *fakeHistory) Snapshot(_ context.Context, _ string, addr *address.Address) error {
	history.mu.Lock()
	defer history.mu.Unlock()
	history.snapshots = append(history.snapshots, addr.Clone())
	return nil
}

func (history *fakeHistory) ListSnapshots(_ context.Context, key string) ([]address.Snapshot, error) {
	history.mu.Lock()
	defer history.mu.Unlock()
	var snapshots []address.Snapshot
	for _, snapshot := range history.snapshots {
		if snapshot.Key == key {
			snapshots = append(snapshots, address.Snapshot{AddressKey: key, Record: snapshot.Clone()})
		}
	}
	return snapshots, nil
}

func (history *fakeHistory) ArchiveDeleted(_ context.Context, _ string, addr *address.Address) error {
	history.mu.Lock()
	defer history.mu.Unlock()
	history.archived[addr.Key] = addr.Clone()
	return nil
}

func (history *fakeHistory) GetDeleted(_ context.Context, key string) (*address.Address, error) {
	history.mu.Lock()
	defer history.mu.Unlock()
	archived, found := history.archived[key]
	if !found {
		return nil, apperr.NotFound("deleted address")
	}
	return archived.Clone(), nil
}

func (history *fakeHistory) PurgeHistory(_ context.Context, key string) error {
	history.mu.Lock()
	defer history.mu.Unlock()
	history.purged = append(history.purged, key)
	delete(history.archived, key)
	return nil
}

// fakeIndex is an in-memory search.Index matching free terms against
// token values and clauses against name/value pairs.
type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]search.Document
	putErr  error
	deleted []string
	wiped   int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]search.Document{}}
}

func (index *fakeIndex) Put(_ context.Context, doc search.Document) error {
	if index.putErr != nil {
		return index.putErr
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	index.docs[doc.DocID] = doc
	return nil
}

func (index *fakeIndex) Delete(_ context.Context, docID string) error {
	index.mu.Lock()
	defer index.mu.Unlock()
	delete(index.docs, docID)
	index.deleted = append(index.deleted, docID)
	return nil
}

func (index *fakeIndex) DeleteAll(_ context.Context) (int, error) {
	index.mu.Lock()
	defer index.mu.Unlock()
	removed := len(index.docs)
	index.docs = map[string]search.Document{}
	index.wiped++
	return removed, nil
}

func (index *fakeIndex) Query(ctx context.Context, queryString string, page, pageSize int, _ []string, _ []string) (search.QueryResult, error) {
	parsed, err := search.ParseQuery(queryString)
	if err != nil {
		return search.QueryResult{}, err
	}

	index.mu.Lock()
	defer index.mu.Unlock()

	docIDs := make([]string, 0, len(index.docs))
	for docID := range index.docs {
		docIDs = append(docIDs, docID)
	}
	sort.Strings(docIDs)

	var matched []search.Document
	for _, docID := range docIDs {
		if matchesParsed(index.docs[docID], parsed) {
			matched = append(matched, index.docs[docID])
		}
	}

	total := len(matched)
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return search.QueryResult{TotalMatches: total}, nil
	}
	matched = matched[start:]
	if len(matched) > pageSize {
		matched = matched[:pageSize]
	}
	return search.QueryResult{Documents: matched, TotalMatches: total}, nil
}

func (index *fakeIndex) Iterate(_ context.Context, cursor string, limit int) (search.IteratePage, error) {
	position, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return search.IteratePage{}, err
	}

	index.mu.Lock()
	defer index.mu.Unlock()

	docIDs := make([]string, 0, len(index.docs))
	for docID := range index.docs {
		if docID > position {
			docIDs = append(docIDs, docID)
		}
	}
	sort.Strings(docIDs)

	page := search.IteratePage{}
	for _, docID := range docIDs {
		if len(page.Documents) == limit {
			break
		}
		page.Documents = append(page.Documents, index.docs[docID])
	}
	if len(page.Documents) == limit {
		page.NextCursor = pagination.EncodeCursor(page.Documents[limit-1].DocID)
	}
	return page, nil
}

func matchesParsed(doc search.Document, parsed search.ParsedQuery) bool {
	for _, clause := range parsed.Clauses {
		found := false
		for _, field := range doc.Fields {
			if field.Name == clause.Field && field.Value == clause.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, term := range parsed.Terms {
		found := false
		for _, field := range doc.Fields {
			if field.Type == search.TypeText && strings.Contains(field.Value, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// fakeCache is an in-memory named-value store.
type fakeCache struct {
	mu       sync.Mutex
	values   map[string]string
	counters map[string]int64
	sets     map[string][]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		values:   map[string]string{},
		counters: map[string]int64{},
		sets:     map[string][]string{},
	}
}

func (cache *fakeCache) Get(_ context.Context, name string) (string, bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	value, found := cache.values[name]
	return value, found, nil
}

func (cache *fakeCache) Set(_ context.Context, name, value string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.values[name] = value
	return nil
}

func (cache *fakeCache) GetInt(_ context.Context, name string) (int64, bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	value, found := cache.counters[name]
	return value, found, nil
}

func (cache *fakeCache) SetInt(_ context.Context, name string, value int64) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.counters[name] = value
	return nil
}

func (cache *fakeCache) Increment(_ context.Context, name string) (int64, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.counters[name]++
	return cache.counters[name], nil
}

func (cache *fakeCache) Decrement(_ context.Context, name string) (int64, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.counters[name]--
	return cache.counters[name], nil
}

func (cache *fakeCache) AddMembers(_ context.Context, name string, members ...string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	existing := map[string]bool{}
	for _, member := range cache.sets[name] {
		existing[member] = true
	}
	for _, member := range members {
		if !existing[member] {
			cache.sets[name] = append(cache.sets[name], member)
		}
	}
	return nil
}

func (cache *fakeCache) Members(_ context.Context, name string) ([]string, bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	members, found := cache.sets[name]
	if !found || len(members) == 0 {
		return nil, false, nil
	}
	return append([]string(nil), members...), true, nil
}

func (cache *fakeCache) ReplaceMembers(_ context.Context, name string, members ...string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.sets[name] = append([]string(nil), members...)
	return nil
}

func (cache *fakeCache) Delete(_ context.Context, name string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	delete(cache.values, name)
	delete(cache.counters, name)
	delete(cache.sets, name)
	return nil
}

// fixture bundles a service with all of its fakes.
type fixture struct {
	service *address.Service
	repo    *fakeRepo
	history *fakeHistory
	index   *fakeIndex
	cache   *fakeCache
	runner  *jobs.Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	perms := authz.New(map[string][]string{
		authz.AddressCreate:       {authz.AllUsersMarker},
		authz.OwnAddressEdit:      {authz.AllUsersMarker},
		authz.OwnAddressDelete:    {authz.AllUsersMarker},
		authz.PublicAddressEdit:   {"editor"},
		authz.PublicAddressDelete: {"editor"},
	})

	f := &fixture{
		repo:    newFakeRepo(),
		history: newFakeHistory(),
		index:   newFakeIndex(),
		cache:   newFakeCache(),
		runner:  jobs.NewRunner(context.Background(), logger),
	}
	f.service = address.NewService(f.repo, f.history, f.index, f.cache, perms, f.runner, logger, nil)
	return f
}

func (f *fixture) create(t *testing.T, user string, input address.Input) string {
	t.Helper()
	dict, err := f.service.Create(context.Background(), user, input)
	require.NoError(t, err)
	return dict["key"].(string)
}

/*
TestService_Create covers the write path: persistence, counter, and the
asynchronous index document.
*/
func TestService_Create(t *testing.T) {
	f := newFixture(t)

	key := f.create(t, "alice", address.Input{
		FirstName: opt.Of("Anna"),
		LastName:  opt.Of("Meier"),
	})
	f.runner.Wait()

	stored, err := f.repo.GetByKey(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Owner)

	quantity, found, err := f.cache.GetInt(context.Background(), "address_quantity")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), quantity)

	doc, indexed := f.index.docs[key]
	require.True(t, indexed)
	assert.Equal(t, key, doc.DocID)
}

/*
TestService_Create_PermissionDenied rejects users without the create
permission before anything is written.
*/
func TestService_Create_PermissionDenied(t *testing.T) {
	f := newFixture(t)
	f.service = address.NewService(f.repo, f.history, f.index, f.cache,
		authz.New(map[string][]string{authz.AddressCreate: {"writer"}}),
		f.runner, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	_, err := f.service.Create(context.Background(), "alice", address.Input{})
	require.Error(t, err)
	assert.Equal(t, "PERMISSION_DENIED", apperr.As(err).Code)
	assert.Empty(t, f.repo.records)
}

/*
TestService_Create_IndexFailureDoesNotSurface keeps the primary write
authoritative when the index write fails.
*/
func TestService_Create_IndexFailureDoesNotSurface(t *testing.T) {
	f := newFixture(t)
	f.index.putErr = errors.New("index down")

	key := f.create(t, "alice", address.Input{FirstName: opt.Of("Anna")})
	f.runner.Wait()

	_, err := f.repo.GetByKey(context.Background(), key)
	require.NoError(t, err)
	assert.Empty(t, f.index.docs)
}

/*
TestService_Create_Concurrent drives parallel creates through the shared
counter: after N concurrent creates the cached quantity is exactly N.
*/
func TestService_Create_Concurrent(t *testing.T) {
	f := newFixture(t)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Create(context.Background(), "alice", address.Input{
				LastName: opt.Of("Meier"),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	f.runner.Wait()

	quantity, found, err := f.cache.GetInt(context.Background(), "address_quantity")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(workers), quantity)

	total, err := f.service.Quantity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, workers, total)

	assert.Len(t, f.repo.records, workers)
	assert.Len(t, f.index.docs, workers)
}

/*
TestService_Save checks ownership-based permissions and that the
pre-image lands in history before the update.
*/
func TestService_Save(t *testing.T) {
	f := newFixture(t)
	key := f.create(t, "alice", address.Input{FirstName: opt.Of("Anna")})

	t.Run("owner_may_edit", func(t *testing.T) {
		dict, err := f.service.Save(context.Background(), "alice", key, address.Input{
			FirstName: opt.Of("Annika"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Annika", dict["first_name"])

		require.Len(t, f.history.snapshots, 1)
		assert.Equal(t, "Anna", *f.history.snapshots[0].FirstName)
	})

	t.Run("foreign_record_needs_public_permission", func(t *testing.T) {
		_, err := f.service.Save(context.Background(), "bob", key, address.Input{
			FirstName: opt.Of("Bert"),
		})
		require.Error(t, err)
		assert.Equal(t, "PERMISSION_DENIED", apperr.As(err).Code)

		_, err = f.service.Save(context.Background(), "editor", key, address.Input{
			FirstName: opt.Of("Bert"),
		})
		require.NoError(t, err)
	})

	t.Run("unknown_key", func(t *testing.T) {
		_, err := f.service.Save(context.Background(), "alice", "missing", address.Input{})
		require.Error(t, err)
		assert.True(t, apperr.IsNotFound(err))
	})
}

/*
TestService_Get treats absence as a nil result, not an error.
*/
func TestService_Get(t *testing.T) {
	f := newFixture(t)
	key := f.create(t, "alice", address.Input{FirstName: opt.Of("Anna")})

	dict, err := f.service.Get(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, dict)
	assert.Equal(t, "Anna", dict["first_name"])

	dict, err = f.service.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, dict)
}

/*
TestService_Delete_Soft archives the record, marks it deleted, and keeps
it fetchable by key.
*/
func TestService_Delete_Soft(t *testing.T) {
	f := newFixture(t)
	key := f.create(t, "alice", address.Input{FirstName: opt.Of("Anna")})
	f.runner.Wait()

	require.NoError(t, f.service.Delete(context.Background(), "alice", key, false))
	f.runner.Wait()

	stored, err := f.repo.GetByKey(context.Background(), key)
	require.NoError(t, err)
	assert.NotNil(t, stored.DeletedAt)

	_, archived := f.history.archived[key]
	assert.True(t, archived)

	quantity, _, _ := f.cache.GetInt(context.Background(), "address_quantity")
	assert.Equal(t, int64(0), quantity)
	assert.NotContains(t, f.index.docs, key)

	// Deleting again is a no-op without another decrement.
	require.NoError(t, f.service.Delete(context.Background(), "alice", key, false))
	f.runner.Wait()
	quantity, _, _ = f.cache.GetInt(context.Background(), "address_quantity")
	assert.Equal(t, int64(0), quantity)
}

/*
TestService_Delete_Force purges the row, its history, and the archive
entry irreversibly.
*/
func TestService_Delete_Force(t *testing.T) {
	f := newFixture(t)
	key := f.create(t, "alice", address.Input{FirstName: opt.Of("Anna")})
	_, err := f.service.Save(context.Background(), "alice", key, address.Input{FirstName: opt.Of("Annika")})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), "alice", key, true))
	f.runner.Wait()

	_, err = f.repo.GetByKey(context.Background(), key)
	assert.True(t, apperr.IsNotFound(err))
	assert.Contains(t, f.history.purged, key)
	assert.NotContains(t, f.index.docs, key)
}

/*
TestService_GetDeleted returns the archived pre-delete state.
*/
func TestService_GetDeleted(t *testing.T) {
	f := newFixture(t)
	key := f.create(t, "alice", address.Input{FirstName: opt.Of("Anna")})
	require.NoError(t, f.service.Delete(context.Background(), "alice", key, false))

	dict, err := f.service.GetDeleted(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, dict)
	assert.Equal(t, "Anna", dict["first_name"])
	assert.NotContains(t, dict, "deleted_at")

	dict, err = f.service.GetDeleted(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, dict)
}

/*
TestService_List covers both filter routes and their shared soft-delete
exclusion.
*/
func TestService_List(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alice", address.Input{LastName: opt.Of("Meier"), City: opt.Of("Wien")})
	f.create(t, "alice", address.Input{LastName: opt.Of("Huber"), City: opt.Of("Graz")})
	deletedKey := f.create(t, "alice", address.Input{LastName: opt.Of("Gone")})
	require.NoError(t, f.service.Delete(context.Background(), "alice", deletedKey, false))
	f.runner.Wait()

	t.Run("primary_route", func(t *testing.T) {
		records, total, err := f.service.List(context.Background(), address.ListParams{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, records, 2)
	})

	t.Run("indexed_route", func(t *testing.T) {
		records, total, err := f.service.List(context.Background(), address.ListParams{Query: "meier"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, records, 1)
		assert.Equal(t, "Meier", records[0]["last_name"])
	})

	t.Run("deleted_excluded_from_index_route", func(t *testing.T) {
		records, _, err := f.service.List(context.Background(), address.ListParams{Query: "gone"})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

/*
TestService_Iterate walks the full corpus with a cursor.
*/
func TestService_Iterate(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.create(t, "alice", address.Input{FirstName: opt.Of("Person")})
	}

	var seen int
	cursor := ""
	for {
		page, err := f.service.Iterate(context.Background(), cursor, 2, address.Filter{})
		require.NoError(t, err)
		assert.Equal(t, 5, page.TotalCount)
		seen += len(page.Records)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, 5, seen)
}

/*
TestService_Vocabularies covers recompute-on-miss, cache hits, and the
add-only-when-cached update rule.
*/
func TestService_Vocabularies(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alice", address.Input{CategoryItems: opt.Of([]string{"friends", "work"})})

	// Miss: recomputed from the primary store, cache repopulated.
	categories, err := f.service.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"friends", "work"}, categories)

	members, found, _ := f.cache.Members(context.Background(), "category_items")
	require.True(t, found)
	assert.ElementsMatch(t, []string{"friends", "work"}, members)

	// A create now extends the existing cached set.
	f.create(t, "alice", address.Input{CategoryItems: opt.Of([]string{"sports"})})
	categories, err = f.service.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"friends", "sports", "work"}, categories)

	// An empty tag cache is never seeded by a create.
	f.create(t, "alice", address.Input{TagItems: opt.Of([]string{"vip"})})
	_, found, _ = f.cache.Members(context.Background(), "tag_items")
	assert.False(t, found)

	tags, err := f.service.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, tags)
}

/*
TestService_Quantity recounts on a cache miss and repopulates.
*/
func TestService_Quantity(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alice", address.Input{})
	f.create(t, "alice", address.Input{})

	require.NoError(t, f.cache.Delete(context.Background(), "address_quantity"))

	quantity, err := f.service.Quantity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, quantity)

	cached, found, _ := f.cache.GetInt(context.Background(), "address_quantity")
	require.True(t, found)
	assert.Equal(t, int64(2), cached)
}

/*
TestService_Reindex rebuilds the index from scratch, removing stale
documents and clearing the checkpoint.
*/
func TestService_Reindex(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.create(t, "alice", address.Input{LastName: opt.Of("Meier")})
	}
	f.runner.Wait()

	// A stale document no record backs anymore.
	require.NoError(t, f.index.Put(context.Background(), search.Document{DocID: "stale"}))

	f.service.StartReindex(context.Background())
	f.runner.Wait()

	assert.Len(t, f.index.docs, 3)
	assert.NotContains(t, f.index.docs, "stale")
	assert.Equal(t, 1, f.index.wiped)

	_, found, _ := f.cache.Get(context.Background(), "reindex_cursor")
	assert.False(t, found)
}

/*
TestService_Reindex_ResumeSweepsStaleDocuments resumes from a checkpoint
without wiping and instead walks the index to drop documents whose record
is gone or soft-deleted.
*/
func TestService_Reindex_ResumeSweepsStaleDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, "alice", address.Input{LastName: opt.Of("Meier")})
	f.create(t, "alice", address.Input{LastName: opt.Of("Huber")})
	deletedKey := f.create(t, "alice", address.Input{LastName: opt.Of("Weg")})
	f.runner.Wait()

	require.NoError(t, f.service.Delete(ctx, "alice", deletedKey, false))
	f.runner.Wait()

	// Simulate index writes that lagged behind: a document for the
	// soft-deleted record and one no record ever backed.
	require.NoError(t, f.index.Put(ctx, search.Document{DocID: deletedKey}))
	require.NoError(t, f.index.Put(ctx, search.Document{DocID: "zz-orphan"}))

	require.NoError(t, f.cache.Set(ctx, "reindex_cursor", ""))

	f.service.StartReindex(ctx)
	f.runner.Wait()

	// Resumed runs never wipe.
	assert.Equal(t, 0, f.index.wiped)

	assert.Len(t, f.index.docs, 2)
	assert.NotContains(t, f.index.docs, deletedKey)
	assert.NotContains(t, f.index.docs, "zz-orphan")

	_, found, _ := f.cache.Get(ctx, "reindex_cursor")
	assert.False(t, found)
}

/*
TestService_Search returns index documents, not full records.
*/
func TestService_Search(t *testing.T) {
	f := newFixture(t)
	f.create(t, "alice", address.Input{LastName: opt.Of("Meier"), City: opt.Of("Wien")})
	f.runner.Wait()

	result, err := f.service.Search(context.Background(), "city:wien", 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalMatches)
	require.Len(t, result.Documents, 1)
}

/*
TestService_History lists the pre-image snapshots of a record.
*/
func TestService_History(t *testing.T) {
	f := newFixture(t)
	key := f.create(t, "alice", address.Input{FirstName: opt.Of("Anna")})

	_, err := f.service.Save(context.Background(), "alice", key, address.Input{FirstName: opt.Of("Annika")})
	require.NoError(t, err)

	entries, err := f.service.History(context.Background(), key)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	record := entries[0]["record"].(map[string]any)
	assert.Equal(t, "Anna", record["first_name"])
}
