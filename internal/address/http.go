// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package address

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/karteiapp/kartei/internal/platform/apperr"
	requestutil "github.com/karteiapp/kartei/internal/platform/request"
	"github.com/karteiapp/kartei/internal/platform/respond"
	"github.com/karteiapp/kartei/pkg/format"
	"github.com/karteiapp/kartei/pkg/pagination"
	"github.com/karteiapp/kartei/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer for address records. It translates
// web requests into domain service calls.
type Handler struct {
	service *Service
}

// NewHandler constructs a new address [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the record CRUD, listing,
// iteration, and history endpoints. Mounted at /addresses.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.createAddress)
	router.Get("/", handler.listAddresses)
	router.Get("/iterate", handler.iterateAddresses)
	router.Get("/uid/{uid}", handler.getAddressByUID)
	router.Get("/{key}", handler.getAddress)
	router.Patch("/{key}", handler.saveAddress)
	router.Delete("/{key}", handler.deleteAddress)
	router.Get("/{key}/history", handler.listHistory)

	return router
}

// DeletedRoutes returns the archive lookup endpoints. Mounted at
// /deleted-addresses.
func (handler *Handler) DeletedRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{key}", handler.getDeletedAddress)
	return router
}

// SearchRoutes returns the raw index query endpoint. Mounted at /search.
func (handler *Handler) SearchRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.searchAddresses)
	return router
}

// VocabularyRoutes returns the cached vocabulary endpoints. Mounted at
// the API root.
func (handler *Handler) VocabularyRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/categories", handler.listCategories)
	router.Get("/tags", handler.listTags)
	router.Get("/business-items", handler.listBusinessItems)
	return router
}

// MaintenanceRoutes returns the operational trigger endpoints. Mounted at
// /maintenance.
func (handler *Handler) MaintenanceRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/reindex", handler.startReindex)
	router.Post("/rebuild-caches", handler.rebuildCaches)
	return router
}

// # Record Endpoints

/*
POST /api/v1/addresses.

Description: Creates a new address record owned by the calling user.
Sub-items receive generated uids; derived projections are computed at
write time.

Request (Body):
  - Input: JSON object (kind, scalar fields, set fields, sub-item collections)

Response:
  - 201: Record dictionary
  - 400: VALIDATION_ERROR: Invalid input data
  - 403: PERMISSION_DENIED: Missing address.create permission
*/
func (handler *Handler) createAddress(writer http.ResponseWriter, request *http.Request) {
	username, err := requestutil.RequiredUsername(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Create(request.Context(), username, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

/*
GET /api/v1/addresses.

Description: Retrieves a paginated record listing. Without q the primary
store filters directly; with q the listing is routed through the search
index.

Request:
  - q: string (free-text query)
  - kind, owner: string
  - category, tag, business: string (comma-separated, all must match)
  - <field>: string (exact match on a filterable field, e.g. last_name)
  - <field>_char1: string (first-character match, e.g. last_name_char1=m)
  - also_deleted: bool
  - sort: string (comma-separated field names, "-" prefix for descending)
  - page, page_size: int

Response:
  - 200: []Record: Paginated record list
  - 400: INVALID_QUERY: Unknown filter or sort field
*/
func (handler *Handler) listAddresses(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	records, total, err := handler.service.List(request.Context(), ListParams{
		Query:    request.URL.Query().Get("q"),
		Filter:   filterFromRequest(request),
		Sort:     query.StringSlice(request.URL.Query().Get("sort")),
		Page:     paginationParams.Page,
		PageSize: paginationParams.Limit,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/addresses/iterate.

Description: Walks the full corpus in stable key order. The returned
cursor resumes the walk; an empty cursor starts from the beginning.

Request:
  - cursor: string (opaque, from a previous response)
  - page_size: int

Response:
  - 200: []Record with next_cursor and total
  - 400: INVALID_QUERY: Malformed cursor
*/
func (handler *Handler) iterateAddresses(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	page, err := handler.service.Iterate(
		request.Context(),
		request.URL.Query().Get("cursor"),
		paginationParams.Limit,
		filterFromRequest(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Cursor(writer, page.Records, page.NextCursor, &page.TotalCount)
}

/*
GET /api/v1/addresses/{key}.

Description: Retrieves a single record by storage key, including
soft-deleted records. Field selection and metadata stripping are
controlled by query parameters.

Request:
  - key: string (storage key)
  - include, exclude: string (comma-separated field names, exclude wins)
  - exclude_creation_metadata, exclude_edit_metadata, exclude_empty_fields: bool

Response:
  - 200: Record dictionary
  - 404: NOT_FOUND: Unknown key
*/
func (handler *Handler) getAddress(writer http.ResponseWriter, request *http.Request) {
	record, err := handler.service.GetWithOptions(
		request.Context(),
		requestutil.Param(request, "key"),
		dictOptionsFromRequest(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if record == nil {
		respond.Error(writer, request, apperr.NotFound("address"))
		return
	}

	respond.OK(writer, record)
}

/*
GET /api/v1/addresses/uid/{uid}.

Description: Retrieves a single record by its stable identity.

Response:
  - 200: Record dictionary
  - 404: NOT_FOUND: Unknown uid
*/
func (handler *Handler) getAddressByUID(writer http.ResponseWriter, request *http.Request) {
	record, err := handler.service.GetByUID(request.Context(), requestutil.Param(request, "uid"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if record == nil {
		respond.Error(writer, request, apperr.NotFound("address"))
		return
	}

	respond.OK(writer, record)
}

/*
PATCH /api/v1/addresses/{key}.

Description: Applies a partial update. Absent fields keep their stored
value, null fields clear it. Sub-item collections follow replace
semantics keyed by uid. The pre-image is snapshotted into history.

Request (Body):
  - Input: JSON object

Response:
  - 200: Record dictionary
  - 400: VALIDATION_ERROR: Invalid input data
  - 403: PERMISSION_DENIED: Missing edit permission
  - 404: NOT_FOUND: Unknown key
*/
func (handler *Handler) saveAddress(writer http.ResponseWriter, request *http.Request) {
	username, err := requestutil.RequiredUsername(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Save(request.Context(), username, requestutil.Param(request, "key"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

/*
DELETE /api/v1/addresses/{key}.

Description: Soft-deletes a record by default; with force=true the row,
its history, and its index document are purged irreversibly.

Request:
  - force: bool

Response:
  - 204: Deleted
  - 403: PERMISSION_DENIED: Missing delete permission
  - 404: NOT_FOUND: Unknown key
*/
func (handler *Handler) deleteAddress(writer http.ResponseWriter, request *http.Request) {
	username, err := requestutil.RequiredUsername(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	force := boolParam(request, "force")

	if err := handler.service.Delete(request.Context(), username, requestutil.Param(request, "key"), force); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GET /api/v1/addresses/{key}/history.

Description: Lists the pre-image snapshots of a record, newest first.

Response:
  - 200: []Snapshot entries
*/
func (handler *Handler) listHistory(writer http.ResponseWriter, request *http.Request) {
	entries, err := handler.service.History(request.Context(), requestutil.Param(request, "key"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

/*
GET /api/v1/deleted-addresses/{key}.

Description: Retrieves the archived pre-delete state of a soft-deleted
record.

Response:
  - 200: Record dictionary
  - 404: NOT_FOUND: No archive entry
*/
func (handler *Handler) getDeletedAddress(writer http.ResponseWriter, request *http.Request) {
	record, err := handler.service.GetDeleted(request.Context(), requestutil.Param(request, "key"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if record == nil {
		respond.Error(writer, request, apperr.NotFound("address"))
		return
	}

	respond.OK(writer, record)
}

// # Search Endpoint

/*
GET /api/v1/search.

Description: Runs a raw query against the search index and returns
matching documents (not full records). The query grammar supports
field:value clauses, quoted phrases, and free terms.

Request:
  - q: string (index query)
  - fields: string (comma-separated returned field names)
  - page, page_size: int

Response:
  - 200: []Document with total
  - 400: INVALID_QUERY: Malformed query string
*/
func (handler *Handler) searchAddresses(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	result, err := handler.service.Search(
		request.Context(),
		request.URL.Query().Get("q"),
		paginationParams.Page,
		paginationParams.Limit,
		query.StringSlice(request.URL.Query().Get("fields")),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, result.Documents,
		pagination.NewMeta(paginationParams.Page, paginationParams.Limit, result.TotalMatches))
}

// # Vocabulary Endpoints

/*
GET /api/v1/categories.

Description: Lists the distinct category values across all live records,
served from the cache when warm.

Response:
  - 200: []string
*/
func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	values, err := handler.service.Categories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, values)
}

/*
GET /api/v1/tags.

Description: Lists the distinct tag values across all live records.

Response:
  - 200: []string
*/
func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	values, err := handler.service.Tags(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, values)
}

/*
GET /api/v1/business-items.

Description: Lists the distinct business values across all live records.

Response:
  - 200: []string
*/
func (handler *Handler) listBusinessItems(writer http.ResponseWriter, request *http.Request) {
	values, err := handler.service.BusinessItems(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, values)
}

// # Maintenance Endpoints

/*
POST /api/v1/maintenance/reindex.

Description: Schedules a full index rebuild in the background. Safe to
run while serving traffic; a cancelled run resumes from its checkpoint.

Response:
  - 202: Accepted
*/
func (handler *Handler) startReindex(writer http.ResponseWriter, request *http.Request) {
	handler.service.StartReindex(request.Context())
	respond.Accepted(writer, map[string]string{"status": "reindex scheduled"})
}

/*
POST /api/v1/maintenance/rebuild-caches.

Description: Recomputes the vocabulary sets and the record counter from
the primary store.

Response:
  - 200: Rebuilt
*/
func (handler *Handler) rebuildCaches(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.RebuildVocabularies(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := handler.service.RebuildQuantity(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]string{"status": "caches rebuilt"})
}

// # Query Parameter Parsing

// filterFromRequest maps query parameters onto the store filter. Exact
// matches use the bare filterable field name, first-character matches its
// _char1 suffix.
func filterFromRequest(request *http.Request) Filter {
	queryParams := request.URL.Query()

	filter := Filter{
		Kind:        queryParams.Get("kind"),
		Owner:       queryParams.Get("owner"),
		Categories:  query.StringSlice(queryParams.Get("category")),
		Tags:        query.StringSlice(queryParams.Get("tag")),
		Businesses:  query.StringSlice(queryParams.Get("business")),
		AlsoDeleted: boolParam(request, "also_deleted"),
	}

	for _, field := range FilterableFields {
		if value := queryParams.Get(field); value != "" {
			if filter.Equals == nil {
				filter.Equals = map[string]string{}
			}
			filter.Equals[field] = value
		}
		if value := queryParams.Get(field + "_char1"); value != "" {
			if filter.Char1 == nil {
				filter.Char1 = map[string]string{}
			}
			filter.Char1[field] = value
		}
	}

	return filter
}

// dictOptionsFromRequest parses the field-selection and metadata flags.
func dictOptionsFromRequest(request *http.Request) DictOptions {
	queryParams := request.URL.Query()

	return DictOptions{
		Include:                 query.StringSlice(queryParams.Get("include")),
		Exclude:                 query.StringSlice(queryParams.Get("exclude")),
		ExcludeCreationMetadata: boolParam(request, "exclude_creation_metadata"),
		ExcludeEditMetadata:     boolParam(request, "exclude_edit_metadata"),
		ExcludeEmptyFields:      boolParam(request, "exclude_empty_fields"),
	}
}

// boolParam reads a boolean query parameter, treating absence and parse
// failures as false.
func boolParam(request *http.Request, name string) bool {
	value, err := format.ParseBool(request.URL.Query().Get(name))
	if err != nil || value == nil {
		return false
	}
	return *value
}
