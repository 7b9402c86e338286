// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package freedef

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/karteiapp/kartei/internal/platform/request"
	"github.com/karteiapp/kartei/internal/platform/respond"
)

// Handler implements the HTTP layer for the field catalogue.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the catalogue CRUD endpoints.
// Mounted at /free-defined-fields.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listFields)
	router.Post("/", handler.createField)
	router.Get("/{id}", handler.getField)
	router.Patch("/{id}", handler.saveField)
	router.Delete("/{id}", handler.deleteField)
	router.Get("/{id}/history", handler.fieldHistory)

	return router
}

/*
GET /api/v1/free-defined-fields.

Description: Lists the whole catalogue ordered by position, then label.

Response:
  - 200: []Field
*/
func (handler *Handler) listFields(writer http.ResponseWriter, request *http.Request) {
	fields, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, fields)
}

/*
POST /api/v1/free-defined-fields.

Description: Creates a catalogue entry. The label is mandatory; the value
type defaults to text and new entries are visible.

Response:
  - 201: Field
  - 400: VALIDATION_ERROR: Invalid input data
  - 403: PERMISSION_DENIED: Missing create permission
*/
func (handler *Handler) createField(writer http.ResponseWriter, request *http.Request) {
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

	field, err := handler.service.Create(request.Context(), username, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, field)
}

/*
GET /api/v1/free-defined-fields/{id}.

Description: Retrieves one catalogue entry.

Response:
  - 200: Field
  - 404: NOT_FOUND: Unknown id
*/
func (handler *Handler) getField(writer http.ResponseWriter, request *http.Request) {
	field, err := handler.service.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, field)
}

/*
PATCH /api/v1/free-defined-fields/{id}.

Description: Applies a partial update to a catalogue entry.

Response:
  - 200: Field
  - 400: VALIDATION_ERROR: Invalid input data
  - 403: PERMISSION_DENIED: Missing edit permission
  - 404: NOT_FOUND: Unknown id
*/
func (handler *Handler) saveField(writer http.ResponseWriter, request *http.Request) {
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

	field, err := handler.service.Save(request.Context(), username, requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, field)
}

/*
GET /api/v1/free-defined-fields/{id}/history.

Description: Lists the pre-image snapshots of a catalogue entry, newest
first. History outlives deletion of the entry itself.

Response:
  - 200: []{created_at, created_by, field}
*/
func (handler *Handler) fieldHistory(writer http.ResponseWriter, request *http.Request) {
	entries, err := handler.service.History(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entries)
}

/*
DELETE /api/v1/free-defined-fields/{id}.

Description: Removes a catalogue entry. Values already stored on address
records are unaffected.

Response:
  - 204: Deleted
  - 403: PERMISSION_DENIED: Missing delete permission
  - 404: NOT_FOUND: Unknown id
*/
func (handler *Handler) deleteField(writer http.ResponseWriter, request *http.Request) {
	username, err := requestutil.RequiredUsername(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), username, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
