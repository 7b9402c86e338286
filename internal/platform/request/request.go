// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karteiapp/kartei/internal/platform/apperr"
	"github.com/karteiapp/kartei/internal/platform/ctxutil"
	"github.com/karteiapp/kartei/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Username extracts the authenticated username from the request context.

Returns an empty string if the request is not authenticated.
*/
func Username(request *http.Request) string {
	return ctxutil.GetUsername(request.Context())
}

/*
RequiredUsername ensures the request is authenticated and returns the username.

Returns:
  - string: The authenticated username
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredUsername(request *http.Request) (string, error) {

	// Get the authenticated username
	username := ctxutil.GetUsername(request.Context())

	// If the user is not authenticated, return an error
	if username == "" {
		return "", apperr.Unauthorized("Authentication required")
	}

	return username, nil
}
