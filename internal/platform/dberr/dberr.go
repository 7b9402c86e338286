// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/karteiapp/kartei/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error
// type. The operation label identifies the failing store call in logs.
func Wrap(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// Unique-constraint violations (SQLSTATE 23505) become conflicts.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("Resource already exists")
	}

	// Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", operation, err))
}
