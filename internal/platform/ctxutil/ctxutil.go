// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

// Package ctxutil provides typed accessors for per-request context values.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/karteiapp/kartei/internal/platform/ctxkey"
)

// WithRequestID stores the request correlation ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, requestID)
}

// GetRequestID retrieves the request correlation ID, or "" when absent.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxkey.KeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithLogger stores a request-scoped logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the request-scoped logger, falling back to slog.Default.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithUsername stores the authenticated username in the context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUsername, username)
}

// GetUsername retrieves the authenticated username, or "" for anonymous
// requests.
func GetUsername(ctx context.Context) string {
	if user, ok := ctx.Value(ctxkey.KeyUsername).(string); ok {
		return user
	}
	return ""
}
