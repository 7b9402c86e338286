// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package freedef

import (
	"context"
	"log/slog"
	"time"

	"github.com/karteiapp/kartei/internal/platform/authz"
	"github.com/karteiapp/kartei/pkg/format"
	"github.com/karteiapp/kartei/pkg/uuidv7"
)

// Service implements the field catalogue operations.
type Service struct {
	repo    Repository
	history HistoryRepository
	auth    *authz.Authorizer
	logger  *slog.Logger
}

func NewService(repo Repository, history HistoryRepository, auth *authz.Authorizer, logger *slog.Logger) *Service {
	return &Service{repo: repo, history: history, auth: auth, logger: logger}
}

// Create adds a catalogue entry.
func (service *Service) Create(ctx context.Context, user string, input Input) (*Field, error) {
	if err := service.auth.Check(user, authz.FreeDefinedFieldCreate); err != nil {
		return nil, err
	}

	field, err := ApplyCreate(input, user, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	field.ID = uuidv7.New()

	if err := service.repo.Insert(ctx, field); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "free_defined_field_created",
		slog.String("id", field.ID),
		slog.String("label", field.Label),
		slog.String("user", user),
	)

	return field, nil
}

// Save applies a partial update to a catalogue entry.
func (service *Service) Save(ctx context.Context, user, id string, input Input) (*Field, error) {
	if err := service.auth.Check(user, authz.FreeDefinedFieldEdit); err != nil {
		return nil, err
	}

	prior, err := service.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := ApplySave(prior, input, user, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	// History first: every edit leaves the pre-image behind.
	if err := service.history.Snapshot(ctx, user, prior); err != nil {
		return nil, err
	}

	if err := service.repo.Update(ctx, next); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "free_defined_field_saved",
		slog.String("id", id),
		slog.String("user", user),
	)

	return next, nil
}

// History lists the pre-image snapshots of a catalogue entry, newest
// first.
func (service *Service) History(ctx context.Context, id string) ([]map[string]any, error) {
	snapshots, err := service.history.ListSnapshots(ctx, id)
	if err != nil {
		return nil, err
	}

	entries := make([]map[string]any, 0, len(snapshots))
	for _, snapshot := range snapshots {
		entries = append(entries, map[string]any{
			"created_at": format.DateTimeISO(snapshot.CreatedAt),
			"created_by": snapshot.CreatedBy,
			"field":      snapshot.Field,
		})
	}

	return entries, nil
}

// Get returns one catalogue entry.
func (service *Service) Get(ctx context.Context, id string) (*Field, error) {
	return service.repo.GetByID(ctx, id)
}

// List returns the whole catalogue ordered by position, then label.
func (service *Service) List(ctx context.Context) ([]*Field, error) {
	return service.repo.List(ctx)
}

// Delete removes a catalogue entry. Values already stored on address
// records keep working; only the definition disappears.
func (service *Service) Delete(ctx context.Context, user, id string) error {
	if err := service.auth.Check(user, authz.FreeDefinedFieldDelete); err != nil {
		return err
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "free_defined_field_deleted",
		slog.String("id", id),
		slog.String("user", user),
	)
	return nil
}
