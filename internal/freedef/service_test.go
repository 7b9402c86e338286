// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package freedef_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karteiapp/kartei/internal/freedef"
	"github.com/karteiapp/kartei/internal/platform/apperr"
	"github.com/karteiapp/kartei/internal/platform/authz"
	"github.com/karteiapp/kartei/pkg/opt"
)

// fakeRepo is an in-memory catalogue repository.
type fakeRepo struct {
	fields map[string]*freedef.Field
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{fields: map[string]*freedef.Field{}}
}

func (repo *fakeRepo) Insert(_ context.Context, field *freedef.Field) error {
	copied := *field
	repo.fields[field.ID] = &copied
	return nil
}

func (repo *fakeRepo) Update(_ context.Context, field *freedef.Field) error {
	if _, found := repo.fields[field.ID]; !found {
		return apperr.NotFound("free-defined field")
	}
	copied := *field
	repo.fields[field.ID] = &copied
	return nil
}

func (repo *fakeRepo) GetByID(_ context.Context, id string) (*freedef.Field, error) {
	field, found := repo.fields[id]
	if !found {
		return nil, apperr.NotFound("free-defined field")
	}
	copied := *field
	return &copied, nil
}

func (repo *fakeRepo) List(_ context.Context) ([]*freedef.Field, error) {
	fields := make([]*freedef.Field, 0, len(repo.fields))
	for _, field := range repo.fields {
		copied := *field
		fields = append(fields, &copied)
	}
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].Position != fields[j].Position {
			return fields[i].Position < fields[j].Position
		}
		return fields[i].Label < fields[j].Label
	})
	return fields, nil
}

func (repo *fakeRepo) Delete(_ context.Context, id string) error {
	if _, found := repo.fields[id]; !found {
		return apperr.NotFound("free-defined field")
	}
	delete(repo.fields, id)
	return nil
}

// fakeHistory records catalogue pre-images in memory.
type fakeHistory struct {
	snapshots []freedef.Snapshot
}

func (history *fakeHistory) Snapshot(_ context.Context, user string, field *freedef.Field) error {
	copied := *field
	history.snapshots = append(history.snapshots, freedef.Snapshot{
		ID:        int64(len(history.snapshots) + 1),
		FieldID:   field.ID,
		CreatedAt: time.Now().UTC(),
		CreatedBy: user,
		Field:     &copied,
	})
	return nil
}

func (history *fakeHistory) ListSnapshots(_ context.Context, id string) ([]freedef.Snapshot, error) {
	var matched []freedef.Snapshot
	for i := len(history.snapshots) - 1; i >= 0; i-- {
		if history.snapshots[i].FieldID == id {
			matched = append(matched, history.snapshots[i])
		}
	}
	return matched, nil
}

func newService(repo *fakeRepo, history *fakeHistory) *freedef.Service {
	perms := authz.New(map[string][]string{
		authz.FreeDefinedFieldCreate: {"admin"},
		authz.FreeDefinedFieldEdit:   {"admin"},
		authz.FreeDefinedFieldDelete: {"admin"},
	})
	return freedef.NewService(repo, history, perms, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestService_Create covers defaulting, validation, and the permission gate.
*/
func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, &fakeHistory{})

	t.Run("defaults", func(t *testing.T) {
		field, err := service.Create(context.Background(), "admin", freedef.Input{
			Label: opt.Of("Skype"),
			Group: opt.Of("contact"),
		})
		require.NoError(t, err)

		assert.NotEmpty(t, field.ID)
		assert.Equal(t, "text", field.ValueType)
		assert.True(t, field.Visible)
		assert.Equal(t, "admin", field.CreatedBy)
	})

	t.Run("label_required", func(t *testing.T) {
		_, err := service.Create(context.Background(), "admin", freedef.Input{})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("invalid_value_type", func(t *testing.T) {
		_, err := service.Create(context.Background(), "admin", freedef.Input{
			Label:     opt.Of("Skype"),
			ValueType: opt.Of("blob"),
		})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("permission_denied", func(t *testing.T) {
		_, err := service.Create(context.Background(), "guest", freedef.Input{
			Label: opt.Of("Skype"),
		})
		require.Error(t, err)
		assert.Equal(t, "PERMISSION_DENIED", apperr.As(err).Code)
	})
}

/*
TestService_Save applies partial updates and keeps untouched fields.
*/
func TestService_Save(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, &fakeHistory{})

	created, err := service.Create(context.Background(), "admin", freedef.Input{
		Label:    opt.Of("Skype"),
		Group:    opt.Of("contact"),
		Position: opt.Of(3),
	})
	require.NoError(t, err)

	saved, err := service.Save(context.Background(), "admin", created.ID, freedef.Input{
		Visible: opt.Of(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "Skype", saved.Label)
	assert.Equal(t, "contact", saved.Group)
	assert.Equal(t, 3, saved.Position)
	assert.False(t, saved.Visible)
	assert.Equal(t, created.CreatedAt, saved.CreatedAt)

	_, err = service.Save(context.Background(), "admin", "missing", freedef.Input{})
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestService_History checks that every save stores the pre-image, that
entries come back newest first, and that history survives deletion.
*/
func TestService_History(t *testing.T) {
	repo := newFakeRepo()
	history := &fakeHistory{}
	service := newService(repo, history)

	created, err := service.Create(context.Background(), "admin", freedef.Input{
		Label: opt.Of("Skype"),
	})
	require.NoError(t, err)

	_, err = service.Save(context.Background(), "admin", created.ID, freedef.Input{
		Label: opt.Of("Skype Name"),
	})
	require.NoError(t, err)

	_, err = service.Save(context.Background(), "admin", created.ID, freedef.Input{
		Visible: opt.Of(false),
	})
	require.NoError(t, err)

	entries, err := service.History(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first: the second save snapshotted the renamed entry, the
	// first save the original.
	assert.Equal(t, "Skype Name", entries[0]["field"].(*freedef.Field).Label)
	assert.Equal(t, "Skype", entries[1]["field"].(*freedef.Field).Label)
	assert.Equal(t, "admin", entries[0]["created_by"])

	require.NoError(t, service.Delete(context.Background(), "admin", created.ID))

	entries, err = service.History(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

/*
TestService_List orders by position, then label.
*/
func TestService_List(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, &fakeHistory{})

	for _, entry := range []struct {
		label    string
		position int
	}{
		{"Zulu", 1},
		{"Alpha", 2},
		{"Bravo", 1},
	} {
		_, err := service.Create(context.Background(), "admin", freedef.Input{
			Label:    opt.Of(entry.label),
			Position: opt.Of(entry.position),
		})
		require.NoError(t, err)
	}

	fields, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, "Bravo", fields[0].Label)
	assert.Equal(t, "Zulu", fields[1].Label)
	assert.Equal(t, "Alpha", fields[2].Label)
}

/*
TestService_Delete removes an entry behind the permission gate.
*/
func TestService_Delete(t *testing.T) {
	repo := newFakeRepo()
	service := newService(repo, &fakeHistory{})

	created, err := service.Create(context.Background(), "admin", freedef.Input{Label: opt.Of("Skype")})
	require.NoError(t, err)

	require.Error(t, service.Delete(context.Background(), "guest", created.ID))
	require.NoError(t, service.Delete(context.Background(), "admin", created.ID))

	_, err = service.Get(context.Background(), created.ID)
	assert.True(t, apperr.IsNotFound(err))
}
