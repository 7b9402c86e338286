// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package address_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karteiapp/kartei/internal/address"
	"github.com/karteiapp/kartei/pkg/opt"
)

func testRecord(t *testing.T) *address.Address {
	t.Helper()

	created, err := address.ApplyCreate(address.Input{
		FirstName:     opt.Of("Anna"),
		LastName:      opt.Of("Meier"),
		City:          opt.Of("Wien"),
		CategoryItems: opt.Of([]string{"friends"}),
		Phones: opt.Of([]address.PhoneInput{
			{Label: "mobile", Number: "+49 170 1234"},
		}),
		Anniversaries: opt.Of([]address.AnniversaryInput{
			{Label: "birthday", Year: intPtr(1990), Month: intPtr(3), Day: intPtr(7)},
		}),
	}, "alice", testCreatedAt)
	require.NoError(t, err)
	created.Key = "key-1"
	return created
}

/*
TestToDict_RoundTrip verifies the full dictionary carries every supplied
field, the computed birthday and age, and no derived projections.
*/
func TestToDict_RoundTrip(t *testing.T) {
	dict := testRecord(t).ToDict(address.DictOptions{})

	assert.Equal(t, "key-1", dict["key"])
	assert.Equal(t, "alice", dict["owner"])
	assert.Equal(t, "individual", dict["kind"])
	assert.Equal(t, "Anna", dict["first_name"])
	assert.Equal(t, "Meier", dict["last_name"])
	assert.Equal(t, []string{"friends"}, dict["category_items"])
	assert.Equal(t, "1990-03-07", dict["birthday"])
	assert.Contains(t, dict, "age")

	// Unset scalars are present as explicit nulls.
	assert.Contains(t, dict, "organization")
	assert.Nil(t, dict["organization"])
	assert.Equal(t, []string{}, dict["tag_items"])

	// Derived projections never leave the storage layer.
	assert.NotContains(t, dict, "last_name_lower")
	assert.NotContains(t, dict, "last_name_char1")

	phones, ok := dict["phone_items"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, phones, 1)
	assert.Equal(t, "+49 170 1234", phones[0]["number"])
	assert.NotEmpty(t, phones[0]["uid"])
	assert.Contains(t, phones[0], "created_at")
}

/*
TestToDict_ExcludeEmptyFields removes unset scalars and empty sets but
keeps empty sub-item collections.
*/
func TestToDict_ExcludeEmptyFields(t *testing.T) {
	dict := testRecord(t).ToDict(address.DictOptions{ExcludeEmptyFields: true})

	assert.NotContains(t, dict, "organization")
	assert.NotContains(t, dict, "tag_items")
	assert.Contains(t, dict, "first_name")
	assert.Contains(t, dict, "category_items")

	// Collections stay, even when empty.
	assert.Contains(t, dict, "email_items")
	assert.Contains(t, dict, "note_items")
}

/*
TestToDict_MetadataFlags strips audit fields at the record level and
inside sub-items.
*/
func TestToDict_MetadataFlags(t *testing.T) {
	dict := testRecord(t).ToDict(address.DictOptions{
		ExcludeCreationMetadata: true,
		ExcludeEditMetadata:     true,
	})

	assert.NotContains(t, dict, "created_at")
	assert.NotContains(t, dict, "created_by")
	assert.NotContains(t, dict, "edited_at")
	assert.NotContains(t, dict, "edited_by")

	phones := dict["phone_items"].([]map[string]any)
	require.Len(t, phones, 1)
	assert.NotContains(t, phones[0], "created_at")
	assert.NotContains(t, phones[0], "edited_by")
	assert.Contains(t, phones[0], "uid")
}

/*
TestToDict_FieldSelection checks include filtering and that exclude wins
on overlap.
*/
func TestToDict_FieldSelection(t *testing.T) {
	t.Run("include_only", func(t *testing.T) {
		dict := testRecord(t).ToDict(address.DictOptions{
			Include: []string{"key", "first_name", "last_name"},
		})

		assert.Len(t, dict, 3)
		assert.Contains(t, dict, "key")
		assert.Contains(t, dict, "first_name")
		assert.Contains(t, dict, "last_name")
	})

	t.Run("exclude_wins_over_include", func(t *testing.T) {
		dict := testRecord(t).ToDict(address.DictOptions{
			Include: []string{"first_name", "last_name"},
			Exclude: []string{"last_name"},
		})

		assert.Contains(t, dict, "first_name")
		assert.NotContains(t, dict, "last_name")
	})
}

/*
TestToDict_DeletedAt verifies the deletion marker shows up only on
soft-deleted records.
*/
func TestToDict_DeletedAt(t *testing.T) {
	record := testRecord(t)
	assert.NotContains(t, record.ToDict(address.DictOptions{}), "deleted_at")

	deletedAt := testEditedAt
	record.DeletedAt = &deletedAt
	dict := record.ToDict(address.DictOptions{})
	assert.Equal(t, "2026-02-20T15:30:00", dict["deleted_at"])
}
