// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package address_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karteiapp/kartei/internal/address"
	"github.com/karteiapp/kartei/internal/platform/apperr"
	"github.com/karteiapp/kartei/pkg/opt"
)

var (
	testCreatedAt = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	testEditedAt  = time.Date(2026, 2, 20, 15, 30, 0, 0, time.UTC)
)

/*
TestApplyCreate_Defaults verifies identity, ownership, and the kind
default on a fresh record.
*/
func TestApplyCreate_Defaults(t *testing.T) {
	created, err := address.ApplyCreate(address.Input{
		FirstName: opt.Of("Anna"),
	}, "alice", testCreatedAt)
	require.NoError(t, err)

	assert.NotEmpty(t, created.UID)
	assert.Equal(t, "alice", created.Owner)
	assert.Equal(t, address.KindIndividual, created.Kind)
	assert.Equal(t, "alice", created.CreatedBy)
	assert.Equal(t, testCreatedAt, created.CreatedAt)
	assert.Equal(t, "alice", created.EditedBy)
	require.NotNil(t, created.FirstName)
	assert.Equal(t, "Anna", *created.FirstName)
	assert.Nil(t, created.DeletedAt)
}

/*
TestApplyCreate_KindValidation covers the kind enum and the extension tag.
*/
func TestApplyCreate_KindValidation(t *testing.T) {
	tests := []struct {
		name     string
		kind     opt.Val[string]
		wantKind string
		wantErr  bool
	}{
		{"absent_defaults_individual", opt.Val[string]{}, "individual", false},
		{"organization", opt.Of("organization"), "organization", false},
		{"uppercase_normalized", opt.Of("GROUP"), "group", false},
		{"extension_tag", opt.Of("x-supplier"), "x-supplier", false},
		{"unknown_kind", opt.Of("company"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := address.ApplyCreate(address.Input{Kind: tt.kind}, "alice", testCreatedAt)

			if tt.wantErr {
				require.Error(t, err)
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, created.Kind)
		})
	}
}

/*
TestApplySave_ScalarTriState checks absent-keeps, null-clears,
value-replaces semantics for scalar fields.
*/
func TestApplySave_ScalarTriState(t *testing.T) {
	prior, err := address.ApplyCreate(address.Input{
		FirstName: opt.Of("Anna"),
		LastName:  opt.Of("Meier"),
		City:      opt.Of("Wien"),
	}, "alice", testCreatedAt)
	require.NoError(t, err)

	next, err := address.ApplySave(prior, address.Input{
		FirstName: opt.Of("Berta"),
		LastName:  opt.Null[string](),
	}, "bob", testEditedAt)
	require.NoError(t, err)

	require.NotNil(t, next.FirstName)
	assert.Equal(t, "Berta", *next.FirstName)
	assert.Nil(t, next.LastName)
	require.NotNil(t, next.City)
	assert.Equal(t, "Wien", *next.City)

	assert.Equal(t, testEditedAt, next.EditedAt)
	assert.Equal(t, "bob", next.EditedBy)
	assert.Equal(t, testCreatedAt, next.CreatedAt)
	assert.Equal(t, "alice", next.CreatedBy)

	// The prior record stays untouched.
	assert.Equal(t, "Anna", *prior.FirstName)
	require.NotNil(t, prior.LastName)
}

/*
TestApplySave_SetsDedupSorted verifies the multi-value sets are stored
deduplicated and sorted.
*/
func TestApplySave_SetsDedupSorted(t *testing.T) {
	prior, err := address.ApplyCreate(address.Input{}, "alice", testCreatedAt)
	require.NoError(t, err)

	next, err := address.ApplySave(prior, address.Input{
		CategoryItems: opt.Of([]string{"friends", "  Work ", "friends", ""}),
	}, "alice", testEditedAt)
	require.NoError(t, err)

	assert.Equal(t, []string{"Work", "friends"}, next.CategoryItems)
}

/*
TestApplySave_SubItemIdentity checks uid carry-over, content-diff edit
stamping, and dropping of empty items on a phone collection.
*/
func TestApplySave_SubItemIdentity(t *testing.T) {
	prior, err := address.ApplyCreate(address.Input{
		Phones: opt.Of([]address.PhoneInput{
			{Label: "mobile", Number: "+49 170 1234"},
			{Label: "office", Number: "+49 30 5678"},
		}),
	}, "alice", testCreatedAt)
	require.NoError(t, err)
	require.Len(t, prior.Items.Phones, 2)

	mobileUID := prior.Items.Phones[0].UID
	officeUID := prior.Items.Phones[1].UID

	next, err := address.ApplySave(prior, address.Input{
		Phones: opt.Of([]address.PhoneInput{
			{UID: mobileUID, Label: "mobile", Number: "+49 170 1234"},
			{UID: officeUID, Label: "office", Number: "+49 30 9999"},
			{Label: "home", Number: "+49 40 1111"},
			{Label: "fax", Number: "   "},
		}),
	}, "bob", testEditedAt)
	require.NoError(t, err)
	require.Len(t, next.Items.Phones, 3)

	unchanged := next.Items.Phones[0]
	assert.Equal(t, mobileUID, unchanged.UID)
	assert.Equal(t, testCreatedAt, unchanged.EditedAt)
	assert.Equal(t, "alice", unchanged.EditedBy)

	edited := next.Items.Phones[1]
	assert.Equal(t, officeUID, edited.UID)
	assert.Equal(t, "+49 30 9999", edited.Number)
	assert.Equal(t, testEditedAt, edited.EditedAt)
	assert.Equal(t, "bob", edited.EditedBy)
	assert.Equal(t, testCreatedAt, edited.CreatedAt)
	assert.Equal(t, "alice", edited.CreatedBy)

	added := next.Items.Phones[2]
	assert.NotEmpty(t, added.UID)
	assert.NotEqual(t, mobileUID, added.UID)
	assert.Equal(t, "bob", added.CreatedBy)
}

/*
TestApplySave_OmittedItemsRemoved verifies replace semantics: items absent
from a present collection are removed.
*/
func TestApplySave_OmittedItemsRemoved(t *testing.T) {
	prior, err := address.ApplyCreate(address.Input{
		Emails: opt.Of([]address.EmailInput{
			{Label: "work", Email: "anna@example.com"},
			{Label: "home", Email: "anna@home.example"},
		}),
	}, "alice", testCreatedAt)
	require.NoError(t, err)

	workUID := prior.Items.Emails[0].UID

	next, err := address.ApplySave(prior, address.Input{
		Emails: opt.Of([]address.EmailInput{
			{UID: workUID, Label: "work", Email: "anna@example.com"},
		}),
	}, "alice", testEditedAt)
	require.NoError(t, err)

	require.Len(t, next.Items.Emails, 1)
	assert.Equal(t, workUID, next.Items.Emails[0].UID)
}

/*
TestApplyCreate_URLPrefix checks that bare host names gain a scheme.
*/
func TestApplyCreate_URLPrefix(t *testing.T) {
	created, err := address.ApplyCreate(address.Input{
		URLs: opt.Of([]address.URLInput{
			{Label: "web", URL: "example.com"},
			{Label: "secure", URL: "https://example.org"},
		}),
	}, "alice", testCreatedAt)
	require.NoError(t, err)
	require.Len(t, created.Items.URLs, 2)

	assert.Equal(t, "http://example.com", created.Items.URLs[0].URL)
	assert.Equal(t, "https://example.org", created.Items.URLs[1].URL)
}

/*
TestApplyCreate_FreeDefined covers value-type defaulting and the
text/label requirements.
*/
func TestApplyCreate_FreeDefined(t *testing.T) {
	t.Run("value_type_defaults_to_text", func(t *testing.T) {
		created, err := address.ApplyCreate(address.Input{
			FreeDefined: opt.Of([]address.FreeDefinedInput{
				{Group: "contact", Label: "Skype", Text: "anna.m"},
			}),
		}, "alice", testCreatedAt)
		require.NoError(t, err)
		require.Len(t, created.Items.FreeDefined, 1)
		assert.Equal(t, "text", created.Items.FreeDefined[0].ValueType)
	})

	t.Run("empty_text_dropped", func(t *testing.T) {
		created, err := address.ApplyCreate(address.Input{
			FreeDefined: opt.Of([]address.FreeDefinedInput{
				{Label: "Skype", Text: "   "},
			}),
		}, "alice", testCreatedAt)
		require.NoError(t, err)
		assert.Empty(t, created.Items.FreeDefined)
	})

	t.Run("missing_label_rejected", func(t *testing.T) {
		_, err := address.ApplyCreate(address.Input{
			FreeDefined: opt.Of([]address.FreeDefinedInput{
				{Text: "anna.m"},
			}),
		}, "alice", testCreatedAt)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

/*
TestApplyCreate_Anniversaries covers component bounds and the all-empty
drop rule.
*/
func TestApplyCreate_Anniversaries(t *testing.T) {
	tests := []struct {
		name      string
		input     address.AnniversaryInput
		wantErr   bool
		wantCount int
	}{
		{"full_date", address.AnniversaryInput{Label: "birthday", Year: intPtr(1990), Month: intPtr(3), Day: intPtr(7)}, false, 1},
		{"partial_date", address.AnniversaryInput{Label: "wedding", Month: intPtr(6), Day: intPtr(15)}, false, 1},
		{"all_components_empty", address.AnniversaryInput{Label: "wedding"}, false, 0},
		{"month_out_of_range", address.AnniversaryInput{Label: "x", Month: intPtr(13), Day: intPtr(1)}, true, 0},
		{"day_out_of_range", address.AnniversaryInput{Label: "x", Month: intPtr(1), Day: intPtr(32)}, true, 0},
		{"day_31_in_february_accepted", address.AnniversaryInput{Label: "x", Month: intPtr(2), Day: intPtr(31)}, false, 1},
		{"missing_label", address.AnniversaryInput{Year: intPtr(1990)}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := address.ApplyCreate(address.Input{
				Anniversaries: opt.Of([]address.AnniversaryInput{tt.input}),
			}, "alice", testCreatedAt)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
				return
			}

			require.NoError(t, err)
			assert.Len(t, created.Items.Anniversaries, tt.wantCount)
		})
	}
}

/*
TestApplySave_ValidationAtomic makes sure a failing save applies nothing,
even the valid parts of the input.
*/
func TestApplySave_ValidationAtomic(t *testing.T) {
	prior, err := address.ApplyCreate(address.Input{
		FirstName: opt.Of("Anna"),
	}, "alice", testCreatedAt)
	require.NoError(t, err)

	next, err := address.ApplySave(prior, address.Input{
		FirstName: opt.Of("Berta"),
		Gender:    opt.Of("invalid"),
	}, "alice", testEditedAt)

	require.Error(t, err)
	assert.Nil(t, next)
	assert.Equal(t, "Anna", *prior.FirstName)
	assert.Equal(t, testCreatedAt, prior.EditedAt)
}

/*
TestApplySave_GenderNormalization covers the gender enum handling.
*/
func TestApplySave_GenderNormalization(t *testing.T) {
	prior, err := address.ApplyCreate(address.Input{Gender: opt.Of("F")}, "alice", testCreatedAt)
	require.NoError(t, err)
	require.NotNil(t, prior.Gender)
	assert.Equal(t, "f", *prior.Gender)

	next, err := address.ApplySave(prior, address.Input{Gender: opt.Null[string]()}, "alice", testEditedAt)
	require.NoError(t, err)
	assert.Nil(t, next.Gender)
}
