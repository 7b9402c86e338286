// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package opt_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karteiapp/kartei/pkg/opt"
)

type patchBody struct {
	City     opt.Val[string]   `json:"city"`
	Nickname opt.Val[string]   `json:"nickname"`
	Tags     opt.Val[[]string] `json:"tags"`
}

/*
TestVal_TriState verifies that absent, null, and value fields are
distinguishable after decoding.
*/
func TestVal_TriState(t *testing.T) {
	var body patchBody
	require.NoError(t, json.Unmarshal([]byte(`{"city": "Wien", "nickname": null}`), &body))

	// Value
	city, ok := body.City.Get()
	assert.True(t, ok)
	assert.Equal(t, "Wien", city)

	// Explicit null
	assert.True(t, body.Nickname.Present())
	assert.True(t, body.Nickname.IsNull())

	// Absent
	assert.False(t, body.Tags.Present())
}

/*
TestVal_Slice verifies decoding into a slice-typed optional.
*/
func TestVal_Slice(t *testing.T) {
	var body patchBody
	require.NoError(t, json.Unmarshal([]byte(`{"tags": ["b", "a"]}`), &body))

	tags, ok := body.Tags.Get()
	assert.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, tags)
}
