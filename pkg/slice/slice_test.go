// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package slice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karteiapp/kartei/pkg/slice"
)

/*
TestDedupSort verifies the set-field storage invariant.
*/
func TestDedupSort(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"dedup_and_sort", []string{"b", "a", "a"}, []string{"a", "b"}},
		{"already_sorted", []string{"Test1", "Test2", "Österreich"}, []string{"Test1", "Test2", "Österreich"}},
		{"empty", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slice.DedupSort(tt.input))
		})
	}
}

/*
TestMap verifies the generic transformation helper.
*/
func TestMap(t *testing.T) {
	got := slice.Map([]int{1, 2, 3}, func(n int) int { return n * 2 })
	assert.Equal(t, []int{2, 4, 6}, got)
	assert.Nil(t, slice.Map(nil, func(n int) int { return n }))
}
