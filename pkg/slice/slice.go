// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
Package slice complements the standard [slices] package with functional
helpers and the set-field normalization used by the record model.
*/
package slice

import "sort"

// Map maps a slice of type T to a slice of type U using the provided transformation function.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}

	return result
}

// Filter filters a slice, returning only elements where the predicate function evaluates to true.
func Filter[T any](input []T, predicate func(T) bool) []T {
	if input == nil {
		return nil
	}

	// Not pre-allocating to full length to avoid excessive memory on heavy filters
	var result []T
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}

	return result
}

// DedupSort returns the distinct values of input in lexicographic order.
//
// Category, tag, and business items are stored in exactly this form on
// every write.
func DedupSort(input []string) []string {
	if len(input) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))

	for _, v := range input {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	sort.Strings(result)
	return result
}

// Contains reports whether needle occurs in haystack.
func Contains[T comparable](haystack []T, needle T) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
