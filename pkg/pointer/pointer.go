// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
Package pointer provides utilities for working with pointers in Go.

Nullable address fields (organization, nickname, city, ...) are modeled as
pointers throughout the record model; this package removes the boilerplate
of creating and safely dereferencing them.
*/
package pointer

// To returns a pointer to the provided value.
// It is useful when you need to pass a primitive value to a function or struct field
// that expects a pointer (e.g. pointer.To("something")).
func To[T any](v T) *T {
	return &v
}

// Val safely dereferences a pointer.
// If the pointer is nil, it returns the zero value of the underlying type.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Fallback safely dereferences a pointer.
// If the pointer is nil, it returns the provided fallback value instead.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// Equal reports whether two pointers carry the same value, treating two
// nils as equal and nil/non-nil as different. Used by the sub-item
// content diff.
func Equal[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
