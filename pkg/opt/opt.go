// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
Package opt provides a tri-state optional value for partial updates.

A PATCH body must distinguish three cases per field:

  - field absent        → leave the stored value untouched
  - field explicitly null → clear the stored value
  - field with a value  → replace the stored value

A plain pointer collapses the first two cases, so save operations use
[Val] instead.
*/
package opt

import "encoding/json"

// Val wraps a value of type T and records whether the field was present in
// the JSON payload and whether it was null.
//
// The zero Val is "absent".
type Val[T any] struct {
	value   T
	present bool
	null    bool
}

// Of returns a present, non-null Val carrying v.
func Of[T any](v T) Val[T] {
	return Val[T]{value: v, present: true}
}

// Null returns a present, explicitly-null Val.
func Null[T any]() Val[T] {
	return Val[T]{present: true, null: true}
}

// Present reports whether the field appeared in the payload at all.
func (o Val[T]) Present() bool { return o.present }

// IsNull reports whether the field was an explicit JSON null.
func (o Val[T]) IsNull() bool { return o.present && o.null }

// Get returns the carried value and whether it is usable (present and
// non-null).
func (o Val[T]) Get() (T, bool) {
	if !o.present || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// Value returns the carried value, or the zero value when absent or null.
func (o Val[T]) Value() T {
	v, _ := o.Get()
	return v
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for fields
// present in the payload, which is what makes the absent/null distinction
// observable.
func (o *Val[T]) UnmarshalJSON(data []byte) error {
	o.present = true

	if string(data) == "null" {
		o.null = true
		return nil
	}

	return json.Unmarshal(data, &o.value)
}

// MarshalJSON implements json.Marshaler. Absent and null both encode as
// null; Val fields are expected to carry `omitempty` semantics at the
// struct level when round-tripping matters.
func (o Val[T]) MarshalJSON() ([]byte, error) {
	if !o.present || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
