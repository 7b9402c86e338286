// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
Package search maintains the derived full-text index.

Every record is mirrored into one index document whose id is the record's
storage key. Documents are rebuilt wholesale on each index write (replace
semantics), so the index never needs field-level patching. The index is
eventually consistent with the primary store; the reindex operation is the
repair path when writes were lost.
*/
package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/karteiapp/kartei/pkg/fold"
	"github.com/karteiapp/kartei/pkg/format"
	"github.com/karteiapp/kartei/pkg/slice"
)

// FieldType classifies how a document field value is matched.
type FieldType string

const (
	// TypeText fields participate in free-text matching.
	TypeText FieldType = "text"
	// TypeAtom fields match only as a whole token (facets such as char1).
	TypeAtom FieldType = "atom"
	// TypeDate fields hold an ISO date string.
	TypeDate FieldType = "date"
	// TypeInt and TypeFloat hold numeric values rendered as strings.
	TypeInt   FieldType = "int"
	TypeFloat FieldType = "float"
)

// Field is one searchable name/value pair of a document. A document may
// carry several fields with the same name (multi-value fields, folded
// duplicates).
type Field struct {
	Name  string    `json:"name"`
	Value string    `json:"value"`
	Type  FieldType `json:"type"`
}

// Document is the index-side representation of one record.
type Document struct {
	DocID  string
	Fields []Field
}

// Source is the searchable projection of a record, supplied by the record
// model. Keeping this shape free of model types lets the index build
// documents without knowing the record schema.
type Source struct {
	DocID         string
	Scalars       []Scalar
	MultiValues   []MultiValue
	Contacts      []MultiValue
	FreeDefined   []TypedValue
	Anniversaries []DateParts
}

// Scalar is a single-valued source field. Filterable scalars additionally
// get a first-character facet token.
type Scalar struct {
	Name       string
	Value      string
	Filterable bool
}

// MultiValue is a multi-valued source field. MultiValues (category, tag,
// business) get folded duplicates; Contacts (phone, email, url) emit one
// plain token per item value.
type MultiValue struct {
	Name   string
	Values []string
}

// TypedValue is a free-defined field value with its declared value type.
type TypedValue struct {
	Label     string
	Value     string
	ValueType string
}

// DateParts is an anniversary value; any component may be absent (zero).
type DateParts struct {
	Label string
	Year  int
	Month int
	Day   int
}

// BuildDocument derives the full index document for a record.
//
// # Emission rules
//
// Scalars emit a primary text token, plus an accent-folded duplicate under
// the same name when the value carries diacritics, plus a <name>_char1 atom
// for filterable fields. Multi-value fields emit one token per value with
// the same folded-duplicate rule; contact item values (phone, email, url)
// emit one plain token each. Free-defined fields are indexed under a name
// derived from their label unless that name appears in the exception list;
// values are normalized according to the declared value type and fall back
// to text when they do not parse. Anniversaries index as a date when fully
// specified, otherwise as a partial text fragment.
//
// All token values are lowercased so matching is case-insensitive.
func BuildDocument(source Source, fieldExceptions []string) Document {
	doc := Document{DocID: source.DocID}

	for _, scalar := range source.Scalars {
		if scalar.Value == "" {
			continue
		}

		doc.Fields = appendWithFoldedDuplicate(doc.Fields, scalar.Name, scalar.Value, TypeText)

		if scalar.Filterable {
			doc.Fields = append(doc.Fields, Field{
				Name:  scalar.Name + "_char1",
				Value: fold.Char1(scalar.Value),
				Type:  TypeAtom,
			})
		}
	}

	for _, multi := range source.MultiValues {
		for _, value := range multi.Values {
			if value == "" {
				continue
			}
			doc.Fields = appendWithFoldedDuplicate(doc.Fields, multi.Name, value, TypeText)
		}
	}

	for _, contact := range source.Contacts {
		for _, value := range contact.Values {
			if value == "" {
				continue
			}
			doc.Fields = append(doc.Fields, Field{
				Name:  contact.Name,
				Value: strings.ToLower(value),
				Type:  TypeText,
			})
		}
	}

	for _, typed := range source.FreeDefined {
		fieldName := fold.FieldName(typed.Label)
		if fieldName == "" || slice.Contains(fieldExceptions, fieldName) {
			continue
		}
		if typed.Value == "" {
			continue
		}

		value, fieldType := freeDefinedToken(typed.Value, typed.ValueType)
		doc.Fields = append(doc.Fields, Field{
			Name:  fieldName,
			Value: value,
			Type:  fieldType,
		})
	}

	for _, anniversary := range source.Anniversaries {
		fieldName := fold.FieldName(anniversary.Label)
		if fieldName == "" {
			continue
		}

		value, fieldType := anniversaryToken(anniversary)
		if value == "" {
			continue
		}

		doc.Fields = append(doc.Fields, Field{Name: fieldName, Value: value, Type: fieldType})
	}

	return doc
}

// appendWithFoldedDuplicate emits the lowercased primary token and, when the
// value carries diacritics, a folded duplicate under the same field name so
// that both "österreich" and "oesterreich" match.
func appendWithFoldedDuplicate(fields []Field, name, value string, fieldType FieldType) []Field {
	lowered := strings.ToLower(value)
	fields = append(fields, Field{Name: name, Value: lowered, Type: fieldType})

	if fold.HasDiacritics(value) {
		folded := strings.ToLower(fold.Fold(value))
		if folded != lowered {
			fields = append(fields, Field{Name: name, Value: folded, Type: fieldType})
		}
	}

	return fields
}

// freeDefinedToken normalizes a free-defined value by its declared value
// type: ints and floats are rendered canonically, dates as ISO. A value
// that does not parse as its declared type indexes as plain text so it
// stays findable.
func freeDefinedToken(value, valueType string) (string, FieldType) {
	switch valueType {
	case "int":
		if n, err := format.ParseInt(value); err == nil && n != nil {
			return strconv.FormatInt(*n, 10), TypeInt
		}
	case "float":
		if f, err := format.ParseFloat(value); err == nil && f != nil {
			return strconv.FormatFloat(*f, 'f', -1, 64), TypeFloat
		}
	case "date":
		if t, err := format.ParseDate(value); err == nil {
			return format.DateISO(t), TypeDate
		}
	}
	return strings.ToLower(value), TypeText
}

// anniversaryToken renders an anniversary as a date field when all three
// components are present, otherwise as a partial hyphen-joined fragment.
func anniversaryToken(parts DateParts) (string, FieldType) {
	if parts.Year > 0 && parts.Month > 0 && parts.Day > 0 {
		return fmt.Sprintf("%04d-%02d-%02d", parts.Year, parts.Month, parts.Day), TypeDate
	}

	var fragments []string
	if parts.Year > 0 {
		fragments = append(fragments, fmt.Sprintf("%04d", parts.Year))
	}
	if parts.Month > 0 {
		fragments = append(fragments, fmt.Sprintf("%02d", parts.Month))
	}
	if parts.Day > 0 {
		fragments = append(fragments, fmt.Sprintf("%02d", parts.Day))
	}

	return strings.Join(fragments, "-"), TypeText
}
