// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
Package format provides string/date coercion helpers shared by the record
model, the search index, and the API boundary.

Every date or timestamp that crosses the API boundary is an ISO-8601 string
("YYYY-MM-DD" or "YYYY-MM-DDTHH:MM:SS"), never a language-native temporal
type. This package is the single place where those strings are produced and
parsed.
*/
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts for the two ISO forms accepted at the boundary.
const (
	dateLayout   = "2006-01-02"
	isoLayout    = "2006-01-02T15:04:05"
	germanLayout = "02.01.2006"
)

// ParseDate converts a date string into a time.Time (UTC, midnight).
//
// # Accepted Forms
//
//   - "YYYY-MM-DD" (ISO)
//   - "DD.MM.YYYY" (legacy German form still present in old exports)
//   - Longer strings are truncated to the first ten characters, so a full
//     timestamp is accepted and its time part ignored.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("format: empty date string")
	}

	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}

	if strings.Contains(s, "-") {
		return time.Parse(dateLayout, s)
	}

	return time.Parse(germanLayout, s)
}

// DateISO formats t as "YYYY-MM-DD". A zero time yields "".
func DateISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// DateTimeISO formats t as "YYYY-MM-DDTHH:MM:SS" in UTC. A zero time yields "".
func DateTimeISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoLayout)
}

// PartialDate renders a possibly year-less date: "YYYY-MM-DD" when the
// year is known (non-zero), otherwise "MM-DD".
func PartialDate(year, month, day int) string {
	if year > 0 {
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}
	return fmt.Sprintf("%02d-%02d", month, day)
}

// ParseBool converts typical truthy/falsy expressions into a *bool.
//
//   - "true" | "yes" | "y" | "t" | "1" | "si" → true
//   - "false" | "no" | "n" | "f" | "0" → false
//   - "" | "none" | "null" → nil
func ParseBool(s string) (*bool, error) {
	val := strings.ToLower(strings.TrimSpace(s))

	switch val {
	case "true", "yes", "y", "t", "1", "si":
		b := true
		return &b, nil
	case "false", "no", "n", "f", "0":
		b := false
		return &b, nil
	case "", "none", "null":
		return nil, nil
	}

	return nil, fmt.Errorf("format: boolean expression expected, got %q", s)
}

// ParseInt converts a string into a *int64, treating boolean words as 1/0
// and NULL words as nil.
func ParseInt(s string) (*int64, error) {
	val := strings.ToLower(strings.TrimSpace(s))

	switch val {
	case "true", "yes", "y", "t":
		n := int64(1)
		return &n, nil
	case "false", "no", "n", "f":
		n := int64(0)
		return &n, nil
	case "", "none", "null":
		return nil, nil
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("format: integer expression expected, got %q", s)
	}

	return &n, nil
}

// ParseFloat converts a string into a *float64 with the same NULL-word
// handling as ParseInt.
func ParseFloat(s string) (*float64, error) {
	val := strings.ToLower(strings.TrimSpace(s))

	switch val {
	case "true", "yes", "y", "t":
		f := 1.0
		return &f, nil
	case "false", "no", "n", "f":
		f := 0.0
		return &f, nil
	case "", "none", "null":
		return nil, nil
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, fmt.Errorf("format: float expression expected, got %q", s)
	}

	return &f, nil
}

// Clean trims s and maps the NULL words ("", "none", "null") to "".
//
// Callers treating "" as absent get uniform behavior for the many ways
// legacy clients express an empty field.
func Clean(s string) string {
	val := strings.TrimSpace(s)
	if low := strings.ToLower(val); low == "none" || low == "null" {
		return ""
	}
	return val
}
