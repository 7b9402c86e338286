// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

// Package fold provides accent folding and derived-name helpers for the
// case-insensitive projections and the search index.
//
// # Usage
//
// Every searchable string is indexed twice when it carries diacritics: once
// verbatim and once folded, so that "Österreich" is found by both
// "österreich" and "oesterreich". The same folding drives the *_char1
// filter facets and the field names derived from free-defined labels.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// allowedASCII is the character set kept by SafeASCII.
const allowedASCII = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_ "

// germanReplacer transliterates umlauts and sharp s the way the address data
// has historically been written out (ö → oe, not o).
var germanReplacer = strings.NewReplacer(
	"ö", "oe", "Ö", "Oe",
	"ä", "ae", "Ä", "Ae",
	"ü", "ue", "Ü", "Ue",
	"ß", "ss",
)

// Fold returns s with German umlauts transliterated and all remaining
// combining marks stripped.
//
// # Transformation Pipeline
//
// 1. Transliterates ö/ä/ü/ß to their two-letter forms.
// 2. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 3. Removes combining marks (accents).
func Fold(s string) string {
	s = germanReplacer.Replace(s)

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return result
}

// HasDiacritics reports whether s contains at least one character that Fold
// would rewrite. Used to decide whether a folded duplicate token is worth
// emitting into the search index.
func HasDiacritics(s string) bool {
	return s != Fold(s)
}

// Char1 returns the lowercased, folded first character of s, or "" for an
// empty string. It feeds the *_char1 filter facets.
func Char1(s string) string {
	folded := strings.ToLower(Fold(s))
	for _, r := range folded {
		return string(r)
	}
	return ""
}

// SafeASCII transliterates s and drops every character outside
// [0-9A-Za-z-_ ].
func SafeASCII(s string) string {
	s = Fold(s)

	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(allowedASCII, r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// FieldName derives a search index field name from a free-defined or
// anniversary label: lowercased, spaces and hyphens become underscores,
// everything non-ASCII is folded or dropped.
func FieldName(label string) string {
	name := strings.ToLower(label)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return SafeASCII(name)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
