// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package search

import (
	"fmt"
	"strings"

	"github.com/karteiapp/kartei/internal/platform/apperr"
)

// Clause is one structured field filter inside a query string.
type Clause struct {
	Field string
	Value string
}

// ParsedQuery is the normalized form of a caller-supplied query string:
// structured field clauses plus free-text terms. All parts are AND-joined.
type ParsedQuery struct {
	Clauses []Clause
	Terms   []string
}

// IsEmpty reports whether the query matches everything.
func (query ParsedQuery) IsEmpty() bool {
	return len(query.Clauses) == 0 && len(query.Terms) == 0
}

// BuildQuery concatenates structured filter clauses onto a free-form query
// string. Values are quoted so embedded spaces survive parsing.
func BuildQuery(freeText string, filters []Clause) string {
	parts := make([]string, 0, len(filters)+1)

	if trimmed := strings.TrimSpace(freeText); trimmed != "" {
		parts = append(parts, trimmed)
	}

	for _, filter := range filters {
		parts = append(parts, fmt.Sprintf("%s:%q", filter.Field, filter.Value))
	}

	return strings.Join(parts, " ")
}

// ParseQuery splits a query string into field clauses and free terms.
//
// # Syntax
//
//	term              free-text term
//	"some phrase"     quoted free-text phrase
//	field:value       field clause
//	field:"a value"   field clause with quoted value
//
// Malformed syntax (unterminated quote, empty field name, empty clause
// value) yields an INVALID_QUERY application error so transport can map it
// to a client fault.
func ParseQuery(input string) (ParsedQuery, error) {
	var parsed ParsedQuery

	tokens, err := splitTokens(input)
	if err != nil {
		return ParsedQuery{}, err
	}

	for _, token := range tokens {
		field, value, isClause := splitClause(token)

		if !isClause {
			parsed.Terms = append(parsed.Terms, strings.ToLower(value))
			continue
		}

		if field == "" {
			return ParsedQuery{}, apperr.InvalidQuery("Empty field name in query clause")
		}
		if value == "" {
			return ParsedQuery{}, apperr.InvalidQuery(fmt.Sprintf("Empty value for field %q", field))
		}

		parsed.Clauses = append(parsed.Clauses, Clause{
			Field: strings.ToLower(field),
			Value: strings.ToLower(value),
		})
	}

	return parsed, nil
}

// splitTokens splits on whitespace while keeping quoted sections intact.
func splitTokens(input string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inQuotes := false

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n'):
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if inQuotes {
		return nil, apperr.InvalidQuery("Unterminated quote in query")
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}

// splitClause splits a token at the first colon and strips value quotes.
// A quoted token without a colon before the opening quote is a free phrase.
func splitClause(token string) (field, value string, isClause bool) {
	if strings.HasPrefix(token, `"`) {
		return "", strings.Trim(token, `"`), false
	}

	colon := strings.Index(token, ":")
	if colon < 0 {
		return "", strings.Trim(token, `"`), false
	}

	field = token[:colon]
	value = strings.Trim(token[colon+1:], `"`)
	return field, value, true
}
