// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package pagination

import (
	"encoding/base64"
	"errors"
)

// ErrInvalidCursor is returned when a cursor token cannot be decoded.
var ErrInvalidCursor = errors.New("pagination: invalid cursor token")

// EncodeCursor wraps a keyset position in an opaque URL-safe token.
// An empty position yields an empty token, meaning "start from the top".
func EncodeCursor(position string) string {
	if position == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(position))
}

// DecodeCursor unwraps an opaque token back into the keyset position.
func DecodeCursor(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidCursor
	}
	return string(raw), nil
}
