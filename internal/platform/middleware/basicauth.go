// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/karteiapp/kartei/internal/platform/ctxutil"
)

// # Authentication

// BasicAuth verifies HTTP Basic credentials against the configured user set.
// Passwords are stored as bcrypt hashes so a leaked configuration does not
// expose plain-text secrets. On success the username is injected into the
// request context for downstream authorization checks.
func BasicAuth(users map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Extract the credentials from the Authorization header
			username, password, ok := request.BasicAuth()
			if !ok {
				writer.Header().Set("WWW-Authenticate", `Basic realm="kartei"`)
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			// 2. Look up the stored hash for this user
			storedHash, found := users[username]

			// Run a comparison even for unknown users to keep timing uniform
			if !found {
				storedHash = "$2a$10$0000000000000000000000uZb1lzQyKeTeuKW0sWeHhD49pLYlGBS"
			}

			// 3. Verify the password against the bcrypt hash
			err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
			if err != nil || !found {
				writer.Header().Set("WWW-Authenticate", `Basic realm="kartei"`)
				writeError(writer, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
				return
			}

			// 4. Inject the authenticated username into the context
			ctx := ctxutil.WithUsername(request.Context(), username)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
