package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var errMissingToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string
// like context.WithValue(ctx, "username", u), ANY package that knows the
// string "username" can read or shadow your value. Using a
// package-private type prevents collisions: only THIS package can create
// a key of type contextKey, so only this package can read or write the
// authenticated username.
type contextKey string

const usernameKey contextKey = "username"

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the JWT from the Authorization header ("Bearer <token>"),
// verifies it, and stores the claimed username in the request context.
// If the token is missing or invalid, it returns 401 Unauthorized and
// stops the request chain. The body is the same for every failure mode
// — a missing header, a bad signature and an expired token all look
// identical to the client.
//
// The username placed in the context is the verified claim: trusted for
// the remainder of request processing, with no further DB lookup.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := extractUsername(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext retrieves the authenticated username from the
// request context.
//
// Returns ("", false) if the request never passed through RequireAuth.
// Handlers behind RequireAuth can rely on ok being true.
func UsernameFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(usernameKey).(string)
	return u, ok && u != ""
}

// extractUsername reads the bearer token from the Authorization header
// and verifies it.
func extractUsername(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errMissingToken
	}

	return tokens.Verify(token)
}
