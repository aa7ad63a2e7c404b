// Package auth issues and validates JWT credentials and carries the
// authenticated identity through request contexts.
package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const identityCtxKey = ctxKey("identity")

// Identity is the authenticated caller as embedded in the access token.
type Identity struct {
	UserID  uint
	IsAdmin bool
}

// UserVerifier is an optional callback to validate that a token's user
// still exists. Set during bootstrap via SetUserVerifier; if nil, no
// extra verification is performed.
type UserVerifier func(ctx context.Context, uid uint) bool

var verifier UserVerifier

// SetUserVerifier configures the global verifier used by RequireAuth.
func SetUserVerifier(v UserVerifier) { verifier = v }

// WithIdentity stores the identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

// IdentityFromContext extracts the identity set by Middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	return id, ok
}

// BearerToken pulls the raw token out of the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Middleware attaches the identity to the request context when a valid
// access token is presented. Invalid tokens are ignored here; RequireAuth
// decides whether the route needs one.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := BearerToken(r); ok {
				if claims, err := ParseToken(raw, secret); err == nil && claims.TokenType == TokenTypeAccess {
					r = r.WithContext(WithIdentity(r.Context(), Identity{UserID: claims.UserID, IsAdmin: claims.IsAdmin}))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests without an authenticated identity, or
// whose identity refers to a user that no longer exists.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if verifier != nil && !verifier(r.Context(), id.UserID) {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
