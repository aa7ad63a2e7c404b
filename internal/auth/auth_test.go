package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	pair, err := GenerateTokenPair(42, true, testSecret, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(pair.Access, testSecret)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != 42 || !claims.IsAdmin || claims.TokenType != TokenTypeAccess {
		t.Errorf("unexpected access claims: %+v", claims)
	}

	claims, err = ParseToken(pair.Refresh, testSecret)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Errorf("refresh token_type = %q", claims.TokenType)
	}
}

func TestParseTokenRejectsBadSecret(t *testing.T) {
	token, err := GenerateToken(1, false, TokenTypeAccess, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(1, false, TokenTypeAccess, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(token, testSecret); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestMiddlewareAndRequireAuth(t *testing.T) {
	SetUserVerifier(nil)
	token, err := GenerateToken(7, false, TokenTypeAccess, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var seen Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(testSecret)(RequireAuth(inner))

	// No token -> 401
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// Valid token -> identity in context
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
	if seen.UserID != 7 {
		t.Errorf("identity user = %d, want 7", seen.UserID)
	}

	// Refresh tokens must not authenticate API calls.
	refresh, _ := GenerateToken(7, false, TokenTypeRefresh, testSecret, time.Minute)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with refresh token, got %d", w.Code)
	}
}

func TestRequireAuthUsesVerifier(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return uid != 13 })
	defer SetUserVerifier(nil)

	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireAuth(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: 13}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for vanished user, got %d", w.Code)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("s3cret", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}
