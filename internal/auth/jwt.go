package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenTypeAccess marks short-lived tokens accepted by the API.
	TokenTypeAccess = "access"
	// TokenTypeRefresh marks tokens accepted only by the refresh endpoint.
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the identity embedded in issued tokens.
type Claims struct {
	UserID    uint   `json:"user_id"`
	IsAdmin   bool   `json:"is_admin"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is what login and refresh return.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// GenerateToken signs a single HS256 token of the given type.
func GenerateToken(userID uint, isAdmin bool, tokenType, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		IsAdmin:   isAdmin,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// GenerateTokenPair issues an access and a refresh token for the user.
func GenerateTokenPair(userID uint, isAdmin bool, secret string, accessTTL, refreshTTL time.Duration) (TokenPair, error) {
	access, err := GenerateToken(userID, isAdmin, TokenTypeAccess, secret, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := GenerateToken(userID, isAdmin, TokenTypeRefresh, secret, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// ParseToken validates the signature and expiry and returns the claims.
// The caller still has to check TokenType for the endpoint at hand.
func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
