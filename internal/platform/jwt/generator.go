// Package jwtmw issues and verifies access tokens and provides the gin
// middleware that resolves the acting identity from them.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

type generator struct {
	secret     []byte
	expiration time.Duration
}

// NewGenerator returns an HS256 token generator and verifier.
func NewGenerator(secret string, expiration time.Duration) *generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// Expiration is the lifetime of issued tokens.
func (g *generator) Expiration() time.Duration {
	return g.expiration
}

// GenerateToken signs a token carrying sub, email, iat and exp.
func (g *generator) GenerateToken(userID uint, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"exp":   now.Add(g.expiration).Unix(),
		"iat":   now.Unix(),
		"email": email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies tokenStr and returns the user id in its sub claim.
func (g *generator) ParseToken(tokenStr string) (uint, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	// JSON numbers decode as float64.
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, ErrInvalidToken
	}
	return uint(sub), nil
}
