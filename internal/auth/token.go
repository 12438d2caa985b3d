package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrIncompleteClaims marks a token that parsed but lacks the user identity.
var ErrIncompleteClaims = errors.New("token claims incomplete")

// Claims is the identity carried by a session token.
type Claims struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ReferredBy string `json:"referredBy,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager decodes session tokens issued by the backend and, for tests
// and local development, issues tokens of the same shape.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetime.
// An empty secret switches Decode to payload-only decoding.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Verifying reports whether Decode checks signatures.
func (t *TokenManager) Verifying() bool {
	return len(t.secret) > 0
}

// Generate issues a signed JWT for the provided identity.
func (t *TokenManager) Generate(identity Claims) (string, error) {
	now := t.now()
	identity.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   identity.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, identity)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode parses a token into Claims. Malformed, expired, tampered and
// identity-less tokens all fail; the caller never receives partial claims.
func (t *TokenManager) Decode(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, jwt.ErrTokenMalformed
	}

	var claims Claims
	if t.Verifying() {
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(t.now),
		)
		token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return t.secret, nil
		})
		if err != nil {
			return Claims{}, fmt.Errorf("parse token: %w", err)
		}
		if !token.Valid {
			return Claims{}, jwt.ErrTokenSignatureInvalid
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
			return Claims{}, fmt.Errorf("parse token: %w", err)
		}
		if claims.ExpiresAt != nil && !t.now().Before(claims.ExpiresAt.Time) {
			return Claims{}, jwt.ErrTokenExpired
		}
	}

	if strings.TrimSpace(claims.ID) == "" {
		return Claims{}, ErrIncompleteClaims
	}
	return claims, nil
}
