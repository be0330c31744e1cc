// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tomtom215/quill/internal/config"
)

// ErrInvalidToken is returned by ValidateToken for any token that cannot be
// trusted: malformed, expired, wrongly signed or missing its subject.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims. Subject holds the user ID.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *Claims) UserID() string {
	return c.Subject
}

// JWTManager handles JWT token creation and validation
type JWTManager struct {
	secret  []byte
	timeout time.Duration
	now     func() time.Time
}

// NewJWTManager creates a new JWT token manager with the configured secret and
// token lifetime.
//
// Parameters:
//   - cfg: Security configuration containing JWT secret and token TTL
//
// Returns:
//   - Pointer to initialized JWTManager
//   - error if JWT_SECRET is empty or the TTL is not positive
//
// Example:
//
//	jwtManager, err := auth.NewJWTManager(&cfg.Security)
//	if err != nil {
//	    return fmt.Errorf("init jwt: %w", err)
//	}
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %v", cfg.TokenTTL)
	}

	return &JWTManager{
		secret:  []byte(cfg.JWTSecret),
		timeout: cfg.TokenTTL,
		now:     time.Now,
	}, nil
}

// GenerateToken creates a signed token for an authenticated user.
//
// Token Claims:
//   - sub: user ID
//   - role: "author" or "reader"
//   - exp: now + configured TTL (default 24h)
//   - iat, nbf: now
func (m *JWTManager) GenerateToken(userID, role string) (string, error) {
	now := m.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken validates a token string and extracts its claims.
//
// Rejects tokens signed with anything other than HMAC (including "none"),
// expired or not-yet-valid tokens, and tokens without a subject. Every
// failure wraps ErrInvalidToken.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

// TTL returns the configured token lifetime.
func (m *JWTManager) TTL() time.Duration {
	return m.timeout
}
