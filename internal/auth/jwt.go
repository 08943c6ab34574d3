// Package auth validates the session tokens issued by the identity provider.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// clockSkew is tolerated on exp and nbf.
const clockSkew = 30 * time.Second

// JWTManager signs and checks HS256 session tokens.
type JWTManager struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Claims identify the bill owner making a request. Tokens that carry only
// the standard subject are accepted too.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// NewJWTManager returns a manager for tokens signed with secretKey, which is
// shared with the identity provider. Tokens it issues live for ttl.
func NewJWTManager(secretKey string, ttl time.Duration) *JWTManager {
	m := &JWTManager{
		key: []byte(secretKey),
		ttl: ttl,
		now: time.Now,
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m
}

// Generate signs a token for userID. The server only uses it for local
// development and tests; production tokens come from the identity provider.
func (m *JWTManager) Generate(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	issued := jwt.NewNumericDate(m.now())
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  issued,
			NotBefore: issued,
			ExpiresAt: jwt.NewNumericDate(issued.Add(m.ttl)),
		},
	}).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature and lifetime of a token and returns its
// claims with UserID always set.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := claims.resolveUser(); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Claims) resolveUser() error {
	if c.UserID == "" {
		c.UserID = c.Subject
	}
	if c.UserID == "" {
		return fmt.Errorf("%w: no user in token", ErrInvalidToken)
	}
	return nil
}
