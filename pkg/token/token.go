// Package token signs and verifies the JWTs the auth deriver consumes.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Errors.
var (
	ErrNoSecret     = errors.New("token: secret required")
	ErrInvalidToken = errors.New("token: invalid token")
	ErrExpiredToken = errors.New("token: expired token")
)

// Claims is the verified token payload.
type Claims = jwt.MapClaims

// Service signs and verifies HS256 tokens with a shared secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithTTL sets the expiry added to signed tokens. Zero means no exp
// claim. Defaults to 7 days.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// New creates a token service. The secret must be non-empty; an empty
// secret would make HMAC verification trivially forgeable.
func New(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	s := &Service{
		secret: []byte(secret),
		ttl:    7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign issues a token carrying the given claims plus iat/exp.
func (s *Service) Sign(claims Claims) (string, error) {
	all := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		all[k] = v
	}
	now := time.Now()
	all["iat"] = now.Unix()
	if s.ttl != 0 {
		all["exp"] = now.Add(s.ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, all).SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims.
// Only HMAC signing methods are accepted.
func (s *Service) Verify(tokenString string) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return Claims(claims), nil
}
