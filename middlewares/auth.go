// Package middlewares contains optional middleware for relay routers.
package middlewares

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/pulsefeed/relay/internal"
	"github.com/pulsefeed/relay/pkg/token"
)

// DefaultAuthCookie is the cookie checked for a token when the
// Authorization header is absent or fails verification.
const DefaultAuthCookie = "auth_token"

// DefaultAdminPermission is the permission level that marks a user as
// admin.
const DefaultAdminPermission = 10

// Verifier validates a token and returns its claims.
// *token.Service satisfies this.
type Verifier interface {
	Verify(tokenString string) (token.Claims, error)
}

// User is the identity record the auth deriver resolves.
type User struct {
	Username   string
	ID         int
	Permission int
}

// UserStore looks up users by ID. Returning (nil, nil) means the user
// is unknown; that leaves the request unauthenticated without raising
// an error. A non-nil error is an infrastructure failure and routes to
// the error boundary.
type UserStore interface {
	FindByID(ctx context.Context, id int) (*User, error)
}

// AuthConfig configures the auth deriver.
type AuthConfig struct {
	CookieName      string
	AdminPermission int
}

// AuthOption configures AuthConfig.
type AuthOption func(*AuthConfig)

// WithAuthCookie sets the fallback cookie name.
func WithAuthCookie(name string) AuthOption {
	return func(cfg *AuthConfig) {
		cfg.CookieName = name
	}
}

// WithAdminPermission sets the admin permission sentinel.
func WithAdminPermission(level int) AuthOption {
	return func(cfg *AuthConfig) {
		cfg.AdminPermission = level
	}
}

// Auth returns middleware that derives caller identity. It only
// derives, it never enforces: an unauthenticated request continues
// down the chain untouched.
//
// Token precedence: the Authorization Bearer header is tried first;
// only if it is absent or fails verification, and a distinct cookie
// token exists, is the cookie token verified. Identical header and
// cookie tokens are verified at most once. A claims id that does not
// coerce to an integer skips the user lookup entirely.
func Auth(verifier Verifier, store UserStore, opts ...AuthOption) internal.Middleware {
	cfg := &AuthConfig{
		CookieName:      DefaultAuthCookie,
		AdminPermission: DefaultAdminPermission,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *internal.Context) (*internal.Response, error) {
		headerToken := bearerToken(c)
		cookieToken := c.Cookies().Get(cfg.CookieName).Value

		var claims token.Claims
		if headerToken != "" {
			claims, _ = verifier.Verify(headerToken)
		}
		if claims == nil && cookieToken != "" && cookieToken != headerToken {
			claims, _ = verifier.Verify(cookieToken)
		}
		if claims == nil {
			return nil, nil
		}

		id, ok := coerceID(claims["id"])
		if !ok {
			return nil, nil
		}

		user, err := store.FindByID(c.Request().Context(), id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, nil
		}

		c.SetUser(user.ID, user.Username, user.Permission == cfg.AdminPermission)
		return nil, nil
	}
}

// bearerToken reads a Bearer token from the Authorization header with
// a case-insensitive scheme check.
func bearerToken(c *internal.Context) string {
	auth := c.Header("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return auth[7:]
}

// coerceID converts a claims id to an integer. JSON numbers arrive as
// float64; string ids are parsed. Anything non-finite or non-numeric
// reports false.
func coerceID(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}
