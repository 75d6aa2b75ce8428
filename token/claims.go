// Package token reads the claims of access tokens issued by the backend.
//
// The client never verifies signatures: it has no key and the backend remains
// the authority. Claims are only used as hints, e.g. to refresh shortly before
// expiry or to log when a restored token expires.
package token

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for opaque (non-JWT) tokens.
var ErrNotJWT = errors.New("token is not a JWT")

// Claims is the subset of registered claims the client cares about.
type Claims struct {
	Subject   string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect parses raw without verifying its signature.
func Inspect(raw string) (*Claims, error) {
	if strings.Count(raw, ".") != 2 {
		return nil, ErrNotJWT
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, &jwtlib.RegisteredClaims{})
	if err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}
	registered, ok := parsed.Claims.(*jwtlib.RegisteredClaims)
	if !ok {
		return nil, errors.New("error extracting claims")
	}

	claims := &Claims{
		Subject: registered.Subject,
		ID:      registered.ID,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}

// ExpiresWithin reports whether the token expires before now+d. Tokens
// without an exp claim never expire.
func (c *Claims) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(c.ExpiresAt)
}

// Expired reports whether the token is past its exp claim.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresWithin(now, 0)
}
