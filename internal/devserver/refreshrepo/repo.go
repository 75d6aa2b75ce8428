package refreshrepo

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("refresh token not found")

// StoredRefreshToken is the server side record of an issued refresh token.
// Clients only ever see Token, an opaque random string.
type StoredRefreshToken struct {
	Token     string
	UserID    int64
	Iat       time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t *StoredRefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Repo stores refresh token metadata keyed by the token string.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Get(token string) (*StoredRefreshToken, error)
	Delete(token string) error
	DeleteByUserID(userID int64) error
}
