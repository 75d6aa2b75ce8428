package oauthmodel

import (
	"golang.org/x/oauth2"
)

// TokenResponse is returned by the login and refresh endpoints.
type TokenResponse struct {
	// Access is the bearer token for authenticated endpoints.
	// Usage: Authorization: Bearer <access>
	Access string `json:"access"`

	// Refresh is returned by login, and by refresh when the backend rotates
	// refresh tokens. Empty means "keep the current one".
	Refresh string `json:"refresh,omitempty"`
}

// Token converts the response into an oauth2.Token.
func (r TokenResponse) Token() (*oauth2.Token, error) {
	if r.Access == "" {
		return nil, ErrMissingAccessToken
	}
	return &oauth2.Token{
		AccessToken:  r.Access,
		RefreshToken: r.Refresh,
		TokenType:    "Bearer",
	}, nil
}
