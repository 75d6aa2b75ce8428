package oauthmodel

import "errors"

// ErrMissingAccessToken is returned when a 2xx token response has no access
// token.
var ErrMissingAccessToken = errors.New("token response has no access token")
