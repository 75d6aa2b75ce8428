package auth

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-journal-client/credentials"
	"github.com/jrsteele09/go-journal-client/oauthmodel"
	"github.com/jrsteele09/go-journal-client/sessions"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// RefreshAccessToken exchanges a refresh token for a new access token. It
// does not touch the session or the store; ApplyRefresh commits the result.
// The returned token carries a RefreshToken only when the backend rotated it.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	body, err := s.postJSON(ctx, s.endpoints.Refresh, oauthmodel.RefreshRequest{Refresh: refreshToken})
	if err != nil {
		return nil, err
	}

	var tr oauthmodel.TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, errors.Wrap(err, "[RefreshAccessToken] decode token response")
	}
	tok, err := tr.Token()
	if err != nil {
		return nil, errors.Wrap(err, "[RefreshAccessToken]")
	}
	return tok, nil
}

// ApplyRefresh commits a refreshed token obtained with usedRefreshToken. It
// returns ErrSessionChanged, and changes nothing, when the session was logged
// out or replaced by another login while the refresh was in flight.
//
// A store write failure is returned but the session is updated anyway.
func (s *Service) ApplyRefresh(ctx context.Context, usedRefreshToken string, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return errors.Wrap(oauthmodel.ErrMissingAccessToken, "[ApplyRefresh]")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stale bool
	var storeErr error
	err := s.session.Update(func(current sessions.State) sessions.State {
		if current.Status == sessions.StatusUnauthenticated ||
			(current.RefreshToken != "" && current.RefreshToken != usedRefreshToken) {
			stale = true
			return current
		}

		refresh := usedRefreshToken
		if tok.RefreshToken != "" {
			refresh = tok.RefreshToken
			storeErr = credentials.Save(ctx, s.store, credentials.Credentials{AccessToken: tok.AccessToken, RefreshToken: refresh})
		} else {
			storeErr = credentials.SaveAccessToken(ctx, s.store, tok.AccessToken)
		}
		return sessions.LoggedIn(tok.AccessToken, refresh)
	})
	if err != nil {
		return errors.Wrap(err, "[ApplyRefresh] session.Update")
	}
	if stale {
		return ErrSessionChanged
	}

	s.logExpiry(tok.AccessToken, "access token refreshed")
	return storeErr
}
