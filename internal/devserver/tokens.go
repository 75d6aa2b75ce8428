package devserver

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-journal-client/internal/devserver/refreshrepo"
	apperrors "github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/oauthmodel"
)

const tokenTypeAccess = "access"

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// issueTokens creates an access token and, when withRefresh is set, a new
// stored refresh token for userID.
func (s *Server) issueTokens(userID int64, withRefresh bool) (oauthmodel.TokenResponse, error) {
	access, err := s.issueAccessToken(userID)
	if err != nil {
		return oauthmodel.TokenResponse{}, err
	}
	resp := oauthmodel.TokenResponse{Access: access}
	if !withRefresh {
		return resp, nil
	}

	now := s.now()
	stored := &refreshrepo.StoredRefreshToken{
		Token:     generateRandomString(32),
		UserID:    userID,
		Iat:       now,
		ExpiresAt: now.Add(s.config.GetRefreshTokenExpiry()),
	}
	if err := s.refreshTokens.Upsert(stored); err != nil {
		return oauthmodel.TokenResponse{}, apperrors.Wrapf(err, "store refresh token")
	}
	resp.Refresh = stored.Token
	return resp, nil
}

func (s *Server) issueAccessToken(userID int64) (string, error) {
	now := s.now()
	s.mu.Lock()
	expiry := s.accessExpiry
	s.mu.Unlock()

	jti := uuid.New().String()
	signed, err := s.signer.Sign(jwt.MapClaims{
		"token_type": tokenTypeAccess,
		"user_id":    userID,
		"sub":        strconv.FormatInt(userID, 10),
		"iat":        now.Unix(),
		"exp":        now.Add(expiry).Unix(),
		"jti":        jti,
	})
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.issued[jti] = struct{}{}
	s.mu.Unlock()
	return signed, nil
}

// verifyAccessToken returns the user id of a valid, unrevoked access token.
func (s *Server) verifyAccessToken(token string) (int64, error) {
	claims, err := s.signer.Verify(token, s.now)
	if err != nil {
		if apperrors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperrors.ErrTokenExpired
		}
		return 0, apperrors.Wrapf(apperrors.ErrInvalidToken, "%v", err)
	}
	if claims["token_type"] != tokenTypeAccess {
		return 0, apperrors.ErrInvalidToken
	}

	jti, _ := claims["jti"].(string)
	s.mu.Lock()
	_, revoked := s.revoked[jti]
	s.mu.Unlock()
	if revoked {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidToken, "revoked")
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, apperrors.ErrInvalidToken
	}
	userID := int64(rawID)
	if _, err := s.users.GetByID(userID); err != nil {
		return 0, apperrors.ErrUserNotFound
	}
	return userID, nil
}

// redeemRefreshToken returns the owner of a stored refresh token.
func (s *Server) redeemRefreshToken(token string) (*refreshrepo.StoredRefreshToken, error) {
	stored, err := s.refreshTokens.Get(token)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if stored.Expired(s.now()) {
		_ = s.refreshTokens.Delete(token)
		return nil, apperrors.ErrRefreshTokenExpired
	}
	return stored, nil
}

// SetAccessTokenExpiry changes the lifetime of access tokens issued from now on.
func (s *Server) SetAccessTokenExpiry(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessExpiry = d
}

// SetRotateRefreshTokens makes the refresh endpoint return a new refresh
// token and retire the old one.
func (s *Server) SetRotateRefreshTokens(rotate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotate = rotate
}

// FailRefresh makes every refresh call answer 401.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// HoldRefresh blocks refresh calls until release is called.
func (s *Server) HoldRefresh() (release func()) {
	hold := make(chan struct{})
	s.mu.Lock()
	s.refreshHold = hold
	s.mu.Unlock()

	var released bool
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if released {
			return
		}
		released = true
		close(hold)
		if s.refreshHold == hold {
			s.refreshHold = nil
		}
	}
}

// RefreshCalls is the number of requests the refresh endpoint has received.
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// RevokeAccessTokens invalidates every access token issued so far, as if
// they had all expired.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti := range s.issued {
		s.revoked[jti] = struct{}{}
	}
}

// LastAuthorization is the Authorization header of the latest request to an
// authenticated route.
func (s *Server) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuthorization
}
