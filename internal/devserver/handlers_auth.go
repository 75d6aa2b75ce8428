package devserver

import (
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-journal-client/internal/errors"
	"github.com/jrsteele09/go-journal-client/oauthmodel"
	"github.com/jrsteele09/go-journal-client/users"
)

const (
	detailNoActiveAccount = "No active account found with the given credentials"
	detailRefreshInvalid  = "Token is invalid or expired"
	detailUserNotFound    = "User not found."
	msgFieldRequired      = "This field is required."
)

// TokenObtainHandler exchanges email and password for an access and refresh
// token pair.
func (s *Server) TokenObtainHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauthmodel.LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error(), "parse_error")
			return
		}
		if req.Email == "" {
			writeFieldError(w, "email", msgFieldRequired)
			return
		}
		if req.Password == "" {
			writeFieldError(w, "password", msgFieldRequired)
			return
		}

		account, err := s.authenticate(req.Email, req.Password)
		if err != nil {
			s.logger.Info().Str("email", req.Email).Msg("login rejected")
			writeDetail(w, http.StatusUnauthorized, detailNoActiveAccount, "no_active_account")
			return
		}

		resp, err := s.issueTokens(account.ID, true)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to issue tokens")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// TokenRefreshHandler exchanges a refresh token for a new access token. With
// rotation enabled the refresh token is replaced too.
func (s *Server) TokenRefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.refreshCalls.Add(1)

		s.mu.Lock()
		hold, fail, rotate := s.refreshHold, s.failRefresh, s.rotate
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if fail {
			writeDetail(w, http.StatusUnauthorized, detailRefreshInvalid, codeTokenNotValid)
			return
		}

		var req oauthmodel.RefreshRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error(), "parse_error")
			return
		}
		if req.Refresh == "" {
			writeFieldError(w, "refresh", msgFieldRequired)
			return
		}

		stored, err := s.redeemRefreshToken(req.Refresh)
		if err != nil {
			s.logger.Info().Err(err).Msg("refresh rejected")
			writeDetail(w, http.StatusUnauthorized, detailRefreshInvalid, codeTokenNotValid)
			return
		}

		resp, err := s.issueTokens(stored.UserID, rotate)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to issue tokens")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		if rotate {
			_ = s.refreshTokens.Delete(req.Refresh)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// SignupHandler creates an account. It does not log the user in.
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauthmodel.SignupRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error(), "parse_error")
			return
		}
		if !strings.Contains(req.Email, "@") {
			writeFieldError(w, "email", "Enter a valid email address.")
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeFieldError(w, "password", err.Error())
			return
		}

		hash, err := users.HashPassword(req.Password)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to hash password")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		account := &users.Account{
			User: users.User{
				Email:     req.Email,
				FirstName: req.FirstName,
				LastName:  req.LastName,
			},
			PasswordHash: hash,
		}
		if err := s.users.Create(account); err != nil {
			if apperrors.Is(err, users.ErrUserExists) {
				writeFieldError(w, "email", "user with this email already exists.")
				return
			}
			s.logger.Error().Err(err).Msg("failed to create user")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		writeJSON(w, http.StatusCreated, account.User)
	}
}

// ResetPasswordHandler sets a new password for the account with the given
// email and signs out its other sessions.
func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauthmodel.ResetPasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error(), "parse_error")
			return
		}
		if req.Email == "" {
			writeFieldError(w, "email", msgFieldRequired)
			return
		}
		if err := users.ValidatePasswordStrength(req.NewPassword); err != nil {
			writeFieldError(w, "new_password", err.Error())
			return
		}

		account, err := s.users.GetByEmail(req.Email)
		if err != nil {
			writeDetail(w, http.StatusNotFound, detailUserNotFound, "")
			return
		}
		hash, err := users.HashPassword(req.NewPassword)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to hash password")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		if err := s.users.SetPasswordHash(account.Email, hash); err != nil {
			s.logger.Error().Err(err).Msg("failed to update password")
			writeDetail(w, http.StatusInternalServerError, "Internal server error.", "")
			return
		}
		_ = s.refreshTokens.DeleteByUserID(account.ID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful."})
	}
}

// ProfileHandler returns the authenticated user.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := s.users.GetByID(userIDFromContext(r.Context()))
		if err != nil {
			writeDetail(w, http.StatusNotFound, detailUserNotFound, "")
			return
		}
		writeJSON(w, http.StatusOK, account.User)
	}
}

func (s *Server) authenticate(email, password string) (*users.Account, error) {
	account, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !users.CheckPasswordHash(password, account.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return account, nil
}
