package devserver

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUserID stores the authenticated user ID
const ContextKeyUserID ContextKey = "user_id"

const (
	detailNoCredentials = "Authentication credentials were not provided."
	detailTokenNotValid = "Given token not valid for any token type"
	codeTokenNotValid   = "token_not_valid"
)

// RequireAuth is middleware that validates a Bearer access token and puts
// the user id in the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			s.mu.Lock()
			s.lastAuthorization = authHeader
			s.mu.Unlock()

			if authHeader == "" {
				writeDetail(w, http.StatusUnauthorized, detailNoCredentials, "not_authenticated")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				writeDetail(w, http.StatusUnauthorized, detailTokenNotValid, codeTokenNotValid)
				return
			}

			userID, err := s.verifyAccessToken(parts[1])
			if err != nil {
				s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected access token")
				writeDetail(w, http.StatusUnauthorized, detailTokenNotValid, codeTokenNotValid)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, userID)
			next(w, r.WithContext(ctx))
		}
	}
}

func userIDFromContext(ctx context.Context) int64 {
	userID, _ := ctx.Value(ContextKeyUserID).(int64)
	return userID
}
