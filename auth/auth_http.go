package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-journal-client/apierror"
	"github.com/pkg/errors"
)

const maxBodyBytes = 1 << 20

// postJSON sends body to path and returns the raw 2xx response body.
// Non-2xx answers become *apierror.ApplicationError, whatever the status:
// these endpoints are unauthenticated so a 401 means bad credentials.
func (s *Service) postJSON(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "[auth.postJSON] json.Marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(s.baseURL, path), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "[auth.postJSON] http.NewRequestWithContext")
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Str("request_id", requestID).Msg("auth request failed")
		return nil, &apierror.TransportError{Method: http.MethodPost, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &apierror.TransportError{Method: http.MethodPost, Path: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Info().Str("path", path).Str("request_id", requestID).Int("status", resp.StatusCode).Msg("auth request rejected")
		return nil, &apierror.ApplicationError{Method: http.MethodPost, Path: path, StatusCode: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}

func joinURL(base, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + path
}
