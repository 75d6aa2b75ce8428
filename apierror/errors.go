// Package apierror defines the error kinds surfaced by the journal client.
//
// Every failure returned by the auth operations, the request gateway and the
// credential stores is one of four kinds. Callers branch on the kind with
// errors.Is against the sentinels, or errors.As for the details.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrTransport matches any *TransportError.
	ErrTransport = errors.New("transport error")
	// ErrAuthentication matches any *AuthenticationError.
	ErrAuthentication = errors.New("authentication failure")
	// ErrApplication matches any *ApplicationError.
	ErrApplication = errors.New("application error")
	// ErrStorage matches any *StorageError.
	ErrStorage = errors.New("storage error")
)

// TransportError means the backend could not be reached or did not answer
// (DNS, connection refused, timeout, cancelled context).
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// AuthenticationError is a 401 from an authenticated endpoint after the
// refresh flow has run its course.
type AuthenticationError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	// Replayed is set when the 401 came from the single replay that follows a
	// successful refresh.
	Replayed bool
	// Cause holds the refresh failure when the refresh itself failed. It is
	// kept for logging; the error the caller sees is still the original 401.
	Cause error
}

func (e *AuthenticationError) Error() string {
	msg := fmt.Sprintf("%s %s: authentication failed (%d)", e.Method, e.Path, e.StatusCode)
	if e.Replayed {
		msg += " after token refresh"
	}
	return msg
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

// ApplicationError is any other non-2xx response. Body is the upstream error
// body, verbatim.
type ApplicationError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *ApplicationError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *ApplicationError) Is(target error) bool { return target == ErrApplication }

// Message pulls a human readable message out of the body. It understands the
// shapes the backend produces: {"detail": ...}, {"error": ...},
// {"message": ...} and field error maps such as {"email": ["already taken"]}.
func (e *ApplicationError) Message() string {
	return Message(e.Body)
}

// StorageError wraps a credential store failure. It never carries the stored
// value.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("credential store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Message extracts a display message from a JSON error body. Non-JSON bodies
// are returned trimmed.
func Message(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	parsed := gjson.ParseBytes(body)
	if parsed.Type == gjson.String {
		return parsed.String()
	}
	for _, field := range []string{"detail", "error_description", "error", "message", "msg"} {
		if v := parsed.Get(field); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	if !parsed.IsObject() {
		return strings.TrimSpace(parsed.Raw)
	}
	var parts []string
	parsed.ForEach(func(key, value gjson.Result) bool {
		if value.IsArray() {
			for _, item := range value.Array() {
				parts = append(parts, key.String()+": "+item.String())
			}
			return true
		}
		parts = append(parts, key.String()+": "+value.String())
		return true
	})
	return strings.Join(parts, "; ")
}
