package backend

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Common error types for the backend client
var (
	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrNoContent      = errors.New("no report content")
)

// APIError carries a non-2xx backend response with a best-effort human
// message extracted from the body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// ExtractMessage pulls a human-readable message from an error response
// body: JSON `message` first, then `detail.message`, then the raw text.
func ExtractMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if m := parsed.Get("message"); m.Type == gjson.String && m.String() != "" {
			return m.String()
		}
		if m := parsed.Get("detail.message"); m.Type == gjson.String && m.String() != "" {
			return m.String()
		}
		if d := parsed.Get("detail"); d.Type == gjson.String && d.String() != "" {
			return d.String()
		}
	}
	return strings.TrimSpace(string(body))
}
