package integrations

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a resource doesn't exist on the backend.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned for 429 responses.
	ErrRateLimited = errors.New("rate limited")

	// ErrRejected is returned for other 4xx responses.
	ErrRejected = errors.New("request rejected")
)

// StatusError is returned for non-2xx responses. It keeps the (truncated)
// response body so API clients can surface the backend's own message.
type StatusError struct {
	Code int
	Body []byte
	Err  error
}

func (e *StatusError) Error() string { return e.Err.Error() }

func (e *StatusError) Unwrap() error { return e.Err }

// Message returns the "error" field of a JSON error body, if any.
func (e *StatusError) Message() string {
	return ErrorMessage(e.Body)
}

// ErrorMessage extracts the "error" field from a JSON object body. It returns
// "" when body is not such an object.
func ErrorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return ""
	}
	var env struct {
		Error string `json:"error"`
	}
	if json.Unmarshal([]byte(trimmed), &env) != nil {
		return ""
	}
	return env.Error
}

// NewHTTPClient creates an HTTP client with a standard timeout for backend requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// JoinURL appends path segments to base, escaping each segment.
func JoinURL(base string, segments ...string) string {
	out := strings.TrimRight(base, "/")
	for _, s := range segments {
		out += "/" + url.PathEscape(s)
	}
	return out
}
