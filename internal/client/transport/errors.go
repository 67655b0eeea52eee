package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/iamclient/internal/common"
)

// HTTPError is a failed exchange. Either IsNetworkError is set and Err holds
// the cause, or Status carries the backend's non-success status code.
type HTTPError struct {
	Method         string
	URL            string
	Status         int
	Header         http.Header
	Body           []byte
	IsNetworkError bool
	Err            error
}

func (e *HTTPError) Error() string {
	if e.IsNetworkError {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, e.Message())
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match an HTTPError against the common sentinels.
func (e *HTTPError) Is(target error) bool {
	if e.IsNetworkError {
		return target == common.ErrUnavailable
	}
	switch e.Status {
	case http.StatusUnauthorized:
		return target == common.ErrUnauthorized
	case http.StatusForbidden:
		return target == common.ErrForbidden
	case http.StatusNotFound:
		return target == common.ErrNotFound
	case http.StatusTooManyRequests:
		return target == common.ErrRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return target == common.ErrUnavailable
	}
	return false
}

// Unauthorized reports a 401 reply (not a network failure).
func (e *HTTPError) Unauthorized() bool {
	return !e.IsNetworkError && e.Status == http.StatusUnauthorized
}

// Message returns the most useful human-readable text in the error: a
// message field from a JSON body when there is one, else the status text.
func (e *HTTPError) Message() string {
	if e.IsNetworkError {
		if e.Err != nil {
			return e.Err.Error()
		}
		return "network error"
	}
	if msg := bodyMessage(e.Header, e.Body); msg != "" {
		return msg
	}
	if txt := http.StatusText(e.Status); txt != "" {
		return txt
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

func bodyMessage(h http.Header, body []byte) string {
	if len(body) == 0 || !isJSON(h) {
		return ""
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}

	for _, k := range []string{"message", "title", "detail", "error"} {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return ""
}
