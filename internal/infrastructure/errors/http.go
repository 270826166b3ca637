// Package errors turns non-2xx upstream HTTP responses into structured errors.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// MinErrorStatusCode is the lowest status treated as an error.
	MinErrorStatusCode = 400

	maxBodyBytes = 64 << 10
)

// HTTPError is an upstream response with an error status.
type HTTPError struct {
	StatusCode int
	Status     string
	// Type is the upstream error type when the body names one,
	// for example "index_not_found_exception".
	Type    string
	Message string
	Body    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, e.Status)
	}
	if e.Type != "" {
		return fmt.Sprintf("HTTP error (%d): %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("HTTP error (%d): %s", e.StatusCode, e.Message)
}

// errorBody covers the shapes seen in practice: {"error": "text"},
// {"message": "text"} and the Elasticsearch form
// {"error": {"type": "...", "reason": "...", "root_cause": [...]}}.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type structuredError struct {
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	RootCause []struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"root_cause"`
}

// ParseResponse returns nil for statusCode below 400 and an *HTTPError
// otherwise, reading at most 64KiB of body to find a message.
func ParseResponse(statusCode int, body io.Reader) error {
	if statusCode < MinErrorStatusCode {
		return nil
	}

	httpErr := &HTTPError{StatusCode: statusCode, Status: http.StatusText(statusCode)}
	if body == nil {
		return httpErr
	}

	raw, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		httpErr.Message = fmt.Sprintf("read error body: %v", err)
		return httpErr
	}
	httpErr.Body = strings.TrimSpace(string(raw))
	httpErr.Type, httpErr.Message = extractMessage(raw)
	if httpErr.Message == "" {
		httpErr.Message = httpErr.Body
	}
	return httpErr
}

func extractMessage(raw []byte) (errType, message string) {
	var eb errorBody
	if json.Unmarshal(raw, &eb) != nil {
		return "", ""
	}

	var text string
	if json.Unmarshal(eb.Error, &text) == nil && text != "" {
		return "", text
	}

	var se structuredError
	if json.Unmarshal(eb.Error, &se) == nil && (se.Type != "" || se.Reason != "" || len(se.RootCause) > 0) {
		if se.Reason == "" && len(se.RootCause) > 0 {
			return se.RootCause[0].Type, se.RootCause[0].Reason
		}
		return se.Type, se.Reason
	}

	return "", eb.Message
}

// StatusCode reports the status carried by an *HTTPError anywhere in err's chain.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}
