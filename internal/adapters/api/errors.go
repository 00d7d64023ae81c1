package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
)

// StatusError is a non-2xx backend response. Message and Errors follow the
// backend's {"message": "...", "errors": {"field": ["..."]}} shape when present.
type StatusError struct {
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api status %d", e.Status)
}

// FirstValidationMessage returns the first field message in key order, or "".
func (e *StatusError) FirstValidationMessage() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if msgs := e.Errors[k]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// Unauthorized reports whether the token was rejected.
func (e *StatusError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

func newStatusError(status int, body []byte) *StatusError {
	se := &StatusError{Status: status}
	var parsed struct {
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return se
	}
	se.Message = parsed.Message
	if se.Message == "" {
		se.Message = parsed.Error
	}
	if len(parsed.Errors) > 0 {
		var fields map[string][]string
		if err := json.Unmarshal(parsed.Errors, &fields); err == nil {
			se.Errors = fields
		}
	}
	return se
}

// UserMessage returns the backend's explanation: the top-level message when
// no field errors are present, else the first field validation message.
func (e *StatusError) UserMessage() string {
	if e.Message != "" && len(e.Errors) == 0 {
		return e.Message
	}
	if msg := e.FirstValidationMessage(); msg != "" {
		return msg
	}
	return e.Message
}
