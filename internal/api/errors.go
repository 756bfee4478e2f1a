package api

import (
	"encoding/json"
	"errors"
	"strings"
)

// Error is a non-2xx reply from the backend. Message is what the user sees.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// newError pulls "detail" out of the payload, falling back when the body
// is not JSON or the field is missing. FastAPI validation errors carry a
// list in "detail"; the first entry's "msg" is used for those.
func newError(status int, payload []byte, fallback string) *Error {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	msg := ""
	if err := json.Unmarshal(payload, &body); err == nil && len(body.Detail) > 0 {
		msg = detailMessage(body.Detail)
	}
	if strings.TrimSpace(msg) == "" {
		msg = fallback
	}
	return &Error{Status: status, Message: msg}
}

func detailMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0].Msg
	}
	return ""
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message renders err for display: the backend message for an *Error,
// err.Error() otherwise, fallback for nil-ish cases.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
