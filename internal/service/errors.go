package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrMissingAIKey is returned per request when direct AI mode has no key.
	ErrMissingAIKey = errors.New("AI provider key is not configured")
)

// TransportError is a network failure before any HTTP status was received.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e TransportError) Unwrap() error { return e.Err }

// UpstreamError is a non-2xx response.
type UpstreamError struct {
	Status  int
	Message string
}

func (e UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// Is lets a 401 match ErrNotAuthenticated.
func (e UpstreamError) Is(target error) bool {
	return target == ErrNotAuthenticated && e.Status == http.StatusUnauthorized
}

// MalformedResponseError is a 2xx response whose body has an unexpected shape.
type MalformedResponseError struct {
	Detail string
	Err    error
}

func (e MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Detail, e.Err)
	}
	return "malformed response: " + e.Detail
}

func (e MalformedResponseError) Unwrap() error { return e.Err }

// errorMessage extracts a message from {"error":"..."} or
// {"error":{"message":"..."}} bodies, falling back to the raw text.
func errorMessage(body []byte) string {
	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return flat.Error
	}
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// UserMessage turns an error into the short string shown in place of a list
// or editor.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		te TransportError
		ue UpstreamError
		me MalformedResponseError
	)
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "You are not signed in. Run `probel auth login` first."
	case errors.Is(err, ErrMissingAIKey):
		return "AI is not configured. Set ANTHROPIC_API_KEY."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled or timed out."
	case errors.As(err, &te):
		return "Could not reach the server. Check your connection."
	case errors.As(err, &ue):
		switch {
		case ue.Status == http.StatusNotFound:
			return "Not found. It may have been deleted."
		case ue.Message != "":
			return fmt.Sprintf("Request failed (%d): %s", ue.Status, ue.Message)
		default:
			return fmt.Sprintf("Request failed (%d).", ue.Status)
		}
	case errors.As(err, &me):
		return "Unexpected response from the server."
	}
	return "Something went wrong: " + err.Error()
}
