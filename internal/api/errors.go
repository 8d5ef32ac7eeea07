package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for any 401 on an authenticated endpoint.
// By the time a caller sees it, the stored credentials have already been
// cleared and the response body must not be used.
var ErrUnauthorized = errors.New("session expired, please sign in again")

// genericMessage is the last-resort text for a failed request.
const genericMessage = "request failed"

// Error is a non-2xx response from the service. Message is the text
// meant for the user: the server's structured message when it sent one,
// otherwise the HTTP status text.
type Error struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string

	// fromBody is set when Message came from the response body rather
	// than the status line.
	fromBody bool
}

func (e *Error) Error() string {
	return e.Message
}

// DecodeError indicates a 2xx response whose body did not match the
// schema of the endpoint.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err (or any error in its chain) is a
// session expiry.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is
// not an API error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// ServerMessage returns the message the server put in the error body,
// if any.
func ServerMessage(err error) (string, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.fromBody && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// UserMessage returns the text to show for err. API errors and session
// expiry carry their own message; anything else (transport failures,
// decode errors) uses fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if IsUnauthorized(err) {
		return ErrUnauthorized.Error()
	}
	return fallback
}
