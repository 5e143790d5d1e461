package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies client errors the way collaborators branch on them.
type Kind string

const (
	// KindAPI marks an HTTP error carrying the server's status and message.
	KindAPI Kind = "API_ERROR"
	// KindNetwork marks a transport failure where no response was received.
	KindNetwork Kind = "NETWORK_ERROR"
	// KindAuth marks a terminal authentication failure (session expired).
	KindAuth Kind = "AUTH_ERROR"
	// KindParse marks a response body that could not be decoded.
	KindParse Kind = "PARSE_ERROR"
)

// ErrSessionExpired is wrapped into every AUTH_ERROR produced by the refresh
// protocol. Check with errors.Is to distinguish "log in again" from ordinary
// request failures.
var ErrSessionExpired = errors.New("session expired")

// Error is the structured error returned by all client operations.
type Error struct {
	Kind       Kind
	StatusCode int // zero when no response was received
	Message    string
	Err        error // underlying transport or decoding error, may be nil
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func apiError(statusCode int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", statusCode)
	}
	return &Error{Kind: KindAPI, StatusCode: statusCode, Message: message}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "network error occurred", Err: err}
}

func parseError(err error) *Error {
	return &Error{Kind: KindParse, Message: "invalid response format", Err: err}
}

func sessionExpiredError() *Error {
	return &Error{Kind: KindAuth, Message: "session expired", Err: ErrSessionExpired}
}
