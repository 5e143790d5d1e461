package session

import "errors"

var (
	// ErrNilStorage is returned when New is called without a storage backend.
	ErrNilStorage = errors.New("session: storage is required")
	// ErrMissingBaseURL is returned when New is called without an API client
	// or a base URL to build one from.
	ErrMissingBaseURL = errors.New("session: api client or base url is required")
	// ErrNoRefreshToken is returned when a refresh is attempted with no
	// refresh token in memory or storage.
	ErrNoRefreshToken = errors.New("session: no refresh token available")
)
