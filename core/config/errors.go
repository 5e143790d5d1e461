package config

import "errors"

var (
	// ErrNilConfig is returned when Load is called with a nil pointer.
	ErrNilConfig = errors.New("config: nil config pointer")
	// ErrParseFailed is returned when environment variables cannot be parsed
	// into the config struct.
	ErrParseFailed = errors.New("config: failed to parse environment")
)
