package session

// Status is the lifecycle state of a session.
type Status uint8

const (
	// StatusAnonymous means no access token is held.
	StatusAnonymous Status = iota
	// StatusAuthenticating means a login is in flight and no token is held yet.
	StatusAuthenticating
	// StatusAuthenticated means an access token is held.
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}
