package apiclient

// UserRecord is the authenticated principal's profile as returned by the API.
type UserRecord struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	PreferredName string `json:"preferred_name,omitempty"`
}

// Complete reports whether the record carries the three identity fields every
// profile must have. Incomplete cached records are refetched.
func (u UserRecord) Complete() bool {
	return u.ID != "" && u.Username != "" && u.Email != ""
}

// UserUpdate is a partial profile update. Nil fields are omitted from the
// PATCH body, so callers send only what changed.
type UserUpdate struct {
	Username      *string `json:"username,omitempty"`
	Email         *string `json:"email,omitempty"`
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	PreferredName *string `json:"preferred_name,omitempty"`
}

// TokenPair holds an access/refresh credential pair minted by the server.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginResult is the outcome of a successful login: the credential pair plus
// the principal's profile, which the server returns flattened alongside the
// tokens.
type LoginResult struct {
	Tokens TokenPair
	User   UserRecord
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// loginPayload mirrors the login endpoint's data object: access and refresh
// tokens with the user fields inlined at the same level.
type loginPayload struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	UserRecord
}
