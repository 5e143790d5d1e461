package apiclient

import "context"

// Login exchanges credentials for a token pair and the principal's profile.
// A 401 here means bad credentials; the refresh protocol never triggers for
// the login endpoint.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var payload loginPayload
	if err := c.Post(ctx, LoginPath, credentials{Username: username, Password: password}, &payload); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Tokens: TokenPair{Access: payload.Access, Refresh: payload.Refresh},
		User:   payload.UserRecord,
	}, nil
}

// Refresh exchanges a refresh token for a fresh token pair. Servers that
// rotate refresh tokens return a new one; otherwise the refresh field is
// empty and the caller keeps its current token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	var pair TokenPair
	if err := c.Post(ctx, RefreshPath, refreshRequest{Refresh: refreshToken}, &pair); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// FetchSelf retrieves the authenticated principal's profile.
func (c *Client) FetchSelf(ctx context.Context) (UserRecord, error) {
	var user UserRecord
	if err := c.Get(ctx, SelfPath, &user); err != nil {
		return UserRecord{}, err
	}
	return user, nil
}

// UpdateSelf applies a partial profile update and returns the fields the
// server sent back. The response may be partial too; merging it into cached
// state is the caller's concern.
func (c *Client) UpdateSelf(ctx context.Context, update UserUpdate, into *UserRecord) error {
	return c.Patch(ctx, SelfPath, update, into)
}
