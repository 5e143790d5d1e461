// Package session manages an authenticated session's lifecycle: credentials,
// the cached user profile, and the login, refresh, and logout transitions.
// All credential state is written through to a kvstore backend so a process
// restart restores the session with Init.
//
// The store implements apiclient.Authorizer, so the client it is bound to
// transparently attaches the access token to outbound requests and calls
// back into the store to refresh when the server rejects it.
//
// Basic usage:
//
//	kv := kvstore.NewMemory()
//	sess, err := session.New(kv,
//		session.WithBaseURL("https://api.example.com"),
//		session.WithLogger(log),
//		session.WithSessionExpiredHook(func() {
//			// navigate to the login screen
//		}),
//	)
//	if err != nil {
//		return err
//	}
//
//	if err := sess.Init(ctx); err != nil {
//		return err
//	}
//
//	if !sess.IsAuthenticated() {
//		if err := sess.Login(ctx, username, password); err != nil {
//			// sess.Err() carries the user-facing message
//		}
//	}
//
//	user, err := sess.FetchUserData(ctx)
//
// # Lifecycle
//
// A session is anonymous until Login succeeds, authenticating while a login
// is in flight, and authenticated while an access token is held. Logout and
// session expiry clear both in-memory state and the persisted keys. Expiry
// is terminal: when a refresh fails for any reason the store clears itself
// and invokes the session-expired hook.
//
// # Concurrency
//
// The store is safe for concurrent use. Concurrent RefreshAccessToken calls
// are collapsed into a single upstream refresh; every caller observes the
// same outcome.
package session
