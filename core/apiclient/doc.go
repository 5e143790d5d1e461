// Package apiclient provides an HTTP client for the authentication-backed
// API with transparent bearer token injection and a bounded refresh-and-retry
// protocol on 401 responses.
//
// The client speaks the API's uniform response envelope, where every body is
// a JSON object with a data payload and an optional error message:
//
//	{"data": {...}, "error": ""}
//
// Errors from all operations are *Error values classified by Kind: API errors
// carry the server's status and message, network errors wrap transport
// failures, parse errors wrap malformed bodies, and auth errors mark a
// terminally expired session.
//
// Basic usage:
//
//	client := apiclient.New("https://api.example.com",
//		apiclient.WithLogger(log),
//	)
//
//	result, err := client.Login(ctx, "alice", "secret")
//	if err != nil {
//		var apiErr *apiclient.Error
//		if errors.As(err, &apiErr) && apiErr.Kind == apiclient.KindAPI {
//			// bad credentials, show apiErr.Message
//		}
//		return err
//	}
//
// # Token Injection and Refresh
//
// An Authorizer supplies the access token attached to every outbound request
// and performs a refresh when the server rejects it. The session store
// implements Authorizer and wires itself in via SetAuthorizer; standalone
// clients work without one and simply send unauthenticated requests.
//
// When a request other than login or refresh receives a 401, the client asks
// the Authorizer to refresh once and replays the original request with the
// new token. The replay is marked through its context, so a second 401 fails
// instead of looping. A 401 from the refresh endpoint itself is terminal:
// the session-expired hook fires and the caller receives an AUTH_ERROR
// wrapping ErrSessionExpired.
//
// # Configuration
//
// Config loads the base URL and timeout from the environment:
//
//	var cfg apiclient.Config
//	config.MustLoad(&cfg)
//	client := apiclient.NewFromConfig(cfg)
package apiclient
