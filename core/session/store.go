package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/authkit/core/apiclient"
	"github.com/dmitrymomot/authkit/core/kvstore"
	"github.com/dmitrymomot/authkit/core/logger"
)

// Storage keys for the persisted credential state.
const (
	tokenKey        = "token"
	refreshTokenKey = "refreshToken"
	userDataKey     = "userData"
)

// Store holds the session's credential state and drives the authentication
// lifecycle. All state changes are written through to the storage backend so
// a later Init on a fresh Store restores the session.
//
// Store implements apiclient.Authorizer and is safe for concurrent use.
type Store struct {
	kv     kvstore.Store
	client *apiclient.Client
	log    *slog.Logger

	mu        sync.RWMutex
	access    string
	refresh   string
	user      *apiclient.UserRecord
	lastError string
	loading   bool

	onExpired func() // immutable after New

	// Serializes concurrent refresh attempts so a burst of rejected
	// requests produces a single refresh call.
	refreshGroup singleflight.Group
}

// Option configures the store.
type Option func(*options)

type options struct {
	client    *apiclient.Client
	baseURL   string
	log       *slog.Logger
	onExpired func()
}

// WithClient uses an existing API client instead of constructing one. The
// store registers itself as the client's authorizer.
func WithClient(client *apiclient.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithBaseURL constructs the API client against the given base URL. Ignored
// when WithClient is set.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithLogger sets the logger for lifecycle and persistence events.
// Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithSessionExpiredHook sets the callback invoked when the session expires
// terminally, after local state has been cleared. Applications typically
// navigate to their login screen here.
func WithSessionExpiredHook(fn func()) Option {
	return func(o *options) {
		o.onExpired = fn
	}
}

// New creates a session store backed by kv. Either WithClient or WithBaseURL
// must be provided; the store wires itself into the client as its Authorizer
// and session-expired handler.
func New(kv kvstore.Store, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, ErrNilStorage
	}

	o := options{
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	client := o.client
	if client == nil {
		if o.baseURL == "" {
			return nil, ErrMissingBaseURL
		}
		client = apiclient.New(o.baseURL, apiclient.WithLogger(o.log))
	}

	s := &Store{
		kv:        kv,
		client:    client,
		log:       o.log,
		onExpired: o.onExpired,
	}

	client.SetAuthorizer(s)
	client.SetSessionExpiredHook(s.expire)

	return s, nil
}

// Client returns the API client bound to this session.
func (s *Store) Client() *apiclient.Client {
	return s.client
}

// Status reports the session's lifecycle state. A held access token means
// authenticated even while a background operation is in flight; the
// authenticating state only covers the window where a login has started and
// no token has arrived yet.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.access != "":
		return StatusAuthenticated
	case s.loading:
		return StatusAuthenticating
	default:
		return StatusAnonymous
	}
}

// IsAuthenticated reports whether an access token is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != ""
}

// Loading reports whether a lifecycle operation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// AccessToken returns the current access token, empty when anonymous.
// Part of the apiclient.Authorizer contract.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the current refresh token, empty when none is held.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// User returns the cached profile and whether one is held.
func (s *Store) User() (apiclient.UserRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return apiclient.UserRecord{}, false
	}
	return *s.user, true
}

// Err returns the message of the last failed operation, cleared by the next
// login attempt.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// SetToken stores the access token and writes it through to storage. An
// empty token removes the stored value.
func (s *Store) SetToken(ctx context.Context, token string) {
	s.mu.Lock()
	s.access = token
	s.mu.Unlock()
	s.persistString(ctx, tokenKey, token)
}

// SetRefreshToken stores the refresh token and writes it through to storage.
// An empty token removes the stored value.
func (s *Store) SetRefreshToken(ctx context.Context, token string) {
	s.mu.Lock()
	s.refresh = token
	s.mu.Unlock()
	s.persistString(ctx, refreshTokenKey, token)
}

// SetUser caches the profile and writes it through to storage.
func (s *Store) SetUser(ctx context.Context, user apiclient.UserRecord) {
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	entry, err := kvstore.NewJSON(user)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to encode user data",
			logger.Component("session"),
			logger.Error(err),
		)
		return
	}
	if err := s.kv.Set(ctx, userDataKey, entry); err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to persist user data",
			logger.Component("session"),
			logger.StorageKey(userDataKey),
			logger.Error(err),
		)
	}
}

// SetError records a failure message for the UI layer to surface.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
}

// SetLoading toggles the in-flight flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// Init hydrates the session from storage. Missing keys leave the session
// anonymous; corrupt entries are removed and logged. Returns an error only
// when the backend itself fails.
func (s *Store) Init(ctx context.Context) error {
	access, err := s.loadString(ctx, tokenKey)
	if err != nil {
		return err
	}
	refresh, err := s.loadString(ctx, refreshTokenKey)
	if err != nil {
		return err
	}

	var user *apiclient.UserRecord
	entry, err := s.kv.Get(ctx, userDataKey)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
	case err != nil:
		return err
	default:
		var record apiclient.UserRecord
		if decodeErr := entry.Decode(&record); decodeErr != nil {
			s.dropCorrupt(ctx, userDataKey, decodeErr)
		} else {
			user = &record
		}
	}

	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.user = user
	s.mu.Unlock()

	s.log.LogAttrs(ctx, slog.LevelDebug, "session hydrated",
		logger.Component("session"),
		logger.Event("init"),
		slog.Bool("authenticated", access != ""),
	)

	return nil
}

// Login exchanges credentials for a session. On success the token pair and
// profile are stored and persisted; on failure the error message is recorded
// and the session stays anonymous.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()

	result, err := s.client.Login(ctx, username, password)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.lastError = errorMessage(err)
		s.mu.Unlock()

		s.log.LogAttrs(ctx, slog.LevelWarn, "login failed",
			logger.Component("session"),
			logger.Event("login"),
			logger.Error(err),
		)
		return err
	}

	s.SetToken(ctx, result.Tokens.Access)
	s.SetRefreshToken(ctx, result.Tokens.Refresh)
	s.SetUser(ctx, result.User)
	s.SetLoading(false)

	s.log.LogAttrs(ctx, slog.LevelInfo, "login succeeded",
		logger.Component("session"),
		logger.Event("login"),
		logger.UserID(result.User.ID),
	)

	return nil
}

// Logout clears the session locally: in-memory state and the persisted
// credential keys. No server call is made.
func (s *Store) Logout(ctx context.Context) {
	s.clear(ctx)

	s.log.LogAttrs(ctx, slog.LevelInfo, "logged out",
		logger.Component("session"),
		logger.Event("logout"),
	)
}

// FetchUserData returns the principal's profile, cheapest source first:
// the in-memory cache, then storage, then the API. A record missing any of
// its identity fields does not count and falls through to the next source.
func (s *Store) FetchUserData(ctx context.Context) (apiclient.UserRecord, error) {
	if user, ok := s.User(); ok && user.Complete() {
		return user, nil
	}

	s.SetLoading(true)
	defer s.SetLoading(false)

	entry, err := s.kv.Get(ctx, userDataKey)
	if err == nil {
		var cached apiclient.UserRecord
		if decodeErr := entry.Decode(&cached); decodeErr != nil {
			s.dropCorrupt(ctx, userDataKey, decodeErr)
		} else if cached.Complete() {
			s.mu.Lock()
			s.user = &cached
			s.mu.Unlock()
			return cached, nil
		}
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		return apiclient.UserRecord{}, err
	}

	user, err := s.client.FetchSelf(ctx)
	if err != nil {
		s.SetError(errorMessage(err))
		return apiclient.UserRecord{}, err
	}

	s.SetUser(ctx, user)
	return user, nil
}

// UpdateUser sends a partial profile update and merges the server's response
// into the cached profile. Fields the server omits keep their cached values.
func (s *Store) UpdateUser(ctx context.Context, update apiclient.UserUpdate) (apiclient.UserRecord, error) {
	merged, _ := s.User()

	if err := s.client.UpdateSelf(ctx, update, &merged); err != nil {
		s.SetError(errorMessage(err))
		return apiclient.UserRecord{}, err
	}

	s.SetUser(ctx, merged)

	s.log.LogAttrs(ctx, slog.LevelDebug, "user profile updated",
		logger.Component("session"),
		logger.Event("update_user"),
		logger.UserID(merged.ID),
	)

	return merged, nil
}

// RefreshAccessToken exchanges the refresh token for a new token pair.
// Concurrent callers share a single in-flight refresh. Any failure,
// including a missing refresh token, expires the session. Part of the
// apiclient.Authorizer contract.
func (s *Store) RefreshAccessToken(ctx context.Context) error {
	_, err, _ := s.refreshGroup.Do(refreshTokenKey, func() (any, error) {
		return nil, s.refreshOnce(ctx)
	})
	return err
}

func (s *Store) refreshOnce(ctx context.Context) error {
	refresh := s.RefreshToken()
	if refresh == "" {
		// A restarted process may hold the token only in storage.
		if stored, err := s.loadString(ctx, refreshTokenKey); err == nil {
			refresh = stored
		}
	}
	if refresh == "" {
		s.expire()
		return ErrNoRefreshToken
	}

	pair, err := s.client.Refresh(ctx, refresh)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "token refresh failed",
			logger.Component("session"),
			logger.Event("refresh"),
			logger.Error(err),
		)
		s.expire()
		return err
	}

	s.SetToken(ctx, pair.Access)
	if pair.Refresh != "" {
		s.SetRefreshToken(ctx, pair.Refresh)
	}

	s.log.LogAttrs(ctx, slog.LevelDebug, "access token refreshed",
		logger.Component("session"),
		logger.Event("refresh"),
	)

	return nil
}

// expire clears the session and notifies the application. Invoked by the
// client's 401 protocol and by failed refresh attempts.
func (s *Store) expire() {
	s.clear(context.Background())

	if s.onExpired != nil {
		s.onExpired()
	}
}

func (s *Store) clear(ctx context.Context) {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.user = nil
	s.lastError = ""
	s.loading = false
	s.mu.Unlock()

	for _, key := range []string{tokenKey, refreshTokenKey, userDataKey} {
		if err := s.kv.Remove(ctx, key); err != nil {
			s.log.LogAttrs(ctx, slog.LevelWarn, "failed to remove stored value",
				logger.Component("session"),
				logger.StorageKey(key),
				logger.Error(err),
			)
		}
	}
}

func (s *Store) persistString(ctx context.Context, key, value string) {
	var err error
	if value == "" {
		err = s.kv.Remove(ctx, key)
	} else {
		err = s.kv.Set(ctx, key, kvstore.NewString(value))
	}
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to persist value",
			logger.Component("session"),
			logger.StorageKey(key),
			logger.Error(err),
		)
	}
}

func (s *Store) loadString(ctx context.Context, key string) (string, error) {
	entry, err := s.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	value, err := entry.Text()
	if err != nil {
		s.dropCorrupt(ctx, key, err)
		return "", nil
	}
	return value, nil
}

func (s *Store) dropCorrupt(ctx context.Context, key string, cause error) {
	s.log.LogAttrs(ctx, slog.LevelWarn, "dropping corrupt stored value",
		logger.Component("session"),
		logger.StorageKey(key),
		logger.Error(cause),
	)
	if err := s.kv.Remove(ctx, key); err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to remove stored value",
			logger.Component("session"),
			logger.StorageKey(key),
			logger.Error(err),
		)
	}
}

// errorMessage extracts the user-facing message from a client error.
func errorMessage(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

var _ apiclient.Authorizer = (*Store)(nil)
