package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	clienterrors "github.com/lightingmap/go-client/internal/errors"
	"github.com/lightingmap/go-client/users"
)

// LoginClient performs the credentials call against the authentication
// endpoint and returns the issued profile and access token.
type LoginClient interface {
	Login(ctx context.Context, email, password string) (*users.User, string, error)
}

// Store is the single source of truth for the current identity and
// credential. All five operations perform their in-memory update and
// persisted-storage write together under one lock, so readers never
// observe a torn session.
type Store struct {
	lock    sync.RWMutex
	session Session
	loading bool

	storage  Storage
	login    LoginClient
	notifier Notifier
	nav      Navigator
	log      zerolog.Logger
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNotifier replaces the default log-backed notifier.
func WithNotifier(n Notifier) StoreOption {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithNavigator replaces the default no-op navigator.
func WithNavigator(n Navigator) StoreOption {
	return func(s *Store) {
		s.nav = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore initializes a session store with required dependencies.
// Optional collaborators can be provided via options.
func NewStore(storage Storage, login LoginClient, options ...StoreOption) (*Store, error) {
	if storage == nil {
		return nil, errors.New("[NewStore] storage is required")
	}
	if login == nil {
		return nil, errors.New("[NewStore] login client is required")
	}

	store := &Store{
		storage: storage,
		login:   login,
		nav:     NopNavigator{},
		log:     zerolog.Nop(),
	}

	for _, opt := range options {
		opt(store)
	}

	if store.notifier == nil {
		store.notifier = LogNotifier{Log: store.log}
	}

	return store, nil
}

// Restore loads the persisted user and token at startup. It never fails:
// missing or unreadable storage yields an empty, unauthenticated session.
// No network call is made. Loading reports true for the duration.
func (s *Store) Restore() {
	s.lock.Lock()
	s.loading = true
	s.lock.Unlock()

	var user *users.User
	if raw, ok, err := s.storage.Get(StorageKeyUser); err != nil {
		s.log.Warn().Err(err).Msg("session restore: user read failed")
	} else if ok {
		user = &users.User{}
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			s.log.Warn().Err(err).Msg("session restore: stored user is corrupt")
			user = nil
		}
	}

	var accessToken string
	if raw, ok, err := s.storage.Get(StorageKeyToken); err != nil {
		s.log.Warn().Err(err).Msg("session restore: token read failed")
	} else if ok {
		accessToken = raw
	}

	s.lock.Lock()
	s.session = Session{User: user, AccessToken: accessToken}
	s.loading = false
	s.lock.Unlock()
}

// Login authenticates against the server. On success the user and token
// replace the session atomically, in memory and in storage, and the user
// is returned. On failure the server error is surfaced and the prior
// session state is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) (*users.User, error) {
	s.lock.Lock()
	s.loading = true
	s.lock.Unlock()
	defer func() {
		s.lock.Lock()
		s.loading = false
		s.lock.Unlock()
	}()

	user, accessToken, err := s.login.Login(ctx, email, password)
	if err != nil {
		s.notifier.Error("Login failed")
		return nil, errors.Wrap(err, "[Login] authentication failed")
	}

	s.lock.Lock()
	if err := s.persistUser(user); err != nil {
		s.lock.Unlock()
		return nil, err
	}
	if err := s.storage.Set(StorageKeyToken, accessToken); err != nil {
		s.lock.Unlock()
		return nil, clienterrors.Wrapf(clienterrors.ErrSessionStorage, "persisting token, %v", err)
	}
	s.session = Session{User: user, AccessToken: accessToken}
	s.lock.Unlock()

	s.notifier.Success("Welcome " + user.FullName())
	return user, nil
}

// UpdateUser replaces and persists the user profile only. Callers are
// responsible for any server-side sync.
func (s *Store) UpdateUser(user *users.User) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.persistUser(user); err != nil {
		return err
	}
	s.session.User = user
	return nil
}

// UpdateToken replaces and persists the access token only. Used
// exclusively by the refresh coordinator; the new token fully replaces
// the old one.
func (s *Store) UpdateToken(accessToken string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.storage.Set(StorageKeyToken, accessToken); err != nil {
		return clienterrors.Wrapf(clienterrors.ErrSessionStorage, "persisting token, %v", err)
	}
	s.session.AccessToken = accessToken
	return nil
}

// Logout clears the session from state and storage, navigates to the
// login entry point, and emits a confirmation. Safe to call repeatedly.
func (s *Store) Logout() {
	s.lock.Lock()
	wasAuthenticated := s.session.Authenticated() || s.session.User != nil
	if err := s.storage.Delete(StorageKeyUser); err != nil {
		s.log.Warn().Err(err).Msg("logout: user delete failed")
	}
	if err := s.storage.Delete(StorageKeyToken); err != nil {
		s.log.Warn().Err(err).Msg("logout: token delete failed")
	}
	s.session = Session{}
	s.lock.Unlock()

	s.nav.GotoLogin()
	if wasAuthenticated {
		s.notifier.Success("Logged out")
	}
}

// User returns the current profile, nil when logged out.
func (s *Store) User() *users.User {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.session.User
}

// AccessToken returns the current credential, empty when logged out.
func (s *Store) AccessToken() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.session.AccessToken
}

// Loading reports true during Restore and during an explicit Login call.
func (s *Store) Loading() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.loading
}

// Authenticated reports whether a credential is currently held.
func (s *Store) Authenticated() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.session.Authenticated()
}

// persistUser writes the serialized profile. Callers hold the lock.
func (s *Store) persistUser(user *users.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[Store] failed to serialize user")
	}
	if err := s.storage.Set(StorageKeyUser, string(data)); err != nil {
		return clienterrors.Wrapf(clienterrors.ErrSessionStorage, "persisting user, %v", err)
	}
	return nil
}
