// Package session keeps the signed-in user of each client session and
// tells interested parties when it changes.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Yasserk123/HealthVision-Projet/internal/backend"
	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
)

// Authenticator is the credential API of one end-user session.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string, data map[string]interface{}) (*backend.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error)
	SignOut(ctx context.Context) error
	GetUser(ctx context.Context) (*backend.User, error)
	AccessToken(ctx context.Context) (string, error)
	OnAuthStateChange(fn backend.AuthListener) func()
}

// Subscriber receives the new user, or nil after sign-out.
type Subscriber func(user *model.User)

type subscriber struct {
	id int
	fn Subscriber
}

type Store struct {
	auth     Authenticator
	profiles repository.ProfileRepository
	logger   zerolog.Logger

	mu   sync.RWMutex
	user *model.User
	// While a registration is in flight its sign-in is held in pending
	// until the profile row exists.
	deferSignIn bool
	pending     *backend.Session

	subMu  sync.Mutex
	subs   []subscriber
	nextID int

	unsubscribe func()
	closeOnce   sync.Once
}

func NewStore(auth Authenticator, profiles repository.ProfileRepository, logger zerolog.Logger) *Store {
	s := &Store{
		auth:     auth,
		profiles: profiles,
		logger:   logger.With().Str("component", "session").Logger(),
	}
	s.unsubscribe = auth.OnAuthStateChange(s.handleAuthEvent)
	return s
}

// User returns the current user cell without contacting the backend.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Store) IsAuthenticated() bool {
	return s.User() != nil
}

func (s *Store) setUser(user *model.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// clearUser empties the cell and notifies subscribers if it was set.
func (s *Store) clearUser() {
	s.mu.Lock()
	wasSet := s.user != nil
	s.user = nil
	s.mu.Unlock()
	if wasSet {
		s.notify(nil)
	}
}

// accessToken returns the session token, falling back to whatever token is
// still usable when a refresh fails.
func (s *Store) accessToken(ctx context.Context) string {
	tok, err := s.auth.AccessToken(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Bool("stale_token", tok != "").Msg("Failed to refresh access token")
	}
	return tok
}

// CurrentSession asks the backend for the live user of this session. Any
// failure is reported as no session and clears the cached user.
func (s *Store) CurrentSession(ctx context.Context) *model.User {
	u, err := s.auth.GetUser(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Failed to get current user")
		s.clearUser()
		return nil
	}
	if u == nil {
		s.clearUser()
		return nil
	}

	user := s.hydrate(backend.WithAccessToken(ctx, s.accessToken(ctx)), u)
	s.setUser(user)
	return user
}

// Login signs in with a password. Listeners learn about the new user
// through the session-change subscription.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	if _, err := s.auth.SignInWithPassword(ctx, email, password); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("Login failed")
		return false
	}
	return true
}

// Register creates the credential and the profile row. A profile failure
// after the credential was created is reported as false and not undone.
// Subscribers hear about a session opened by sign-up once, after the
// profile insert.
func (s *Store) Register(ctx context.Context, email, password, firstName, lastName string) bool {
	s.mu.Lock()
	s.deferSignIn = true
	s.pending = nil
	s.mu.Unlock()
	defer s.flushSignIn(ctx)

	u, err := s.auth.SignUp(ctx, email, password, map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("Registration failed")
		return false
	}

	tok, err := s.auth.AccessToken(ctx)
	if err != nil && tok == "" {
		s.logger.Error().Err(err).
			Str("user_id", u.ID.String()).
			Msg("Partial registration: credential created but no token for profile insert")
		return false
	}
	profile := &model.UserProfile{ID: u.ID, FirstName: firstName, LastName: lastName}
	if err := s.profiles.Create(backend.WithAccessToken(ctx, tok), profile); err != nil {
		s.logger.Error().Err(err).
			Str("user_id", u.ID.String()).
			Msg("Partial registration: credential created but profile insert failed")
		return false
	}
	return true
}

func (s *Store) flushSignIn(ctx context.Context) {
	s.mu.Lock()
	pending := s.pending
	s.deferSignIn = false
	s.pending = nil
	s.mu.Unlock()
	if pending != nil {
		s.signIn(ctx, pending)
	}
}

// Logout signs out. The local cell is cleared even if the backend call
// fails.
func (s *Store) Logout(ctx context.Context) {
	if err := s.auth.SignOut(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Sign-out failed, clearing local session")
	}

	s.clearUser()
}

// OnSessionChange registers fn and returns an idempotent unsubscribe.
func (s *Store) OnSessionChange(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Context returns ctx carrying this session's access token and user. A
// failed refresh is returned as an error; the user is still attached while
// the previous token remains valid.
func (s *Store) Context(ctx context.Context) (context.Context, error) {
	tok, err := s.auth.AccessToken(ctx)
	if err != nil {
		err = fmt.Errorf("failed to get access token: %w", err)
		if tok == "" {
			return ctx, err
		}
	}
	if tok != "" {
		ctx = backend.WithAccessToken(ctx, tok)
	}
	if u := s.User(); u != nil {
		ctx = WithUser(ctx, u)
	}
	return ctx, err
}

// Close drops the store's subscription to its auth session.
func (s *Store) Close() {
	s.closeOnce.Do(s.unsubscribe)
}

func (s *Store) notify(user *model.User) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(user)
	}
}

func (s *Store) handleAuthEvent(ctx context.Context, event backend.AuthEvent, sess *backend.Session) {
	if event == backend.EventSignedOut || sess == nil || sess.User == nil {
		s.clearUser()
		return
	}

	s.mu.Lock()
	if s.deferSignIn && event == backend.EventSignedIn {
		s.pending = sess
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.signIn(ctx, sess)
}

func (s *Store) signIn(ctx context.Context, sess *backend.Session) {
	user := s.hydrate(backend.WithAccessToken(ctx, sess.AccessToken), sess.User)
	s.setUser(user)
	s.notify(user)
}

// hydrate builds the portal user from the credential record and its
// profile row. Without a profile the email stands in for the name.
func (s *Store) hydrate(ctx context.Context, u *backend.User) *model.User {
	user := &model.User{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Email,
		Role:  model.RolePatient,
	}

	profile, err := s.profiles.Get(ctx, u.ID)
	switch {
	case err == nil:
		user.Name = displayName(profile, u.Email)
	case apperrors.HasCode(err, apperrors.ErrNotFound):
	default:
		s.logger.Warn().Err(err).Str("user_id", u.ID.String()).Msg("Failed to load profile")
	}
	return user
}

func displayName(p *model.UserProfile, email string) string {
	if name := strings.TrimSpace(p.DisplayName()); name != "" {
		return name
	}
	return email
}
