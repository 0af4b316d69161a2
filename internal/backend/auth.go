package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
)

type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// refreshMargin is how long before expiry an access token is renewed.
const refreshMargin = 30 * time.Second

type User struct {
	ID           uuid.UUID              `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         *User  `json:"user"`
}

// Expiry returns when the access token stops being valid. Zero means unknown.
func (s *Session) Expiry() time.Time {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0)
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

type AuthListener func(ctx context.Context, event AuthEvent, session *Session)

type listenerEntry struct {
	id int
	fn AuthListener
}

// AuthSession holds the credentials of one end user. Listeners are invoked
// in registration order, outside the lock, after each state transition.
type AuthSession struct {
	client *Client

	mu        sync.Mutex
	session   *Session
	listeners []listenerEntry
	nextID    int

	// refreshMu serializes refresh grants; refresh tokens are single-use.
	refreshMu sync.Mutex
}

func (c *Client) NewAuthSession() *AuthSession {
	return &AuthSession{client: c}
}

// OnAuthStateChange registers fn and returns a function removing it.
func (a *AuthSession) OnAuthStateChange(fn AuthListener) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners = append(a.listeners, listenerEntry{id: id, fn: fn})
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			for i, l := range a.listeners {
				if l.id == id {
					a.listeners = append(a.listeners[:i:i], a.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (a *AuthSession) emit(ctx context.Context, event AuthEvent, s *Session) {
	a.mu.Lock()
	listeners := make([]listenerEntry, len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	for _, l := range listeners {
		l.fn(ctx, event, s)
	}
}

func (a *AuthSession) setSession(s *Session) {
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Unix() + s.ExpiresIn
	}
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
}

func (a *AuthSession) current() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// SignUp creates a credential carrying data as user metadata. When the
// provider confirms immediately a session is established as well.
func (a *AuthSession) SignUp(ctx context.Context, email, password string, data map[string]interface{}) (*User, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	if len(data) > 0 {
		body["data"] = data
	}

	var raw json.RawMessage
	if err := a.client.do(ctx, request{
		op:     "auth.signup",
		method: http.MethodPost,
		path:   authPath + "signup",
		body:   body,
		token:  a.client.apiKey,
	}, &raw); err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, apperrors.NewMalformed("signup", err)
	}
	if s.AccessToken != "" && s.User != nil {
		a.setSession(&s)
		a.emit(ctx, EventSignedIn, &s)
		return s.User, nil
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, apperrors.NewMalformed("signup", err)
	}
	if u.ID == uuid.Nil {
		return nil, apperrors.NewMalformed("signup", fmt.Errorf("missing user id"))
	}
	return &u, nil
}

// SignInWithPassword exchanges credentials for a session.
func (a *AuthSession) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	s, err := a.token(ctx, "password", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	a.setSession(s)
	a.emit(ctx, EventSignedIn, s)
	return s, nil
}

// Refresh renews the access token with the refresh token.
func (a *AuthSession) Refresh(ctx context.Context) (*Session, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()
	return a.refresh(ctx, a.current())
}

func (a *AuthSession) refresh(ctx context.Context, cur *Session) (*Session, error) {
	if cur == nil || cur.RefreshToken == "" {
		return nil, apperrors.ErrNoSession
	}
	s, err := a.token(ctx, "refresh_token", map[string]interface{}{
		"refresh_token": cur.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	a.setSession(s)
	a.emit(ctx, EventTokenRefreshed, s)
	return s, nil
}

func (a *AuthSession) token(ctx context.Context, grant string, body map[string]interface{}) (*Session, error) {
	var s Session
	if err := a.client.do(ctx, request{
		op:     "auth.token",
		method: http.MethodPost,
		path:   authPath + "token",
		query:  url.Values{"grant_type": {grant}},
		body:   body,
		token:  a.client.apiKey,
	}, &s); err != nil {
		return nil, err
	}
	if s.AccessToken == "" || s.User == nil {
		return nil, apperrors.NewMalformed("token", fmt.Errorf("missing access token or user"))
	}
	return &s, nil
}

// SignOut revokes the session remotely. Local credentials are dropped and
// SIGNED_OUT is emitted even when the remote call fails.
func (a *AuthSession) SignOut(ctx context.Context) error {
	a.mu.Lock()
	cur := a.session
	a.session = nil
	a.mu.Unlock()

	var err error
	if cur != nil {
		err = a.client.do(ctx, request{
			op:     "auth.logout",
			method: http.MethodPost,
			path:   authPath + "logout",
			token:  cur.AccessToken,
		}, nil)
	}
	a.emit(ctx, EventSignedOut, nil)
	return err
}

// AccessToken returns a valid access token, refreshing it when close to
// expiry. It returns "" when there is no session. Concurrent callers share
// one refresh. If the refresh fails while the old token is still valid, the
// old token is returned together with the error.
func (a *AuthSession) AccessToken(ctx context.Context) (string, error) {
	cur := a.current()
	if cur == nil || !needsRefresh(cur) {
		return tokenOf(cur), nil
	}

	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	// Another caller may have refreshed or signed out while we waited.
	if latest := a.current(); latest != cur {
		return tokenOf(latest), nil
	}
	s, err := a.refresh(ctx, cur)
	if err != nil {
		if time.Now().Before(cur.Expiry()) {
			return cur.AccessToken, err
		}
		return "", err
	}
	return s.AccessToken, nil
}

func needsRefresh(s *Session) bool {
	exp := s.Expiry()
	return !exp.IsZero() && time.Until(exp) <= refreshMargin && s.RefreshToken != ""
}

func tokenOf(s *Session) string {
	if s == nil {
		return ""
	}
	return s.AccessToken
}

// GetUser asks the provider for the user behind the current session. It
// returns nil, nil when there is no session.
func (a *AuthSession) GetUser(ctx context.Context) (*User, error) {
	tok, err := a.AccessToken(ctx)
	if tok == "" {
		return nil, err
	}
	var u User
	if err := a.client.do(ctx, request{
		op:     "auth.user",
		method: http.MethodGet,
		path:   authPath + "user",
		token:  tok,
	}, &u); err != nil {
		return nil, err
	}
	if u.ID == uuid.Nil {
		return nil, apperrors.NewMalformed("user", fmt.Errorf("missing user id"))
	}
	return &u, nil
}
