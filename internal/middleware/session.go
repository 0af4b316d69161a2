package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Yasserk123/HealthVision-Projet/internal/session"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/httputil"
)

const (
	HeaderSessionID     = "X-Session-ID"
	ContextSessionID    = "session_id"
	ContextSessionStore = "session_store"
)

type SessionConfig struct {
	CookieName string
	Secure     bool
	// MaxAge of the cookie in seconds.
	MaxAge int
}

// Sessions binds requests to the client sessions of a registry. The
// session id travels in a cookie or in the X-Session-ID header.
type Sessions struct {
	registry *session.Registry
	config   SessionConfig
}

func NewSessions(registry *session.Registry, config SessionConfig) *Sessions {
	if config.CookieName == "" {
		config.CookieName = "hv_session"
	}
	return &Sessions{registry: registry, config: config}
}

func (s *Sessions) sessionID(c *gin.Context) string {
	if id := c.GetHeader(HeaderSessionID); id != "" {
		return id
	}
	id, _ := c.Cookie(s.config.CookieName)
	return id
}

// Resolve attaches an existing session's credentials and user to the
// request context. Unknown ids are ignored.
func (s *Sessions) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := s.sessionID(c)
		if id == "" {
			c.Next()
			return
		}
		store, ok := s.registry.Get(id)
		if !ok {
			c.Next()
			return
		}
		s.bind(c, id, store)
		c.Next()
	}
}

// Ensure returns the request's session, starting one when there is none.
// The session id is echoed in the X-Session-ID response header only here,
// for clients that cannot read the HttpOnly cookie.
func (s *Sessions) Ensure(c *gin.Context) *session.Store {
	if store, ok := CurrentStore(c); ok {
		c.Header(HeaderSessionID, c.GetString(ContextSessionID))
		return store
	}
	id, store := s.registry.Create()
	s.setCookie(c, id, s.config.MaxAge)
	s.bind(c, id, store)
	c.Header(HeaderSessionID, id)
	return store
}

// End forgets the request's session and expires its cookie.
func (s *Sessions) End(c *gin.Context) {
	if id := c.GetString(ContextSessionID); id != "" {
		s.registry.Delete(id)
	}
	s.setCookie(c, "", -1)
}

func (s *Sessions) bind(c *gin.Context, id string, store *session.Store) {
	c.Set(ContextSessionID, id)
	c.Set(ContextSessionStore, store)

	ctx, err := store.Context(c.Request.Context())
	if err != nil {
		log.Warn().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("Failed to refresh session credentials")
	}
	c.Request = c.Request.WithContext(ctx)
}

func (s *Sessions) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.config.CookieName, value, maxAge, "/", "", s.config.Secure, true)
}

// CurrentStore returns the session store bound to the request.
func CurrentStore(c *gin.Context) (*session.Store, bool) {
	v, ok := c.Get(ContextSessionStore)
	if !ok {
		return nil, false
	}
	store, ok := v.(*session.Store)
	return store, ok
}

// RequireSession rejects requests without an authenticated caller.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := session.UserFrom(c.Request.Context()); !ok {
			httputil.RespondWithError(c, apperrors.ErrNoSession)
			return
		}
		c.Next()
	}
}
