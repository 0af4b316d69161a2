package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yasserk123/HealthVision-Projet/internal/middleware"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, httputil.Response) {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	var body httputil.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestErrorHandlerRendersAppErrors(t *testing.T) {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.ErrorHandler())
	engine.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperrors.NewNotFound("doctor", nil))
	})
	engine.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection reset"))
	})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(middleware.HeaderXRequestID, "req-1")
	rec, body := serve(engine, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, httputil.StatusError, body.Status)
	assert.Equal(t, "doctor not found", body.Message)
	assert.Equal(t, "req-1", body.TraceID)

	rec, body = serve(engine, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, body.Message, "pq")
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.GET("/panic", func(c *gin.Context) { panic("bad") })

	rec, body := serve(engine, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, httputil.StatusError, body.Status)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: 0.001, Burst: 1})
	engine := gin.New()
	engine.Use(rl.RateLimit())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	rec, _ := serve(engine, first)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.RemoteAddr = "10.0.0.1:1235"
	rec, body := serve(engine, again)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", body.Message)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec, _ = serve(engine, other)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	engine := gin.New()
	engine.Use(middleware.Timeout(middleware.TimeoutConfig{Duration: time.Minute}))
	var deadline time.Time
	engine.GET("/", func(c *gin.Context) {
		deadline, _ = c.Request.Context().Deadline()
		c.Status(http.StatusNoContent)
	})

	serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, deadline.IsZero())
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestRequireSessionRejectsAnonymous(t *testing.T) {
	engine := gin.New()
	engine.GET("/private", middleware.RequireSession(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	rec, body := serve(engine, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "no active session", body.Message)
}

func TestSecurityHeaders(t *testing.T) {
	engine := gin.New()
	engine.Use(middleware.SecurityHeaders(middleware.DefaultSecurityConfig()))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec, _ := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "includeSubDomains")
}
