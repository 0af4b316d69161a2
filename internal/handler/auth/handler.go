package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Yasserk123/HealthVision-Projet/internal/handler"
	"github.com/Yasserk123/HealthVision-Projet/internal/middleware"
	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/httputil"
	"github.com/Yasserk123/HealthVision-Projet/pkg/validator"
)

// SessionResponse describes the caller's session.
type SessionResponse struct {
	SessionID     string      `json:"session_id,omitempty"`
	Authenticated bool        `json:"authenticated"`
	User          *model.User `json:"user"`
}

type Handler struct {
	sessions  *middleware.Sessions
	validator validator.Validator
}

func NewHandler(sessions *middleware.Sessions, v validator.Validator) *Handler {
	return &Handler{sessions: sessions, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/session", h.Session)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, h.validator, &req) {
		return
	}

	store := h.sessions.Ensure(c)
	if !store.Register(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName) {
		_ = c.Error(apperrors.NewBadRequest("registration failed", nil))
		return
	}

	user := store.User()
	c.JSON(http.StatusCreated, httputil.Response{
		Status: httputil.StatusSuccess,
		Data: SessionResponse{
			SessionID:     c.GetString(middleware.ContextSessionID),
			Authenticated: user != nil,
			User:          user,
		},
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, h.validator, &req) {
		return
	}

	store := h.sessions.Ensure(c)
	if !store.Login(c.Request.Context(), req.Email, req.Password) {
		httputil.RespondWithMessage(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	httputil.RespondWithSuccess(c, SessionResponse{
		SessionID:     c.GetString(middleware.ContextSessionID),
		Authenticated: true,
		User:          store.User(),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if store, ok := middleware.CurrentStore(c); ok {
		store.Logout(c.Request.Context())
	}
	h.sessions.End(c)

	httputil.RespondWithSuccess(c, "logged out successfully")
}

func (h *Handler) Session(c *gin.Context) {
	store, ok := middleware.CurrentStore(c)
	if !ok {
		httputil.RespondWithSuccess(c, SessionResponse{})
		return
	}

	user := store.CurrentSession(c.Request.Context())
	httputil.RespondWithSuccess(c, SessionResponse{
		SessionID:     c.GetString(middleware.ContextSessionID),
		Authenticated: user != nil,
		User:          user,
	})
}
