package notification

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Yasserk123/HealthVision-Projet/internal/handler"
	"github.com/Yasserk123/HealthVision-Projet/internal/middleware"
	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/service/notification"
	"github.com/Yasserk123/HealthVision-Projet/pkg/httputil"
)

// heartbeat is the interval of keep-alive events on an idle stream.
const heartbeat = 25 * time.Second

type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan *model.NotificationEvent, error)
}

type Handler struct {
	service notification.Service
	stream  Subscriber
}

// NewHandler serves the notification routes. The event stream route is only
// registered when stream is non-nil.
func NewHandler(service notification.Service, stream Subscriber) *Handler {
	return &Handler{service: service, stream: stream}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications", middleware.RequireSession())
	{
		notifications.GET("", h.ListNotifications)
		notifications.POST("/:id/read", h.MarkRead)
		notifications.POST("/read-all", h.MarkAllRead)
		if h.stream != nil {
			notifications.GET("/stream", h.Stream)
		}
	}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	notifications, err := h.service.ListForCurrentUser(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if notifications == nil {
		notifications = []*model.Notification{}
	}

	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"id": id, "read": true})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"read": true})
}

// Stream pushes the caller's new notifications as server-sent events until
// the client goes away or the request deadline passes.
func (h *Handler) Stream(c *gin.Context) {
	events, err := h.stream.Subscribe(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("connected", gin.H{"status": "connected"})
	c.Writer.Flush()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("notification", event)
			return true
		case <-ticker.C:
			c.SSEvent("heartbeat", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
