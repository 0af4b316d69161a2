package dashboard

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Yasserk123/HealthVision-Projet/internal/middleware"
	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/session"
	"github.com/Yasserk123/HealthVision-Projet/pkg/httputil"
)

type (
	AppointmentLister interface {
		ListForCurrentPatient(ctx context.Context) ([]*model.Appointment, error)
	}
	PrescriptionLister interface {
		ListForCurrentPatient(ctx context.Context) ([]*model.Prescription, error)
	}
	NotificationLister interface {
		ListForCurrentUser(ctx context.Context) ([]*model.Notification, error)
	}
)

// Dashboard is the caller's overview. A list that could not be loaded is
// empty.
type Dashboard struct {
	User          *model.User           `json:"user"`
	Appointments  []*model.Appointment  `json:"appointments"`
	Prescriptions []*model.Prescription `json:"prescriptions"`
	Notifications []*model.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

type Handler struct {
	appointments  AppointmentLister
	prescriptions PrescriptionLister
	notifications NotificationLister
	logger        zerolog.Logger
}

func NewHandler(appointments AppointmentLister, prescriptions PrescriptionLister, notifications NotificationLister, logger zerolog.Logger) *Handler {
	return &Handler{
		appointments:  appointments,
		prescriptions: prescriptions,
		notifications: notifications,
		logger:        logger.With().Str("handler", "dashboard").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", middleware.RequireSession(), h.GetDashboard)
}

func (h *Handler) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	user, _ := session.UserFrom(ctx)

	out := Dashboard{
		User:          user,
		Appointments:  []*model.Appointment{},
		Prescriptions: []*model.Prescription{},
		Notifications: []*model.Notification{},
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		list, err := h.appointments.ListForCurrentPatient(ctx)
		if h.degraded(c, "appointments", err) {
			return
		}
		if list != nil {
			out.Appointments = list
		}
	}()
	go func() {
		defer wg.Done()
		list, err := h.prescriptions.ListForCurrentPatient(ctx)
		if h.degraded(c, "prescriptions", err) {
			return
		}
		if list != nil {
			out.Prescriptions = list
		}
	}()
	go func() {
		defer wg.Done()
		list, err := h.notifications.ListForCurrentUser(ctx)
		if h.degraded(c, "notifications", err) {
			return
		}
		if list != nil {
			out.Notifications = list
		}
	}()
	wg.Wait()

	for _, n := range out.Notifications {
		if !n.Read {
			out.UnreadCount++
		}
	}

	httputil.RespondWithSuccess(c, out)
}

func (h *Handler) degraded(c *gin.Context, list string, err error) bool {
	if err == nil {
		return false
	}
	h.logger.Warn().Err(err).
		Str("list", list).
		Str("request_id", c.GetString(middleware.ContextRequestID)).
		Msg("Dashboard list unavailable")
	return true
}
