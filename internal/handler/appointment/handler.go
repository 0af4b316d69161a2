package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/Yasserk123/HealthVision-Projet/internal/handler"
	"github.com/Yasserk123/HealthVision-Projet/internal/middleware"
	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/service/appointment"
	"github.com/Yasserk123/HealthVision-Projet/pkg/httputil"
	"github.com/Yasserk123/HealthVision-Projet/pkg/validator"
)

type Handler struct {
	service   *appointment.Service
	validator validator.Validator
}

func NewHandler(service *appointment.Service, v validator.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	appointments.GET("/slots", h.TimeSlots)

	authed := appointments.Group("", middleware.RequireSession())
	{
		authed.POST("", h.CreateAppointment)
		authed.GET("", h.ListAppointments)
		authed.PATCH("/:id/status", h.UpdateStatus)
		authed.POST("/:id/cancel", h.Cancel)
	}
}

func (h *Handler) TimeSlots(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.service.TimeSlots())
}

// CreateAppointment validates in the service so that the session check
// comes first.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, nil, &req) {
		return
	}

	result, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithCreated(c, result)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.service.ListForCurrentPatient(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if appointments == nil {
		appointments = []*model.Appointment{}
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAppointmentStatusRequest
	if !handler.BindJSON(c, h.validator, &req) {
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"id": id, "status": req.Status})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"id": id, "status": model.AppointmentStatusCancelled})
}
