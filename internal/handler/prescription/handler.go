package prescription

import (
	"github.com/gin-gonic/gin"

	"github.com/Yasserk123/HealthVision-Projet/internal/handler"
	"github.com/Yasserk123/HealthVision-Projet/internal/middleware"
	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/service/prescription"
	"github.com/Yasserk123/HealthVision-Projet/pkg/httputil"
)

type Handler struct {
	service *prescription.Service
}

func NewHandler(service *prescription.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	prescriptions := r.Group("/prescriptions", middleware.RequireSession())
	{
		prescriptions.GET("", h.ListPrescriptions)
		prescriptions.POST("", h.CreatePrescription)
	}
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	prescriptions, err := h.service.ListForCurrentPatient(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if prescriptions == nil {
		prescriptions = []*model.Prescription{}
	}

	httputil.RespondWithSuccess(c, prescriptions)
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
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
