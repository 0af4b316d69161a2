package doctor

import (
	"github.com/gin-gonic/gin"

	"github.com/Yasserk123/HealthVision-Projet/internal/handler"
	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/service/doctor"
	"github.com/Yasserk123/HealthVision-Projet/pkg/httputil"
)

type Handler struct {
	service *doctor.Service
}

func NewHandler(service *doctor.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
	}

	specialties := r.Group("/specialties")
	{
		specialties.GET("", h.ListSpecialties)
		specialties.GET("/catalog", h.Catalog)
	}
}

// ListDoctors returns the whole directory, or one specialty when the
// specialty query parameter is present.
func (h *Handler) ListDoctors(c *gin.Context) {
	var (
		doctors []*model.Doctor
		err     error
	)
	if specialty, ok := c.GetQuery("specialty"); ok {
		doctors, err = h.service.ListBySpecialty(c.Request.Context(), specialty)
	} else {
		doctors, err = h.service.ListAll(c.Request.Context())
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	if doctors == nil {
		doctors = []*model.Doctor{}
	}

	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, doc)
}

func (h *Handler) ListSpecialties(c *gin.Context) {
	specialties, err := h.service.ListSpecialties(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if specialties == nil {
		specialties = []string{}
	}

	httputil.RespondWithSuccess(c, specialties)
}

func (h *Handler) Catalog(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.service.Catalog())
}
