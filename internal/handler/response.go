package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/Yasserk123/HealthVision-Projet/pkg/errors"
	"github.com/Yasserk123/HealthVision-Projet/pkg/validator"
)

// BindJSON decodes the request body into dst and validates it. On failure
// the error is attached to c and false is returned.
func BindJSON(c *gin.Context, v validator.Validator, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(apperrors.NewBadRequest("invalid request body", err))
		return false
	}
	if v == nil {
		return true
	}
	if err := v.Validate(dst); err != nil {
		_ = c.Error(apperrors.NewBadRequest(err.Error(), err))
		return false
	}
	return true
}

// ParamID parses the uuid path parameter name.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(apperrors.NewBadRequest("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}
