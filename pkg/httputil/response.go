package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Yasserk123/HealthVision-Projet/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RespondWithSuccess sends a 200 success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: StatusSuccess,
		Data:   data,
	})
}

// RespondWithCreated sends a 201 success response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Status: StatusSuccess,
		Data:   data,
	})
}

// RespondWithMessage sends an error envelope with an explicit status.
func RespondWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Status:  StatusError,
		Message: message,
		TraceID: c.GetString("request_id"),
	})
}

// RespondWithError sends an error response derived from err
func RespondWithError(c *gin.Context, err error) {
	status, message := StatusFor(err)
	RespondWithMessage(c, status, message)
}

// StatusFor maps err to an HTTP status and a client-facing message.
// Internal details never leave the process.
func StatusFor(err error) (int, string) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		status := appErr.StatusCode()
		if status >= http.StatusInternalServerError {
			return status, http.StatusText(status)
		}
		return status, appErr.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}
