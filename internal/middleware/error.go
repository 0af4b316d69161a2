package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Yasserk123/HealthVision-Projet/pkg/httputil"
)

// ErrorHandler renders the last error attached with c.Error as the error
// envelope, unless the handler already wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only handle errors if they exist
		if len(c.Errors) == 0 {
			return
		}

		lastErr := c.Errors.Last()
		status, message := httputil.StatusFor(lastErr.Err)

		event := log.Warn()
		if status >= 500 {
			event = log.Error()
		}
		event.
			Err(lastErr.Err).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Int("status", status).
			Msg("Request error")

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithMessage(c, status, message)
	}
}
