package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "submana/internal/errors"
	"submana/internal/logger"
)

// ErrorHandler converts errors attached to the gin context into the JSON
// error envelope used everywhere else. Only the last error is reported to
// the client; unexpected errors are logged with the request ID and mapped
// to a generic internal error so nothing leaks.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		requestID, _ := c.Get(requestIDKey)

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				logger.Get().Errorw("request failed",
					"request_id", requestID,
					"code", appErr.Code,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
				)
			}
			writeErrorBody(c, appErr)
			return
		}

		logger.Get().Errorw("unhandled error",
			"request_id", requestID,
			"error", err.Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		writeErrorBody(c, apperrors.ErrInternalServer)
	}
}

func writeErrorBody(c *gin.Context, appErr *apperrors.AppError) {
	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
