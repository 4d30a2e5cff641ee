package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
	"github.com/yourusername/video-sharing-platform/internal/response"
)

// ErrorHandler writes the error envelope for the last error a handler
// recorded. Requests that end without a response get an unknown error.
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		err := c.Errors.Last()
		if err == nil {
			if c.Writer.Status() == http.StatusNotFound {
				return
			}
			response.Error(c, apperror.Unknown(errors.New("handler returned without a response")))
			return
		}

		appErr := apperror.From(err.Err)
		if appErr.StatusCode() >= http.StatusInternalServerError {
			logger.WithError(err.Err).WithFields(logrus.Fields{
				"kind":       appErr.Kind.String(),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(requestIDKey),
			}).Error("Request failed")
		}
		response.Error(c, appErr)
	}
}

// Recovery turns panics into an unknown error envelope
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(logrus.Fields{
					"panic":      fmt.Sprint(r),
					"method":     c.Request.Method,
					"path":       c.Request.URL.Path,
					"request_id": c.GetString(requestIDKey),
				}).Error("Recovered from panic")

				if !c.Writer.Written() {
					response.Error(c, apperror.Unknown(fmt.Errorf("panic: %v", r)))
				} else {
					c.Abort()
				}
			}
		}()
		c.Next()
	}
}

// NotFound answers unknown routes with the error envelope
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, apperror.NotFound("route not found"))
	}
}
