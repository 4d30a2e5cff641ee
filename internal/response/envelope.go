package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/video-sharing-platform/internal/apperror"
)

// Envelope is the success body returned by every handler
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorEnvelope is the body returned for every handled error
type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// Success writes a success envelope with the given status
func Success(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// OK writes a 200 success envelope
func OK(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusOK, data, message)
}

// Created writes a 201 success envelope
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message)
}

// NewErrorEnvelope builds the error body for err
func NewErrorEnvelope(err error) ErrorEnvelope {
	appErr := apperror.From(err)
	details := appErr.Details
	if details == nil {
		details = []string{}
	}
	return ErrorEnvelope{
		StatusCode: appErr.StatusCode(),
		Message:    appErr.Message,
		Success:    false,
		Errors:     details,
	}
}

// Error writes the error envelope for err and aborts the chain
func Error(c *gin.Context, err error) {
	body := NewErrorEnvelope(err)
	c.AbortWithStatusJSON(body.StatusCode, body)
}
