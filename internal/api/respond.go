package api

import (
	"github.com/gin-gonic/gin"

	"github.com/fmuoria/resume-reviser/internal/apperr"
	"github.com/fmuoria/resume-reviser/internal/logging"
)

// ErrorBody is the error object of every failed response
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps the error body
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// respondError logs and aborts with a JSON error
func respondError(c *gin.Context, status int, code, message string) {
	logging.FromContext(c.Request.Context()).Warn("http error",
		"status", status,
		"code", code,
		"message", message,
		"path", c.Request.URL.Path,
	)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message},
	})
}

// respondAppError maps err to its status and user message
func respondAppError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		logging.FromContext(c.Request.Context()).Error("unexpected error", "error", err)
	}
	respondError(c, apperr.HTTPStatus(kind), string(kind), apperr.UserMessage(err))
}
