package http

import (
	"net/http"

	"assessment-engine/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func success(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func failure(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, envelope{Error: &apiError{Code: code, Message: message}})
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindCatalog:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	failure(c, status, kind.String(), err.Error())
}
