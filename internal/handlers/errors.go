package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"queue-manager-api/internal/middleware"
	"queue-manager-api/internal/repositories"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// respondError maps domain errors onto HTTP responses. Validation errors are handed to
// the error boundary as bind errors; unknown errors become the internal error envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case repositories.IsValidation(err), errors.Is(err, repositories.ErrInvalidID):
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
	case repositories.IsNotFound(err):
		writeError(c, http.StatusNotFound, "Not found", err)
	case repositories.IsDuplicate(err):
		writeError(c, http.StatusConflict, "Already exists", err)
	case repositories.IsConflict(err), repositories.IsConstraint(err):
		writeError(c, http.StatusConflict, "Conflict", err)
	default:
		_ = c.Error(err)
	}
}

// bindJSON decodes the request body, reporting failures as bind errors
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}

func writeError(c *gin.Context, status int, title string, err error) {
	c.JSON(status, ErrorResponse{
		Error:     title,
		Message:   err.Error(),
		RequestID: c.GetString(middleware.RequestIDKey),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
