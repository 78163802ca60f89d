package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"queue-manager-api/pkg/lambda"
)

// InternalErrorResponse is the body of every unhandled failure
type InternalErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// internalErrorMessage is the fixed message of InternalErrorResponse
const internalErrorMessage = "Internal server error"

// trackingWriter remembers whether a response has been started
type trackingWriter struct {
	http.ResponseWriter
	written bool
}

func (w *trackingWriter) WriteHeader(statusCode int) {
	w.written = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Boundary converts dispatch failures and panics into the internal error
// envelope. It is the innermost layer of the entry chain and never retries.
func Boundary(logger *logrus.Logger) func(lambda.DispatchFunc) http.Handler {
	return func(dispatch lambda.DispatchFunc) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &trackingWriter{ResponseWriter: w}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				fail(logger, tw, r, recoveredError(rec))
			}()

			if err := dispatch(tw, r); err != nil {
				fail(logger, tw, r, err)
			}
		})
	}
}

// recoveredError keeps a panicked error as is and describes any other value
func recoveredError(rec interface{}) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", rec)
}

func fail(logger *logrus.Logger, w *trackingWriter, r *http.Request, err error) {
	entry := logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"error":  err.Error(),
	})
	if inv, ok := lambda.InvocationFromContext(r.Context()); ok && inv.RequestID != "" {
		entry = entry.WithField("request_id", inv.RequestID)
	}

	if w.written {
		entry.Error("Request failed after response started")
		return
	}
	entry.Error("Request failed")

	WriteInternalError(w, err)
}

// WriteInternalError writes the 500 envelope for err.
func WriteInternalError(w http.ResponseWriter, err error) {
	body, _ := json.Marshal(InternalErrorResponse{
		Message: internalErrorMessage,
		Error:   err.Error(),
	})

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write(body)
}

// ErrorBoundary is the gin counterpart of Boundary. It recovers panics raised
// by handlers and renders errors left in c.Errors by handlers that did not
// write a response themselves.
func ErrorBoundary(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err := recoveredError(rec)
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"error":      err.Error(),
			}).Error("Handler panicked")

			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, InternalErrorResponse{
					Message: internalErrorMessage,
					Error:   err.Error(),
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"error":      err.Error(),
			"error_type": fmt.Sprintf("%d", err.Type),
		}).Error("Request error")

		if c.Writer.Written() {
			return
		}

		if err.Type == gin.ErrorTypeBind {
			response := ErrorResponse{
				Error:     "Invalid request format",
				Message:   err.Error(),
				RequestID: c.GetString(RequestIDKey),
				Timestamp: time.Now().Format(time.RFC3339),
			}
			var validationErrors validator.ValidationErrors
			if errors.As(err.Err, &validationErrors) {
				response.Error = "Validation failed"
				response.Message = "Request validation failed"
				response.ValidationErrors = formatValidationErrors(validationErrors)
			}
			c.JSON(http.StatusBadRequest, response)
			return
		}

		c.JSON(http.StatusInternalServerError, InternalErrorResponse{
			Message: internalErrorMessage,
			Error:   err.Error(),
		})
	}
}

// NotFound answers requests that match no route.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:     "Not found",
			Message:   fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path),
			RequestID: c.GetString(RequestIDKey),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}
