package middleware

import (
	"bytes"
	"encoding/json"
	"mime"
	"time"

	"github.com/gin-gonic/gin"
)

// SuccessEnvelope wraps successful JSON responses of the domain routes
type SuccessEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// bufferedWriter holds the handler's body until the interceptor decides how
// to emit it
type bufferedWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// TransformResponse wraps 2xx JSON bodies in a SuccessEnvelope. Other
// responses pass through untouched.
func TransformResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		original := c.Writer
		buffered := &bufferedWriter{ResponseWriter: original}
		c.Writer = buffered
		defer func() {
			c.Writer = original
		}()

		c.Next()

		c.Writer = original
		body := buffered.body.Bytes()

		if shouldWrap(original.Status(), original.Header().Get("Content-Type"), body) {
			wrapped, err := json.Marshal(SuccessEnvelope{
				Success:   true,
				Data:      json.RawMessage(body),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
			if err == nil {
				original.Header().Del("Content-Length")
				body = wrapped
			}
		}

		if len(body) == 0 {
			// left for ErrorBoundary to render
			if len(c.Errors) > 0 {
				return
			}
			original.WriteHeaderNow()
			return
		}
		_, _ = original.Write(body)
	}
}

func shouldWrap(status int, contentType string, body []byte) bool {
	if status < 200 || status >= 300 || len(body) == 0 {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return false
	}
	return json.Valid(body)
}
