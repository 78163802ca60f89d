package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queue-manager-api/internal/config"
	"queue-manager-api/pkg/lambda"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeInternalError(t *testing.T, rec *httptest.ResponseRecorder) InternalErrorResponse {
	t.Helper()
	var body InternalErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestBoundaryRendersDispatchError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	handler := Boundary(logger)(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("boom")
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/services", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, InternalErrorResponse{Message: "Internal server error", Error: "boom"}, decodeInternalError(t, rec))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "/api/services", hook.LastEntry().Data["path"])
}

func TestBoundaryRecoversPanic(t *testing.T) {
	logger, _ := test.NewNullLogger()
	handler := Boundary(logger)(func(w http.ResponseWriter, r *http.Request) error {
		panic("nil map write")
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeInternalError(t, rec)
	assert.Equal(t, "Internal server error", body.Message)
	assert.Contains(t, body.Error, "nil map write")
}

func TestBoundaryRecoversPanickedError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	handler := Boundary(logger)(func(w http.ResponseWriter, r *http.Request) error {
		panic(errors.New("boom"))
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, InternalErrorResponse{Message: "Internal server error", Error: "boom"}, decodeInternalError(t, rec))
}

func TestBoundaryPassesSuccessThrough(t *testing.T) {
	logger, hook := test.NewNullLogger()
	handler := Boundary(logger)(func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
		return nil
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "created", rec.Body.String())
	assert.Empty(t, hook.AllEntries())
}

func TestBoundaryDoesNotOverwriteStartedResponse(t *testing.T) {
	logger, hook := test.NewNullLogger()
	handler := Boundary(logger)(func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusAccepted)
		return errors.New("late failure")
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Request failed after response started", hook.LastEntry().Message)
}

func TestBoundaryLogsInvocationID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	handler := Boundary(logger)(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(lambda.WithInvocation(req.Context(), lambda.Invocation{RequestID: "inv-42"}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "inv-42", hook.LastEntry().Data["request_id"])
}

func TestEntryChainKeepsCORSOnFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	policy := NewCORSPolicy(config.CORSConfig{AllowedOrigins: []string{"*"}})
	handler := policy.Handler(Boundary(logger)(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("bootstrap failed")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	req.Header.Set("Origin", "https://x.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "https://x.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "bootstrap failed", decodeInternalError(t, rec).Error)
}

func newTestEngine(logger *logrus.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(RequestID(), ErrorBoundary(logger))
	engine.NoRoute(NotFound())
	return engine
}

func TestGinErrorBoundary(t *testing.T) {
	logger, _ := test.NewNullLogger()
	engine := newTestEngine(logger)

	engine.GET("/panic", func(c *gin.Context) {
		panic("handler exploded")
	})
	engine.GET("/panic-error", func(c *gin.Context) {
		panic(errors.New("boom"))
	})
	engine.GET("/error", func(c *gin.Context) {
		_ = c.Error(errors.New("repository offline"))
	})
	engine.POST("/bind", func(c *gin.Context) {
		var body struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		c.Status(http.StatusNoContent)
	})
	engine.GET("/handled", func(c *gin.Context) {
		_ = c.Error(errors.New("already answered"))
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	})

	t.Run("Panic", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeInternalError(t, rec)
		assert.Equal(t, "Internal server error", body.Message)
		assert.Contains(t, body.Error, "handler exploded")
	})

	t.Run("PanickedError", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic-error", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "boom", decodeInternalError(t, rec).Error)
	})

	t.Run("UnhandledError", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/error", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "repository offline", decodeInternalError(t, rec).Error)
	})

	t.Run("ValidationError", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/bind", nil)
		req.Header.Set("Content-Type", "application/json")
		req.Body = http.NoBody
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ValidationErrorDetails", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/bind", jsonBody(`{}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Validation failed", body.Error)
		require.Len(t, body.ValidationErrors, 1)
		assert.Equal(t, "required", body.ValidationErrors[0].Tag)
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("AlreadyWritten", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/handled", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"conflict"}`, rec.Body.String())
	})

	t.Run("NoRoute", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Not found", body.Error)
	})
}
