package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queue-manager-api/pkg/lambda"
)

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func TestTransformResponse(t *testing.T) {
	engine := gin.New()
	api := engine.Group("/api", TransformResponse())
	api.GET("/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "Haircut"})
	})
	api.GET("/created", func(c *gin.Context) {
		c.JSON(http.StatusCreated, []string{"a", "b"})
	})
	api.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	api.GET("/text", func(c *gin.Context) {
		c.String(http.StatusOK, "plain")
	})
	api.DELETE("/empty", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	t.Run("WrapsSuccessfulJSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/json", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var envelope SuccessEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.True(t, envelope.Success)
		assert.JSONEq(t, `{"name":"Haircut"}`, string(envelope.Data))
		_, err := time.Parse(time.RFC3339, envelope.Timestamp)
		assert.NoError(t, err)
	})

	t.Run("KeepsStatus", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/created", nil))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"data":["a","b"]`)
	})

	t.Run("LeavesErrorsAlone", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
	})

	t.Run("LeavesNonJSONAlone", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/text", nil))

		assert.Equal(t, "plain", rec.Body.String())
	})

	t.Run("EmptyBody", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/empty", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestTransformResponseWithErrorBoundary(t *testing.T) {
	logger, _ := test.NewNullLogger()
	engine := gin.New()
	engine.Use(ErrorBoundary(logger))
	engine.Group("/api", TransformResponse()).GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Internal server error"`)
	assert.NotContains(t, rec.Body.String(), `"success"`)
}

func TestTransformResponseLeavesBindErrorsToBoundary(t *testing.T) {
	logger, _ := test.NewNullLogger()
	engine := gin.New()
	engine.Use(ErrorBoundary(logger))
	engine.Group("/api", TransformResponse()).POST("/things", func(c *gin.Context) {
		var body struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
			return
		}
		c.JSON(http.StatusCreated, body)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/things", jsonBody(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"Validation failed"`)
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("FromHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "client-id")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, "client-id", rec.Body.String())
		assert.Equal(t, "client-id", rec.Header().Get("X-Request-ID"))
	})

	t.Run("FromInvocation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(lambda.WithInvocation(req.Context(), lambda.Invocation{RequestID: "aws-req-1"}))
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, "aws-req-1", rec.Body.String())
	})

	t.Run("Generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(rec.Body.String())
		assert.NoError(t, err)
	})
}

func TestRateLimiter(t *testing.T) {
	logger, hook := test.NewNullLogger()

	t.Run("RejectsOverBurst", func(t *testing.T) {
		engine := gin.New()
		engine.Use(RateLimiter(logger, 0.001, 2))
		engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		codes := make([]int, 3)
		for i := range codes {
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			codes[i] = rec.Code
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, "Rate limit exceeded", hook.LastEntry().Message)
	})

	t.Run("DisabledWithZeroRate", func(t *testing.T) {
		engine := gin.New()
		engine.Use(RateLimiter(logger, 0, 0))
		engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 0; i < 10; i++ {
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRequestValidation(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestValidation())
	engine.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "ValidLimit", path: "/items?limit=10", want: http.StatusOK},
		{name: "NegativeLimit", path: "/items?limit=-1", want: http.StatusBadRequest},
		{name: "BadFrom", path: "/items?from=yesterday", want: http.StatusBadRequest},
		{name: "ValidID", path: "/items/" + uuid.NewString(), want: http.StatusOK},
		{name: "BadID", path: "/items/42", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAuthentication(t *testing.T) {
	auth := NewAuthService(&AuthConfig{JWTSecret: "test-secret", TokenDuration: time.Hour})

	engine := gin.New()
	engine.Use(Authentication(auth), Authorization(RoleAdmin, RoleOperator))
	engine.POST("/queue", func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.UserID)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/queue", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ValidOperator", func(t *testing.T) {
		token, err := auth.GenerateToken("user-1", "front-desk", "desk@example.com", []string{string(RoleOperator)})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/queue", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Body.String())
	})

	t.Run("ViewerForbidden", func(t *testing.T) {
		token, err := auth.GenerateToken("user-2", "guest", "", []string{string(RoleViewer)})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/queue", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Insufficient permissions", body.Message)
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/queue", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ForeignIssuer", func(t *testing.T) {
		other := NewAuthService(&AuthConfig{JWTSecret: "test-secret", Issuer: "someone-else"})
		token, err := other.GenerateToken("user-4", "desk", "", []string{string(RoleAdmin)})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/queue", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewAuthService(&AuthConfig{JWTSecret: "other-secret"})
		token, err := other.GenerateToken("user-3", "intruder", "", []string{string(RoleAdmin)})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/queue", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRefreshToken(t *testing.T) {
	auth := NewAuthService(&AuthConfig{JWTSecret: "test-secret"})
	token, err := auth.GenerateToken("user-1", "desk", "", []string{"operator"})
	require.NoError(t, err)

	refreshed, err := auth.RefreshToken(token)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "queue-manager-api", claims.Issuer)
}

func TestAuthorizationWithoutAuthentication(t *testing.T) {
	engine := gin.New()
	engine.POST("/queue/next", Authorization(RoleOperator), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/queue/next", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResourceFromPath(t *testing.T) {
	id := uuid.NewString()

	resource, got := resourceFromPath("/api/appointments/" + id + "/status")
	assert.Equal(t, "appointment", resource)
	assert.Equal(t, id, got)

	resource, got = resourceFromPath("/api/queue/next")
	assert.Equal(t, "queue_entry", resource)
	assert.Empty(t, got)

	resource, _ = resourceFromPath("/api/health")
	assert.Empty(t, resource)
}

func TestContentTypeValidation(t *testing.T) {
	engine := gin.New()
	engine.Use(ContentTypeValidation("application/json"))
	engine.POST("/things", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		want        int
	}{
		{"JSON", `{}`, "application/json; charset=utf-8", http.StatusNoContent},
		{"NoBody", "", "", http.StatusNoContent},
		{"MissingHeader", `{}`, "", http.StatusBadRequest},
		{"Unsupported", `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
