package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"queue-manager-api/internal/config"
)

func downstream(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("downstream"))
	})
}

func TestCORSPolicyEchoesOrigin(t *testing.T) {
	policy := NewCORSPolicy(config.CORSConfig{AllowedOrigins: []string{"*"}})

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	req.Header.Set("Origin", "https://x.example")
	rec := httptest.NewRecorder()

	policy.Handler(downstream(&called)).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, "https://x.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	assert.Equal(t, "downstream", rec.Body.String())
}

func TestCORSPolicyWildcardWithoutOrigin(t *testing.T) {
	policy := NewCORSPolicy(config.CORSConfig{})

	var called bool
	rec := httptest.NewRecorder()
	policy.Handler(downstream(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPolicyPreflightShortCircuits(t *testing.T) {
	policy := NewCORSPolicy(config.CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: 600})

	var called bool
	req := httptest.NewRequest(http.MethodOptions, "/api/anything", nil)
	req.Header.Set("Origin", "https://x.example")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom-Header, content-type")
	rec := httptest.NewRecorder()

	policy.Handler(downstream(&called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "https://x.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))

	allowed := rec.Header().Get("Access-Control-Allow-Headers")
	assert.Contains(t, allowed, "Authorization")
	assert.Contains(t, allowed, "X-Custom-Header")
	assert.Equal(t, 1, strings.Count(allowed, "Content-Type"))
}

func TestCORSPolicyRestrictedOrigins(t *testing.T) {
	policy := NewCORSPolicy(config.CORSConfig{
		AllowedOrigins: []string{"https://app.example", " https://admin.example "},
	})

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{name: "Listed", origin: "https://app.example", want: "https://app.example"},
		{name: "TrimmedEntry", origin: "https://admin.example", want: "https://admin.example"},
		{name: "Unlisted", origin: "https://evil.example", want: ""},
		{name: "NoOrigin", origin: "", want: "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()

			policy.Handler(downstream(&called)).ServeHTTP(rec, req)

			assert.True(t, called)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestCORSPolicyExtraConfiguredHeaders(t *testing.T) {
	policy := NewCORSPolicy(config.CORSConfig{AllowedHeaders: []string{"X-Api-Key", "authorization"}})

	header := http.Header{}
	policy.Apply(header, httptest.NewRequest(http.MethodGet, "/", nil))

	allowed := header.Get("Access-Control-Allow-Headers")
	assert.Contains(t, allowed, "X-Api-Key")
	assert.Equal(t, 1, strings.Count(allowed, "uthorization"))
	assert.Empty(t, header.Get("Access-Control-Max-Age"))
}
