package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"queue-manager-api/internal/config"
)

const corsAllowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"

// DefaultCORSHeaders are always listed in Access-Control-Allow-Headers
var DefaultCORSHeaders = []string{
	"Origin",
	"Content-Type",
	"Content-Length",
	"Accept",
	"Accept-Encoding",
	"Authorization",
	"X-Requested-With",
	"X-CSRF-Token",
	"X-Request-ID",
}

// CORSPolicy decorates every response with cross-origin headers and answers
// preflight requests itself. It sits in front of the application, so it also
// covers responses produced when the application could not be built.
type CORSPolicy struct {
	allowAll bool
	origins  map[string]bool
	headers  []string
	maxAge   int
}

// NewCORSPolicy creates a policy from configuration. An empty origin list or
// one containing "*" allows every origin.
func NewCORSPolicy(cfg config.CORSConfig) *CORSPolicy {
	policy := &CORSPolicy{
		origins: make(map[string]bool),
		maxAge:  cfg.MaxAge,
	}

	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			policy.allowAll = true
			continue
		}
		policy.origins[origin] = true
	}
	if len(policy.origins) == 0 {
		policy.allowAll = true
	}

	policy.headers = mergeHeaderNames(DefaultCORSHeaders, cfg.AllowedHeaders)
	return policy
}

// Apply writes the CORS headers for r into header.
func (p *CORSPolicy) Apply(header http.Header, r *http.Request) {
	origin := r.Header.Get("Origin")
	// the allow-list only restricts which origins are echoed
	switch {
	case origin == "":
		header.Set("Access-Control-Allow-Origin", "*")
	case p.allowAll || p.origins[origin]:
		header.Set("Access-Control-Allow-Origin", origin)
	}

	header.Set("Access-Control-Allow-Methods", corsAllowedMethods)
	header.Set("Access-Control-Allow-Headers", strings.Join(p.allowedHeaders(r), ", "))
	header.Set("Access-Control-Allow-Credentials", "true")
	header.Add("Vary", "Origin")

	if p.maxAge > 0 {
		header.Set("Access-Control-Max-Age", strconv.Itoa(p.maxAge))
	}
}

// Handler wraps next with the policy. OPTIONS requests are answered with an
// empty 200 and never reach next.
func (p *CORSPolicy) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.Apply(w.Header(), r)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (p *CORSPolicy) allowedHeaders(r *http.Request) []string {
	requested := r.Header.Values("Access-Control-Request-Headers")
	if len(requested) == 0 {
		return p.headers
	}

	var extra []string
	for _, value := range requested {
		extra = append(extra, strings.Split(value, ",")...)
	}
	return mergeHeaderNames(p.headers, extra)
}

// mergeHeaderNames returns base followed by the names in extra that are not
// already present, compared case-insensitively.
func mergeHeaderNames(base, extra []string) []string {
	merged := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))

	for _, list := range [][]string{base, extra} {
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			key := http.CanonicalHeaderKey(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, name)
		}
	}
	return merged
}
