package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// UserRole is the role a token grants
type UserRole string

const (
	// RoleAdmin manages the catalog and staff
	RoleAdmin UserRole = "admin"
	// RoleOperator works the front desk: calls the queue and moves appointments along
	RoleOperator UserRole = "operator"
	// RoleViewer may book and read but not run the desk
	RoleViewer UserRole = "viewer"
)

// ClaimsKey is the gin context key holding the authenticated *Claims
const ClaimsKey = "claims"

const bearerPrefix = "Bearer "

// Claims are the JWT claims issued to desk users
type Claims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasAnyRole reports whether the claims carry one of roles
func (c *Claims) HasAnyRole(roles ...UserRole) bool {
	for _, role := range roles {
		if slices.Contains(c.Roles, string(role)) {
			return true
		}
	}
	return false
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Issuer        string
}

// AuthService issues and verifies HS256 bearer tokens
type AuthService struct {
	secret   []byte
	duration time.Duration
	issuer   string
}

// NewAuthService creates an auth service. Tokens last 24h and are issued by
// queue-manager-api unless configured otherwise.
func NewAuthService(config *AuthConfig) *AuthService {
	service := &AuthService{
		secret:   []byte(config.JWTSecret),
		duration: config.TokenDuration,
		issuer:   config.Issuer,
	}
	if service.duration <= 0 {
		service.duration = 24 * time.Hour
	}
	if service.issuer == "" {
		service.issuer = "queue-manager-api"
	}
	return service
}

// TokenDuration returns how long issued tokens stay valid
func (a *AuthService) TokenDuration() time.Duration {
	return a.duration
}

// GenerateToken signs a token for the given desk user
func (a *AuthService) GenerateToken(userID, username, email string, roles []string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Email:    email,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.duration)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString, checking signature, issuer and expiry
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// RefreshToken re-issues a still valid token with a fresh expiry
func (a *AuthService) RefreshToken(tokenString string) (string, error) {
	claims, err := a.ValidateToken(tokenString)
	if err != nil {
		return "", fmt.Errorf("invalid token for refresh: %w", err)
	}
	return a.GenerateToken(claims.UserID, claims.Username, claims.Email, claims.Roles)
}

// Authentication requires a valid bearer token and stores its claims under
// ClaimsKey.
func Authentication(authService *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortAuth(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || token == "" {
			abortAuth(c, http.StatusUnauthorized, "Expected: Bearer <token>")
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey),
				"path":       c.Request.URL.Path,
				"error":      err.Error(),
			}).Warn("Rejected bearer token")
			abortAuth(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Authorization admits requests whose claims carry one of roles. It must run
// after Authentication.
func Authorization(roles ...UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		if !claims.HasAnyRole(roles...) {
			logrus.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey),
				"user_id":    claims.UserID,
				"roles":      claims.Roles,
				"path":       c.Request.URL.Path,
			}).Warn("Insufficient role")
			abortAuth(c, http.StatusForbidden, "Insufficient permissions")
			return
		}

		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by Authentication
func ClaimsFromContext(c *gin.Context) (*Claims, bool) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}

func abortAuth(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
