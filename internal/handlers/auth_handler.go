package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"queue-manager-api/internal/middleware"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *middleware.AuthService
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *middleware.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// TokenRequest represents a development token request
type TokenRequest struct {
	Username string   `json:"username" binding:"required,min=1,max=100"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Roles    []string `json:"roles" binding:"omitempty,dive,oneof=admin operator viewer"`
}

// TokenResponse represents an issued token
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo represents user information
type UserInfo struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// RefreshTokenRequest represents the refresh token request
type RefreshTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// @Summary Issue a development token
// @Description Issue a JWT for local testing. Only registered outside production.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body TokenRequest true "Token subject"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.InternalErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if !bindJSON(c, &req) {
		return
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{string(middleware.RoleOperator)}
	}

	user := UserInfo{
		ID:       uuid.New().String(),
		Username: req.Username,
		Email:    req.Email,
		Roles:    roles,
	}

	token, err := h.authService.GenerateToken(user.ID, user.Username, user.Email, user.Roles)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(h.authService.TokenDuration()),
		User:      user,
	})
}

// @Summary Refresh Token
// @Description Refresh an existing JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param token body RefreshTokenRequest true "Token to refresh"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	newToken, err := h.authService.RefreshToken(req.Token)
	if err != nil {
		writeError(c, http.StatusUnauthorized, "Invalid or expired token", err)
		return
	}

	claims, err := h.authService.ValidateToken(newToken)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if claims.ExpiresAt == nil {
		_ = c.Error(errors.New("refreshed token has no expiry"))
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:     newToken,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
		User: UserInfo{
			ID:       claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
			Roles:    claims.Roles,
		},
	})
}
