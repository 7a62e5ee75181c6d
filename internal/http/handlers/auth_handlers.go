package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/hrplusauth/domain"
	"github.com/you/hrplusauth/internal/http/middleware"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc domain.AuthService
	cookie  middleware.CookieConfig
	log     *slog.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, cookie middleware.CookieConfig, log *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authSvc: authSvc,
		cookie:  cookie,
		log:     log.With("component", "auth_handlers"),
	}
}

// LoginRequest represents login request. Identifier is an email or a
// username; Email is accepted for older clients.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse is the data of a successful login
type LoginResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      *domain.SessionUser `json:"user"`
}

func clientMetadata(r *http.Request) domain.ClientMetadata {
	return domain.ClientMetadataFromHeaders(
		r.Header.Values("X-Forwarded-For"),
		r.Header.Values("X-Real-IP"),
		r.Header.Values("User-Agent"),
	)
}

// Login handles user login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier or email is required"})
		return
	}

	ctx := c.Request.Context()
	result, err := h.authSvc.Login(ctx, domain.Credential{Identifier: identifier, Secret: req.Password}, clientMetadata(c.Request))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.log.ErrorContext(ctx, "login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	session, err := h.authSvc.SessionFromLogin(ctx, result)
	if err != nil || !session.Authenticated() {
		h.log.ErrorContext(ctx, "login produced no session", "principal_id", result.Principal.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	h.cookie.Set(c, result.Token, result.Claims.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"data": LoginResponse{
			Token:     result.Token,
			ExpiresAt: result.Claims.ExpiresAt,
			User:      session.User,
		},
	})
}

// Session returns the current session. A missing or dead token is not an
// error; the user is null.
func (h *AuthHandlers) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": middleware.SessionFrom(c)})
}

// Me returns the session principal (requires authentication)
func (h *AuthHandlers) Me(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if !session.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":      session.User.ID,
			"name":    session.User.Name,
			"email":   session.User.Email,
			"role":    session.User.Role,
			"status":  session.User.Status,
			"expires": session.Expires,
		},
	})
}

// Logout revokes the presented tokens and clears the cookie
func (h *AuthHandlers) Logout(c *gin.Context) {
	for _, token := range middleware.TokensFromRequest(c, h.cookie.Name) {
		if err := h.authSvc.Logout(c.Request.Context(), token); err != nil {
			h.log.ErrorContext(c.Request.Context(), "logout failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
			return
		}
	}

	h.cookie.Clear(c)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message": "Logged out successfully",
		},
	})
}
