package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/hrplusauth/domain"
)

// CasbinMW enforces route policies for the session principal
type CasbinMW struct {
	policySvc domain.PolicyService
	log       *slog.Logger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policySvc domain.PolicyService, log *slog.Logger) *CasbinMW {
	return &CasbinMW{policySvc: policySvc, log: log.With("component", "casbin_middleware")}
}

// Enforce returns the casbin authorization middleware. It must run after SessionMW.Require.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if !session.Authenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		user := session.User
		path := c.Request.URL.Path
		method := c.Request.Method

		// status is reconciled on every request, so a suspension applies immediately
		if user.Status != domain.StatusActive {
			mw.deny(c, user, path, method, "inactive")
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is not active"})
			c.Abort()
			return
		}

		allowed, err := mw.policySvc.CheckPermission(string(user.Role), path, method)
		if err != nil {
			mw.log.ErrorContext(c.Request.Context(), "authorization check failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			c.Abort()
			return
		}
		if !allowed {
			mw.deny(c, user, path, method, "policy")
			c.JSON(http.StatusForbidden, gin.H{"error": "Access Denied"})
			c.Abort()
			return
		}

		mw.log.DebugContext(c.Request.Context(), string(domain.AccessGrantedEvent),
			"principal_id", user.ID, "path", path, "method", method)
		c.Next()
	}
}

func (mw *CasbinMW) deny(c *gin.Context, user *domain.SessionUser, path, method, reason string) {
	mw.log.InfoContext(c.Request.Context(), string(domain.AccessDeniedEvent),
		"principal_id", user.ID,
		"role", user.Role,
		"status", user.Status,
		"path", path,
		"method", method,
		"reason", reason)
}
