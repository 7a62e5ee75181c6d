package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/hrplusauth/domain"
)

// Context keys set by the session middleware
const (
	ContextSession    = "session"
	ContextClaims     = "session_claims"
	ContextUserID     = "user_id"
	ContextUserRole   = "user_role"
	ContextUserStatus = "user_status"
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// Set writes token as the session cookie, expiring with the token
func (cc CookieConfig) Set(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge <= 0 {
		cc.Clear(c)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cc.Name, token, maxAge, "/", "", cc.Secure, true)
}

// Clear removes the session cookie
func (cc CookieConfig) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cc.Name, "", -1, "/", "", cc.Secure, true)
}

// CookieToken returns the session cookie value, if any
func CookieToken(c *gin.Context, cookieName string) string {
	v, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return v
}

// BearerToken returns the Authorization: Bearer token, if any
func BearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// TokensFromRequest returns the distinct session tokens presented, cookie first
func TokensFromRequest(c *gin.Context, cookieName string) []string {
	var tokens []string
	if v := CookieToken(c, cookieName); v != "" {
		tokens = append(tokens, v)
	}
	if v := BearerToken(c); v != "" && (len(tokens) == 0 || tokens[0] != v) {
		tokens = append(tokens, v)
	}
	return tokens
}

// SessionFrom returns the session stored by SessionMW, or an empty one
func SessionFrom(c *gin.Context) *domain.Session {
	if v, ok := c.Get(ContextSession); ok {
		if s, ok := v.(*domain.Session); ok && s != nil {
			return s
		}
	}
	return &domain.Session{}
}

// SessionMW resolves the session token of each request
type SessionMW struct {
	authSvc  domain.AuthService
	tokenSvc domain.TokenService
	cookie   CookieConfig
	log      *slog.Logger
}

// NewSessionMW creates the session middleware
func NewSessionMW(authSvc domain.AuthService, tokenSvc domain.TokenService, cookie CookieConfig, log *slog.Logger) *SessionMW {
	return &SessionMW{
		authSvc:  authSvc,
		tokenSvc: tokenSvc,
		cookie:   cookie,
		log:      log.With("component", "session_middleware"),
	}
}

// Load validates the session if one is presented and stores it in the
// context. It never aborts: a missing or dead session yields an empty one.
func (mw *SessionMW) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		mw.resolve(c)
		c.Next()
	}
}

// Require is Load followed by a 401 for requests without an authenticated session
func (mw *SessionMW) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !mw.resolve(c).Authenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// resolve tries the cookie first. A cookie that fails validation is cleared
// and the bearer token, if any, gets its own chance.
func (mw *SessionMW) resolve(c *gin.Context) *domain.Session {
	if token := CookieToken(c, mw.cookie.Name); token != "" {
		session, claims, err := mw.authSvc.ValidateSession(c.Request.Context(), token)
		if err == nil {
			mw.store(c, session, claims)
			mw.refreshCookie(c, token, claims)
			return session
		}
		mw.cookie.Clear(c)
	}

	if token := BearerToken(c); token != "" {
		session, claims, err := mw.authSvc.ValidateSession(c.Request.Context(), token)
		if err == nil {
			mw.store(c, session, claims)
			return session
		}
	}

	session := &domain.Session{}
	c.Set(ContextSession, session)
	return session
}

func (mw *SessionMW) store(c *gin.Context, session *domain.Session, claims *domain.SessionClaims) {
	c.Set(ContextSession, session)
	c.Set(ContextClaims, claims)
	c.Set(ContextUserID, session.User.ID)
	c.Set(ContextUserRole, string(session.User.Role))
	c.Set(ContextUserStatus, string(session.User.Status))
}

// refreshCookie re-signs the reconciled claims. Signing is deterministic, so
// an unchanged snapshot produces the same token and the cookie is left alone.
func (mw *SessionMW) refreshCookie(c *gin.Context, token string, claims *domain.SessionClaims) {
	reissued, err := mw.tokenSvc.Reissue(claims)
	if err != nil {
		mw.log.DebugContext(c.Request.Context(), "session token not reissued", "error", err)
		return
	}
	if reissued != token {
		mw.cookie.Set(c, reissued, claims.ExpiresAt)
	}
}
