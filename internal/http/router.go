package httpx

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/you/hrplusauth/internal/http/handlers"
	"github.com/you/hrplusauth/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, ph *handlers.PolicyHandlers, smw *middleware.SessionMW, cb *middleware.CasbinMW, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/login", ah.Login)
	auth.GET("/session", smw.Load(), ah.Session)
	auth.POST("/logout", ah.Logout)

	api := r.Group("/api").Use(smw.Require(), cb.Enforce())
	api.GET("/me", ah.Me)

	adm := r.Group("/admin").Use(smw.Require(), cb.Enforce())
	adm.GET("/policies", ph.List)
	adm.POST("/policies", ph.Add)
	adm.DELETE("/policies", ph.Remove)

	return r
}
