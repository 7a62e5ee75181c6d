package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/you/hrplusauth/domain"
	"github.com/you/hrplusauth/internal/config"
	httpx "github.com/you/hrplusauth/internal/http"
	"github.com/you/hrplusauth/internal/http/handlers"
	"github.com/you/hrplusauth/internal/http/middleware"
	"github.com/you/hrplusauth/internal/infrastructure/auth"
	"github.com/you/hrplusauth/internal/infrastructure/database"
	"github.com/you/hrplusauth/internal/infrastructure/notifications"
	"github.com/you/hrplusauth/internal/infrastructure/repositories"
	"github.com/you/hrplusauth/internal/services"
)

// TokenIssuer is the iss claim of every session token
const TokenIssuer = "hrplus-auth"

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config
	Log    *slog.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Casbin      *auth.CasbinService
	Dispatcher  *services.Dispatcher

	// Repositories
	UserRepo       domain.UserRepository
	LoginEventRepo domain.LoginEventRepository
	RevocationRepo domain.RevocationRepository

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	AuthSvc         domain.AuthService
	PolicySvc       domain.PolicyService

	Router *gin.Engine
}

// NewContainer connects to Postgres and Redis and wires every dependency
func NewContainer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Container, error) {
	db, err := database.Open(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(ctx, 5*time.Second); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	c, err := NewContainerWith(cfg, log, db, rdb.Client)
	if err != nil {
		_ = rdb.Close()
		closeDB(db)
		return nil, err
	}
	return c, nil
}

// NewContainerWith wires every dependency on top of open connections
func NewContainerWith(cfg *config.Config, log *slog.Logger, db *gorm.DB, rdb *redis.Client) (*Container, error) {
	c := &Container{Config: cfg, Log: log, DB: db, RedisClient: rdb}

	if err := c.initDatabase(); err != nil {
		return nil, err
	}
	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, err
	}
	c.initRouter()

	return c, nil
}

func (c *Container) initDatabase() error {
	if err := database.AutoMigrate(c.DB); err != nil {
		return err
	}

	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return fmt.Errorf("failed to initialize casbin: %w", err)
	}
	if err := cas.SeedPolicies(c.Config.Policies, c.Log); err != nil {
		return fmt.Errorf("failed to seed policies: %w", err)
	}
	c.Casbin = cas
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.LoginEventRepo = repositories.NewLoginEventRepository(c.DB)
	c.RevocationRepo = repositories.NewRevocationRepository(c.RedisClient)
}

func (c *Container) initServices() error {
	cfg := c.Config

	c.PasswordSvc = auth.NewPasswordService()
	c.TokenSvc = auth.NewJWTService(cfg.SessionSecret, TokenIssuer, cfg.SessionLifetime)
	mailer, err := notifications.NewEmailService(cfg.MailHost, cfg.MailPort, cfg.MailUsername, cfg.MailPassword, cfg.MailFrom, c.Log)
	if err != nil {
		return err
	}
	c.NotificationSvc = mailer
	c.PolicySvc = services.NewPolicyService(c.Casbin.E)

	c.Dispatcher = services.NewDispatcher(services.DispatcherConfig{
		BufferSize: cfg.AuditBufferSize,
		JobTimeout: cfg.AuditJobTimeout,
	}, c.Log)

	c.AuthSvc = services.NewAuthService(
		services.NewCredentialVerifier(c.UserRepo, c.PasswordSvc),
		c.TokenSvc,
		services.NewAuditRecorder(c.LoginEventRepo, c.Dispatcher),
		services.NewLoginNotifier(c.NotificationSvc, c.Dispatcher),
		services.NewSessionReconciler(c.UserRepo, services.ReconcilerConfig{
			RejectClaimsWithoutEmail: cfg.RejectClaimsWithoutEmail,
		}, c.Log),
		services.NewSessionMaterializer(),
		c.RevocationRepo,
		c.Log,
	)
	return nil
}

func (c *Container) initRouter() {
	cookie := middleware.CookieConfig{Name: c.Config.CookieName, Secure: c.Config.CookieSecure}

	c.Router = httpx.BuildRouter(
		handlers.NewAuthHandlers(c.AuthSvc, cookie, c.Log),
		handlers.NewPolicyHandlers(c.PolicySvc),
		middleware.NewSessionMW(c.AuthSvc, c.TokenSvc, cookie, c.Log),
		middleware.NewCasbinMW(c.PolicySvc, c.Log),
		c.Log,
	)
}

// Close drains background jobs and closes all connections
func (c *Container) Close() error {
	c.Dispatcher.Close()

	var errs []error
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
	}
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
