package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingSecret is returned when no session signing secret is configured
var ErrMissingSecret = errors.New("HRPLUS_AUTH_SECRET must be set")

const (
	defaultPort            = 8080
	defaultSessionLifetime = 30 * 24 * time.Hour
	defaultCookieName      = "hrplus_session"
	defaultAuditBuffer     = 256
	defaultAuditTimeout    = 5 * time.Second
)

type AppConfig struct {
	Port      int    `yaml:"port"`
	GinMode   string `yaml:"gin_mode"`
	LogFormat string `yaml:"log_format"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SessionConfig struct {
	Lifetime                 string `yaml:"lifetime"`
	CookieName               string `yaml:"cookie_name"`
	CookieSecure             bool   `yaml:"cookie_secure"`
	RejectClaimsWithoutEmail bool   `yaml:"reject_claims_without_email"`
}

type AuditConfig struct {
	BufferSize int    `yaml:"buffer_size"`
	JobTimeout string `yaml:"job_timeout"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type CasbinConfig struct {
	ModelPath    string `yaml:"model_path"`
	PoliciesPath string `yaml:"policies_path"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	Audit    AuditConfig    `yaml:"audit"`
	Mail     MailConfig     `yaml:"mail"`
	Casbin   CasbinConfig   `yaml:"casbin"`
}

// Config is the resolved process configuration. It is built once at start-up
// and not mutated afterwards.
type Config struct {
	Port      string
	GinMode   string
	LogFormat string

	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret            string
	SessionLifetime          time.Duration
	CookieName               string
	CookieSecure             bool
	RejectClaimsWithoutEmail bool

	AuditBufferSize int
	AuditJobTimeout time.Duration

	MailHost     string
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string

	CasbinModelPath string
	Policies        []PolicyRule
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml and config/policies.yml relative to the working directory
func Load() (*Config, error) {
	return LoadFrom("config/config.yml")
}

// LoadFrom reads the YAML config at path, applies a .env file when one exists
// and then environment overrides.
func LoadFrom(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env: %w", err)
	}

	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	lifetime, err := parseDuration(configFile.Session.Lifetime, defaultSessionLifetime)
	if err != nil {
		return nil, fmt.Errorf("invalid session lifetime: %w", err)
	}

	auditTimeout, err := parseDuration(configFile.Audit.JobTimeout, defaultAuditTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid audit job timeout: %w", err)
	}

	port := configFile.App.Port
	if port == 0 {
		port = defaultPort
	}
	if p := os.Getenv("APP_PORT"); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return nil, fmt.Errorf("invalid APP_PORT: %w", err)
		}
	}

	cfg := &Config{
		Port:      strconv.Itoa(port),
		GinMode:   env("GIN_MODE", orDefault(configFile.App.GinMode, "release")),
		LogFormat: env("LOG_FORMAT", orDefault(configFile.App.LogFormat, "json")),

		DSN:           env("DATABASE_DSN", configFile.Database.DSN),
		RedisAddr:     env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:       configFile.Redis.DB,

		SessionSecret:            os.Getenv("HRPLUS_AUTH_SECRET"),
		SessionLifetime:          lifetime,
		CookieName:               orDefault(configFile.Session.CookieName, defaultCookieName),
		CookieSecure:             configFile.Session.CookieSecure,
		RejectClaimsWithoutEmail: configFile.Session.RejectClaimsWithoutEmail,

		AuditBufferSize: configFile.Audit.BufferSize,
		AuditJobTimeout: auditTimeout,

		MailHost:     configFile.Mail.Host,
		MailPort:     configFile.Mail.Port,
		MailUsername: configFile.Mail.Username,
		MailPassword: env("SMTP_PASSWORD", configFile.Mail.Password),
		MailFrom:     configFile.Mail.From,

		CasbinModelPath: configFile.Casbin.ModelPath,
	}
	if cfg.AuditBufferSize <= 0 {
		cfg.AuditBufferSize = defaultAuditBuffer
	}

	if configFile.Casbin.PoliciesPath != "" {
		policies, err := LoadPolicies(configFile.Casbin.PoliciesPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg.Policies = policies
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return ErrMissingSecret
	}
	if c.SessionLifetime <= 0 {
		return fmt.Errorf("session lifetime must be positive, got %s", c.SessionLifetime)
	}
	return nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
