package config

import (
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/you/hrplusauth/internal/config"
)

// TestSecret signs session tokens in tests
const TestSecret = "test-secret-not-for-production-use"

// repoRoot locates the module root from this file
func repoRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..")
}

// LoadTestConfig returns a configuration for in-process tests. The seed
// policies come from config/policies.yml; databases are supplied by the caller.
func LoadTestConfig(t *testing.T) *config.Config {
	t.Helper()

	policies, err := config.LoadPolicies(filepath.Join(repoRoot(), "config", "policies.yml"))
	if err != nil {
		t.Fatalf("Failed to load test policies: %v", err)
	}

	cfg := &config.Config{
		Port:            "0",
		GinMode:         "test",
		LogFormat:       "text",
		SessionSecret:   TestSecret,
		SessionLifetime: time.Hour,
		CookieName:      "hrplus_session",
		AuditBufferSize: 64,
		AuditJobTimeout: 2 * time.Second,
		Policies:        policies,
	}
	validateTestConfig(t, cfg)

	return cfg
}

// validateTestConfig ensures the configuration would pass start-up checks
func validateTestConfig(t *testing.T, cfg *config.Config) {
	t.Helper()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test configuration: %v", err)
	}
	if len(cfg.Policies) == 0 {
		t.Fatal("test configuration has no seed policies")
	}
}
