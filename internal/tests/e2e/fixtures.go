// Package e2e drives the whole service in-process: gin router, SQLite through
// gorm, Redis through miniredis.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"

	"github.com/you/hrplusauth/domain"
	"github.com/you/hrplusauth/internal/app"
	"github.com/you/hrplusauth/internal/infrastructure/database"
	"github.com/you/hrplusauth/internal/logging"
	testconfig "github.com/you/hrplusauth/internal/tests/config"
)

// TestEnv is one isolated service instance
type TestEnv struct {
	Container *app.Container
	Server    *httptest.Server
	Redis     *miniredis.Miniredis
}

// Fixture users. Passwords are hashed with bcrypt by the real password service.
var (
	Alice = domain.Principal{
		Name: "Alice Martin", Username: "alice", Email: "alice@example.com",
		Role: domain.RoleAdmin, Status: domain.StatusActive,
	}
	Bob = domain.Principal{
		Username: "bob", Email: "bob@example.com",
		Role: domain.RoleDeveloper, Status: domain.StatusActive,
	}
	Root = domain.Principal{
		Name: "Root", Username: "root", Email: "root@example.com",
		Role: domain.RoleSuperAdmin, Status: domain.StatusActive,
	}
)

const Password = "correct-pw"

// NewTestEnv starts a service with Alice, Bob and Root in the user store
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testconfig.LoadTestConfig(t)

	db, err := database.OpenDialector(sqlite.Open(filepath.Join(t.TempDir(), "hrplus.db")))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// background audit writes share the single SQLite writer
	sqlDB.SetMaxOpenConns(1)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c, err := app.NewContainerWith(cfg, logging.Discard(), db, rdb)
	if err != nil {
		t.Fatalf("Failed to build container: %v", err)
	}

	env := &TestEnv{Container: c, Server: httptest.NewServer(c.Router), Redis: mr}
	t.Cleanup(func() {
		env.Server.Close()
		_ = c.Close()
	})

	for _, p := range []domain.Principal{Alice, Bob, Root} {
		env.CreateUser(t, p)
	}
	return env
}

// CreateUser stores p with Password and returns the stored principal
func (e *TestEnv) CreateUser(t *testing.T, p domain.Principal) *domain.Principal {
	t.Helper()

	hash, err := e.Container.PasswordSvc.Hash(Password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	p.PasswordHash = hash
	if err := e.Container.UserRepo.Create(context.Background(), &p); err != nil {
		t.Fatalf("Failed to create user %s: %v", p.Email, err)
	}
	return &p
}

// Lookup returns the stored principal for identifier
func (e *TestEnv) Lookup(t *testing.T, identifier string) *domain.Principal {
	t.Helper()

	p, err := e.Container.UserRepo.FindByEmailOrUsername(context.Background(), identifier)
	if err != nil {
		t.Fatalf("Failed to find %s: %v", identifier, err)
	}
	return p
}

// Response is a decoded JSON response
type Response struct {
	Status  int
	Body    map[string]interface{}
	Raw     string
	Cookies []*http.Cookie
}

// Data returns body["data"] as an object
func (r *Response) Data(t *testing.T) map[string]interface{} {
	t.Helper()
	data, ok := r.Body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %s", r.Raw)
	}
	return data
}

// Cookie returns the named response cookie or nil
func (r *Response) Cookie(name string) *http.Cookie {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Request is a request against the test server
type Request struct {
	Method  string
	Path    string
	Body    interface{}
	Token   string
	Cookie  *http.Cookie
	Headers map[string]string
}

// Do sends req and decodes the response
func (e *TestEnv) Do(t *testing.T, req Request) *Response {
	t.Helper()

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequest(req.Method, e.Server.URL+req.Path, body)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.Cookie != nil {
		httpReq.AddCookie(req.Cookie)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.Server.Client().Do(httpReq)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}

	out := &Response{Status: resp.StatusCode, Raw: string(raw), Cookies: resp.Cookies()}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out.Body); err != nil {
			t.Fatalf("Failed to decode response %q: %v", raw, err)
		}
	}
	return out
}

// Login posts identifier and password and returns the response
func (e *TestEnv) Login(t *testing.T, identifier, password string, headers map[string]string) *Response {
	t.Helper()
	return e.Do(t, Request{
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Body:    map[string]string{"identifier": identifier, "password": password},
		Headers: headers,
	})
}

// MustLogin logs in and returns the session token
func (e *TestEnv) MustLogin(t *testing.T, identifier string) string {
	t.Helper()

	resp := e.Login(t, identifier, Password, nil)
	if resp.Status != http.StatusOK {
		t.Fatalf("Login as %s failed with %d: %s", identifier, resp.Status, resp.Raw)
	}
	token, _ := resp.Data(t)["token"].(string)
	if token == "" {
		t.Fatalf("Login as %s returned no token", identifier)
	}
	return token
}
