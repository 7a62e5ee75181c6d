package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/hrplusauth/domain"
	"github.com/you/hrplusauth/internal/http/middleware"
	"github.com/you/hrplusauth/internal/logging"
	"github.com/you/hrplusauth/internal/mocks"
)

var testCookie = middleware.CookieConfig{Name: "hrplus_session"}

func alice() *domain.Principal {
	return &domain.Principal{
		ID:     "u-alice",
		Name:   "Alice Martin",
		Email:  "alice@example.com",
		Role:   domain.RoleAdmin,
		Status: domain.StatusActive,
	}
}

func loginAs(p *domain.Principal) func(context.Context, domain.Credential, domain.ClientMetadata) (*domain.LoginResult, error) {
	return func(_ context.Context, cred domain.Credential, _ domain.ClientMetadata) (*domain.LoginResult, error) {
		if (cred.Identifier != p.Email && cred.Identifier != "alice") || cred.Secret != "correct-pw" {
			return nil, domain.NewAuthError(domain.KindCredentialMismatch, nil)
		}
		return &domain.LoginResult{
			Principal: p,
			Token:     "signed.jwt.token",
			Claims:    &domain.SessionClaims{TokenID: "jti-1", PrincipalID: p.ID, Role: p.Role, Status: p.Status, ExpiresAt: time.Now().Add(time.Hour)},
		}, nil
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func TestAuthHandlers_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		headers        map[string]string
		setupMocks     func(*mocks.MockAuthService)
		expectedStatus int
		expectedError  string
		expectCookie   bool
		validate       func(t *testing.T, cred domain.Credential, meta domain.ClientMetadata)
	}{
		{
			name: "login with email",
			body: `{"email":"alice@example.com","password":"correct-pw"}`,
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
				"User-Agent":      "Mozilla/5.0",
			},
			setupMocks:     func(m *mocks.MockAuthService) { m.LoginFunc = loginAs(alice()) },
			expectedStatus: http.StatusOK,
			expectCookie:   true,
			validate: func(t *testing.T, cred domain.Credential, meta domain.ClientMetadata) {
				if cred.Identifier != "alice@example.com" {
					t.Errorf("expected identifier from email field, got %q", cred.Identifier)
				}
				if len(meta.IPAddress) != 2 || meta.IPAddress[0] != "203.0.113.7" {
					t.Errorf("unexpected ip list %v", meta.IPAddress)
				}
				if len(meta.UserAgent) != 1 || meta.UserAgent[0] != "Mozilla/5.0" {
					t.Errorf("unexpected user agents %v", meta.UserAgent)
				}
			},
		},
		{
			name:           "login with username identifier",
			body:           `{"identifier":"alice","password":"correct-pw"}`,
			setupMocks:     func(m *mocks.MockAuthService) { m.LoginFunc = loginAs(alice()) },
			expectedStatus: http.StatusOK,
			expectCookie:   true,
		},
		{
			name:           "wrong password",
			body:           `{"identifier":"alice","password":"wrong-pw"}`,
			setupMocks:     func(m *mocks.MockAuthService) { m.LoginFunc = loginAs(alice()) },
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid credentials",
		},
		{
			name: "unknown user looks the same",
			body: `{"identifier":"mallory","password":"correct-pw"}`,
			setupMocks: func(m *mocks.MockAuthService) {
				m.LoginFunc = func(context.Context, domain.Credential, domain.ClientMetadata) (*domain.LoginResult, error) {
					return nil, domain.NewAuthError(domain.KindPrincipalNotFound, domain.ErrUserNotFound)
				}
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid credentials",
		},
		{
			name:           "missing identifier",
			body:           `{"password":"correct-pw"}`,
			setupMocks:     func(m *mocks.MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "identifier or email is required",
		},
		{
			name:           "missing password",
			body:           `{"identifier":"alice"}`,
			setupMocks:     func(m *mocks.MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "store failure",
			body: `{"identifier":"alice","password":"correct-pw"}`,
			setupMocks: func(m *mocks.MockAuthService) {
				m.LoginFunc = func(context.Context, domain.Credential, domain.ClientMetadata) (*domain.LoginResult, error) {
					return nil, errors.New("failed to look up principal: connection refused")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Login failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := mocks.NewMockAuthService()
			tt.setupMocks(authSvc)

			var gotCred domain.Credential
			var gotMeta domain.ClientMetadata
			if inner := authSvc.LoginFunc; inner != nil {
				authSvc.LoginFunc = func(ctx context.Context, cred domain.Credential, meta domain.ClientMetadata) (*domain.LoginResult, error) {
					gotCred, gotMeta = cred, meta
					return inner(ctx, cred, meta)
				}
			}

			h := NewAuthHandlers(authSvc, testCookie, logging.Discard())
			r := gin.New()
			r.POST("/auth/login", h.Login)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			body := decode(t, w)
			if tt.expectedError != "" && body["error"] != tt.expectedError {
				t.Errorf("expected error %q, got %v", tt.expectedError, body["error"])
			}

			var cookie *http.Cookie
			for _, ck := range w.Result().Cookies() {
				if ck.Name == testCookie.Name {
					cookie = ck
				}
			}
			if tt.expectCookie != (cookie != nil) {
				t.Fatalf("expected cookie %v, got %v", tt.expectCookie, cookie)
			}

			if tt.expectedStatus == http.StatusOK {
				data := body["data"].(map[string]interface{})
				if data["token"] != "signed.jwt.token" {
					t.Errorf("unexpected token %v", data["token"])
				}
				if cookie.Value != "signed.jwt.token" || !cookie.HttpOnly {
					t.Errorf("unexpected cookie %+v", cookie)
				}
				user := data["user"].(map[string]interface{})
				if user["id"] != "u-alice" || user["role"] != "ADMIN" || user["status"] != "ACTIVE" {
					t.Errorf("unexpected user %v", user)
				}
			}
			if tt.validate != nil {
				tt.validate(t, gotCred, gotMeta)
			}
		})
	}
}

func TestAuthHandlers_Session(t *testing.T) {
	gin.SetMode(gin.TestMode)
	expires := time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		session  *domain.Session
		wantUser bool
	}{
		{
			name:     "authenticated",
			session:  &domain.Session{User: &domain.SessionUser{ID: "u-alice", Role: domain.RoleAdmin, Status: domain.StatusActive}, Expires: expires},
			wantUser: true,
		},
		{name: "anonymous", session: &domain.Session{}},
		{name: "nothing in context", session: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandlers(mocks.NewMockAuthService(), testCookie, logging.Discard())
			r := gin.New()
			r.GET("/auth/session", func(c *gin.Context) {
				if tt.session != nil {
					c.Set(middleware.ContextSession, tt.session)
				}
			}, h.Session)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			data := decode(t, w)["data"].(map[string]interface{})
			if _, ok := data["user"]; !ok {
				t.Fatal("user key must always be present")
			}
			if tt.wantUser == (data["user"] == nil) {
				t.Errorf("unexpected user %v", data["user"])
			}
		})
	}
}

func TestAuthHandlers_Me(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandlers(mocks.NewMockAuthService(), testCookie, logging.Discard())

	r := gin.New()
	r.GET("/api/me", func(c *gin.Context) {
		c.Set(middleware.ContextSession, &domain.Session{User: &domain.SessionUser{
			ID: "u-alice", Name: "Alice Martin", Email: "alice@example.com", Role: domain.RoleAdmin, Status: domain.StatusActive,
		}})
	}, h.Me)
	r.GET("/api/anonymous", h.Me)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := decode(t, w)["data"].(map[string]interface{})
	if data["id"] != "u-alice" || data["name"] != "Alice Martin" || data["role"] != "ADMIN" {
		t.Errorf("unexpected profile %v", data)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/anonymous", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", w.Code)
	}
}

func TestAuthHandlers_Logout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		bearer         string
		cookie         string
		logoutErr      error
		expectedStatus int
		expectRevoked  []string
	}{
		{name: "revokes bearer token", bearer: "signed.jwt.token", expectedStatus: http.StatusOK, expectRevoked: []string{"signed.jwt.token"}},
		{name: "revokes cookie and bearer", cookie: "cookie.jwt.token", bearer: "signed.jwt.token", expectedStatus: http.StatusOK,
			expectRevoked: []string{"cookie.jwt.token", "signed.jwt.token"}},
		{name: "no token still succeeds", expectedStatus: http.StatusOK},
		{name: "revocation store down", bearer: "signed.jwt.token", logoutErr: errors.New("redis down"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var revoked []string
			authSvc := mocks.NewMockAuthService()
			authSvc.LogoutFunc = func(_ context.Context, token string) error {
				revoked = append(revoked, token)
				return tt.logoutErr
			}
			h := NewAuthHandlers(authSvc, testCookie, logging.Discard())
			r := gin.New()
			r.POST("/auth/logout", h.Logout)

			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: testCookie.Name, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectRevoked != nil && strings.Join(revoked, ",") != strings.Join(tt.expectRevoked, ",") {
				t.Errorf("expected %q to be revoked, got %q", tt.expectRevoked, revoked)
			}
			if tt.expectedStatus == http.StatusOK {
				cleared := false
				for _, ck := range w.Result().Cookies() {
					if ck.Name == testCookie.Name && ck.MaxAge < 0 {
						cleared = true
					}
				}
				if !cleared {
					t.Error("expected session cookie to be cleared")
				}
			}
		})
	}
}
