package mocks

import (
	"context"

	"github.com/you/hrplusauth/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	LoginFunc            func(ctx context.Context, cred domain.Credential, meta domain.ClientMetadata) (*domain.LoginResult, error)
	SessionFromLoginFunc func(ctx context.Context, result *domain.LoginResult) (*domain.Session, error)
	ValidateSessionFunc  func(ctx context.Context, token string) (*domain.Session, *domain.SessionClaims, error)
	LogoutFunc           func(ctx context.Context, token string) error
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// Login authenticates a credential
func (m *MockAuthService) Login(ctx context.Context, cred domain.Credential, meta domain.ClientMetadata) (*domain.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, cred, meta)
	}
	// Default behavior: invalid credentials
	return nil, domain.NewAuthError(domain.KindPrincipalNotFound, domain.ErrUserNotFound)
}

// SessionFromLogin materializes the session of a fresh login
func (m *MockAuthService) SessionFromLogin(ctx context.Context, result *domain.LoginResult) (*domain.Session, error) {
	if m.SessionFromLoginFunc != nil {
		return m.SessionFromLoginFunc(ctx, result)
	}
	p := result.Principal
	return &domain.Session{
		User:    &domain.SessionUser{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role, Status: p.Status},
		Expires: result.Claims.ExpiresAt,
	}, nil
}

// ValidateSession validates a token
func (m *MockAuthService) ValidateSession(ctx context.Context, token string) (*domain.Session, *domain.SessionClaims, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	// Default behavior: unauthenticated
	return &domain.Session{}, nil, domain.NewAuthError(domain.KindTokenInvalid, domain.ErrTokenInvalid)
}

// Logout revokes a token
func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
