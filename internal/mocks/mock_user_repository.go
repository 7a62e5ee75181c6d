package mocks

import (
	"context"

	"github.com/you/hrplusauth/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	FindByEmailOrUsernameFunc func(ctx context.Context, identifier string) (*domain.Principal, error)
	FindByEmailFunc           func(ctx context.Context, email string) (*domain.PrincipalSnapshot, error)
	CreateFunc                func(ctx context.Context, principal *domain.Principal) error
	UpdateFunc                func(ctx context.Context, principal *domain.Principal) error
	DeleteFunc                func(ctx context.Context, id string) error
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// FindByEmailOrUsername finds a principal by email or username
func (m *MockUserRepository) FindByEmailOrUsername(ctx context.Context, identifier string) (*domain.Principal, error) {
	if m.FindByEmailOrUsernameFunc != nil {
		return m.FindByEmailOrUsernameFunc(ctx, identifier)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByEmail returns the attribute projection for email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.PrincipalSnapshot, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// Create creates a new principal
func (m *MockUserRepository) Create(ctx context.Context, principal *domain.Principal) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, principal)
	}
	return nil
}

// Update updates an existing principal
func (m *MockUserRepository) Update(ctx context.Context, principal *domain.Principal) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, principal)
	}
	return nil
}

// Delete removes a principal
func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
