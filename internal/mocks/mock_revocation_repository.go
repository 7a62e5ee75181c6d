package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/you/hrplusauth/domain"
)

// MockRevocationRepository implements domain.RevocationRepository interface for testing
type MockRevocationRepository struct {
	RevokeFunc    func(ctx context.Context, tokenID string, until time.Time) error
	IsRevokedFunc func(ctx context.Context, tokenID string) (bool, error)

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewMockRevocationRepository creates a new MockRevocationRepository backed by a map
func NewMockRevocationRepository() *MockRevocationRepository {
	return &MockRevocationRepository{revoked: make(map[string]time.Time)}
}

// Revoke marks tokenID as revoked
func (m *MockRevocationRepository) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, tokenID, until)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = until
	return nil
}

// IsRevoked reports whether tokenID was revoked
func (m *MockRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if m.IsRevokedFunc != nil {
		return m.IsRevokedFunc(ctx, tokenID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// Compile-time interface compliance verification
var _ domain.RevocationRepository = (*MockRevocationRepository)(nil)
