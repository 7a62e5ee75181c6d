package mocks

import (
	"context"
	"sync"

	"github.com/you/hrplusauth/domain"
)

// MockLoginEventRepository implements domain.LoginEventRepository interface for testing
type MockLoginEventRepository struct {
	CreateFunc func(ctx context.Context, event *domain.LoginEvent) error

	mu     sync.Mutex
	events []domain.LoginEvent
}

// NewMockLoginEventRepository creates a new MockLoginEventRepository
func NewMockLoginEventRepository() *MockLoginEventRepository {
	return &MockLoginEventRepository{}
}

// Create records the event
func (m *MockLoginEventRepository) Create(ctx context.Context, event *domain.LoginEvent) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, event); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.events = append(m.events, *event)
	m.mu.Unlock()
	return nil
}

// Events returns a copy of the stored events
func (m *MockLoginEventRepository) Events() []domain.LoginEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LoginEvent(nil), m.events...)
}

// Compile-time interface compliance verification
var _ domain.LoginEventRepository = (*MockLoginEventRepository)(nil)
