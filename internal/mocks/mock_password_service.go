package mocks

import (
	"sync/atomic"

	"github.com/you/hrplusauth/domain"
)

// MockPasswordService implements domain.PasswordService interface for testing
type MockPasswordService struct {
	HashFunc        func(password string) (string, error)
	VerifyFunc      func(hashedPassword, password string) bool
	VerifyDummyFunc func(password string)

	verifyCalls atomic.Int64
	dummyCalls  atomic.Int64
}

// NewMockPasswordService creates a new MockPasswordService with default behaviors
func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

// Hash generates a hash for the given password
func (m *MockPasswordService) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	// Default behavior: return simple hash (for testing only)
	return "hashed_" + password, nil
}

// Verify verifies a password against its hash
func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	m.verifyCalls.Add(1)
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	// Default behavior: simple check for testing
	return hashedPassword == "hashed_"+password
}

// VerifyDummy runs the timing-equalizing comparison
func (m *MockPasswordService) VerifyDummy(password string) {
	m.dummyCalls.Add(1)
	if m.VerifyDummyFunc != nil {
		m.VerifyDummyFunc(password)
	}
}

// VerifyCalls returns how many times Verify was called
func (m *MockPasswordService) VerifyCalls() int64 { return m.verifyCalls.Load() }

// DummyCalls returns how many times VerifyDummy was called
func (m *MockPasswordService) DummyCalls() int64 { return m.dummyCalls.Load() }

// Compile-time interface compliance verification
var _ domain.PasswordService = (*MockPasswordService)(nil)
