package mocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/you/hrplusauth/domain"
)

// MockTokenService implements domain.TokenService interface for testing.
// Default tokens look like "token:<principal id>:<role>:<status>:<email>".
type MockTokenService struct {
	MintFunc    func(principal *domain.Principal) (string, *domain.SessionClaims, error)
	ParseFunc   func(token string) (*domain.SessionClaims, error)
	ReissueFunc func(claims *domain.SessionClaims) (string, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Mint mints a token for the principal
func (m *MockTokenService) Mint(principal *domain.Principal) (string, *domain.SessionClaims, error) {
	if m.MintFunc != nil {
		return m.MintFunc(principal)
	}
	now := time.Now().UTC().Truncate(time.Second)
	claims := &domain.SessionClaims{
		TokenID:     "jti_" + principal.ID,
		PrincipalID: principal.ID,
		Email:       principal.Email,
		Name:        principal.Name,
		Role:        principal.Role,
		Status:      principal.Status,
		IssuedAt:    now,
		ExpiresAt:   now.Add(30 * 24 * time.Hour),
	}
	return encode(claims), claims, nil
}

// Parse decodes a token
func (m *MockTokenService) Parse(token string) (*domain.SessionClaims, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(token)
	}
	parts := strings.Split(token, ":")
	if len(parts) != 5 || parts[0] != "token" {
		return nil, domain.NewAuthError(domain.KindTokenInvalid, domain.ErrTokenMalformed)
	}
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.SessionClaims{
		TokenID:     "jti_" + parts[1],
		PrincipalID: parts[1],
		Role:        domain.Role(parts[2]),
		Status:      domain.Status(parts[3]),
		Email:       parts[4],
		IssuedAt:    now,
		ExpiresAt:   now.Add(30 * 24 * time.Hour),
	}, nil
}

// Reissue re-signs claims
func (m *MockTokenService) Reissue(claims *domain.SessionClaims) (string, error) {
	if m.ReissueFunc != nil {
		return m.ReissueFunc(claims)
	}
	return encode(claims), nil
}

func encode(c *domain.SessionClaims) string {
	return fmt.Sprintf("token:%s:%s:%s:%s", c.PrincipalID, c.Role, c.Status, c.Email)
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
