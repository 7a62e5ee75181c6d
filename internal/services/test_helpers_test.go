package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/you/hrplusauth/domain"
	"github.com/you/hrplusauth/internal/mocks"
)

// createAlice returns the ADMIN principal used across the service tests.
// Her password is "correct-pw" under the mock password service.
func createAlice(t *testing.T) *domain.Principal {
	t.Helper()

	return &domain.Principal{
		ID:           "u-alice",
		Name:         "Alice Martin",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed_correct-pw",
		Role:         domain.RoleAdmin,
		Status:       domain.StatusActive,
		CreatedAt:    time.Now().Add(-24 * time.Hour),
		UpdatedAt:    time.Now().Add(-1 * time.Hour),
	}
}

// createBob returns a DEVELOPER principal without a display name
func createBob(t *testing.T) *domain.Principal {
	t.Helper()

	p := createAlice(t)
	p.ID = "u-bob"
	p.Name = ""
	p.Username = "bob"
	p.Email = "bob@example.com"
	p.Role = domain.RoleDeveloper
	return p
}

func snapshotOf(p *domain.Principal) *domain.PrincipalSnapshot {
	return &domain.PrincipalSnapshot{ID: p.ID, Name: p.Name, Role: p.Role, Status: p.Status}
}

// userStore returns a user repository mock backed by the given principals
func userStore(t *testing.T, principals ...*domain.Principal) *mocks.MockUserRepository {
	t.Helper()

	repo := mocks.NewMockUserRepository()
	repo.FindByEmailOrUsernameFunc = func(_ context.Context, identifier string) (*domain.Principal, error) {
		var found []*domain.Principal
		for _, p := range principals {
			if strings.EqualFold(p.Email, identifier) || p.Username == identifier {
				found = append(found, p)
			}
		}
		switch len(found) {
		case 0:
			return nil, domain.ErrUserNotFound
		case 1:
			cp := *found[0]
			return &cp, nil
		default:
			return nil, domain.ErrAmbiguousIdentifier
		}
	}
	repo.FindByEmailFunc = func(_ context.Context, email string) (*domain.PrincipalSnapshot, error) {
		for _, p := range principals {
			if strings.EqualFold(p.Email, email) {
				return snapshotOf(p), nil
			}
		}
		return nil, domain.ErrUserNotFound
	}
	return repo
}
