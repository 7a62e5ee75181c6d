package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/hrplusauth/domain"
	"github.com/you/hrplusauth/internal/logging"
	"github.com/you/hrplusauth/internal/mocks"
)

func claimsFor(p *domain.Principal) *domain.SessionClaims {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.SessionClaims{
		TokenID:     "jti_" + p.ID,
		PrincipalID: p.ID,
		Email:       p.Email,
		Name:        p.Name,
		Role:        p.Role,
		Status:      p.Status,
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Hour),
	}
}

func TestSessionReconcilerImpl_Reconcile(t *testing.T) {
	alice := createAlice(t)

	promoted := createAlice(t)
	promoted.Role = domain.RoleSuperAdmin
	promoted.Name = "Alice M."

	suspended := createAlice(t)
	suspended.Status = domain.StatusSuspended

	// same email, new account
	replaced := createAlice(t)
	replaced.ID = "u-alice-2"

	tests := []struct {
		name           string
		store          []*domain.Principal
		claims         *domain.SessionClaims
		expectedState  domain.ReconcileState
		expectedRole   domain.Role
		expectedStatus domain.Status
		expectedName   string
		expectedErr    error
	}{
		{
			name:           "unchanged principal",
			store:          []*domain.Principal{alice},
			claims:         claimsFor(alice),
			expectedState:  domain.StateReconciled,
			expectedRole:   domain.RoleAdmin,
			expectedStatus: domain.StatusActive,
			expectedName:   "Alice Martin",
		},
		{
			name:           "role change is picked up",
			store:          []*domain.Principal{promoted},
			claims:         claimsFor(alice),
			expectedState:  domain.StateReconciled,
			expectedRole:   domain.RoleSuperAdmin,
			expectedStatus: domain.StatusActive,
			expectedName:   "Alice M.",
		},
		{
			name:           "status change is picked up",
			store:          []*domain.Principal{suspended},
			claims:         claimsFor(alice),
			expectedState:  domain.StateReconciled,
			expectedRole:   domain.RoleAdmin,
			expectedStatus: domain.StatusSuspended,
			expectedName:   "Alice Martin",
		},
		{
			name:          "deleted principal",
			store:         nil,
			claims:        claimsFor(alice),
			expectedState: domain.StateInvalid,
			expectedErr:   domain.ErrPrincipalRevoked,
		},
		{
			name:          "email reassigned to another principal",
			store:         []*domain.Principal{replaced},
			claims:        claimsFor(alice),
			expectedState: domain.StateInvalid,
			expectedErr:   domain.ErrPrincipalChanged,
		},
		{
			name:          "nil claims",
			claims:        nil,
			expectedState: domain.StateInvalid,
			expectedErr:   domain.ErrInvalidClaims,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reconciler := NewSessionReconciler(userStore(t, tt.store...), ReconcilerConfig{}, logging.Discard())

			var before domain.SessionClaims
			if tt.claims != nil {
				before = *tt.claims
			}

			out, state, err := reconciler.Reconcile(context.Background(), tt.claims, nil)

			assert.Equal(t, tt.expectedState, state)
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.ErrorIs(t, err, domain.ErrUnauthenticated)
				assert.Nil(t, out)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedRole, out.Role)
			assert.Equal(t, tt.expectedStatus, out.Status)
			assert.Equal(t, tt.expectedName, out.Name)
			assert.Equal(t, tt.claims.PrincipalID, out.PrincipalID)
			assert.Equal(t, tt.claims.ExpiresAt, out.ExpiresAt)
			assert.Equal(t, before, *tt.claims, "input claims must not be modified")
		})
	}
}

func TestSessionReconcilerImpl_Fresh(t *testing.T) {
	repo := mocks.NewMockUserRepository()
	repo.FindByEmailFunc = func(context.Context, string) (*domain.PrincipalSnapshot, error) {
		t.Fatal("fresh claims must not hit the store")
		return nil, nil
	}
	reconciler := NewSessionReconciler(repo, ReconcilerConfig{}, logging.Discard())
	alice := createAlice(t)

	out, state, err := reconciler.Reconcile(context.Background(), claimsFor(alice), alice)

	require.NoError(t, err)
	assert.Equal(t, domain.StateFresh, state)
	assert.Equal(t, alice.ID, out.PrincipalID)
	assert.Equal(t, alice.Role, out.Role)
}

func TestSessionReconcilerImpl_MissingEmail(t *testing.T) {
	alice := createAlice(t)
	claims := claimsFor(alice)
	claims.Email = ""

	t.Run("passes through by default", func(t *testing.T) {
		reconciler := NewSessionReconciler(userStore(t), ReconcilerConfig{}, logging.Discard())

		out, state, err := reconciler.Reconcile(context.Background(), claims, nil)

		require.NoError(t, err)
		assert.Equal(t, domain.StatePassThrough, state)
		assert.Equal(t, domain.RoleAdmin, out.Role, "unrefreshed claims keep minted role")
	})

	t.Run("rejected when strict", func(t *testing.T) {
		reconciler := NewSessionReconciler(userStore(t), ReconcilerConfig{RejectClaimsWithoutEmail: true}, logging.Discard())

		out, state, err := reconciler.Reconcile(context.Background(), claims, nil)

		require.Error(t, err)
		assert.Nil(t, out)
		assert.Equal(t, domain.StateInvalid, state)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestSessionReconcilerImpl_StoreFailureFailsClosed(t *testing.T) {
	repo := mocks.NewMockUserRepository()
	dbErr := errors.New("connection reset")
	repo.FindByEmailFunc = func(context.Context, string) (*domain.PrincipalSnapshot, error) {
		return nil, dbErr
	}
	reconciler := NewSessionReconciler(repo, ReconcilerConfig{}, logging.Discard())

	out, state, err := reconciler.Reconcile(context.Background(), claimsFor(createAlice(t)), nil)

	assert.Nil(t, out)
	assert.Equal(t, domain.StateInvalid, state)
	assert.ErrorIs(t, err, dbErr)
}

func TestSessionReconcilerImpl_Idempotent(t *testing.T) {
	alice := createAlice(t)
	promoted := createAlice(t)
	promoted.Role = domain.RoleSuperAdmin
	promoted.Status = domain.StatusInactive
	promoted.Name = "Alice M."

	reconciler := NewSessionReconciler(userStore(t, promoted), ReconcilerConfig{}, logging.Discard())

	first, state, err := reconciler.Reconcile(context.Background(), claimsFor(alice), nil)
	require.NoError(t, err)
	require.Equal(t, domain.StateReconciled, state)

	second, state, err := reconciler.Reconcile(context.Background(), first, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StateReconciled, state)
	assert.Equal(t, domain.RoleSuperAdmin, second.Role)
	assert.Equal(t, domain.StatusInactive, second.Status)
	assert.Equal(t, *first, *second, "a second pass over unchanged data must not alter the claims")
}
