package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/you/hrplusauth/domain"
)

// ReconcilerConfig controls how the reconciler treats tokens without an email claim
type ReconcilerConfig struct {
	// RejectClaimsWithoutEmail invalidates such tokens instead of passing them through
	RejectClaimsWithoutEmail bool
}

// SessionReconcilerImpl implements domain.SessionReconciler
type SessionReconcilerImpl struct {
	userRepo domain.UserRepository
	cfg      ReconcilerConfig
	log      *slog.Logger
}

// NewSessionReconciler creates a new session reconciler
func NewSessionReconciler(userRepo domain.UserRepository, cfg ReconcilerConfig, log *slog.Logger) domain.SessionReconciler {
	return &SessionReconcilerImpl{
		userRepo: userRepo,
		cfg:      cfg,
		log:      log.With("component", "session_reconciler"),
	}
}

// Reconcile implements domain.SessionReconciler.
//
// With fresh set, the claims come from the login handling this request and are
// taken from the principal without a lookup. Otherwise the principal is read by
// email: no row means the session is dead, a row replaces role and status. The
// returned claims are a copy; the input is never modified. On INVALID the
// claims are nil.
func (r *SessionReconcilerImpl) Reconcile(ctx context.Context, claims *domain.SessionClaims, fresh *domain.Principal) (*domain.SessionClaims, domain.ReconcileState, error) {
	if claims == nil {
		return nil, domain.StateInvalid, domain.NewAuthError(domain.KindTokenInvalid, domain.ErrInvalidClaims)
	}

	if fresh != nil {
		out := claims.Clone()
		out.PrincipalID = fresh.ID
		out.Role = fresh.Role
		out.Status = fresh.Status
		return out, domain.StateFresh, nil
	}

	if claims.Email == "" {
		if r.cfg.RejectClaimsWithoutEmail {
			return nil, domain.StateInvalid, domain.NewAuthError(domain.KindTokenInvalid, domain.ErrInvalidClaims)
		}
		// Known gap: claims pass through unrefreshed, so role and status stay as minted.
		r.log.WarnContext(ctx, "session token has no email claim, skipping reconciliation",
			"principal_id", claims.PrincipalID, "token_id", claims.TokenID)
		return claims.Clone(), domain.StatePassThrough, nil
	}

	snap, err := r.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.StateInvalid, domain.NewAuthError(domain.KindPrincipalRevoked, domain.ErrPrincipalRevoked)
		}
		return nil, domain.StateInvalid, fmt.Errorf("failed to reconcile session: %w", err)
	}

	// the email now belongs to a different account
	if snap.ID != claims.PrincipalID {
		return nil, domain.StateInvalid, domain.NewAuthError(domain.KindPrincipalRevoked, domain.ErrPrincipalChanged)
	}

	out := claims.Clone()
	out.Role = snap.Role
	out.Status = snap.Status
	out.Name = snap.Name
	return out, domain.StateReconciled, nil
}
