package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/you/hrplusauth/domain"
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	verifier       domain.CredentialVerifier
	tokenSvc       domain.TokenService
	auditRecorder  domain.AuditRecorder
	notifier       domain.LoginNotifier
	reconciler     domain.SessionReconciler
	materializer   domain.SessionMaterializer
	revocationRepo domain.RevocationRepository
	log            *slog.Logger
	now            func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	verifier domain.CredentialVerifier,
	tokenSvc domain.TokenService,
	auditRecorder domain.AuditRecorder,
	notifier domain.LoginNotifier,
	reconciler domain.SessionReconciler,
	materializer domain.SessionMaterializer,
	revocationRepo domain.RevocationRepository,
	log *slog.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		verifier:       verifier,
		tokenSvc:       tokenSvc,
		auditRecorder:  auditRecorder,
		notifier:       notifier,
		reconciler:     reconciler,
		materializer:   materializer,
		revocationRepo: revocationRepo,
		log:            log.With("component", "auth_service"),
		now:            time.Now,
	}
}

// Login implements domain.AuthService.
// Credential failures are returned as *domain.AuthError, which matches
// domain.ErrInvalidCredentials for both mismatch and unknown principal.
func (s *AuthServiceImpl) Login(ctx context.Context, cred domain.Credential, meta domain.ClientMetadata) (*domain.LoginResult, error) {
	principal, err := s.verifier.Verify(ctx, cred)
	if err != nil {
		s.log.WarnContext(ctx, string(domain.UserLoginFailureEvent),
			"identifier", cred.Normalized().Identifier,
			"kind", domain.KindOf(err).String(),
			"error", err)
		return nil, err
	}

	token, claims, err := s.tokenSvc.Mint(principal)
	if err != nil {
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	// detached: neither may delay or fail the login
	s.auditRecorder.RecordLogin(ctx, principal.ID, meta)
	s.notifier.Notify(ctx, principal, s.now())

	s.log.InfoContext(ctx, string(domain.UserLoginEvent),
		"principal_id", principal.ID,
		"role", principal.Role,
		"token_id", claims.TokenID)

	return &domain.LoginResult{
		Principal: principal,
		Token:     token,
		Claims:    claims,
	}, nil
}

// SessionFromLogin implements domain.AuthService. It materializes the session
// for a login handled in the same request. The claims are already fresh, so the store is not consulted.
func (s *AuthServiceImpl) SessionFromLogin(ctx context.Context, result *domain.LoginResult) (*domain.Session, error) {
	claims, state, err := s.reconciler.Reconcile(ctx, result.Claims, result.Principal)
	if err != nil {
		return &domain.Session{}, err
	}
	return s.materializer.Materialize(claims, state, &domain.Session{Expires: result.Claims.ExpiresAt}), nil
}

// ValidateSession implements domain.AuthService.
//
// The returned session is never nil; on failure it carries no user. Every
// returned error matches domain.ErrUnauthenticated, and domain.KindOf still
// exposes the internal kind for logging.
func (s *AuthServiceImpl) ValidateSession(ctx context.Context, token string) (*domain.Session, *domain.SessionClaims, error) {
	claims, err := s.tokenSvc.Parse(token)
	if err != nil {
		return s.reject(ctx, nil, err)
	}

	revoked, err := s.revocationRepo.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return s.reject(ctx, claims, fmt.Errorf("failed to check revocation: %w", err))
	}
	if revoked {
		return s.reject(ctx, claims, domain.NewAuthError(domain.KindTokenInvalid, domain.ErrTokenRevoked))
	}

	reconciled, state, err := s.reconciler.Reconcile(ctx, claims, nil)
	if err != nil {
		return s.reject(ctx, claims, err)
	}

	session := s.materializer.Materialize(reconciled, state, &domain.Session{Expires: claims.ExpiresAt})
	if !session.Authenticated() {
		return s.reject(ctx, claims, domain.NewAuthError(domain.KindTokenInvalid, domain.ErrInvalidClaims))
	}

	if state == domain.StateReconciled && (reconciled.Role != claims.Role || reconciled.Status != claims.Status) {
		s.log.InfoContext(ctx, string(domain.SessionReconciledEvent),
			"principal_id", reconciled.PrincipalID,
			"role", reconciled.Role,
			"status", reconciled.Status)
	}

	return session, reconciled, nil
}

func (s *AuthServiceImpl) reject(ctx context.Context, claims *domain.SessionClaims, err error) (*domain.Session, *domain.SessionClaims, error) {
	attrs := []any{"kind", domain.KindOf(err).String(), "error", err}
	if claims != nil {
		attrs = append(attrs, "principal_id", claims.PrincipalID, "token_id", claims.TokenID)
	}
	s.log.InfoContext(ctx, string(domain.SessionRejectedEvent), attrs...)

	if domain.KindOf(err) == domain.KindUnknown {
		err = fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	return &domain.Session{}, nil, err
}

// Logout implements domain.AuthService. Tokens that do not parse are already
// unusable, so logging out with one succeeds without doing anything.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenSvc.Parse(token)
	if err != nil {
		return nil
	}

	if err := s.revocationRepo.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.log.InfoContext(ctx, string(domain.UserLogoutEvent),
		"principal_id", claims.PrincipalID,
		"token_id", claims.TokenID)
	return nil
}
