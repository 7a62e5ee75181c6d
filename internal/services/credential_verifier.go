package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/you/hrplusauth/domain"
)

// CredentialVerifierImpl implements domain.CredentialVerifier
type CredentialVerifierImpl struct {
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
}

// NewCredentialVerifier creates a new credential verifier
func NewCredentialVerifier(userRepo domain.UserRepository, passwordSvc domain.PasswordService) domain.CredentialVerifier {
	return &CredentialVerifierImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
	}
}

// Verify implements domain.CredentialVerifier.
// A missing or ambiguous principal still costs one hash comparison so the
// response time does not reveal whether the identifier exists.
func (v *CredentialVerifierImpl) Verify(ctx context.Context, cred domain.Credential) (*domain.Principal, error) {
	cred = cred.Normalized()
	if cred.Identifier == "" || cred.Secret == "" {
		v.passwordSvc.VerifyDummy(cred.Secret)
		return nil, domain.NewAuthError(domain.KindPrincipalNotFound, domain.ErrUserNotFound)
	}

	principal, err := v.userRepo.FindByEmailOrUsername(ctx, cred.Identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrAmbiguousIdentifier) {
			v.passwordSvc.VerifyDummy(cred.Secret)
			return nil, domain.NewAuthError(domain.KindPrincipalNotFound, err)
		}
		return nil, fmt.Errorf("failed to look up principal: %w", err)
	}

	if !v.passwordSvc.Verify(principal.PasswordHash, cred.Secret) {
		return nil, domain.NewAuthError(domain.KindCredentialMismatch, nil)
	}

	return principal, nil
}
