package domain

import (
	"errors"
	"fmt"
)

// Public outcomes
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// User store errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAmbiguousIdentifier = errors.New("identifier matches more than one user")
	ErrUserAlreadyExists   = errors.New("user already exists")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenRevoked   = errors.New("token has been revoked")
	ErrInvalidClaims  = errors.New("token claims are incomplete")
)

// Policy errors
var (
	ErrInvalidPolicy  = errors.New("invalid policy")
	ErrPolicyExists   = errors.New("policy already exists")
	ErrPolicyNotFound = errors.New("policy not found")
)

// Session errors
var (
	ErrPrincipalRevoked = errors.New("principal no longer resolvable")
	ErrPrincipalChanged = errors.New("principal id does not match token")
)

// FailureKind classifies authentication failures internally
type FailureKind int

const (
	KindUnknown FailureKind = iota
	KindCredentialMismatch
	KindPrincipalNotFound
	KindTokenInvalid
	KindPrincipalRevoked
)

func (k FailureKind) String() string {
	switch k {
	case KindCredentialMismatch:
		return "credential_mismatch"
	case KindPrincipalNotFound:
		return "principal_not_found"
	case KindTokenInvalid:
		return "token_invalid"
	case KindPrincipalRevoked:
		return "principal_revoked"
	}
	return "unknown"
}

// Public returns the outward error a kind collapses to
func (k FailureKind) Public() error {
	switch k {
	case KindCredentialMismatch, KindPrincipalNotFound:
		return ErrInvalidCredentials
	case KindTokenInvalid, KindPrincipalRevoked:
		return ErrUnauthenticated
	}
	return nil
}

// AuthError keeps the internal failure kind and cause while matching the
// public outcome with errors.Is.
type AuthError struct {
	Kind  FailureKind
	Cause error
}

// NewAuthError creates an AuthError of the given kind
func NewAuthError(kind FailureKind, cause error) *AuthError {
	return &AuthError{Kind: kind, Cause: cause}
}

func (e *AuthError) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// Is matches the public outcome of the kind
func (e *AuthError) Is(target error) bool {
	pub := e.Kind.Public()
	return pub != nil && target == pub
}

// KindOf extracts the failure kind from err, or KindUnknown
func KindOf(err error) FailureKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// LoginFailure maps an error from the login path to what the caller may see.
// Credential failures become ErrInvalidCredentials; anything else is passed through
// as an infrastructure error.
func LoginFailure(err error) error {
	switch KindOf(err) {
	case KindCredentialMismatch, KindPrincipalNotFound:
		return ErrInvalidCredentials
	}
	return err
}

// SessionFailure maps any session validation error to ErrUnauthenticated
func SessionFailure(err error) error {
	if err == nil {
		return nil
	}
	return ErrUnauthenticated
}
