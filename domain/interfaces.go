package domain

import (
	"context"
	"time"
)

// UserRepository defines the user store lookups the auth subsystem needs
type UserRepository interface {
	// FindByEmailOrUsername returns the single principal whose email matches
	// case-insensitively or whose username matches exactly
	FindByEmailOrUsername(ctx context.Context, identifier string) (*Principal, error)
	// FindByEmail returns the attribute projection for a session refresh
	FindByEmail(ctx context.Context, email string) (*PrincipalSnapshot, error)
	Create(ctx context.Context, principal *Principal) error
	Update(ctx context.Context, principal *Principal) error
	Delete(ctx context.Context, id string) error
}

// LoginEventRepository defines the audit store
type LoginEventRepository interface {
	Create(ctx context.Context, event *LoginEvent) error
}

// RevocationRepository tracks explicitly revoked session tokens
type RevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthService defines the login and session validation entry points
type AuthService interface {
	Login(ctx context.Context, cred Credential, meta ClientMetadata) (*LoginResult, error)
	SessionFromLogin(ctx context.Context, result *LoginResult) (*Session, error)
	ValidateSession(ctx context.Context, token string) (*Session, *SessionClaims, error)
	Logout(ctx context.Context, token string) error
}

// CredentialVerifier checks a credential against the user store
type CredentialVerifier interface {
	Verify(ctx context.Context, cred Credential) (*Principal, error)
}

// AuditRecorder records login provenance without blocking the caller
type AuditRecorder interface {
	RecordLogin(ctx context.Context, principalID string, meta ClientMetadata)
}

// LoginNotifier sends the sign-in alert without blocking the caller
type LoginNotifier interface {
	Notify(ctx context.Context, principal *Principal, at time.Time)
}

// SessionReconciler refreshes token claims against the user store
type SessionReconciler interface {
	Reconcile(ctx context.Context, claims *SessionClaims, fresh *Principal) (*SessionClaims, ReconcileState, error)
}

// SessionMaterializer projects claims into the caller-visible session
type SessionMaterializer interface {
	Materialize(claims *SessionClaims, state ReconcileState, shell *Session) *Session
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
	// VerifyDummy burns the same time as a real verification
	VerifyDummy(password string)
}

// TokenService defines session token operations
type TokenService interface {
	Mint(principal *Principal) (string, *SessionClaims, error)
	Parse(token string) (*SessionClaims, error)
	// Reissue signs claims again keeping the original issued-at and expiry
	Reissue(claims *SessionClaims) (string, error)
}

// NotificationService defines notification operations
type NotificationService interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	HasPolicy(params ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
}
