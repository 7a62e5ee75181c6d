package domain

import (
	"strings"
	"time"
)

// Role is the authorization role carried by a principal
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleDeveloper  Role = "DEVELOPER"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin, RoleDeveloper:
		return true
	}
	return false
}

// Status is the account lifecycle state of a principal
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// Principal represents a user account as stored by the user store
type Principal struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string `json:"-"`
	Role         Role
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasDisplayName reports whether the principal has a non-blank name
func (p *Principal) HasDisplayName() bool {
	return strings.TrimSpace(p.Name) != ""
}

// PrincipalSnapshot is the attribute projection used to refresh a session
type PrincipalSnapshot struct {
	ID     string
	Name   string
	Role   Role
	Status Status
}

// Credential is a submitted identifier and secret. The secret is never persisted or logged.
type Credential struct {
	Identifier string
	Secret     string `json:"-"`
}

// Normalized returns the credential with surrounding whitespace removed from the identifier
func (c Credential) Normalized() Credential {
	return Credential{Identifier: strings.TrimSpace(c.Identifier), Secret: c.Secret}
}

// ClientMetadata carries the network and client headers of a login request.
// Proxy chains may supply several values per header.
type ClientMetadata struct {
	IPAddress []string
	UserAgent []string
}

// SessionClaims is the payload carried by a session token
type SessionClaims struct {
	TokenID     string
	PrincipalID string
	Email       string
	Name        string
	Role        Role
	Status      Status
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Clone returns a copy of the claims
func (c *SessionClaims) Clone() *SessionClaims {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// ReconcileState describes how a session's claims were resolved for the current request
type ReconcileState string

const (
	// StateFresh means the claims were produced by the login that is handling this request
	StateFresh ReconcileState = "FRESH"
	// StateReconciled means role and status were replaced by a store lookup
	StateReconciled ReconcileState = "RECONCILED"
	// StateInvalid means the principal could not be resolved and the session is dead
	StateInvalid ReconcileState = "INVALID"
	// StatePassThrough means the token has no email claim and was not looked up
	StatePassThrough ReconcileState = "PASSTHROUGH"
)

// SessionUser is the request-scoped view of the authenticated principal
type SessionUser struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
	Status Status `json:"status"`
}

// Session is the caller-visible session object. User is nil when no principal is authenticated.
type Session struct {
	User    *SessionUser `json:"user"`
	Expires time.Time    `json:"expires"`
}

// Authenticated reports whether the session carries a principal
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// LoginResult represents a successful login
type LoginResult struct {
	Principal *Principal
	Token     string
	Claims    *SessionClaims
}
