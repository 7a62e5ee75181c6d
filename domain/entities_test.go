package domain

import (
	"testing"
	"time"
)

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		name  string
		role  Role
		valid bool
	}{
		{name: "admin", role: RoleAdmin, valid: true},
		{name: "super admin", role: RoleSuperAdmin, valid: true},
		{name: "developer", role: RoleDeveloper, valid: true},
		{name: "lowercase is not a role", role: Role("admin"), valid: false},
		{name: "empty", role: Role(""), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.Valid(); got != tt.valid {
				t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.valid)
			}
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		valid  bool
	}{
		{name: "active", status: StatusActive, valid: true},
		{name: "inactive", status: StatusInactive, valid: true},
		{name: "suspended", status: StatusSuspended, valid: true},
		{name: "unknown", status: Status("BANNED"), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.valid {
				t.Errorf("Status(%q).Valid() = %v, want %v", tt.status, got, tt.valid)
			}
		})
	}
}

func TestPrincipal_HasDisplayName(t *testing.T) {
	if (&Principal{Name: "Alice"}).HasDisplayName() != true {
		t.Error("expected named principal to have a display name")
	}
	if (&Principal{Name: "   "}).HasDisplayName() {
		t.Error("blank name should not count as a display name")
	}
	if (&Principal{}).HasDisplayName() {
		t.Error("empty name should not count as a display name")
	}
}

func TestCredential_Normalized(t *testing.T) {
	c := Credential{Identifier: "  Alice@Example.com \n", Secret: " pw "}.Normalized()

	if c.Identifier != "Alice@Example.com" {
		t.Errorf("expected trimmed identifier, got %q", c.Identifier)
	}
	if c.Secret != " pw " {
		t.Errorf("secret must not be altered, got %q", c.Secret)
	}
}

func TestSessionClaims_Clone(t *testing.T) {
	var nilClaims *SessionClaims
	if nilClaims.Clone() != nil {
		t.Error("clone of nil claims should be nil")
	}

	orig := &SessionClaims{PrincipalID: "u1", Role: RoleAdmin, ExpiresAt: time.Now()}
	cp := orig.Clone()
	cp.Role = RoleDeveloper

	if orig.Role != RoleAdmin {
		t.Error("mutating the clone changed the original")
	}
}

func TestSession_Authenticated(t *testing.T) {
	var nilSession *Session
	if nilSession.Authenticated() {
		t.Error("nil session should not be authenticated")
	}
	if (&Session{}).Authenticated() {
		t.Error("session without user should not be authenticated")
	}
	if !(&Session{User: &SessionUser{ID: "u1", Role: RoleAdmin, Status: StatusActive}}).Authenticated() {
		t.Error("session with user should be authenticated")
	}
}
