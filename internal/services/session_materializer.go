package services

import "github.com/you/hrplusauth/domain"

// SessionMaterializerImpl implements domain.SessionMaterializer
type SessionMaterializerImpl struct{}

// NewSessionMaterializer creates a new session materializer
func NewSessionMaterializer() domain.SessionMaterializer {
	return &SessionMaterializerImpl{}
}

// Materialize implements domain.SessionMaterializer. The user is set only when
// id, role and status are all present and valid; otherwise the session has no user.
// The shell is not modified.
func (m *SessionMaterializerImpl) Materialize(claims *domain.SessionClaims, state domain.ReconcileState, shell *domain.Session) *domain.Session {
	out := &domain.Session{}
	if shell != nil {
		out.Expires = shell.Expires
	}

	if claims == nil || state == domain.StateInvalid {
		return out
	}
	if claims.PrincipalID == "" || !claims.Role.Valid() || !claims.Status.Valid() {
		return out
	}

	if out.Expires.IsZero() {
		out.Expires = claims.ExpiresAt
	}
	out.User = &domain.SessionUser{
		ID:     claims.PrincipalID,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   claims.Role,
		Status: claims.Status,
	}
	return out
}
