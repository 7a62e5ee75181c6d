package domain

import (
	"strings"
	"time"
)

// AuditEventType defines the type of audit event written to the log
type AuditEventType string

const (
	// Authentication events
	UserLoginEvent        AuditEventType = "USER_LOGIN"
	UserLoginFailureEvent AuditEventType = "USER_LOGIN_FAILED"
	UserLogoutEvent       AuditEventType = "USER_LOGOUT"

	// Session events
	SessionReconciledEvent AuditEventType = "SESSION_RECONCILED"
	SessionRejectedEvent   AuditEventType = "SESSION_REJECTED"

	// Authorization events
	AccessGrantedEvent AuditEventType = "ACCESS_GRANTED"
	AccessDeniedEvent  AuditEventType = "ACCESS_DENIED"
)

// LoginEvent is the write-once provenance record of a successful login
type LoginEvent struct {
	ID          string
	PrincipalID string
	IPAddress   *string
	UserAgent   *string
	CreatedAt   time.Time
}

// NewLoginEvent builds a login event from the request metadata, keeping the
// first value of each header list
func NewLoginEvent(principalID string, meta ClientMetadata) *LoginEvent {
	return &LoginEvent{
		PrincipalID: principalID,
		IPAddress:   FirstValue(meta.IPAddress),
		UserAgent:   FirstValue(meta.UserAgent),
	}
}

// FirstValue returns the first non-blank entry, or nil
func FirstValue(values []string) *string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return &v
		}
	}
	return nil
}

// ClientMetadataFromHeaders builds ClientMetadata from forwarded-for, real-ip and
// user-agent header values. Forwarded-for entries are split on commas in order;
// the real-ip values follow them.
func ClientMetadataFromHeaders(forwardedFor, realIP, userAgent []string) ClientMetadata {
	var ips []string
	for _, h := range forwardedFor {
		for _, part := range strings.Split(h, ",") {
			if p := strings.TrimSpace(part); p != "" {
				ips = append(ips, p)
			}
		}
	}
	for _, h := range realIP {
		if p := strings.TrimSpace(h); p != "" {
			ips = append(ips, p)
		}
	}
	var agents []string
	for _, h := range userAgent {
		if p := strings.TrimSpace(h); p != "" {
			agents = append(agents, p)
		}
	}
	return ClientMetadata{IPAddress: ips, UserAgent: agents}
}
