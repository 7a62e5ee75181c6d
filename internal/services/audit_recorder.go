package services

import (
	"context"

	"github.com/you/hrplusauth/domain"
	"github.com/you/hrplusauth/internal/logging"
)

// AuditRecorderImpl implements domain.AuditRecorder on top of the dispatcher
type AuditRecorderImpl struct {
	eventRepo  domain.LoginEventRepository
	dispatcher *Dispatcher
}

// NewAuditRecorder creates a new audit recorder
func NewAuditRecorder(eventRepo domain.LoginEventRepository, dispatcher *Dispatcher) domain.AuditRecorder {
	return &AuditRecorderImpl{eventRepo: eventRepo, dispatcher: dispatcher}
}

// RecordLogin implements domain.AuditRecorder. It returns immediately; write
// failures are logged by the dispatcher and never retried.
func (a *AuditRecorderImpl) RecordLogin(ctx context.Context, principalID string, meta domain.ClientMetadata) {
	event := domain.NewLoginEvent(principalID, meta)
	a.dispatcher.Submit(Job{
		Name:      "record_login",
		RequestID: logging.RequestID(ctx),
		Run: func(ctx context.Context) error {
			return a.eventRepo.Create(ctx, event)
		},
	})
}
