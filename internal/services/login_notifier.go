package services

import (
	"context"
	"fmt"
	"time"

	"github.com/you/hrplusauth/domain"
	"github.com/you/hrplusauth/internal/logging"
)

const loginAlertSubject = "New sign-in to your Hr_Plus account"

// LoginNotifierImpl implements domain.LoginNotifier
type LoginNotifierImpl struct {
	notificationSvc domain.NotificationService
	dispatcher      *Dispatcher
}

// NewLoginNotifier creates a new login notifier
func NewLoginNotifier(notificationSvc domain.NotificationService, dispatcher *Dispatcher) domain.LoginNotifier {
	return &LoginNotifierImpl{notificationSvc: notificationSvc, dispatcher: dispatcher}
}

// Notify implements domain.LoginNotifier. Principals without a display name get no alert.
func (n *LoginNotifierImpl) Notify(ctx context.Context, principal *domain.Principal, at time.Time) {
	if principal == nil || !principal.HasDisplayName() || principal.Email == "" {
		return
	}
	to, body := principal.Email, loginAlertBody(principal.Name, at)

	n.dispatcher.Submit(Job{
		Name:      "login_alert_email",
		RequestID: logging.RequestID(ctx),
		Run: func(ctx context.Context) error {
			return n.notificationSvc.SendEmail(ctx, to, loginAlertSubject, body)
		},
	})
}

func loginAlertBody(name string, at time.Time) string {
	return fmt.Sprintf("Hi %s,\n\n"+
		"We noticed a new sign-in to your Hr_Plus account on %s.\n\n"+
		"If this was you, no action is needed. If not, contact your administrator immediately.\n",
		name, at.UTC().Format("Monday, 2 January 2006 at 15:04 MST"))
}
