package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
	"github.com/you/hrplusauth/domain"
)

type sendFunc func(ctx context.Context, msg *mail.Msg) error

var _ domain.NotificationService = (*EmailServiceImpl)(nil)

// EmailServiceImpl implements domain.NotificationService over SMTP
type EmailServiceImpl struct {
	from string
	log  *slog.Logger
	send sendFunc
	now  func() time.Time

	mu sync.Mutex
}

// NewEmailService creates an SMTP mailer. With an empty host, messages are only logged.
func NewEmailService(host string, port int, username, password, from string, log *slog.Logger) (*EmailServiceImpl, error) {
	svc := &EmailServiceImpl{
		from: from,
		log:  log.With("component", "mailer"),
		now:  time.Now,
	}
	if host == "" {
		return svc, nil
	}

	opts := []mail.Option{
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if port > 0 {
		opts = append(opts, mail.WithPort(port))
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	svc.send = func(ctx context.Context, msg *mail.Msg) error {
		return client.DialAndSendWithContext(ctx, msg)
	}
	return svc, nil
}

// SendEmail implements domain.NotificationService
func (e *EmailServiceImpl) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// If SMTP is not configured, log instead of sending
	if e.send == nil {
		e.log.InfoContext(ctx, "email not sent, smtp disabled", "to", to, "subject", subject)
		return nil
	}

	msg, err := e.compose(to, subject, body)
	if err != nil {
		return err
	}

	// one SMTP session at a time per client
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (e *EmailServiceImpl) compose(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(e.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", e.from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(strings.NewReplacer("\r", " ", "\n", " ").Replace(subject))
	msg.SetDateWithValue(e.now())
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
