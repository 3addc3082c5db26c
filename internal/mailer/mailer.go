package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"docshare/internal/config"
)

// Mailer sends transactional notifications. Callers treat delivery as
// best-effort: a failed send is logged by the caller and never fails the
// request that triggered it.
type Mailer interface {
	SendShareNotification(ctx context.Context, to, sharerEmail, documentTitle, note string) error
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

type smtpMailer struct {
	client *mail.Client
	from   string
}

// NewSMTP creates an SMTP-backed mailer. Returns an error when Host is empty;
// callers that want mail disabled should use NewNoop instead.
func NewSMTP(cfg config.SMTPConfig) (Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &smtpMailer{client: client, from: cfg.From}, nil
}

func (m *smtpMailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return m.client.DialAndSendWithContext(ctx, msg)
}

func (m *smtpMailer) SendShareNotification(ctx context.Context, to, sharerEmail, documentTitle, note string) error {
	body := fmt.Sprintf("%s shared the document %q with you.", sharerEmail, documentTitle)
	if note != "" {
		body += "\n\nNote: " + note
	}
	return m.send(ctx, to, "A document was shared with you", body)
}

func (m *smtpMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	body := fmt.Sprintf("To reset your password, open the link below. The link expires shortly.\n\n%s\n\nIf you did not request this, ignore this message.", resetURL)
	return m.send(ctx, to, "Password reset", body)
}

type noopMailer struct{}

// NewNoop returns a mailer that silently drops all mail. Used when SMTP is
// not configured.
func NewNoop() Mailer {
	return noopMailer{}
}

func (noopMailer) SendShareNotification(context.Context, string, string, string, string) error {
	return nil
}

func (noopMailer) SendPasswordReset(context.Context, string, string) error {
	return nil
}
