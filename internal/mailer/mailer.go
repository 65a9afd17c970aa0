// Package mailer sends HTML email with a plain-text alternative.
//
// NewSender returns an SMTP sender backed by go-mail when mail.host is
// configured, and a sender that only logs otherwise.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"backoffice/internal/config"
	"backoffice/internal/htmltext"
	"backoffice/internal/logging"
	"backoffice/internal/services"
)

// Message is an outgoing email. The plain-text part is derived from HTML.
type Message struct {
	From     string
	FromName string
	To       string
	ToName   string
	Subject  string
	HTML     string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender builds a Sender from the mail section of cfg.
func NewSender(cfg *config.Config, logger *slog.Logger) (Sender, error) {
	logger = logging.NewComponentLogger(logger, "mailer")
	if strings.TrimSpace(cfg.Mail.Host) == "" {
		return noopSender{logger: logger}, nil
	}

	opts := []gomail.Option{gomail.WithPort(cfg.Mail.Port)}
	if cfg.Mail.TLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}
	if cfg.Mail.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Mail.User),
			gomail.WithPassword(cfg.Mail.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Mail.Host, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "mailer", "new client", cfg.Mail.Host, err)
	}
	return &smtpSender{client: client, logger: logger}, nil
}

// Build converts msg into a go-mail message with a text and an HTML part.
func Build(msg Message) (*gomail.Msg, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, services.Wrap(services.ErrValidation, "mailer", "build", "recipient is empty", nil)
	}
	m := gomail.NewMsg()
	if err := m.FromFormat(msg.FromName, msg.From); err != nil {
		return nil, services.Wrap(services.ErrValidation, "mailer", "build", "invalid sender", err)
	}
	if err := m.AddToFormat(msg.ToName, msg.To); err != nil {
		return nil, services.Wrap(services.ErrValidation, "mailer", "build", "invalid recipient", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, htmltext.ToText(msg.HTML))
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}

type smtpSender struct {
	client *gomail.Client
	logger *slog.Logger
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	m, err := Build(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return services.Wrap(services.ErrTransient, "mailer", "send", fmt.Sprintf("to %s", msg.To), err)
	}
	s.logger.Info("mail sent",
		logging.String("to", msg.To),
		logging.String("subject", msg.Subject),
	)
	return nil
}

type noopSender struct {
	logger *slog.Logger
}

func (n noopSender) Send(_ context.Context, msg Message) error {
	if _, err := Build(msg); err != nil {
		return err
	}
	n.logger.Info("mail transport not configured; message dropped",
		logging.String("to", msg.To),
		logging.String("subject", msg.Subject),
	)
	return nil
}
