package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool // implicit TLS on connect; otherwise STARTTLS when offered
	Username string
	Password string
	From     string // default sender when a request has none
	Timeout  time.Duration
}

// SMTPSender delivers mail through an SMTP relay, one connection per message.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender validates cfg and returns a sender.
// PRE: cfg.Host is non-empty; cfg.Port > 0
// POST: Returns a sender that dials cfg.Host on every Send
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("smtp port must be positive, got %d", cfg.Port)
	}
	return &SMTPSender{cfg: cfg}, nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(s.cfg.Port)}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

// buildMsg assembles the plain-text message.
func (s *SMTPSender) buildMsg(req SendRequest, messageID string) (*mail.Msg, error) {
	from := req.From
	if from == "" {
		from = s.cfg.From
	}
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(req.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if addr := replyTo(req); addr != "" {
		if err := m.ReplyTo(addr); err != nil {
			return nil, fmt.Errorf("invalid reply-to: %w", err)
		}
	}
	m.Subject(req.Subject)
	m.SetGenHeader(mail.HeaderMessageID, "<"+messageID+">")
	if req.Reference != "" {
		m.SetGenHeader(mail.Header(ReferenceHeader), req.Reference)
	}
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, req.Text)
	return m, nil
}

// Send dials the relay and delivers req.
// PRE: req has at least one recipient
// POST: Message accepted by the relay, or an error describing the failure
func (s *SMTPSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	messageID := uuid.New().String() + "@" + s.cfg.Host
	m, err := s.buildMsg(req, messageID)
	if err != nil {
		return SendResult{}, err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return SendResult{}, fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	slog.Info("smtp_sent", "message_id", messageID, "to", req.To, "subject", req.Subject)
	return SendResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}
