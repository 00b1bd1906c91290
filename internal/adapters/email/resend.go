package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender relays contact messages through the Resend HTTP API.
// It is the alternative to SMTP for hosts that block outbound mail ports.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender builds a sender for apiKey. from is used when a request leaves From empty.
// PRE: apiKey is non-empty
// POST: Returns a sender; no request is made until Send
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

// Send posts one plain-text message.
// PRE: req has at least one recipient
// POST: Returns the Resend email ID, or the API error wrapped
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	params := &resend.SendEmailRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Text,
		ReplyTo: replyTo(req),
	}
	if params.From == "" {
		params.From = s.from
	}
	if req.Reference != "" {
		params.Headers = map[string]string{ReferenceHeader: req.Reference}
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return SendResult{}, fmt.Errorf("resend: %w", err)
	}
	slog.Debug("resend_accepted", "message_id", sent.Id, "reference_id", req.Reference)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}
