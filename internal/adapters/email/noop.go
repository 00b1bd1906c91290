package email

import (
	"context"
	"log/slog"
	"time"
)

// NoopSender accepts every message without delivering it. Development servers without
// mail credentials use it, so the contact flow still completes end to end.
type NoopSender struct{}

func NewNoopSender() *NoopSender { return &NoopSender{} }

// Send logs the would-be message. The full body is only logged at debug level.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	id := "noop-" + req.Reference
	if req.Reference == "" {
		id = "noop-" + time.Now().UTC().Format("20060102T150405.000000000")
	}
	slog.Info("contact_mail_skipped", "message_id", id, "to", req.To, "subject", req.Subject, "reply_to", replyTo(req))
	slog.Debug("contact_mail_body", "message_id", id, "text", req.Text)
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}
