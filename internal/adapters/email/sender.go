package email

import (
	"context"
	"net/mail"
	"time"
)

// ReferenceHeader carries the submission reference ID so a delivered message can be matched to its log lines.
const ReferenceHeader = "X-Breakthebeat-Reference"

// SendRequest contains the data needed to deliver one message through a transport.
type SendRequest struct {
	To      []string // Recipient email addresses
	From    string   // Sender address (e.g. "Breakthebeat <hola@breakthebeat.dance>")
	Subject string
	Text    string // Plain-text body

	// ReplyTo is the visitor's address. It is free text from the form, so
	// transports set the header only when it parses (see replyTo).
	ReplyTo   string
	Reference string
}

// SendResult contains the response from the transport.
type SendResult struct {
	MessageID string    // Transport message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender delivers a single message. Implementations make exactly one attempt per call
// and return transport failures as errors without logging them; callers own the log line.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

// replyTo returns the bare address of req.ReplyTo, or "" when it is not a valid address.
func replyTo(req SendRequest) string {
	if req.ReplyTo == "" {
		return ""
	}
	addr, err := mail.ParseAddress(req.ReplyTo)
	if err != nil {
		return ""
	}
	return addr.Address
}
