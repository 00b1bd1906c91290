package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"breakthebeat/internal/adapters/email"
	"breakthebeat/internal/domain/contact"
)

// DefaultSendTimeout bounds a single delivery attempt.
const DefaultSendTimeout = 15 * time.Second

var tracer = otel.Tracer("breakthebeat/orchestrators")

// SubmitContactDeps are the external dependencies for this orchestrator.
type SubmitContactDeps struct {
	Sender      email.Sender
	FromAddress string
	ToAddress   string
	Brand       string
	Timeout     time.Duration

	// Optional hooks; nil uses defaults.
	GenerateID     func() string
	RecordDelivery func(elapsed time.Duration, ok bool)
}

// ExecuteSubmitContact validates a contact request and relays it by email in one attempt.
// PRE: deps.Sender is non-nil
// POST: Returns exactly one Result; the transport is called at most once and only for a complete request
// INVARIANT: transport errors are logged here once and never returned to the caller
func ExecuteSubmitContact(ctx context.Context, req contact.Request, deps SubmitContactDeps) contact.Result {
	ref := newReferenceID(deps.GenerateID)
	ctx, span := tracer.Start(ctx, "contact.submit", trace.WithAttributes(
		attribute.String("contact.reference_id", ref),
		attribute.String("contact.subject", req.Subject),
	))
	defer span.End()

	if err := req.Validate(); err != nil {
		slog.Info("contact_rejected", "reference_id", ref, "reason", err.Error())
		span.SetAttributes(attribute.String("contact.outcome", "rejected"))
		return contact.Rejected()
	}

	msg := contact.BuildMessage(req, deps.Brand)
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	// The visitor leaving must not abort a send the relay may already have accepted.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	start := time.Now()
	res, err := deps.Sender.Send(sendCtx, email.SendRequest{
		To:        []string{deps.ToAddress},
		From:      deps.FromAddress,
		Subject:   msg.Subject,
		Text:      msg.Body,
		ReplyTo:   req.Email,
		Reference: ref,
	})
	elapsed := time.Since(start)
	if deps.RecordDelivery != nil {
		deps.RecordDelivery(elapsed, err == nil)
	}

	if err != nil {
		err = fmt.Errorf("%w: %w", contact.ErrDelivery, err)
		slog.Error("contact_delivery_failed",
			"reference_id", ref,
			"subject", req.Subject,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err.Error(),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		span.SetAttributes(attribute.String("contact.outcome", "delivery_failed"))
		return contact.DeliveryFailed()
	}

	slog.Info("contact_sent",
		"reference_id", ref,
		"message_id", res.MessageID,
		"subject", req.Subject,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	span.SetAttributes(attribute.String("contact.outcome", "sent"))
	return contact.Sent()
}

func newReferenceID(gen func() string) string {
	if gen != nil {
		return gen()
	}
	return uuid.NewString()
}
