package contact

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// User-facing messages returned in a Result.
const (
	MsgSent           = "¡Tu mensaje ha sido enviado con éxito!"
	MsgMissingFields  = "Todos los campos son obligatorios."
	MsgDeliveryFailed = "Uh oh, hubo un problema enviando el correo. Inténtalo de nuevo."
	MsgUnexpected     = "Error inesperado."
)

// DefaultBrand is appended to every outbound subject line.
const DefaultBrand = "Breakthebeat"

// Domain errors
var (
	ErrMissingFields = errors.New("email, description and subject are required")
	ErrDelivery      = errors.New("contact delivery failed")
)

var validate = validator.New()

// Request is a contact form submission for one service.
// INVARIANT: only presence is checked; Email is not validated as an address.
type Request struct {
	Email       string `json:"email" validate:"required"`
	Description string `json:"description" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
}

// Validate checks that all three fields are present.
// PRE: none
// POST: Returns ErrMissingFields if any field is empty
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return ErrMissingFields
	}
	return nil
}

// Result is the outcome of a single submission attempt.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Sent returns the result for a delivered message.
func Sent() Result {
	return Result{Success: true, Message: MsgSent}
}

// Rejected returns the result for a request with missing fields.
func Rejected() Result {
	return Result{Success: false, Message: MsgMissingFields}
}

// DeliveryFailed returns the generic result for a transport failure.
func DeliveryFailed() Result {
	return Result{Success: false, Message: MsgDeliveryFailed}
}

// Message is the outbound email composed from a Request.
type Message struct {
	Subject string
	Body    string
}

// BuildMessage renders the fixed subject and body templates.
// PRE: req has passed Validate
// POST: Subject embeds req.Subject and brand; Body embeds subject, email and description
func BuildMessage(req Request, brand string) Message {
	if brand == "" {
		brand = DefaultBrand
	}
	return Message{
		Subject: fmt.Sprintf("Pedido de [%s] - %s", req.Subject, brand),
		Body: fmt.Sprintf("Nuevo pedido de servicio: %s\n\nEmail del cliente: %s\n\nDescripción del evento/pedido:\n%s",
			req.Subject, req.Email, req.Description),
	}
}
