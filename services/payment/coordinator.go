// File: tripbot/services/payment/coordinator.go
package payment

import (
	"context"
	"errors"

	"tripbot/models"
)

// ErrUnknownPayment is returned when a webhook references a payment id the
// coordinator never created.
var ErrUnknownPayment = errors.New("payment: unknown payment id")

// Coordinator creates payment intents and correlates asynchronous completion
// events back to the owning session.
type Coordinator interface {
	// CreateIntent starts a payment for the session's booking amount and
	// records the paymentID -> userID back-reference.
	CreateIntent(ctx context.Context, sess *models.Session, amount float64) (*models.PaymentIntent, error)

	// Resolve returns the user owning the given payment id.
	Resolve(ctx context.Context, paymentID string) (string, error)

	// MarkTerminal transitions the intent to a terminal status. It returns
	// false when the intent was already terminal, which callers treat as a
	// duplicate event to absorb.
	MarkTerminal(ctx context.Context, paymentID string, status models.PaymentStatus) (bool, error)
}
