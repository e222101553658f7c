// File: tripbot/services/ticket/issuer.go
package ticket

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tripbot/models"

	"github.com/google/uuid"
)

// Issuer assembles the immutable ticket artifact for a paid booking. It
// never mutates offers or payment intents; everything it needs is already
// snapshotted on the session.
type Issuer interface {
	Issue(ctx context.Context, sess *models.Session) (*models.Ticket, []byte, error)
}

type DefaultIssuer struct{}

func NewIssuer() *DefaultIssuer {
	return &DefaultIssuer{}
}

// Issue builds the ticket record and its PDF artifact. The booking reference
// and ticket id derive from the payment id, so re-issuing for the same
// payment yields the same ticket (only IssuedAt differs).
func (i *DefaultIssuer) Issue(ctx context.Context, sess *models.Session) (*models.Ticket, []byte, error) {
	offer, ok := sess.SelectedOffer()
	if !ok {
		return nil, nil, fmt.Errorf("issue ticket: session %s has no selected offer", sess.UserID)
	}
	if len(sess.Passengers) == 0 {
		return nil, nil, fmt.Errorf("issue ticket: session %s has no passengers", sess.UserID)
	}
	if sess.PendingPaymentID == "" {
		return nil, nil, fmt.Errorf("issue ticket: session %s has no payment reference", sess.UserID)
	}

	suffix := referenceSuffix(sess.PendingPaymentID)
	passengers := make([]models.Passenger, len(sess.Passengers))
	copy(passengers, sess.Passengers)
	for idx := range passengers {
		if passengers[idx].ID == "" {
			passengers[idx].ID = uuid.New().String()
		}
	}

	t := &models.Ticket{
		TicketID:      "TKT-" + suffix,
		Reference:     "TB-" + suffix,
		UserID:        sess.UserID,
		OfferID:       offer.OfferID,
		TripType:      offer.TripType,
		Source:        offer.Source,
		Destination:   offer.Destination,
		DepartureTime: offer.DepartureTime,
		Carrier:       offer.Carrier,
		Passengers:    passengers,
		Price:         offer.Price * float64(len(passengers)),
		Currency:      offer.Currency,
		IssuedAt:      time.Now(),
	}

	artifact, err := buildTicketPDF(t)
	if err != nil {
		return nil, nil, fmt.Errorf("issue ticket %s: %w", t.Reference, err)
	}
	return t, artifact, nil
}

// referenceSuffix keeps the tail of the payment id, which is the unique part
// of Stripe-style identifiers.
func referenceSuffix(paymentID string) string {
	s := strings.TrimPrefix(paymentID, "pi_")
	if len(s) > 10 {
		s = s[len(s)-10:]
	}
	return strings.ToUpper(s)
}
