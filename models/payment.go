package models

import "time"

// PaymentStatus is the lifecycle state of a PaymentIntent.
type PaymentStatus string

const (
	PaymentCreated   PaymentStatus = "created"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentExpired   PaymentStatus = "expired"
)

// Terminal reports whether the status can no longer change.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentFailed || s == PaymentExpired
}

// PaymentIntent tracks one payment request. SessionUserID is a lookup-only
// back-reference used to correlate the asynchronous completion webhook.
type PaymentIntent struct {
	PaymentID     string        `json:"paymentId"`
	SessionUserID string        `json:"sessionUserId"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	CheckoutURL   string        `json:"checkoutUrl,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// PaymentEvent is the asynchronous payment webhook payload.
type PaymentEvent struct {
	PaymentID  string        `json:"paymentId"`
	Status     PaymentStatus `json:"status"`
	ReceivedAt time.Time     `json:"receivedAt"`
}
