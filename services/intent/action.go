package intent

import "tripbot/models"

// Kind tags the structured interpretation of a raw user message.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindStart
	KindCancel
	KindSelectTripType
	KindProvideText
	KindSelectOffer
	KindProvidePassenger
	KindConfirm
	KindShowHistory
	KindRebook

	// Synthetic kinds injected by the payment event path, never produced
	// by a resolver.
	KindPaymentCompleted
	KindPaymentFailed
)

// Action is the resolved, stage-aware meaning of one inbound message.
// Exactly the fields implied by Kind are set.
type Action struct {
	Kind        Kind
	TripType    models.TripType
	Text        string
	OfferChoice int // 1-based index into the offers last shown
	Passenger   models.Passenger
	RebookIndex int // 1-based index into booking history
}
