package models

import "time"

// Stage is the session's position in the booking conversation.
type Stage string

const (
	StageIdle                 Stage = "idle"
	StageAwaitingTripType     Stage = "awaiting_trip_type"
	StageAwaitingSource       Stage = "awaiting_source"
	StageAwaitingDestination  Stage = "awaiting_destination"
	StageAwaitingDate         Stage = "awaiting_date"
	StageAwaitingOffer        Stage = "awaiting_offer_selection"
	StageAwaitingPassengers   Stage = "awaiting_passenger_details"
	StageAwaitingPayment      Stage = "awaiting_payment_confirmation"
	StageCompleted            Stage = "completed"
)

// stageOrder defines the linear progression of the booking flow. A session
// only ever moves forward one position at a time, or jumps back to idle.
var stageOrder = map[Stage]int{
	StageIdle:                0,
	StageAwaitingTripType:    1,
	StageAwaitingSource:      2,
	StageAwaitingDestination: 3,
	StageAwaitingDate:        4,
	StageAwaitingOffer:       5,
	StageAwaitingPassengers:  6,
	StageAwaitingPayment:     7,
	StageCompleted:           8,
}

// Order returns the stage's position in the booking flow.
func (s Stage) Order() int {
	return stageOrder[s]
}

// TripType distinguishes bus and flight bookings.
type TripType string

const (
	TripTypeBus    TripType = "bus"
	TripTypeFlight TripType = "flight"
)

// Passenger is one traveler on an in-progress booking attempt. Passengers
// are only persisted as part of an issued Ticket snapshot.
type Passenger struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
	Seat string `json:"seat,omitempty"`
}

// Session holds one user's conversation state between inbound messages.
type Session struct {
	UserID           string      `json:"userId"`
	Stage            Stage       `json:"stage"`
	TripType         TripType    `json:"tripType,omitempty"`
	Source           string      `json:"source,omitempty"`
	Destination      string      `json:"destination,omitempty"`
	Date             string      `json:"date,omitempty"`
	LastOffers       []Offer     `json:"lastOffers,omitempty"`
	SelectedOfferID  string      `json:"selectedOfferId,omitempty"`
	Passengers       []Passenger `json:"passengers,omitempty"`
	PendingPaymentID string      `json:"pendingPaymentId,omitempty"`
	History          []Ticket    `json:"history,omitempty"`
	LastUpdatedAt    time.Time   `json:"lastUpdatedAt"`
}

// NewSession returns a fresh idle session for the given user.
func NewSession(userID string) *Session {
	return &Session{
		UserID: userID,
		Stage:  StageIdle,
	}
}

// ResetBooking discards all unconfirmed booking data and returns the session
// to idle. Completed-booking history is preserved.
func (s *Session) ResetBooking() {
	s.Stage = StageIdle
	s.TripType = ""
	s.Source = ""
	s.Destination = ""
	s.Date = ""
	s.LastOffers = nil
	s.SelectedOfferID = ""
	s.Passengers = nil
	s.PendingPaymentID = ""
}

// SelectedOffer looks up the chosen offer among those last shown.
func (s *Session) SelectedOffer() (Offer, bool) {
	for _, o := range s.LastOffers {
		if o.OfferID == s.SelectedOfferID {
			return o, true
		}
	}
	return Offer{}, false
}
