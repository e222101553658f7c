package models

import "time"

// Ticket is the immutable proof-of-booking artifact issued once per paid
// booking. It snapshots the passenger list as entered at payment time.
type Ticket struct {
	TicketID      string      `json:"ticketId" bson:"ticketId"`
	Reference     string      `json:"reference" bson:"reference"`
	UserID        string      `json:"userId" bson:"userId"`
	OfferID       string      `json:"offerId" bson:"offerId"`
	TripType      TripType    `json:"tripType" bson:"tripType"`
	Source        string      `json:"source" bson:"source"`
	Destination   string      `json:"destination" bson:"destination"`
	DepartureTime string      `json:"departureTime" bson:"departureTime"`
	Carrier       string      `json:"carrier,omitempty" bson:"carrier,omitempty"`
	Passengers    []Passenger `json:"passengers" bson:"passengers"`
	Price         float64     `json:"price" bson:"price"`
	Currency      string      `json:"currency" bson:"currency"`
	ArtifactURL   string      `json:"artifactUrl,omitempty" bson:"artifactUrl,omitempty"`
	IssuedAt      time.Time   `json:"issuedAt" bson:"issuedAt"`
}
