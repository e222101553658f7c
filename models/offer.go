package models

// Offer is an immutable trip candidate returned by the offer gateway.
// Sessions reference offers by id only; the gateway itself is stateless.
type Offer struct {
	OfferID        string   `json:"offerId"`
	TripType       TripType `json:"tripType"`
	Source         string   `json:"source"`
	Destination    string   `json:"destination"`
	DepartureTime  string   `json:"departureTime"`
	ArrivalTime    string   `json:"arrivalTime,omitempty"`
	Carrier        string   `json:"carrier,omitempty"`
	Price          float64  `json:"price"`
	Currency       string   `json:"currency"`
	SeatsAvailable int      `json:"seatsAvailable,omitempty"`
}
