// File: tripbot/services/offers/bus.go
package offers

import (
	"context"
	"fmt"
	"strings"

	"tripbot/models"
)

// busRoute is one operated bus connection with its daily departures.
type busRoute struct {
	Source     string
	Dest       string
	Operator   string
	Departures []string // HH:MM, ascending
	DurationH  int
	Price      float64
	Seats      int
}

// Static route catalogue. Real inventory would come from an operator feed;
// the gateway contract stays the same either way.
var busRoutes = []busRoute{
	{Source: "Mumbai", Dest: "Pune", Operator: "Neeta Travels", Departures: []string{"06:30", "09:00", "14:00", "21:30"}, DurationH: 3, Price: 450, Seats: 32},
	{Source: "Pune", Dest: "Mumbai", Operator: "Neeta Travels", Departures: []string{"07:00", "11:30", "17:00", "22:00"}, DurationH: 3, Price: 450, Seats: 32},
	{Source: "Delhi", Dest: "Jaipur", Operator: "RSRTC Deluxe", Departures: []string{"05:45", "10:15", "16:30", "23:00"}, DurationH: 5, Price: 620, Seats: 40},
	{Source: "Jaipur", Dest: "Delhi", Operator: "RSRTC Deluxe", Departures: []string{"06:00", "12:00", "18:30", "23:30"}, DurationH: 5, Price: 620, Seats: 40},
	{Source: "Bangalore", Dest: "Chennai", Operator: "KPN Travels", Departures: []string{"07:30", "13:00", "20:45", "22:30"}, DurationH: 6, Price: 780, Seats: 36},
	{Source: "Chennai", Dest: "Bangalore", Operator: "KPN Travels", Departures: []string{"08:00", "14:30", "21:00", "23:00"}, DurationH: 6, Price: 780, Seats: 36},
	{Source: "Hyderabad", Dest: "Bangalore", Operator: "Orange Tours", Departures: []string{"19:00", "20:30", "22:15"}, DurationH: 9, Price: 950, Seats: 44},
	{Source: "Bangalore", Dest: "Hyderabad", Operator: "Orange Tours", Departures: []string{"19:30", "21:00", "22:45"}, DurationH: 9, Price: 950, Seats: 44},
}

// BusGateway serves offers from the static route catalogue. Departures are
// already ascending per route, so results keep the ordered-by-departure
// contract.
type BusGateway struct {
	maxOffers int
}

func NewBusGateway(maxOffers int) *BusGateway {
	return &BusGateway{maxOffers: maxOffers}
}

func (g *BusGateway) Query(ctx context.Context, tripType models.TripType, source, destination, date string) ([]models.Offer, error) {
	var result []models.Offer
	for _, r := range busRoutes {
		if !strings.EqualFold(r.Source, source) || !strings.EqualFold(r.Dest, destination) {
			continue
		}
		for i, dep := range r.Departures {
			result = append(result, models.Offer{
				OfferID:        fmt.Sprintf("BUS-%s-%s-%s-%d", cityCode(source), cityCode(destination), date, i+1),
				TripType:       models.TripTypeBus,
				Source:         r.Source,
				Destination:    r.Dest,
				DepartureTime:  date + "T" + dep,
				ArrivalTime:    fmt.Sprintf("%s (+%dh)", dep, r.DurationH),
				Carrier:        r.Operator,
				Price:          r.Price,
				Currency:       "INR",
				SeatsAvailable: r.Seats,
			})
			if len(result) == g.maxOffers {
				return result, nil
			}
		}
	}
	return result, nil
}

func cityCode(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > 3 {
		s = s[:3]
	}
	return s
}
