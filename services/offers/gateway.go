package offers

import (
	"context"
	"fmt"

	"tripbot/models"
)

// Gateway returns bookable trip candidates for a route and date, ordered by
// departure time. An empty result means no availability and is not an error.
type Gateway interface {
	Query(ctx context.Context, tripType models.TripType, source, destination, date string) ([]models.Offer, error)
}

// Router dispatches queries to the gateway for the requested trip type.
type Router struct {
	Bus    Gateway
	Flight Gateway
}

func (r *Router) Query(ctx context.Context, tripType models.TripType, source, destination, date string) ([]models.Offer, error) {
	switch tripType {
	case models.TripTypeBus:
		return r.Bus.Query(ctx, tripType, source, destination, date)
	case models.TripTypeFlight:
		return r.Flight.Query(ctx, tripType, source, destination, date)
	}
	return nil, fmt.Errorf("unsupported trip type: %s", tripType)
}
