// File: tripbot/services/offers/amadeus.go
package offers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"tripbot/models"

	"go.uber.org/zap"
)

// AmadeusGateway queries the Amadeus flight-offers search API. Tokens are
// client-credential grants cached until shortly before expiry.
type AmadeusGateway struct {
	baseURL   string
	apiKey    string
	apiSecret string
	maxOffers int
	client    *http.Client
	logger    *zap.Logger

	// One gateway instance serves all sessions concurrently; the token
	// cache is guarded so parallel searches share one grant.
	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewAmadeusGateway(baseURL, apiKey, apiSecret string, maxOffers int, logger *zap.Logger) *AmadeusGateway {
	return &AmadeusGateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		maxOffers: maxOffers,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type locationsResponse struct {
	Data []struct {
		IataCode string `json:"iataCode"`
	} `json:"data"`
}

type flightOffersResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Itineraries []struct {
			Segments []struct {
				Departure struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IataCode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
			} `json:"segments"`
		} `json:"itineraries"`
		Price struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"price"`
		ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
		NumberOfBookableSeats  int      `json:"numberOfBookableSeats"`
	} `json:"data"`
}

// Query maps the first segment of each returned itinerary into an Offer.
// The API returns offers price-ordered; results are re-sorted by departure
// time before capping to maxOffers.
func (g *AmadeusGateway) Query(ctx context.Context, tripType models.TripType, source, destination, date string) ([]models.Offer, error) {
	originCode, err := g.iataCode(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("resolve origin %q: %w", source, err)
	}
	destCode, err := g.iataCode(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("resolve destination %q: %w", destination, err)
	}
	if originCode == "" || destCode == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("originLocationCode", originCode)
	params.Set("destinationLocationCode", destCode)
	params.Set("departureDate", date)
	params.Set("adults", "1")
	params.Set("nonStop", "false")
	params.Set("currencyCode", "INR")

	var resp flightOffersResponse
	if err := g.getJSON(ctx, "/v2/shopping/flight-offers?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	var result []models.Offer
	for _, d := range resp.Data {
		if len(d.Itineraries) == 0 || len(d.Itineraries[0].Segments) == 0 {
			continue
		}
		seg := d.Itineraries[0].Segments[0]
		price, err := strconv.ParseFloat(d.Price.Total, 64)
		if err != nil {
			g.logger.Warn("skipping offer with unparsable price",
				zap.String("offer", d.ID), zap.String("total", d.Price.Total))
			continue
		}
		carrier := ""
		if len(d.ValidatingAirlineCodes) > 0 {
			carrier = d.ValidatingAirlineCodes[0]
		}
		result = append(result, models.Offer{
			OfferID:        "FL-" + d.ID + "-" + seg.Departure.At,
			TripType:       models.TripTypeFlight,
			Source:         seg.Departure.IataCode,
			Destination:    seg.Arrival.IataCode,
			DepartureTime:  seg.Departure.At,
			ArrivalTime:    seg.Arrival.At,
			Carrier:        carrier,
			Price:          price,
			Currency:       d.Price.Currency,
			SeatsAvailable: d.NumberOfBookableSeats,
		})
	}

	// ISO-8601 departure timestamps sort lexicographically.
	sort.Slice(result, func(i, j int) bool {
		return result[i].DepartureTime < result[j].DepartureTime
	})
	if g.maxOffers > 0 && len(result) > g.maxOffers {
		result = result[:g.maxOffers]
	}
	return result, nil
}

// iataCode resolves a free-text city name to its IATA code. An unknown city
// yields "", which the caller treats as no availability.
func (g *AmadeusGateway) iataCode(ctx context.Context, city string) (string, error) {
	params := url.Values{}
	params.Set("keyword", city)
	params.Set("subType", "CITY,AIRPORT")

	var resp locationsResponse
	if err := g.getJSON(ctx, "/v1/reference-data/locations?"+params.Encode(), &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	return resp.Data[0].IataCode, nil
}

func (g *AmadeusGateway) getJSON(ctx context.Context, path string, out interface{}) error {
	token, err := g.accessToken(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("amadeus API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (g *AmadeusGateway) accessToken(ctx context.Context) (string, error) {
	g.tokenMu.Lock()
	defer g.tokenMu.Unlock()
	if g.token != "" && time.Now().Before(g.tokenExpiry) {
		return g.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", g.apiKey)
	form.Set("client_secret", g.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("amadeus token endpoint returned status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("amadeus token endpoint returned empty token")
	}
	g.token = tok.AccessToken
	g.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return g.token, nil
}
