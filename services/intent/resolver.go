// File: tripbot/services/intent/resolver.go
package intent

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"tripbot/models"
)

// Resolver normalizes raw user text plus the current stage into an Action.
type Resolver interface {
	Resolve(ctx context.Context, text string, stage models.Stage) Action
}

// KeywordResolver is the deterministic resolver: global commands first, then
// stage-scoped parsing. It never errors; anything it cannot place becomes
// KindUnrecognized and the state machine re-prompts.
type KeywordResolver struct{}

func NewKeywordResolver() *KeywordResolver {
	return &KeywordResolver{}
}

func (r *KeywordResolver) Resolve(ctx context.Context, text string, stage models.Stage) Action {
	raw := strings.TrimSpace(text)
	lower := strings.ToLower(raw)

	switch lower {
	case "hi", "hello", "start":
		return Action{Kind: KindStart}
	case "cancel", "restart", "stop":
		return Action{Kind: KindCancel}
	case "history", "bookings", "my bookings":
		return Action{Kind: KindShowHistory}
	}
	if idx, ok := parseRebook(lower); ok {
		return Action{Kind: KindRebook, RebookIndex: idx}
	}

	switch stage {
	case models.StageAwaitingTripType:
		return resolveTripType(lower)

	case models.StageAwaitingSource, models.StageAwaitingDestination:
		if raw == "" {
			return Action{Kind: KindUnrecognized}
		}
		return Action{Kind: KindProvideText, Text: titleCase(raw)}

	case models.StageAwaitingDate:
		if raw == "" {
			return Action{Kind: KindUnrecognized}
		}
		return Action{Kind: KindProvideText, Text: raw}

	case models.StageAwaitingOffer:
		if n, err := strconv.Atoi(lower); err == nil {
			return Action{Kind: KindSelectOffer, OfferChoice: n}
		}
		return Action{Kind: KindUnrecognized}

	case models.StageAwaitingPassengers:
		if lower == "done" || lower == "confirm" || lower == "no" {
			return Action{Kind: KindConfirm}
		}
		if p, ok := parsePassenger(raw); ok {
			return Action{Kind: KindProvidePassenger, Passenger: p}
		}
		return Action{Kind: KindUnrecognized}

	case models.StageAwaitingPayment:
		if lower == "paid" || lower == "payment done" || lower == "done" {
			return Action{Kind: KindConfirm}
		}
		return Action{Kind: KindUnrecognized}
	}

	return Action{Kind: KindUnrecognized}
}

func resolveTripType(lower string) Action {
	switch {
	case lower == "1" || strings.Contains(lower, "bus"):
		return Action{Kind: KindSelectTripType, TripType: models.TripTypeBus}
	case lower == "2" || strings.Contains(lower, "flight") || strings.Contains(lower, "plane"):
		return Action{Kind: KindSelectTripType, TripType: models.TripTypeFlight}
	}
	return Action{Kind: KindUnrecognized}
}

// parsePassenger accepts "Name, age" or "Name, age, seat".
func parsePassenger(raw string) (models.Passenger, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return models.Passenger{}, false
	}
	name := titleCase(strings.TrimSpace(parts[0]))
	if name == "" {
		return models.Passenger{}, false
	}
	age, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || age <= 0 {
		return models.Passenger{}, false
	}
	p := models.Passenger{Name: name, Age: age}
	if len(parts) == 3 {
		p.Seat = strings.ToUpper(strings.TrimSpace(parts[2]))
	}
	return p, true
}

// parseRebook accepts "rebook" or "rebook N".
func parseRebook(lower string) (int, bool) {
	if lower == "rebook" {
		return 1, true
	}
	rest, ok := strings.CutPrefix(lower, "rebook ")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
