// File: tripbot/services/booking/machine.go
package booking

import (
	"strings"
	"time"

	"tripbot/models"
	"tripbot/services/intent"
)

// EffectKind names the single side effect a transition may request. The
// machine itself never performs I/O; the booking service executes effects
// and feeds results back through the Apply helpers.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectQueryOffers
	EffectCreatePayment
	EffectIssueTicket
)

// Outcome is the result of one transition: the session has been mutated in
// place, Reply is the drafted answer, Effect the requested side effect.
type Outcome struct {
	Reply  string
	Effect EffectKind
}

// Rules are the configurable limits of the conversation flow.
type Rules struct {
	BookingWindowDays int
	MaxPassengers     int
	MaxOffersShown    int
}

// Machine is the pure booking state machine. Stages advance one position at
// a time along the defined order, or jump back to idle on cancel; ambiguous
// input re-prompts the current stage and never advances.
type Machine struct {
	Rules Rules
}

func NewMachine(rules Rules) *Machine {
	if rules.BookingWindowDays <= 0 {
		rules.BookingWindowDays = 10
	}
	if rules.MaxPassengers <= 0 {
		rules.MaxPassengers = 6
	}
	if rules.MaxOffersShown <= 0 {
		rules.MaxOffersShown = 5
	}
	return &Machine{Rules: rules}
}

func (m *Machine) Transition(sess *models.Session, act intent.Action, now time.Time) Outcome {
	// Global actions take priority over stage handling.
	switch act.Kind {
	case intent.KindCancel:
		if sess.Stage == models.StageIdle {
			return Outcome{Reply: idleHint()}
		}
		sess.ResetBooking()
		return Outcome{Reply: cancelledReply()}

	case intent.KindStart:
		sess.ResetBooking()
		sess.Stage = models.StageAwaitingTripType
		return Outcome{Reply: tripTypeMenu()}

	case intent.KindPaymentCompleted:
		if sess.Stage != models.StageAwaitingPayment {
			return Outcome{}
		}
		return Outcome{Effect: EffectIssueTicket}

	case intent.KindPaymentFailed:
		if sess.Stage != models.StageAwaitingPayment {
			return Outcome{}
		}
		// Entered passengers survive for the retry.
		sess.Stage = models.StageAwaitingPassengers
		sess.PendingPaymentID = ""
		return Outcome{Reply: paymentFailedReply()}
	}

	switch sess.Stage {
	case models.StageIdle:
		// Idle always starts a fresh attempt, whatever the message said.
		sess.ResetBooking()
		sess.Stage = models.StageAwaitingTripType
		return Outcome{Reply: tripTypeMenu()}

	case models.StageAwaitingTripType:
		if act.Kind == intent.KindSelectTripType {
			sess.TripType = act.TripType
			sess.Stage = models.StageAwaitingSource
			return Outcome{Reply: promptSource(act.TripType)}
		}
		return Outcome{Reply: tripTypeMenu()}

	case models.StageAwaitingSource:
		if act.Kind == intent.KindProvideText {
			sess.Source = act.Text
			sess.Stage = models.StageAwaitingDestination
			return Outcome{Reply: promptDestination()}
		}
		return Outcome{Reply: promptSource(sess.TripType)}

	case models.StageAwaitingDestination:
		if act.Kind == intent.KindProvideText {
			if strings.EqualFold(act.Text, sess.Source) {
				return Outcome{Reply: sameCityReply()}
			}
			sess.Destination = act.Text
			sess.Stage = models.StageAwaitingDate
			return Outcome{Reply: promptDate()}
		}
		return Outcome{Reply: promptDestination()}

	case models.StageAwaitingDate:
		if act.Kind == intent.KindProvideText {
			if !m.validDate(act.Text, now) {
				return Outcome{Reply: invalidDate(now, m.Rules.BookingWindowDays)}
			}
			sess.Date = act.Text
			// Stage advances only once offers actually arrive.
			return Outcome{Effect: EffectQueryOffers}
		}
		return Outcome{Reply: promptDate()}

	case models.StageAwaitingOffer:
		if act.Kind == intent.KindSelectOffer {
			if act.OfferChoice < 1 || act.OfferChoice > len(sess.LastOffers) {
				return Outcome{Reply: invalidOfferChoice(len(sess.LastOffers))}
			}
			sess.SelectedOfferID = sess.LastOffers[act.OfferChoice-1].OfferID
			sess.Stage = models.StageAwaitingPassengers
			return Outcome{Reply: promptPassenger(1)}
		}
		return Outcome{Reply: invalidOfferChoice(len(sess.LastOffers))}

	case models.StageAwaitingPassengers:
		switch act.Kind {
		case intent.KindProvidePassenger:
			sess.Passengers = append(sess.Passengers, act.Passenger)
			if len(sess.Passengers) >= m.Rules.MaxPassengers {
				return Outcome{Reply: maxPassengersReached(m.Rules.MaxPassengers), Effect: EffectCreatePayment}
			}
			return Outcome{Reply: passengerAdded(len(sess.Passengers), m.Rules.MaxPassengers)}
		case intent.KindConfirm:
			if len(sess.Passengers) == 0 {
				return Outcome{Reply: needPassengerReply()}
			}
			return Outcome{Effect: EffectCreatePayment}
		}
		return Outcome{Reply: promptPassenger(len(sess.Passengers) + 1)}

	case models.StageAwaitingPayment:
		// Ordinary chat never advances this stage; only payment events do.
		return Outcome{Reply: waitingPaymentReply()}
	}

	return Outcome{Reply: tripTypeMenu()}
}

// ApplyOffers feeds an offer query result back into the session. An empty
// result keeps the session in the date stage with a re-prompt.
func (m *Machine) ApplyOffers(sess *models.Session, offers []models.Offer) string {
	if len(offers) == 0 {
		sess.LastOffers = nil
		return noOffersReply()
	}
	if len(offers) > m.Rules.MaxOffersShown {
		offers = offers[:m.Rules.MaxOffersShown]
	}
	sess.LastOffers = offers
	sess.Stage = models.StageAwaitingOffer
	return offerList(offers)
}

// ApplyPaymentIntent records a freshly created intent and moves the session
// to the payment stage.
func (m *Machine) ApplyPaymentIntent(sess *models.Session, pi *models.PaymentIntent) string {
	sess.PendingPaymentID = pi.PaymentID
	sess.Stage = models.StageAwaitingPayment
	return paymentPrompt(pi, len(sess.Passengers))
}

// CompleteBooking appends the issued ticket to history and resets the
// session for the next booking.
func (m *Machine) CompleteBooking(sess *models.Session, t models.Ticket) {
	sess.History = append(sess.History, t)
	sess.ResetBooking()
}

// Rebook pre-fills a fresh attempt from a past ticket and jumps straight to
// the date stage.
func (m *Machine) Rebook(sess *models.Session, t models.Ticket) string {
	sess.ResetBooking()
	sess.TripType = t.TripType
	sess.Source = t.Source
	sess.Destination = t.Destination
	sess.Stage = models.StageAwaitingDate
	return rebookReply(t)
}

func (m *Machine) validDate(text string, now time.Time) bool {
	d, err := time.Parse("2006-01-02", text)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	last := today.AddDate(0, 0, m.Rules.BookingWindowDays)
	return !d.Before(today) && !d.After(last)
}
