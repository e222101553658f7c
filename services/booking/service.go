// File: tripbot/services/booking/service.go
package booking

import (
	"context"
	"errors"
	"time"

	ticketrepo "tripbot/database/repository/ticket"
	"tripbot/models"
	"tripbot/services/intent"
	"tripbot/services/notification"
	"tripbot/services/offers"
	"tripbot/services/payment"
	"tripbot/services/session"
	tickets "tripbot/services/ticket"

	"go.uber.org/zap"
)

const historyLimit = 5

// Service is the conversation orchestrator: one entry point per inbound
// chat message and one for asynchronous payment events.
type Service interface {
	HandleMessage(ctx context.Context, msg models.InboundMessage) (models.Reply, error)
	HandlePaymentEvent(ctx context.Context, evt models.PaymentEvent) error
	History(ctx context.Context, userID string) ([]models.Ticket, error)
}

// DefaultBookingService wires the state machine to its collaborators. All
// session mutation for one user runs under that user's lock, so chat
// messages and payment webhooks never interleave on the same session.
type DefaultBookingService struct {
	Store           session.Store
	Locks           *session.UserLocks
	Resolver        intent.Resolver
	Offers          offers.Gateway
	Payments        payment.Coordinator
	Issuer          tickets.Issuer
	Deliverer       *tickets.Deliverer
	Sender          notification.Sender
	TicketRepo      ticketrepo.Repository
	Machine         *Machine
	UpstreamTimeout time.Duration
	Logger          *zap.Logger
}

func (s *DefaultBookingService) HandleMessage(ctx context.Context, msg models.InboundMessage) (models.Reply, error) {
	var reply models.Reply
	err := s.Locks.Do(msg.UserID, func() error {
		sess, err := s.Store.Load(ctx, msg.UserID)
		if err != nil {
			return err
		}

		act := s.Resolver.Resolve(ctx, msg.Text, sess.Stage)

		// History shortcuts read persisted tickets, not the live session.
		switch act.Kind {
		case intent.KindShowHistory:
			text, err := s.historyReply(ctx, msg.UserID)
			if err != nil {
				return err
			}
			reply.Text = text
			return s.Store.Save(ctx, sess)
		case intent.KindRebook:
			text, err := s.rebook(ctx, sess, act.RebookIndex)
			if err != nil {
				return err
			}
			reply.Text = text
			return s.Store.Save(ctx, sess)
		}

		out := s.Machine.Transition(sess, act, msg.ReceivedAt)
		switch out.Effect {
		case EffectQueryOffers:
			reply.Text = joinReplies(out.Reply, s.queryOffers(ctx, sess))
		case EffectCreatePayment:
			reply.Text = joinReplies(out.Reply, s.createPayment(ctx, sess))
		default:
			reply.Text = out.Reply
		}
		return s.Store.Save(ctx, sess)
	})
	return reply, err
}

// queryOffers runs the offer gateway under the upstream timeout. On timeout
// or gateway failure the session stays in the date stage and the user is
// asked to retry.
func (s *DefaultBookingService) queryOffers(ctx context.Context, sess *models.Session) string {
	qctx, cancel := context.WithTimeout(ctx, s.UpstreamTimeout)
	defer cancel()

	result, err := s.Offers.Query(qctx, sess.TripType, sess.Source, sess.Destination, sess.Date)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Warn("offer query timed out",
				zap.String("userId", sess.UserID), zap.Error(ErrUpstreamTimeout))
			return tryAgainReply()
		}
		s.Logger.Error("offer query failed",
			zap.String("userId", sess.UserID), zap.Error(err))
		return tryAgainReply()
	}
	return s.Machine.ApplyOffers(sess, result)
}

// createPayment creates the payment intent for the selected offer. On
// failure the session stays in the passenger stage with everything entered
// so far preserved.
func (s *DefaultBookingService) createPayment(ctx context.Context, sess *models.Session) string {
	offer, ok := sess.SelectedOffer()
	if !ok {
		s.Logger.Error("payment requested without selected offer",
			zap.String("userId", sess.UserID), zap.Error(ErrStaleOffer))
		sess.Stage = models.StageAwaitingDate
		return noOffersReply()
	}
	amount := offer.Price * float64(len(sess.Passengers))

	pctx, cancel := context.WithTimeout(ctx, s.UpstreamTimeout)
	defer cancel()

	pi, err := s.Payments.CreateIntent(pctx, sess, amount)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Warn("payment intent creation timed out",
				zap.String("userId", sess.UserID), zap.Error(ErrUpstreamTimeout))
		} else {
			s.Logger.Error("payment intent creation failed",
				zap.String("userId", sess.UserID), zap.Error(err))
		}
		return tryAgainReply()
	}
	return s.Machine.ApplyPaymentIntent(sess, pi)
}

func (s *DefaultBookingService) HandlePaymentEvent(ctx context.Context, evt models.PaymentEvent) error {
	userID, err := s.Payments.Resolve(ctx, evt.PaymentID)
	if err != nil {
		s.Logger.Warn("payment event for unknown payment",
			zap.String("paymentId", evt.PaymentID), zap.Error(err))
		return err
	}

	return s.Locks.Do(userID, func() error {
		switch evt.Status {
		case models.PaymentCompleted:
			return s.completePayment(ctx, userID, evt)
		case models.PaymentFailed, models.PaymentExpired:
			return s.failPayment(ctx, userID, evt)
		}
		s.Logger.Warn("ignoring payment event with non-terminal status",
			zap.String("paymentId", evt.PaymentID), zap.String("status", string(evt.Status)))
		return nil
	})
}

// completePayment issues exactly one ticket per payment. The intent is only
// marked terminal after issuance succeeds, so a replayed webhook retries a
// failed issuance but can never double-issue.
func (s *DefaultBookingService) completePayment(ctx context.Context, userID string, evt models.PaymentEvent) error {
	sess, err := s.Store.Load(ctx, userID)
	if err != nil {
		return err
	}
	if sess.PendingPaymentID != evt.PaymentID || sess.Stage != models.StageAwaitingPayment {
		// Replay after a completed booking, or an event for a superseded
		// intent. Absorbed.
		s.Logger.Info("duplicate payment event absorbed",
			zap.String("paymentId", evt.PaymentID), zap.Error(ErrDuplicateEvent))
		return nil
	}

	out := s.Machine.Transition(sess, intent.Action{Kind: intent.KindPaymentCompleted}, evt.ReceivedAt)
	if out.Effect != EffectIssueTicket {
		return nil
	}

	t, artifact, err := s.Issuer.Issue(ctx, sess)
	if err != nil {
		s.notify(ctx, userID, ticketDelayedReply())
		return &IssuanceError{UserID: userID, Err: err}
	}

	if _, err := s.Payments.MarkTerminal(ctx, evt.PaymentID, models.PaymentCompleted); err != nil {
		s.Logger.Error("failed to mark payment terminal",
			zap.String("paymentId", evt.PaymentID), zap.Error(err))
	}

	s.Machine.CompleteBooking(sess, *t)
	if err := s.Store.Save(ctx, sess); err != nil {
		return err
	}

	// Delivery failures are retried in the background; the booking is done.
	if err := s.Deliverer.Deliver(ctx, t, artifact); err != nil {
		s.notify(ctx, userID, ticketDelayedReply())
	}
	return nil
}

func (s *DefaultBookingService) failPayment(ctx context.Context, userID string, evt models.PaymentEvent) error {
	first, err := s.Payments.MarkTerminal(ctx, evt.PaymentID, evt.Status)
	if err != nil {
		return err
	}
	if !first {
		s.Logger.Info("duplicate payment event absorbed",
			zap.String("paymentId", evt.PaymentID), zap.Error(ErrDuplicateEvent))
		return nil
	}

	sess, err := s.Store.Load(ctx, userID)
	if err != nil {
		return err
	}
	if sess.PendingPaymentID != evt.PaymentID {
		return nil
	}

	out := s.Machine.Transition(sess, intent.Action{Kind: intent.KindPaymentFailed}, evt.ReceivedAt)
	if err := s.Store.Save(ctx, sess); err != nil {
		return err
	}
	if out.Reply != "" {
		s.notify(ctx, userID, out.Reply)
	}
	return nil
}

func (s *DefaultBookingService) History(ctx context.Context, userID string) ([]models.Ticket, error) {
	return s.TicketRepo.HistoryByUser(ctx, userID, historyLimit)
}

func (s *DefaultBookingService) historyReply(ctx context.Context, userID string) (string, error) {
	tickets, err := s.History(ctx, userID)
	if err != nil {
		return "", err
	}
	return historyList(tickets), nil
}

func (s *DefaultBookingService) rebook(ctx context.Context, sess *models.Session, index int) (string, error) {
	tickets, err := s.History(ctx, sess.UserID)
	if err != nil {
		return "", err
	}
	if index < 1 || index > len(tickets) {
		return historyList(tickets), nil
	}
	return s.Machine.Rebook(sess, tickets[index-1]), nil
}

// joinReplies prefixes an effect result with the transition's own reply
// (e.g. the passenger-cap notice ahead of the payment prompt).
func joinReplies(lead, main string) string {
	if lead == "" {
		return main
	}
	return lead + "\n\n" + main
}

// notify pushes an out-of-band message to the user (payment events have no
// inbound message to reply to).
func (s *DefaultBookingService) notify(ctx context.Context, userID, text string) {
	if s.Sender == nil {
		return
	}
	if err := s.Sender.Send(ctx, userID, text); err != nil {
		s.Logger.Error("failed to notify user",
			zap.String("userId", userID), zap.Error(err))
	}
}
