package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"tripbot/models"
	"tripbot/services/intent"
	"tripbot/services/payment"
	"tripbot/services/session"
	tickets "tripbot/services/ticket"

	"go.uber.org/zap"
)

// fakeOfferGateway returns a scripted result or error.
type fakeOfferGateway struct {
	offers []models.Offer
	err    error
	calls  int
}

func (g *fakeOfferGateway) Query(ctx context.Context, tripType models.TripType, source, destination, date string) ([]models.Offer, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.offers, nil
}

// fakeCoordinator keeps intents in memory with the same terminal-once
// semantics as the Redis-backed coordinator.
type fakeCoordinator struct {
	mu      sync.Mutex
	intents map[string]*models.PaymentIntent
	nextID  int
	fail    bool
}

func newFakeCoordinator() *fakeCoordinator {
	return &fakeCoordinator{intents: make(map[string]*models.PaymentIntent)}
}

func (c *fakeCoordinator) CreateIntent(ctx context.Context, sess *models.Session, amount float64) (*models.PaymentIntent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, errors.New("gateway unavailable")
	}
	c.nextID++
	pi := &models.PaymentIntent{
		PaymentID:     fmt.Sprintf("pi_%03d", c.nextID),
		SessionUserID: sess.UserID,
		Amount:        amount,
		Currency:      "inr",
		Status:        models.PaymentCreated,
		CheckoutURL:   fmt.Sprintf("https://pay.example/pi_%03d", c.nextID),
	}
	c.intents[pi.PaymentID] = pi
	return pi, nil
}

func (c *fakeCoordinator) Resolve(ctx context.Context, paymentID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pi, ok := c.intents[paymentID]
	if !ok {
		return "", payment.ErrUnknownPayment
	}
	return pi.SessionUserID, nil
}

func (c *fakeCoordinator) MarkTerminal(ctx context.Context, paymentID string, status models.PaymentStatus) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pi, ok := c.intents[paymentID]
	if !ok {
		return false, payment.ErrUnknownPayment
	}
	if pi.Status.Terminal() {
		return false, nil
	}
	pi.Status = status
	return true, nil
}

// fakeTicketRepo is an in-memory ticket repository.
type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets []models.Ticket
}

func (r *fakeTicketRepo) Insert(ctx context.Context, t *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets = append(r.tickets, *t)
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.TicketID == ticketID {
			cp := t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTicketRepo) HistoryByUser(ctx context.Context, userID string, limit int) ([]models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Ticket
	for i := len(r.tickets) - 1; i >= 0 && len(out) < limit; i-- {
		if r.tickets[i].UserID == userID {
			out = append(out, r.tickets[i])
		}
	}
	return out, nil
}

// fakeSender records outbound chat messages.
type fakeSender struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (s *fakeSender) Send(ctx context.Context, userID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, text)
	return nil
}

func (s *fakeSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

type serviceFixture struct {
	svc    *DefaultBookingService
	store  *session.MemoryStore
	offers *fakeOfferGateway
	pay    *fakeCoordinator
	repo   *fakeTicketRepo
	sender *fakeSender
}

func newServiceFixture() *serviceFixture {
	store := session.NewMemoryStore()
	gateway := &fakeOfferGateway{offers: sampleOffers(3)}
	coordinator := newFakeCoordinator()
	repo := &fakeTicketRepo{}
	sender := &fakeSender{}
	logger := zap.NewNop()

	svc := &DefaultBookingService{
		Store:    store,
		Locks:    session.NewUserLocks(),
		Resolver: intent.NewKeywordResolver(),
		Offers:   gateway,
		Payments: coordinator,
		Issuer:   tickets.NewIssuer(),
		Deliverer: &tickets.Deliverer{
			Repo:   repo,
			Sender: sender,
			Logger: logger,
		},
		Sender:          sender,
		TicketRepo:      repo,
		Machine:         testMachine(),
		UpstreamTimeout: time.Second,
		Logger:          logger,
	}
	return &serviceFixture{svc: svc, store: store, offers: gateway, pay: coordinator, repo: repo, sender: sender}
}

func (f *serviceFixture) say(t *testing.T, user, text string) models.Reply {
	t.Helper()
	reply, err := f.svc.HandleMessage(context.Background(), models.InboundMessage{
		UserID: user, Text: text, ReceivedAt: testNow,
	})
	if err != nil {
		t.Fatalf("HandleMessage(%q): %v", text, err)
	}
	return reply
}

// driveToPayment walks the conversation to the payment stage and returns the
// created payment id.
func (f *serviceFixture) driveToPayment(t *testing.T, user string) string {
	t.Helper()
	f.say(t, user, "hi")
	f.say(t, user, "bus")
	f.say(t, user, "mumbai")
	f.say(t, user, "pune")
	f.say(t, user, "2026-03-15")
	f.say(t, user, "2")
	f.say(t, user, "Asha Rao, 34, 12A")
	f.say(t, user, "done")

	sess, err := f.store.Load(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Stage != models.StageAwaitingPayment || sess.PendingPaymentID == "" {
		t.Fatalf("did not reach payment stage: stage = %s", sess.Stage)
	}
	return sess.PendingPaymentID
}

func TestHandleMessageFullFlowIssuesTicketOnce(t *testing.T) {
	f := newServiceFixture()
	const user = "whatsapp:+911234567890"
	paymentID := f.driveToPayment(t, user)

	evt := models.PaymentEvent{PaymentID: paymentID, Status: models.PaymentCompleted, ReceivedAt: testNow}
	if err := f.svc.HandlePaymentEvent(context.Background(), evt); err != nil {
		t.Fatalf("HandlePaymentEvent: %v", err)
	}

	if len(f.repo.tickets) != 1 {
		t.Fatalf("tickets persisted = %d, want 1", len(f.repo.tickets))
	}
	tk := f.repo.tickets[0]
	if tk.UserID != user || tk.Price != 450 || len(tk.Passengers) != 1 {
		t.Errorf("ticket = %+v", tk)
	}

	sess, _ := f.store.Load(context.Background(), user)
	if sess.Stage != models.StageIdle {
		t.Errorf("session not reset after completion: stage = %s", sess.Stage)
	}
	if len(sess.History) != 1 {
		t.Errorf("history = %d entries, want 1", len(sess.History))
	}

	found := false
	for _, msg := range f.sender.sent() {
		if strings.Contains(msg, tk.Reference) {
			found = true
		}
	}
	if !found {
		t.Error("no delivery message carried the booking reference")
	}

	// A replayed completion event must not issue a second ticket.
	if err := f.svc.HandlePaymentEvent(context.Background(), evt); err != nil {
		t.Fatalf("replayed event: %v", err)
	}
	if len(f.repo.tickets) != 1 {
		t.Errorf("replay issued extra ticket: %d", len(f.repo.tickets))
	}
}

func TestHandlePaymentEventFailureReturnsToPassengers(t *testing.T) {
	f := newServiceFixture()
	const user = "whatsapp:+911234567890"
	paymentID := f.driveToPayment(t, user)

	evt := models.PaymentEvent{PaymentID: paymentID, Status: models.PaymentFailed, ReceivedAt: testNow}
	if err := f.svc.HandlePaymentEvent(context.Background(), evt); err != nil {
		t.Fatalf("HandlePaymentEvent: %v", err)
	}

	sess, _ := f.store.Load(context.Background(), user)
	if sess.Stage != models.StageAwaitingPassengers {
		t.Fatalf("stage = %s", sess.Stage)
	}
	if len(sess.Passengers) != 1 {
		t.Error("passengers lost on payment failure")
	}

	// Duplicate failure event is absorbed without a second notification.
	before := len(f.sender.sent())
	if err := f.svc.HandlePaymentEvent(context.Background(), evt); err != nil {
		t.Fatalf("duplicate event: %v", err)
	}
	if len(f.sender.sent()) != before {
		t.Error("duplicate failure event notified the user again")
	}
}

func TestHandlePaymentEventUnknownPayment(t *testing.T) {
	f := newServiceFixture()
	evt := models.PaymentEvent{PaymentID: "pi_ghost", Status: models.PaymentCompleted, ReceivedAt: testNow}
	if err := f.svc.HandlePaymentEvent(context.Background(), evt); !errors.Is(err, payment.ErrUnknownPayment) {
		t.Fatalf("err = %v, want ErrUnknownPayment", err)
	}
}

func TestHandleMessageOfferTimeoutKeepsStage(t *testing.T) {
	f := newServiceFixture()
	f.offers.err = context.DeadlineExceeded
	const user = "whatsapp:+911234567890"

	f.say(t, user, "hi")
	f.say(t, user, "bus")
	f.say(t, user, "mumbai")
	f.say(t, user, "pune")
	reply := f.say(t, user, "2026-03-15")

	if !strings.Contains(reply.Text, "try again") {
		t.Errorf("reply = %q", reply.Text)
	}
	sess, _ := f.store.Load(context.Background(), user)
	if sess.Stage != models.StageAwaitingDate {
		t.Fatalf("stage = %s, want date stage preserved", sess.Stage)
	}

	// The stored date survives, so a retry can resubmit it.
	f.offers.err = nil
	reply = f.say(t, user, "2026-03-15")
	if !strings.Contains(reply.Text, "Available trips") {
		t.Errorf("retry reply = %q", reply.Text)
	}
}

func TestHandleMessagePaymentCreationFailureKeepsPassengers(t *testing.T) {
	f := newServiceFixture()
	f.pay.fail = true
	const user = "whatsapp:+911234567890"

	f.say(t, user, "hi")
	f.say(t, user, "bus")
	f.say(t, user, "mumbai")
	f.say(t, user, "pune")
	f.say(t, user, "2026-03-15")
	f.say(t, user, "1")
	f.say(t, user, "Asha Rao, 34")
	reply := f.say(t, user, "done")

	if !strings.Contains(reply.Text, "try again") {
		t.Errorf("reply = %q", reply.Text)
	}
	sess, _ := f.store.Load(context.Background(), user)
	if sess.Stage != models.StageAwaitingPassengers || len(sess.Passengers) != 1 {
		t.Fatalf("stage = %s, passengers = %d", sess.Stage, len(sess.Passengers))
	}

	f.pay.fail = false
	reply = f.say(t, user, "done")
	if !strings.Contains(reply.Text, "Complete your payment") {
		t.Errorf("retry reply = %q", reply.Text)
	}
}

func TestHandleMessagePassengerCapNoticePrecedesPaymentPrompt(t *testing.T) {
	f := newServiceFixture()
	f.svc.Machine = NewMachine(Rules{MaxPassengers: 1, BookingWindowDays: 10, MaxOffersShown: 5})
	const user = "whatsapp:+911234567890"

	f.say(t, user, "hi")
	f.say(t, user, "bus")
	f.say(t, user, "mumbai")
	f.say(t, user, "pune")
	f.say(t, user, "2026-03-15")
	f.say(t, user, "1")
	reply := f.say(t, user, "Asha Rao, 34")

	capIdx := strings.Index(reply.Text, "Maximum of 1 passengers reached")
	payIdx := strings.Index(reply.Text, "Complete your payment")
	if capIdx < 0 || payIdx < 0 {
		t.Fatalf("reply = %q", reply.Text)
	}
	if capIdx > payIdx {
		t.Error("cap notice should precede the payment prompt")
	}

	sess, _ := f.store.Load(context.Background(), user)
	if sess.Stage != models.StageAwaitingPayment {
		t.Errorf("stage = %s", sess.Stage)
	}
}

func TestHandleMessageHistoryAndRebook(t *testing.T) {
	f := newServiceFixture()
	const user = "whatsapp:+911234567890"

	reply := f.say(t, user, "history")
	if !strings.Contains(reply.Text, "No bookings found") {
		t.Errorf("empty history reply = %q", reply.Text)
	}

	paymentID := f.driveToPayment(t, user)
	evt := models.PaymentEvent{PaymentID: paymentID, Status: models.PaymentCompleted, ReceivedAt: testNow}
	if err := f.svc.HandlePaymentEvent(context.Background(), evt); err != nil {
		t.Fatal(err)
	}

	reply = f.say(t, user, "history")
	if !strings.Contains(reply.Text, "Mumbai -> Pune") {
		t.Errorf("history reply = %q", reply.Text)
	}

	reply = f.say(t, user, "rebook 1")
	if !strings.Contains(reply.Text, "Rebooking Mumbai -> Pune") {
		t.Errorf("rebook reply = %q", reply.Text)
	}
	sess, _ := f.store.Load(context.Background(), user)
	if sess.Stage != models.StageAwaitingDate || sess.Source != "Mumbai" {
		t.Fatalf("rebook state: stage = %s, source = %s", sess.Stage, sess.Source)
	}

	// Out-of-range index falls back to showing the list.
	reply = f.say(t, user, "rebook 9")
	if !strings.Contains(reply.Text, "Your recent bookings") {
		t.Errorf("out-of-range rebook reply = %q", reply.Text)
	}
}

func TestHandleMessageConcurrentUsersIsolated(t *testing.T) {
	f := newServiceFixture()
	users := []string{"whatsapp:+911111111111", "whatsapp:+912222222222", "whatsapp:+913333333333"}

	var wg sync.WaitGroup
	for _, user := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			for _, text := range []string{"hi", "bus", "mumbai"} {
				_, err := f.svc.HandleMessage(context.Background(), models.InboundMessage{
					UserID: u, Text: text, ReceivedAt: testNow,
				})
				if err != nil {
					t.Errorf("user %s message %q: %v", u, text, err)
					return
				}
			}
		}(user)
	}
	wg.Wait()

	for _, user := range users {
		sess, _ := f.store.Load(context.Background(), user)
		if sess.Stage != models.StageAwaitingDestination || sess.Source != "Mumbai" {
			t.Errorf("user %s: stage = %s, source = %s", user, sess.Stage, sess.Source)
		}
	}
}
