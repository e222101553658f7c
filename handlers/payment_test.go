package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tripbot/models"
	"tripbot/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakePaymentService struct {
	fakeBookingService
	events []models.PaymentEvent
	err    error
}

func (s *fakePaymentService) HandlePaymentEvent(ctx context.Context, evt models.PaymentEvent) error {
	s.events = append(s.events, evt)
	return s.err
}

func newPaymentRouter(svc *fakePaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPaymentHandler(svc, "", zap.NewNop())
	r := gin.New()
	r.POST("/webhook/payment", h.WebhookHandler)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPaymentWebhookSucceededEvent(t *testing.T) {
	svc := &fakePaymentService{}
	r := newPaymentRouter(svc)

	w := postJSON(r, "/webhook/payment",
		`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(svc.events) != 1 {
		t.Fatalf("events = %d", len(svc.events))
	}
	evt := svc.events[0]
	if evt.PaymentID != "pi_123" || evt.Status != models.PaymentCompleted {
		t.Errorf("event = %+v", evt)
	}
}

func TestPaymentWebhookFailedAndCanceledEvents(t *testing.T) {
	cases := []struct {
		eventType string
		want      models.PaymentStatus
	}{
		{"payment_intent.payment_failed", models.PaymentFailed},
		{"payment_intent.canceled", models.PaymentExpired},
	}
	for _, tc := range cases {
		svc := &fakePaymentService{}
		r := newPaymentRouter(svc)
		w := postJSON(r, "/webhook/payment",
			`{"type":"`+tc.eventType+`","data":{"object":{"id":"pi_456"}}}`)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tc.eventType, w.Code)
		}
		if len(svc.events) != 1 || svc.events[0].Status != tc.want {
			t.Errorf("%s: events = %+v", tc.eventType, svc.events)
		}
	}
}

func TestPaymentWebhookIgnoresOtherEventTypes(t *testing.T) {
	svc := &fakePaymentService{}
	r := newPaymentRouter(svc)

	w := postJSON(r, "/webhook/payment",
		`{"type":"charge.refunded","data":{"object":{"id":"ch_789"}}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(svc.events) != 0 {
		t.Errorf("unhandled event type forwarded: %+v", svc.events)
	}
}

func TestPaymentWebhookUnknownPaymentReturns404(t *testing.T) {
	svc := &fakePaymentService{err: payment.ErrUnknownPayment}
	r := newPaymentRouter(svc)

	w := postJSON(r, "/webhook/payment",
		`{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_ghost"}}}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 so the gateway retries", w.Code)
	}
}

func TestPaymentWebhookRejectsMalformedPayload(t *testing.T) {
	svc := &fakePaymentService{}
	r := newPaymentRouter(svc)

	w := postJSON(r, "/webhook/payment", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
