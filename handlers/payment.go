// File: tripbot/handlers/payment.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"tripbot/models"
	"tripbot/services/booking"
	"tripbot/services/payment"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// PaymentHandler serves the payment-gateway webhook. Events for unknown
// payments return 404 so the gateway retries them; duplicates are absorbed
// with 200.
type PaymentHandler struct {
	Svc           booking.Service
	WebhookSecret string
	Logger        *zap.Logger
}

func NewPaymentHandler(svc booking.Service, webhookSecret string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Svc: svc, WebhookSecret: webhookSecret, Logger: logger}
}

func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 65536))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payload"})
		return
	}

	event, err := h.parseEvent(c, payload)
	if err != nil {
		h.Logger.Warn("rejected payment webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	evt, ok := paymentEventFrom(event)
	if !ok {
		// Event types we don't act on are acknowledged so the gateway
		// stops resending them.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.Svc.HandlePaymentEvent(c.Request.Context(), evt); err != nil {
		if errors.Is(err, payment.ErrUnknownPayment) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown payment"})
			return
		}
		h.Logger.Error("payment event handling failed",
			zap.String("paymentId", evt.PaymentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process payment event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// parseEvent verifies the gateway signature when a secret is configured.
// Without a secret (local development) the payload is trusted as-is.
func (h *PaymentHandler) parseEvent(c *gin.Context, payload []byte) (stripe.Event, error) {
	if h.WebhookSecret != "" {
		return webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.WebhookSecret)
	}
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, err
	}
	return event, nil
}

func paymentEventFrom(event stripe.Event) (models.PaymentEvent, bool) {
	var status models.PaymentStatus
	switch event.Type {
	case "payment_intent.succeeded":
		status = models.PaymentCompleted
	case "payment_intent.payment_failed":
		status = models.PaymentFailed
	case "payment_intent.canceled":
		status = models.PaymentExpired
	default:
		return models.PaymentEvent{}, false
	}

	if event.Data == nil {
		return models.PaymentEvent{}, false
	}
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil || intent.ID == "" {
		return models.PaymentEvent{}, false
	}

	return models.PaymentEvent{
		PaymentID:  intent.ID,
		Status:     status,
		ReceivedAt: time.Now(),
	}, true
}
