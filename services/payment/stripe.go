// File: tripbot/services/payment/stripe.go
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tripbot/models"

	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

const intentPrefix = "pay:intent:"

// StripeCoordinator backs payments with Stripe PaymentIntents and keeps the
// intent record (including the session back-reference) in Redis. Intents
// outlive the chat session TTL so late webhooks still correlate.
type StripeCoordinator struct {
	client    *redis.Client
	linkBase  string
	currency  string
	recordTTL time.Duration
	logger    *zap.Logger
}

func NewStripeCoordinator(client *redis.Client, linkBase string, logger *zap.Logger) *StripeCoordinator {
	return &StripeCoordinator{
		client:    client,
		linkBase:  linkBase,
		currency:  "inr",
		recordTTL: 7 * 24 * time.Hour,
		logger:    logger,
	}
}

func (c *StripeCoordinator) CreateIntent(ctx context.Context, sess *models.Session, amount float64) (*models.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String(c.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("userId", sess.UserID)
	params.AddMetadata("offerId", sess.SelectedOfferID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe intent: %w", err)
	}

	intent := &models.PaymentIntent{
		PaymentID:     pi.ID,
		SessionUserID: sess.UserID,
		Amount:        amount,
		Currency:      c.currency,
		Status:        models.PaymentCreated,
		CheckoutURL:   c.linkBase + "/" + pi.ID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := c.save(ctx, intent); err != nil {
		return nil, err
	}

	c.logger.Info("payment intent created",
		zap.String("paymentId", intent.PaymentID),
		zap.String("userId", sess.UserID),
		zap.Float64("amount", amount))
	return intent, nil
}

func (c *StripeCoordinator) Resolve(ctx context.Context, paymentID string) (string, error) {
	intent, err := c.load(ctx, paymentID)
	if err != nil {
		return "", err
	}
	return intent.SessionUserID, nil
}

func (c *StripeCoordinator) MarkTerminal(ctx context.Context, paymentID string, status models.PaymentStatus) (bool, error) {
	intent, err := c.load(ctx, paymentID)
	if err != nil {
		return false, err
	}
	if intent.Status.Terminal() {
		return false, nil
	}
	intent.Status = status
	intent.UpdatedAt = time.Now()
	if err := c.save(ctx, intent); err != nil {
		return false, err
	}
	return true, nil
}

func (c *StripeCoordinator) load(ctx context.Context, paymentID string) (*models.PaymentIntent, error) {
	data, err := c.client.Get(ctx, intentPrefix+paymentID).Result()
	if err == redis.Nil {
		return nil, ErrUnknownPayment
	}
	if err != nil {
		return nil, err
	}
	var intent models.PaymentIntent
	if err := json.Unmarshal([]byte(data), &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *StripeCoordinator) save(ctx context.Context, intent *models.PaymentIntent) error {
	b, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, intentPrefix+intent.PaymentID, b, c.recordTTL).Err()
}
