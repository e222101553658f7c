// File: tripbot/services/ticket/delivery.go
package ticket

import (
	"context"
	"encoding/json"
	"fmt"

	ticketrepo "tripbot/database/repository/ticket"
	"tripbot/models"
	"tripbot/services/notification"
	"tripbot/services/storage"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeTicketDeliver is the asynq task type for ticket redelivery.
const TypeTicketDeliver = "ticket:deliver"

// Deliverer persists an issued ticket, hosts its artifact and sends the
// download link over chat. A failed delivery is enqueued for background
// retry; the payment is never rolled back.
type Deliverer struct {
	Repo   ticketrepo.Repository
	Store  storage.ArtifactStore
	Sender notification.Sender
	Queue  *asynq.Client
	Logger *zap.Logger
}

// Deliver runs one delivery attempt and, on failure, schedules redelivery.
func (d *Deliverer) Deliver(ctx context.Context, t *models.Ticket, artifact []byte) error {
	if err := d.DeliverOnce(ctx, t, artifact); err != nil {
		d.Logger.Error("ticket delivery failed, scheduling redelivery",
			zap.String("reference", t.Reference), zap.Error(err))
		if qErr := d.enqueueRedelivery(t); qErr != nil {
			d.Logger.Error("failed to enqueue ticket redelivery",
				zap.String("reference", t.Reference), zap.Error(qErr))
		}
		return err
	}
	return nil
}

// DeliverOnce is a single, idempotent attempt: persisting an already-stored
// ticket is skipped, so asynq retries never duplicate history entries.
func (d *Deliverer) DeliverOnce(ctx context.Context, t *models.Ticket, artifact []byte) error {
	if existing, err := d.Repo.GetByID(ctx, t.TicketID); err != nil || existing == nil {
		if err := d.Repo.Insert(ctx, t); err != nil {
			return fmt.Errorf("persist ticket %s: %w", t.Reference, err)
		}
	}

	if d.Store != nil && t.ArtifactURL == "" {
		url, err := d.Store.Upload(ctx, t.Reference, artifact)
		if err != nil {
			return fmt.Errorf("upload ticket %s: %w", t.Reference, err)
		}
		t.ArtifactURL = url
	}

	if err := d.Sender.Send(ctx, t.UserID, deliveryMessage(t)); err != nil {
		return fmt.Errorf("send ticket %s: %w", t.Reference, err)
	}
	return nil
}

// Redeliver is the background retry path. The PDF is rebuilt from the
// persisted ticket when the original upload never happened.
func (d *Deliverer) Redeliver(ctx context.Context, t *models.Ticket) error {
	var artifact []byte
	if t.ArtifactURL == "" {
		var err error
		artifact, err = buildTicketPDF(t)
		if err != nil {
			return fmt.Errorf("rebuild ticket %s: %w", t.Reference, err)
		}
	}
	return d.DeliverOnce(ctx, t, artifact)
}

func (d *Deliverer) enqueueRedelivery(t *models.Ticket) error {
	if d.Queue == nil {
		return fmt.Errorf("no redelivery queue configured")
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = d.Queue.Enqueue(asynq.NewTask(TypeTicketDeliver, payload), asynq.MaxRetry(10))
	return err
}

func deliveryMessage(t *models.Ticket) string {
	msg := fmt.Sprintf(
		"Payment confirmed.\nYour booking is successful!\nRef: %s\n%s -> %s\nDeparture: %s",
		t.Reference, t.Source, t.Destination, t.DepartureTime)
	if t.ArtifactURL != "" {
		msg += "\nDownload your ticket here: " + t.ArtifactURL
	}
	return msg
}
