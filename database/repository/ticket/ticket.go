package ticket

import (
	"context"

	"tripbot/models"
)

// Repository persists issued tickets for later history lookups and
// re-delivery. Tickets are append-only.
type Repository interface {
	Insert(ctx context.Context, t *models.Ticket) error
	GetByID(ctx context.Context, ticketID string) (*models.Ticket, error)
	HistoryByUser(ctx context.Context, userID string, limit int) ([]models.Ticket, error)
}
