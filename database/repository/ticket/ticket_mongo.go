package ticket

import (
	"context"

	"tripbot/database"
	"tripbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTicketRepo struct {
	coll *mongo.Collection
}

// NewMongoTicketRepo returns a Repository backed by MongoDB.
func NewMongoTicketRepo() Repository {
	db := database.MongoClient.Database("tripbot")
	return &mongoTicketRepo{
		coll: db.Collection("tickets"),
	}
}

// Insert stores an issued ticket. Tickets are immutable once written.
func (r *mongoTicketRepo) Insert(ctx context.Context, t *models.Ticket) error {
	_, err := r.coll.InsertOne(ctx, t)
	return err
}

// GetByID returns a ticket by its id, or nil when no such ticket exists.
func (r *mongoTicketRepo) GetByID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	var t models.Ticket
	err := r.coll.FindOne(ctx, bson.M{"ticketId": ticketID}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// HistoryByUser returns the user's most recent tickets, newest first.
func (r *mongoTicketRepo) HistoryByUser(ctx context.Context, userID string, limit int) ([]models.Ticket, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "issuedAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
