package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
)

type MessageRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewMessageRepository(db *mongo.Database, timeout time.Duration) *MessageRepository {
	return &MessageRepository{col: db.Collection(messagesCollection), timeout: timeout}
}

// Create inserts m and fills in its id and timestamps.
func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ListByConversation returns every message in the conversation, oldest first.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]models.Message, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"conversationId": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Message](ctx, cur)
}
