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

type ConversationRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewConversationRepository(db *mongo.Database, timeout time.Duration) *ConversationRepository {
	return &ConversationRepository{col: db.Collection(conversationsCollection), timeout: timeout}
}

// PairKey is the order independent key of a two-user conversation.
func PairKey(a, b primitive.ObjectID) string {
	lo, hi := sortPair(a, b)
	return lo.Hex() + ":" + hi.Hex()
}

func sortPair(a, b primitive.ObjectID) (primitive.ObjectID, primitive.ObjectID) {
	if a.Hex() > b.Hex() {
		return b, a
	}
	return a, b
}

// FindOrCreate returns the conversation between a and b, inserting it when
// absent. The upsert targets the unique pairKey index; when two callers race
// on the insert the loser gets a duplicate key error and reads the winner's
// document on its retry.
func (r *ConversationRepository) FindOrCreate(ctx context.Context, a, b primitive.ObjectID) (*models.Conversation, error) {
	conv, err := r.upsert(ctx, a, b)
	if mongo.IsDuplicateKeyError(err) {
		conv, err = r.upsert(ctx, a, b)
	}
	return conv, err
}

func (r *ConversationRepository) upsert(ctx context.Context, a, b primitive.ObjectID) (*models.Conversation, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	lo, hi := sortPair(a, b)
	key := PairKey(a, b)
	now := time.Now().UTC()
	update := bson.M{"$setOnInsert": bson.M{
		"participants": []primitive.ObjectID{lo, hi},
		"pairKey":      key,
		"createdAt":    now,
		"updatedAt":    now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var conv models.Conversation
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"pairKey": key}, update, opts).Decode(&conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepository) FindByParticipants(ctx context.Context, a, b primitive.ObjectID) (*models.Conversation, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	var conv models.Conversation
	if err := r.col.FindOne(ctx, bson.M{"pairKey": PairKey(a, b)}).Decode(&conv); err != nil {
		return nil, notFound(err, "Conversation not found")
	}
	return &conv, nil
}

// ListForUser returns the user's conversations, most recently active first.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Conversation](ctx, cur)
}

func (r *ConversationRepository) Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"updatedAt": at}})
	return err
}
