package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/apperr"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
)

type UserRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewUserRepository(db *mongo.Database, timeout time.Duration) *UserRepository {
	return &UserRepository{col: db.Collection(usersCollection), timeout: timeout}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: Email already in use", apperr.ErrConflict)
		}
		return err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err, "User not found")
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err, "User not found")
	}
	return &u, nil
}

// Summaries loads the public profile of each id. Ids without a user are
// absent from the result.
func (r *UserRepository) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	proj := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "avatar": 1, "headline": 1})
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, proj)
	if err != nil {
		return nil, err
	}
	list, err := decodeAll[models.UserSummary](ctx, cur)
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		out[s.ID] = s
	}
	return out, nil
}

// Update writes the mutable profile fields.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	u.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":      u.Name,
		"headline":  u.Headline,
		"bio":       u.Bio,
		"avatar":    u.Avatar,
		"updatedAt": u.UpdatedAt,
	}
	res, err := r.col.UpdateByID(ctx, u.ID, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: User not found", apperr.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: User not found", apperr.ErrNotFound)
	}
	return nil
}
