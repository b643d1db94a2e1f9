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

type PostRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewPostRepository(db *mongo.Database, timeout time.Duration) *PostRepository {
	return &PostRepository{col: db.Collection(postsCollection), timeout: timeout}
}

func (r *PostRepository) Create(ctx context.Context, p *models.Post) error {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Media == nil {
		p.Media = []models.Media{}
	}
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// List returns one page of posts, newest first. page starts at 1.
func (r *PostRepository) List(ctx context.Context, page, limit int64) ([]models.Post, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Post](ctx, cur)
}

func (r *PostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err, "Post not found")
	}
	return &p, nil
}

func (r *PostRepository) UpdateText(ctx context.Context, id primitive.ObjectID, text string) (*models.Post, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"text": text, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Post
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		return nil, notFound(err, "Post not found")
	}
	return &p, nil
}

func (r *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: Post not found", apperr.ErrNotFound)
	}
	return nil
}

// ToggleLike removes userID from the post's likes when present and adds it
// otherwise. It returns the resulting like count.
func (r *PostRepository) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (int, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var p models.Post
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
		opts,
	).Decode(&p)
	if err == mongo.ErrNoDocuments {
		err = r.col.FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$addToSet": bson.M{"likes": userID}},
			opts,
		).Decode(&p)
	}
	if err != nil {
		return 0, notFound(err, "Post not found")
	}
	return len(p.Likes), nil
}

// AddComment appends a comment and returns the post's comments.
func (r *PostRepository) AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) ([]models.Comment, error) {
	ctx, cancel := opCtx(ctx, r.timeout)
	defer cancel()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"comments": 1})

	var p models.Post
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"comments": c}}, opts).Decode(&p)
	if err != nil {
		return nil, notFound(err, "Post not found")
	}
	return p.Comments, nil
}
