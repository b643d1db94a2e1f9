package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MediaImage = "image"
	MediaVideo = "video"
)

type Media struct {
	Type string `bson:"type" json:"type"`
	URL  string `bson:"url" json:"url"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Author    primitive.ObjectID   `bson:"author" json:"author"`
	Text      string               `bson:"text" json:"text"`
	Media     []Media              `bson:"media" json:"media"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []Comment            `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// PostView is a post with its author expanded.
type PostView struct {
	ID        primitive.ObjectID   `json:"_id"`
	Author    UserSummary          `json:"author"`
	Text      string               `json:"text"`
	Media     []Media              `json:"media"`
	Likes     []primitive.ObjectID `json:"likes"`
	Comments  []Comment            `json:"comments"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func NewPostView(p *Post, author UserSummary) *PostView {
	return &PostView{
		ID:        p.ID,
		Author:    author,
		Text:      p.Text,
		Media:     p.Media,
		Likes:     p.Likes,
		Comments:  p.Comments,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
