// Package service holds the application logic behind the HTTP handlers and
// the realtime router. Storage is reached through the small interfaces
// below, which the mongo repositories satisfy.
package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/presence"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ConversationStore interface {
	FindOrCreate(ctx context.Context, a, b primitive.ObjectID) (*models.Conversation, error)
	FindByParticipants(ctx context.Context, a, b primitive.ObjectID) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error)
	Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]models.Message, error)
}

type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	List(ctx context.Context, page, limit int64) ([]models.Post, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	UpdateText(ctx context.Context, id primitive.ObjectID, text string) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (int, error)
	AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) ([]models.Comment, error)
}

// MediaStore is implemented by media.Service.
type MediaStore interface {
	Save(ctx context.Context, folder, filename string, data []byte) (models.Media, error)
	SaveAvatar(ctx context.Context, filename string, data []byte) (string, error)
	Remove(ctx context.Context, urls ...string) error
}

// LastSeenReader is implemented by cache.PresenceStore.
type LastSeenReader interface {
	LastSeen(ctx context.Context, userID string) (time.Time, bool, error)
}

// OnlineLookup is implemented by presence.Registry.
type OnlineLookup interface {
	Lookup(userID string) (presence.Handle, bool)
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename string
	Data     []byte
}

func summaryOrID(m map[primitive.ObjectID]models.UserSummary, id primitive.ObjectID) models.UserSummary {
	if s, ok := m[id]; ok {
		return s
	}
	return models.UserSummary{ID: id}
}
