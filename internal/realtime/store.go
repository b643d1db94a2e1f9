package realtime

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Store is the persistence the router depends on.
type Store interface {
	// FindOrCreateConversation returns the single conversation for the
	// unordered pair, creating it atomically when absent.
	FindOrCreateConversation(ctx context.Context, userA, userB string) (*models.Conversation, error)
	CreateMessage(ctx context.Context, conversationID primitive.ObjectID, senderID, text string) (*models.Message, error)
	EnrichSender(ctx context.Context, msg *models.Message) (*models.MessageView, error)
}

// Publisher receives routed messages for downstream consumers.
type Publisher interface {
	PublishMessageSent(ctx context.Context, msg *models.MessageView) error
}

// PresenceMirror records presence outside the process for last-seen
// lookups. It is never used for routing.
type PresenceMirror interface {
	MarkOnline(ctx context.Context, userID, connID string) error
	MarkOffline(ctx context.Context, userID string) error
}
