package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/apperr"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/repository"
)

// ChatService is the conversation store behind the realtime router and the
// message history endpoints.
type ChatService struct {
	conversations ConversationStore
	messages      MessageStore
	users         UserStore
	log           *zap.Logger
}

func NewChatService(conversations ConversationStore, messages MessageStore, users UserStore, log *zap.Logger) *ChatService {
	return &ChatService{conversations: conversations, messages: messages, users: users, log: log}
}

func (s *ChatService) FindOrCreateConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	a, err := repository.ParseID(userA)
	if err != nil {
		return nil, err
	}
	b, err := repository.ParseID(userB)
	if err != nil {
		return nil, err
	}
	return s.conversations.FindOrCreate(ctx, a, b)
}

// FindConversationByParticipants returns nil without error when the pair
// has never exchanged a message.
func (s *ChatService) FindConversationByParticipants(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	a, err := repository.ParseID(userA)
	if err != nil {
		return nil, err
	}
	b, err := repository.ParseID(userB)
	if err != nil {
		return nil, err
	}
	conv, err := s.conversations.FindByParticipants(ctx, a, b)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return conv, err
}

func (s *ChatService) CreateMessage(ctx context.Context, conversationID primitive.ObjectID, senderID, text string) (*models.Message, error) {
	sender, err := repository.ParseID(senderID)
	if err != nil {
		return nil, err
	}
	m := &models.Message{ConversationID: conversationID, Sender: sender, Text: text}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	if err := s.conversations.Touch(ctx, conversationID, m.CreatedAt); err != nil {
		s.log.Warn("conversation timestamp not updated", zap.String("conversation_id", conversationID.Hex()), zap.Error(err))
	}
	return m, nil
}

// EnrichSender expands the sender to name and id. A deleted sender yields
// a summary carrying only the id.
func (s *ChatService) EnrichSender(ctx context.Context, m *models.Message) (*models.MessageView, error) {
	found, err := s.users.Summaries(ctx, []primitive.ObjectID{m.Sender})
	if err != nil {
		return nil, err
	}
	u := summaryOrID(found, m.Sender)
	return models.NewMessageView(m, models.UserSummary{ID: u.ID, Name: u.Name}), nil
}

// ListConversations returns the user's conversations with participants
// expanded to name, avatar and email.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]models.ConversationView, error) {
	id, err := repository.ParseID(userID)
	if err != nil {
		return nil, err
	}
	convs, err := s.conversations.ListForUser(ctx, id)
	if err != nil {
		return nil, err
	}

	var ids []primitive.ObjectID
	for _, c := range convs {
		ids = append(ids, c.Participants...)
	}
	people, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.ConversationView, 0, len(convs))
	for _, c := range convs {
		v := models.ConversationView{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
		for _, p := range c.Participants {
			u := summaryOrID(people, p)
			v.Participants = append(v.Participants, models.UserSummary{ID: u.ID, Name: u.Name, Avatar: u.Avatar, Email: u.Email})
		}
		out = append(out, v)
	}
	return out, nil
}

// History returns every message between the two users, oldest first, or an
// empty slice when they have no conversation.
func (s *ChatService) History(ctx context.Context, userID, otherID string) ([]*models.MessageView, error) {
	conv, err := s.FindConversationByParticipants(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return []*models.MessageView{}, nil
	}
	msgs, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	people, err := s.users.Summaries(ctx, conv.Participants)
	if err != nil {
		return nil, err
	}
	out := make([]*models.MessageView, 0, len(msgs))
	for i := range msgs {
		u := summaryOrID(people, msgs[i].Sender)
		out = append(out, models.NewMessageView(&msgs[i], models.UserSummary{ID: u.ID, Name: u.Name}))
	}
	return out, nil
}
