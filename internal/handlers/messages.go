package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/auth"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
)

type ChatAPI interface {
	ListConversations(ctx context.Context, userID string) ([]models.ConversationView, error)
	History(ctx context.Context, userID, otherID string) ([]*models.MessageView, error)
}

type MessageHandler struct {
	svc ChatAPI
}

func NewMessageHandler(svc ChatAPI) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func (h *MessageHandler) Conversations(c *fiber.Ctx) error {
	convs, err := h.svc.ListConversations(c.UserContext(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(convs)
}

func (h *MessageHandler) History(c *fiber.Ctx) error {
	msgs, err := h.svc.History(c.UserContext(), auth.UserID(c), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(msgs)
}
