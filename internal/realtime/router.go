package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/apperr"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/metrics"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
	"github.com/fathima-sithara/linkedin-clone-backend/internal/presence"
)

// Router relays typing indicators and persists then delivers chat messages.
// Delivery targets whatever handle the registry holds at delivery time.
type Router struct {
	registry  *presence.Registry
	store     Store
	publisher Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewRouter builds a Router. publisher and m may be nil.
func NewRouter(registry *presence.Registry, store Store, publisher Publisher, m *metrics.Metrics, log *zap.Logger) *Router {
	return &Router{registry: registry, store: store, publisher: publisher, metrics: m, log: log}
}

// Typing forwards the indicator to the recipient when online. Nothing is
// stored and an offline recipient means the event is dropped.
func (r *Router) Typing(senderID string, in TypingIn) {
	to := string(in.To)
	if to == "" || to == senderID {
		return
	}
	h, ok := r.registry.Lookup(to)
	if !ok {
		return
	}
	frame, err := encode(EventTyping, TypingOut{From: senderID, Typing: in.Typing})
	if err != nil {
		r.log.Error("encode typing", zap.Error(err))
		return
	}
	_ = h.Send(frame)
}

// SendMessage persists a message from senderID and delivers it as
// receiveMessage to the receiver and messageSentAck to the sender. Invalid
// input returns apperr.ErrValidation and touches nothing; storage failures
// return apperr.ErrPersistence and deliver nothing.
func (r *Router) SendMessage(ctx context.Context, senderID string, in SendMessageIn) (*models.MessageView, error) {
	receiverID := string(in.ReceiverID)
	if claimed := string(in.SenderID); claimed != "" && claimed != senderID {
		r.log.Warn("ignoring senderId from payload",
			zap.String("user_id", senderID),
			zap.String("claimed_sender_id", claimed),
		)
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", apperr.ErrValidation)
	}
	if receiverID == "" {
		return nil, fmt.Errorf("%w: receiverId is required", apperr.ErrValidation)
	}
	if receiverID == senderID {
		return nil, fmt.Errorf("%w: cannot send a message to yourself", apperr.ErrValidation)
	}

	conv, err := r.store.FindOrCreateConversation(ctx, senderID, receiverID)
	if err != nil {
		return nil, r.failed("find or create conversation", senderID, err)
	}
	msg, err := r.store.CreateMessage(ctx, conv.ID, senderID, in.Text)
	if err != nil {
		return nil, r.failed("create message", senderID, err)
	}

	view, err := r.store.EnrichSender(ctx, msg)
	if err != nil {
		r.log.Warn("sender profile lookup failed", zap.String("user_id", senderID), zap.Error(err))
		view = models.NewMessageView(msg, models.UserSummary{ID: msg.Sender})
	}

	r.deliver(receiverID, EventReceiveMessage, view)
	r.deliver(senderID, EventMessageSentAck, view)
	r.metrics.MessageSent()

	if r.publisher != nil {
		if err := r.publisher.PublishMessageSent(ctx, view); err != nil {
			r.log.Warn("publish message.sent failed", zap.String("message_id", view.ID.Hex()), zap.Error(err))
		}
	}
	return view, nil
}

func (r *Router) deliver(userID, eventType string, payload any) {
	h, ok := r.registry.Lookup(userID)
	if !ok {
		return
	}
	frame, err := encode(eventType, payload)
	if err != nil {
		r.log.Error("encode event", zap.String("type", eventType), zap.Error(err))
		return
	}
	_ = h.Send(frame)
}

func (r *Router) failed(op, senderID string, err error) error {
	if errors.Is(err, apperr.ErrValidation) {
		return err
	}
	r.metrics.PersistenceFailed()
	r.log.Error("message persistence failed",
		zap.String("op", op),
		zap.String("user_id", senderID),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %v", apperr.ErrPersistence, op, err)
}
