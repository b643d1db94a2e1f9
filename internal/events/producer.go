package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/models"
)

const EventMessageSent = "message.sent"

// MessageSent is the record published for every routed chat message.
type MessageSent struct {
	Event      string              `json:"event"`
	OccurredAt time.Time           `json:"occurredAt"`
	Message    *models.MessageView `json:"message"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Producer{writer: w}
}

// PublishMessageSent keys the record by conversation so one conversation's
// messages stay on one partition in order.
func (p *Producer) PublishMessageSent(ctx context.Context, msg *models.MessageView) error {
	now := time.Now().UTC()
	b, err := json.Marshal(MessageSent{Event: EventMessageSent, OccurredAt: now, Message: msg})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.ConversationID.Hex()),
		Value: b,
		Time:  now,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
