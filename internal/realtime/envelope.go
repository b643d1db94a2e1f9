package realtime

import (
	"encoding/json"
)

const (
	EventOnlineUsers      = "onlineUsers"
	EventUserOnline       = "userOnline"
	EventUserOffline      = "userOffline"
	EventTyping           = "typing"
	EventSendMessage      = "sendMessage"
	EventReceiveMessage   = "receiveMessage"
	EventMessageSentAck   = "messageSentAck"
	EventManualDisconnect = "manualDisconnect"
	EventError            = "error"
)

const (
	CodeValidation  = "validation_error"
	CodeRateLimited = "rate_limited"
)

// Envelope is the wire format for every frame in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ID accepts a JSON string or number; clients send user ids either way.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

type TypingIn struct {
	To     ID   `json:"to"`
	Typing bool `json:"typing"`
}

type TypingOut struct {
	From   string `json:"from"`
	Typing bool   `json:"typing"`
}

// SendMessageIn is the client payload. SenderID is accepted for
// compatibility and never trusted.
type SendMessageIn struct {
	SenderID   ID     `json:"senderId,omitempty"`
	ReceiverID ID     `json:"receiverId"`
	Text       string `json:"text"`
}

type PresenceChange struct {
	UserID string `json:"userId"`
}

type ErrorOut struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func encode(eventType string, payload any) ([]byte, error) {
	env := Envelope{Type: eventType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
