package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Event names on the websocket surface. Client and server exchange frames of
// the form {"event": <name>, "data": <payload>}.
const (
	EventPreviousMessages = "previousMessages"
	EventOnlineUsers      = "onlineUsers"
	EventChatMessage      = "chatMessage"
	EventTyping           = "typing"
	EventError            = "error"
)

// Frame is the envelope for every inbound and outbound event.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeFrame marshals an event payload into a wire-ready frame.
func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// ChatMessageRequest is the client→server chat event. Kind may be omitted:
// a payload with a file URL defaults to a file message, otherwise text.
type ChatMessageRequest struct {
	Body       string      `json:"body,omitempty"`
	FileURL    string      `json:"fileUrl,omitempty"`
	Kind       MessageKind `json:"kind,omitempty"`
	ReceiverID *uuid.UUID  `json:"receiverId,omitempty"`
}

// TypingRequest is the client→server typing signal. Never persisted.
type TypingRequest struct {
	ReceiverID *uuid.UUID `json:"receiverId,omitempty"`
}

// TypingEvent is the server→client typing signal.
type TypingEvent struct {
	SenderName string `json:"senderName"`
}

// ErrorEvent reports a failure of the receiving client's own action.
type ErrorEvent struct {
	Reason string `json:"reason"`
}
