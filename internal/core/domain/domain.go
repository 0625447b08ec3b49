package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role determines routing eligibility and presence visibility.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDesigner Role = "designer"
	RoleClient   Role = "client"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDesigner, RoleClient:
		return true
	}
	return false
}

// User is the durable identity record owned by the user directory.
// The chat core treats it as immutable.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// MessageKind discriminates the message payload shape.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindFile  MessageKind = "file"
	KindAudio MessageKind = "audio"
)

func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindFile, KindAudio:
		return true
	}
	return false
}

// Message is a chat entry before persistence. It is created through one of
// the kind constructors so that exactly the fields belonging to its kind are
// populated: text messages carry Body, file and audio messages carry FileURL.
type Message struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	ReceiverID *uuid.UUID
	Role       Role
	Body       string
	FileURL    string
	Kind       MessageKind
	Timestamp  time.Time
}

// NewTextMessage builds a text message from the sender identity.
// Role is denormalized from the sender at creation time.
func NewTextMessage(sender *User, receiverID *uuid.UUID, body string) (*Message, error) {
	if body == "" {
		return nil, ErrEmptyMessage
	}
	return &Message{
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Role:       sender.Role,
		Body:       body,
		Kind:       KindText,
	}, nil
}

// NewFileMessage builds a message referencing an uploaded file by URL.
func NewFileMessage(sender *User, receiverID *uuid.UUID, fileURL string) (*Message, error) {
	return newAttachment(sender, receiverID, fileURL, KindFile)
}

// NewAudioMessage builds a message referencing an uploaded voice recording.
func NewAudioMessage(sender *User, receiverID *uuid.UUID, fileURL string) (*Message, error) {
	return newAttachment(sender, receiverID, fileURL, KindAudio)
}

func newAttachment(sender *User, receiverID *uuid.UUID, fileURL string, kind MessageKind) (*Message, error) {
	if fileURL == "" {
		return nil, ErrEmptyMessage
	}
	return &Message{
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Role:       sender.Role,
		FileURL:    fileURL,
		Kind:       kind,
	}, nil
}

// Validate rejects messages whose payload does not match their kind.
func (m *Message) Validate() error {
	if !m.Kind.Valid() {
		return ErrInvalidMessageKind
	}
	if !m.Role.Valid() {
		return ErrInvalidRole
	}
	switch m.Kind {
	case KindText:
		if m.Body == "" || m.FileURL != "" {
			return ErrInvalidMessageKind
		}
	case KindFile, KindAudio:
		if m.FileURL == "" {
			return ErrInvalidMessageKind
		}
	}
	return nil
}

// Sender is the display projection of the message author.
type Sender struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

// StoredMessage is the canonical persisted form, with the sender display
// fields resolved. Immutable once returned by the store.
type StoredMessage struct {
	ID         uuid.UUID   `json:"id"`
	Sender     Sender      `json:"sender"`
	ReceiverID *uuid.UUID  `json:"receiverId,omitempty"`
	Role       Role        `json:"role"`
	Body       string      `json:"body,omitempty"`
	FileURL    string      `json:"fileUrl,omitempty"`
	Kind       MessageKind `json:"kind"`
	Timestamp  time.Time   `json:"timestamp"`
}

// PresenceEntry is the derived online-status view of one user. It is
// recomputed from the connection registry on demand, never stored.
type PresenceEntry struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Role   Role      `json:"role"`
	Online bool      `json:"online"`
}
