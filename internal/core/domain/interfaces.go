package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserDirectory is the external user store the core reads identities from.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// AssignmentRepository is the read-only correspondent relation used for
// non-admin presence filtering: which users a client/designer is paired with.
type AssignmentRepository interface {
	CorrespondentIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Assign(ctx context.Context, clientID, designerID uuid.UUID) error
}

// MessageRepository owns the durable, append-only message log.
type MessageRepository interface {
	// Append assigns id and timestamp if absent, persists the message, and
	// returns the canonical stored form with sender display fields resolved.
	Append(ctx context.Context, msg *Message) (*StoredMessage, error)
	// Recent returns up to limit messages in ascending timestamp order.
	Recent(ctx context.Context, limit int) ([]StoredMessage, error)
}
