package contracts

import (
	"context"

	"github.com/google/uuid"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
)

// Registry is the process-wide table of live connections. It exclusively owns
// the connection state; registration and deregistration appear atomic to
// concurrent readers.
type Registry interface {
	// Register adds the connection under its user. Idempotent per connection ID.
	Register(c Client)
	// Deregister removes the connection. No-op if absent.
	Deregister(connID string)
	// IsOnline reports whether the user holds at least one live connection.
	IsOnline(userID uuid.UUID) bool
	// Snapshot returns presence entries in registration insertion order.
	Snapshot() []domain.PresenceEntry
	// ConnectionsFor returns the live connections of one user.
	ConnectionsFor(userID uuid.UUID) []Client
	// AdminConnections returns every live admin connection.
	AdminConnections() []Client
	// Connections returns every live connection.
	Connections() []Client
}

// Client is the minimal surface the registry and router need to address one
// authenticated websocket connection.
type Client interface {
	ID() string
	UserID() uuid.UUID
	Name() string
	Role() domain.Role
	Send(ctx context.Context, data []byte) error
	Close()
}
