// Package registry owns the process-wide table of live websocket connections.
package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/contracts"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
	"github.com/tanushree1025/DESIGN-THEETA/internal/platform/metrics"
)

type userEntry struct {
	name  string
	role  domain.Role
	conns map[string]contracts.Client
}

// Registry maps users to their live connections. All mutations hold the write
// lock so that readers never observe a half-registered connection. Admin
// connections are cached in their own index to keep fan-out lookups O(result).
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]contracts.Client     // connID → client
	users  map[uuid.UUID]*userEntry        // userID → connections + display fields
	admins map[string]contracts.Client     // connID → admin client
	order  []uuid.UUID                     // users in registration insertion order
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]contracts.Client),
		users:  make(map[uuid.UUID]*userEntry),
		admins: make(map[string]contracts.Client),
	}
}

// Register adds the connection under its user. Registering an already-known
// connection ID is a no-op.
func (r *Registry) Register(c contracts.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	connID := c.ID()
	if _, exists := r.conns[connID]; exists {
		return
	}
	r.conns[connID] = c
	userID := c.UserID()
	entry := r.users[userID]
	if entry == nil {
		entry = &userEntry{
			name:  c.Name(),
			role:  c.Role(),
			conns: make(map[string]contracts.Client),
		}
		r.users[userID] = entry
		r.order = append(r.order, userID)
	}
	entry.conns[connID] = c
	if c.Role() == domain.RoleAdmin {
		r.admins[connID] = c
	}
	metrics.ConnectionsActive.Set(float64(len(r.conns)))
}

// Deregister removes the connection. Unknown IDs are ignored.
func (r *Registry) Deregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[connID]
	if !ok {
		return
	}
	delete(r.conns, connID)
	delete(r.admins, connID)
	userID := c.UserID()
	if entry := r.users[userID]; entry != nil {
		delete(entry.conns, connID)
		if len(entry.conns) == 0 {
			delete(r.users, userID)
			for i, id := range r.order {
				if id == userID {
					r.order = append(r.order[:i], r.order[i+1:]...)
					break
				}
			}
		}
	}
	metrics.ConnectionsActive.Set(float64(len(r.conns)))
}

func (r *Registry) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry := r.users[userID]
	return entry != nil && len(entry.conns) > 0
}

// Snapshot returns one presence entry per online user, in registration
// insertion order. Online is OR'd across the user's connections, so every
// entry returned here is online at the instant of computation.
func (r *Registry) Snapshot() []domain.PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PresenceEntry, 0, len(r.order))
	for _, userID := range r.order {
		entry := r.users[userID]
		if entry == nil {
			continue
		}
		out = append(out, domain.PresenceEntry{
			UserID: userID,
			Name:   entry.name,
			Role:   entry.role,
			Online: true,
		})
	}
	return out
}

func (r *Registry) ConnectionsFor(userID uuid.UUID) []contracts.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry := r.users[userID]
	if entry == nil {
		return nil
	}
	out := make([]contracts.Client, 0, len(entry.conns))
	for _, c := range entry.conns {
		out = append(out, c)
	}
	return out
}

func (r *Registry) AdminConnections() []contracts.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]contracts.Client, 0, len(r.admins))
	for _, c := range r.admins {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Connections() []contracts.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]contracts.Client, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}
