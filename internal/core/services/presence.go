package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/contracts"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
	"github.com/tanushree1025/DESIGN-THEETA/internal/platform/metrics"
)

// PresenceService recomputes the online-status view after every registry
// mutation and publishes it, filtered per viewer: admins see every entry,
// non-admins only the entries of their assigned correspondents. The
// assignment relation is an external read-only collaborator.
type PresenceService struct {
	registry    contracts.Registry
	assignments domain.AssignmentRepository
	log         *slog.Logger
}

func NewPresenceService(log *slog.Logger, registry contracts.Registry, assignments domain.AssignmentRepository) *PresenceService {
	return &PresenceService{
		log:         log,
		registry:    registry,
		assignments: assignments,
	}
}

// Broadcast publishes the filtered presence view to every live connection.
// It runs synchronously with the registry mutation that triggered it, so no
// viewer observes presence staler than the broadcast itself.
func (p *PresenceService) Broadcast(ctx context.Context) {
	snapshot := p.registry.Snapshot()
	metrics.PresenceBroadcastsTotal.Inc()
	// correspondent sets are shared across a user's connections
	filtered := make(map[uuid.UUID][]domain.PresenceEntry)
	for _, c := range p.registry.Connections() {
		view, ok := filtered[c.UserID()]
		if !ok {
			view = p.viewFor(ctx, c.UserID(), c.Role(), snapshot)
			filtered[c.UserID()] = view
		}
		data, err := domain.EncodeFrame(domain.EventOnlineUsers, view)
		if err != nil {
			p.log.ErrorContext(ctx, "presence - encode failed", "err", err)
			return
		}
		_ = c.Send(ctx, data)
	}
}

func (p *PresenceService) viewFor(ctx context.Context, userID uuid.UUID, role domain.Role, snapshot []domain.PresenceEntry) []domain.PresenceEntry {
	if role == domain.RoleAdmin {
		return snapshot
	}
	ids, err := p.assignments.CorrespondentIDs(ctx, userID)
	if err != nil {
		p.log.ErrorContext(ctx, "presence - correspondent lookup failed", "user_id", userID, "err", err)
		return []domain.PresenceEntry{}
	}
	allowed := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	view := make([]domain.PresenceEntry, 0, len(ids))
	for _, entry := range snapshot {
		if _, ok := allowed[entry.UserID]; ok {
			view = append(view, entry)
		}
	}
	return view
}
