package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/contracts"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
	"github.com/tanushree1025/DESIGN-THEETA/internal/platform/metrics"
)

// Router computes the delivery set for a message and pushes it to each live
// connection. Policy is targeted: the sender's own connections (echo-back),
// every admin connection, and the explicit receiver's connections when set.
// Nobody else receives the message. Delivery is at-most-once per connection;
// a connection that fails mid-send is dropped silently.
type Router struct {
	registry contracts.Registry
	log      *slog.Logger
}

func NewRouter(log *slog.Logger, registry contracts.Registry) *Router {
	return &Router{log: log, registry: registry}
}

// DeliverMessage fans a stored message out to its recipient set.
func (r *Router) DeliverMessage(ctx context.Context, msg *domain.StoredMessage) {
	data, err := domain.EncodeFrame(domain.EventChatMessage, msg)
	if err != nil {
		r.log.ErrorContext(ctx, "router - encode chat message failed", "message_id", msg.ID, "err", err)
		return
	}
	r.deliver(ctx, domain.EventChatMessage, msg.Sender.ID, msg.ReceiverID, data)
}

// DeliverTyping pushes a typing signal to the same recipient set a message
// from this sender would reach. Carries only the sender name; not persisted.
func (r *Router) DeliverTyping(ctx context.Context, sender *domain.User, receiverID *uuid.UUID) {
	data, err := domain.EncodeFrame(domain.EventTyping, domain.TypingEvent{SenderName: sender.Name})
	if err != nil {
		r.log.ErrorContext(ctx, "router - encode typing failed", "err", err)
		return
	}
	r.deliver(ctx, domain.EventTyping, sender.ID, receiverID, data)
}

func (r *Router) deliver(ctx context.Context, event string, senderID uuid.UUID, receiverID *uuid.UUID, data []byte) {
	for _, c := range r.recipients(senderID, receiverID) {
		if err := c.Send(ctx, data); err != nil {
			// connection is going away; its session cleans up
			r.log.DebugContext(ctx, "router - send dropped", "conn_id", c.ID(), "err", err)
			continue
		}
		metrics.FanoutDeliveredTotal.WithLabelValues(event).Inc()
	}
}

// recipients resolves {sender, receiver, admins} through the registry indexes
// and dedupes by connection ID so no connection is addressed twice.
func (r *Router) recipients(senderID uuid.UUID, receiverID *uuid.UUID) []contracts.Client {
	seen := make(map[string]struct{})
	var out []contracts.Client
	add := func(clients []contracts.Client) {
		for _, c := range clients {
			if _, dup := seen[c.ID()]; dup {
				continue
			}
			seen[c.ID()] = struct{}{}
			out = append(out, c)
		}
	}
	add(r.registry.ConnectionsFor(senderID))
	add(r.registry.AdminConnections())
	if receiverID != nil {
		add(r.registry.ConnectionsFor(*receiverID))
	}
	return out
}
