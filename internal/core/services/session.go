package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/contracts"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
)

// SessionState is the lifecycle position of one connection.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateAuthenticated
	StateActive
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Session binds one authenticated identity to one transport channel. It moves
// Connecting → Authenticated → Active → Closed; a failed handshake short-cuts
// straight to Closed without the connection ever touching the registry.
type Session struct {
	verifier *CredentialVerifier
	registry contracts.Registry
	presence *PresenceService
	messages *MessageService
	router   *Router
	log      *slog.Logger

	mu     sync.Mutex
	state  SessionState
	user   *domain.User
	client contracts.Client

	closeOnce sync.Once
}

func NewSession(
	log *slog.Logger,
	verifier *CredentialVerifier,
	registry contracts.Registry,
	presence *PresenceService,
	messages *MessageService,
	router *Router,
) *Session {
	return &Session{
		log:      log,
		verifier: verifier,
		registry: registry,
		presence: presence,
		messages: messages,
		router:   router,
		state:    StateConnecting,
	}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Authenticate runs the credential verifier. On success the session becomes
// Authenticated; on failure it is Closed and must not be started.
func (s *Session) Authenticate(ctx context.Context, credential string) (*domain.User, error) {
	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		return nil, errors.New("session already authenticated")
	}
	s.mu.Unlock()

	user, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Lock()
	s.user = user
	s.state = StateAuthenticated
	s.mu.Unlock()
	return user, nil
}

// Start registers the connection, publishes presence, and replays recent
// history to the new client. A replay failure is logged and skipped; it does
// not block the Authenticated → Active transition.
func (s *Session) Start(ctx context.Context, client contracts.Client) error {
	s.mu.Lock()
	if s.state != StateAuthenticated {
		state := s.state
		s.mu.Unlock()
		return errors.New("cannot start session in state " + state.String())
	}
	s.client = client
	user := s.user
	s.mu.Unlock()

	s.registry.Register(client)
	s.presence.Broadcast(ctx)

	if history, err := s.messages.History(ctx); err != nil {
		s.log.WarnContext(ctx, "session - history replay skipped", "user_id", user.ID, "err", err)
	} else if data, err := domain.EncodeFrame(domain.EventPreviousMessages, history); err == nil {
		_ = client.Send(ctx, data)
	}

	s.mu.Lock()
	s.state = StateActive
	s.mu.Unlock()
	s.log.InfoContext(ctx, "session - active", "user_id", user.ID, "name", user.Name, "role", user.Role, "conn_id", client.ID())
	return nil
}

// HandleFrame dispatches one inbound event. Failures of the client's own
// action are reported back on that connection only; the session stays Active.
func (s *Session) HandleFrame(ctx context.Context, raw []byte) {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	user := s.user
	client := s.client
	s.mu.Unlock()

	var frame domain.Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.sendError(ctx, client, "malformed frame")
		return
	}
	switch frame.Event {
	case domain.EventChatMessage:
		var req domain.ChatMessageRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			s.sendError(ctx, client, "malformed chat message")
			return
		}
		if _, err := s.messages.Send(ctx, user, req); err != nil {
			s.log.ErrorContext(ctx, "session - send failed", "user_id", user.ID, "err", err)
			s.sendError(ctx, client, "Failed to send message")
		}
	case domain.EventTyping:
		var req domain.TypingRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			return
		}
		s.router.DeliverTyping(ctx, user, req.ReceiverID)
	default:
		s.log.DebugContext(ctx, "session - unknown event", "event", frame.Event)
	}
}

// Close deregisters the connection and republishes presence, exactly once.
// Safe to call from both the transport close handler and the read loop exit.
func (s *Session) Close(ctx context.Context) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		client := s.client
		user := s.user
		s.state = StateClosed
		s.mu.Unlock()
		if client == nil {
			return
		}
		s.registry.Deregister(client.ID())
		s.presence.Broadcast(ctx)
		if user != nil {
			s.log.InfoContext(ctx, "session - closed", "user_id", user.ID, "conn_id", client.ID())
		}
	})
}

func (s *Session) sendError(ctx context.Context, client contracts.Client, reason string) {
	data, err := domain.EncodeFrame(domain.EventError, domain.ErrorEvent{Reason: reason})
	if err != nil {
		return
	}
	_ = client.Send(ctx, data)
}
