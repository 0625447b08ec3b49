package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	appws "github.com/tanushree1025/DESIGN-THEETA/internal/app/server/ws"
	"github.com/tanushree1025/DESIGN-THEETA/internal/config"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/contracts"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/services"
	"github.com/tanushree1025/DESIGN-THEETA/pkg/middleware"
)

// SessionFactory builds one session state machine per connection attempt.
type SessionFactory func() *services.Session

type WSHandler struct {
	sessions   SessionFactory
	sendBuffer int
}

func NewWSHandler(sessions SessionFactory, cfg *config.Config) *WSHandler {
	return &WSHandler{
		sessions:   sessions,
		sendBuffer: cfg.Chat.SendBuffer,
	}
}

// Handler upgrades the transport and drives the session through its states.
// The credential is verified after the upgrade so a rejection can carry an
// auth-error close frame instead of a bare handshake failure.
func (h *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log := middleware.LoggerFromContext(r.Context())
	span := trace.SpanFromContext(r.Context())
	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)
	defer cancel()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // tighten later
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade failed", "err", err)
		return
	}
	transport := appws.NewWebSocket(ctx, conn)
	defer transport.Close()

	sess := h.sessions()
	user, err := sess.Authenticate(ctx, bearerCredential(r))
	if err != nil {
		log.InfoContext(ctx, "ws handler - handshake rejected", "err", err)
		transport.WriteClose(websocket.ClosePolicyViolation, authReason(err))
		return
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	client := appws.NewClient(ctx, transport, user, h.sendBuffer)
	conn.SetCloseHandler(func(code int, text string) error {
		cancel()
		return nil
	})
	if err := sess.Start(ctx, client); err != nil {
		log.ErrorContext(ctx, "ws handler - start failed", "user_id", user.ID, "err", err)
		return
	}
	defer sess.Close(sessionCtx)

	transport.ReadLoop(func(data []byte) {
		sess.HandleFrame(ctx, data)
	})
}

// bearerCredential extracts the handshake credential from the Authorization
// header or, for browser clients that cannot set headers on websocket
// upgrades, the token query parameter.
func bearerCredential(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func authReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenMissing):
		return "authentication error: token required"
	case errors.Is(err, domain.ErrUnknownUser):
		return "authentication error: user not found"
	default:
		return "authentication error"
	}
}

var _ contracts.Client = (*appws.Client)(nil)
