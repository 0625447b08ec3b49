package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512 * 1024
)

// WebSocket wraps a gorilla connection with a cancellable lifetime.
type WebSocket struct {
	*websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

func NewWebSocket(parent context.Context, conn *websocket.Conn) *WebSocket {
	ctx, cancel := context.WithCancel(parent)
	return &WebSocket{Conn: conn, ctx: ctx, cancel: cancel}
}

func (w *WebSocket) WriteMessage(data []byte) error {
	w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.Conn.WriteMessage(websocket.TextMessage, data)
}

// WriteClose sends a close frame carrying a reason, used to reject a
// handshake after the transport upgrade.
func (w *WebSocket) WriteClose(code int, reason string) {
	w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = w.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}

// ReadLoop pumps inbound frames into onMsg until the connection closes.
func (w *WebSocket) ReadLoop(onMsg func([]byte)) {
	defer w.Close()
	w.Conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := w.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Debug("ws - unexpected close", "err", err)
			}
			break
		}
		if len(data) > 0 {
			onMsg(data)
		}
	}
}

func (w *WebSocket) Close() {
	w.cancel()
	_ = w.Conn.Close()
}
