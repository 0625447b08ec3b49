package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
)

// Client binds an authenticated identity to one WebSocket and serializes all
// outbound writes through a buffered channel drained by a single goroutine.
type Client struct {
	ctx    context.Context
	cancel context.CancelFunc
	ws     *WebSocket
	connID string
	user   domain.User
	out    chan []byte
	once   sync.Once
}

func NewClient(parent context.Context, ws *WebSocket, user *domain.User, sendBuffer int) *Client {
	ctx, cancel := context.WithCancel(parent)
	c := &Client{
		ctx:    ctx,
		cancel: cancel,
		ws:     ws,
		connID: uuid.NewString(),
		user:   *user,
		out:    make(chan []byte, sendBuffer),
	}
	go c.writeLoop()
	return c
}

func (c *Client) ID() string        { return c.connID }
func (c *Client) UserID() uuid.UUID { return c.user.ID }
func (c *Client) Name() string      { return c.user.Name }
func (c *Client) Role() domain.Role { return c.user.Role }

// Send enqueues a frame for the write loop. A full queue counts as a failed
// delivery: the slow connection is dropped rather than blocking the sender.
func (c *Client) Send(ctx context.Context, data []byte) error {
	select {
	case c.out <- data:
		return nil
	case <-c.ctx.Done():
		return errors.New("client closed")
	case <-ctx.Done():
		return ctx.Err()
	default:
		c.Close()
		return errors.New("send queue full")
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		c.cancel()
		c.ws.Close()
	})
}

func (c *Client) writeLoop() {
	defer c.Close()
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.out:
			if err := c.ws.WriteMessage(data); err != nil {
				return
			}
		}
	}
}
