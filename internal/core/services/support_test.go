package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubClient records every frame pushed to it.
type stubClient struct {
	id   string
	user domain.User

	mu       sync.Mutex
	frames   [][]byte
	failSend bool
	closed   bool
}

func newStubClient(user domain.User) *stubClient {
	return &stubClient{id: uuid.NewString(), user: user}
}

func (c *stubClient) ID() string        { return c.id }
func (c *stubClient) UserID() uuid.UUID { return c.user.ID }
func (c *stubClient) Name() string      { return c.user.Name }
func (c *stubClient) Role() domain.Role { return c.user.Role }

func (c *stubClient) Send(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return context.Canceled
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.frames = append(c.frames, buf)
	return nil
}

func (c *stubClient) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// framesFor decodes the recorded frames matching one event name.
func (c *stubClient) framesFor(t *testing.T, event string) []domain.Frame {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.Frame
	for _, raw := range c.frames {
		var f domain.Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("malformed frame %q: %v", raw, err)
		}
		if f.Event == event {
			out = append(out, f)
		}
	}
	return out
}

type stubAssignments struct {
	pairs map[uuid.UUID][]uuid.UUID
	err   error
}

func newStubAssignments() *stubAssignments {
	return &stubAssignments{pairs: make(map[uuid.UUID][]uuid.UUID)}
}

func (s *stubAssignments) pair(a, b uuid.UUID) {
	s.pairs[a] = append(s.pairs[a], b)
	s.pairs[b] = append(s.pairs[b], a)
}

func (s *stubAssignments) CorrespondentIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pairs[userID], nil
}

func (s *stubAssignments) Assign(_ context.Context, clientID, designerID uuid.UUID) error {
	s.pair(clientID, designerID)
	return nil
}

type stubMessageRepo struct {
	mu     sync.Mutex
	stored []domain.StoredMessage
	byID   map[uuid.UUID]*domain.User
	err    error
}

func newStubMessageRepo(users ...*domain.User) *stubMessageRepo {
	r := &stubMessageRepo{byID: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return r
}

func (r *stubMessageRepo) Append(_ context.Context, msg *domain.Message) (*domain.StoredMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	sender := domain.Sender{ID: msg.SenderID}
	if u := r.byID[msg.SenderID]; u != nil {
		sender.Name = u.Name
		sender.Role = u.Role
	}
	stored := domain.StoredMessage{
		ID:         msg.ID,
		Sender:     sender,
		ReceiverID: msg.ReceiverID,
		Role:       msg.Role,
		Body:       msg.Body,
		FileURL:    msg.FileURL,
		Kind:       msg.Kind,
		Timestamp:  msg.Timestamp,
	}
	r.stored = append(r.stored, stored)
	return &stored, nil
}

func (r *stubMessageRepo) Recent(_ context.Context, limit int) ([]domain.StoredMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	start := 0
	if len(r.stored) > limit {
		start = len(r.stored) - limit
	}
	out := make([]domain.StoredMessage, len(r.stored)-start)
	copy(out, r.stored[start:])
	return out, nil
}

type stubUserDirectory struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
	err   error
}

func newStubUserDirectory(users ...*domain.User) *stubUserDirectory {
	d := &stubUserDirectory{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *stubUserDirectory) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	u, ok := d.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (d *stubUserDirectory) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	for _, u := range d.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (d *stubUserDirectory) Create(_ context.Context, u *domain.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := *u
	clone.CreatedAt = time.Now()
	d.users[u.ID] = &clone
	u.CreatedAt = clone.CreatedAt
	return nil
}

func (d *stubUserDirectory) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// stubTxRunner records each transaction and whether its fn succeeded.
type stubTxRunner struct {
	calls     int
	rollbacks int
}

func (r *stubTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	if err := fn(ctx); err != nil {
		r.rollbacks++
		return err
	}
	return nil
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	if l.err != nil {
		return false, l.err
	}
	return l.allowed, nil
}

type stubResetGuard struct {
	used map[string]bool
}

func newStubResetGuard() *stubResetGuard {
	return &stubResetGuard{used: make(map[string]bool)}
}

func (g *stubResetGuard) UseOnce(_ context.Context, tokenID string, _ time.Duration) (bool, error) {
	if g.used[tokenID] {
		return false, nil
	}
	g.used[tokenID] = true
	return true, nil
}

type stubMailer struct {
	to   []string
	link string
	err  error
}

func (m *stubMailer) SendPasswordReset(_ context.Context, to, link string) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.link = link
	return nil
}

func testUser(name string, role domain.Role) *domain.User {
	return &domain.User{
		ID:    uuid.New(),
		Name:  name,
		Email: name + "@example.com",
		Role:  role,
	}
}
