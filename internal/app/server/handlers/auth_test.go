package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/services"
	"github.com/tanushree1025/DESIGN-THEETA/pkg/middleware"
)

type memoryDirectory struct {
	users map[uuid.UUID]*domain.User
}

func (d *memoryDirectory) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := d.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

func (d *memoryDirectory) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range d.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (d *memoryDirectory) Create(_ context.Context, u *domain.User) error {
	clone := *u
	d.users[u.ID] = &clone
	return nil
}

func (d *memoryDirectory) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := d.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopMailer struct{}

func (noopMailer) SendPasswordReset(context.Context, string, string) error { return nil }

type openLimiter struct{}

func (openLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

type memoryGuard struct{ used map[string]bool }

func (g *memoryGuard) UseOnce(_ context.Context, id string, _ time.Duration) (bool, error) {
	if g.used[id] {
		return false, nil
	}
	g.used[id] = true
	return true, nil
}

func newAuthFixture(t *testing.T) (*AuthHandler, *services.TokenService) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := services.NewTokenService("test-secret", time.Hour, time.Minute)
	users := services.NewUserService(log,
		&memoryDirectory{users: make(map[uuid.UUID]*domain.User)},
		tokens, passthroughTx{}, noopMailer{}, openLimiter{}, &memoryGuard{used: make(map[string]bool)},
		"http://localhost:5000", time.Minute)
	return NewAuthHandler(users), tokens
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegisterThenLogin(t *testing.T) {
	h, _ := newAuthFixture(t)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name": "alice", "email": "alice@example.com", "password": "pass123", "role": "client",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body)
	}

	rec = postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "pass123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		Token string `json:"token"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" || resp.Name != "alice" || resp.Role != "client" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
}

func TestRegisterValidation(t *testing.T) {
	h, _ := newAuthFixture(t)

	cases := []map[string]string{
		{"name": "alice", "email": "not-an-email", "password": "pass123", "role": "client"},
		{"name": "alice", "email": "alice@example.com", "password": "short", "role": "client"},
		{"name": "alice", "email": "alice@example.com", "password": "pass123", "role": "superuser"},
	}
	for _, body := range cases {
		if rec := postJSON(t, h.Register, "/api/auth/register", body, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %v accepted with status %d", body, rec.Code)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _ := newAuthFixture(t)
	body := map[string]string{
		"name": "alice", "email": "alice@example.com", "password": "pass123", "role": "client",
	}

	if rec := postJSON(t, h.Register, "/api/auth/register", body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	rec := postJSON(t, h.Register, "/api/auth/register", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["msg"] != "User already exists" {
		t.Fatalf("msg = %q", resp["msg"])
	}
}

func TestLoginBadPassword(t *testing.T) {
	h, _ := newAuthFixture(t)
	postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name": "alice", "email": "alice@example.com", "password": "pass123", "role": "client",
	}, nil)

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrongpass",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateAdminRequiresAdminRole(t *testing.T) {
	h, tokens := newAuthFixture(t)

	issue := func(role domain.Role) http.Header {
		token, err := tokens.IssueToken(&domain.User{ID: uuid.New(), Name: "x", Role: role})
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		return http.Header{"Authorization": []string{"Bearer " + token}}
	}
	body := map[string]string{"name": "root", "email": "root@example.com", "password": "pass123"}
	guarded := middleware.Auth(tokens)(http.HandlerFunc(h.CreateAdmin))
	wrap := func(w http.ResponseWriter, r *http.Request) { guarded.ServeHTTP(w, r) }

	if rec := postJSON(t, wrap, "/api/admin/create-admin", body, issue(domain.RoleClient)); rec.Code != http.StatusForbidden {
		t.Fatalf("client created an admin, status = %d", rec.Code)
	}
	if rec := postJSON(t, wrap, "/api/admin/create-admin", body, issue(domain.RoleAdmin)); rec.Code != http.StatusCreated {
		t.Fatalf("admin blocked, status = %d", rec.Code)
	}
}
