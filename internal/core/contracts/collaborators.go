package contracts

import (
	"context"
	"time"
)

// TxRunner runs fn atomically against the durable store, carrying the
// transaction through the context so repositories pick it up transparently.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RateLimiter bounds repeated attempts on a key (login throttling).
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ResetTokenStore enforces single use of password-reset tokens.
type ResetTokenStore interface {
	// UseOnce marks the token id consumed. Returns false if it was already used.
	UseOnce(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}

// Mailer delivers transactional mail (password reset links).
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}
