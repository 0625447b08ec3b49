package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetTokenStore enforces single use of password reset tokens.
// Key format: resettoken:<jti>
type ResetTokenStore struct {
	client *redis.Client
}

func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

// UseOnce claims the token id. It returns true on the first claim and false
// on any later one. The claim expires with the token itself.
func (s *ResetTokenStore) UseOnce(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	first, err := s.client.SetNX(ctx, "resettoken:"+tokenID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reset token claim: %w", err)
	}
	return first, nil
}
