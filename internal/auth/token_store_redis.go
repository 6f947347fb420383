package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// consumeScript deletes the key only when the stored token matches, so a
// token can be consumed at most once even across API instances.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisTokenStore holds verification tokens in Redis with a native TTL.
// Expired entries disappear on their own, so unlike the in-memory store
// abandoned tokens do not accumulate for the process lifetime.
type RedisTokenStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{
		client:    client,
		keyPrefix: "sanad:auth:token",
	}
}

func (s *RedisTokenStore) key(userID uuid.UUID, purpose TokenPurpose) string {
	return fmt.Sprintf("%s:%s:%s", s.keyPrefix, purpose, userID)
}

func (s *RedisTokenStore) Issue(ctx context.Context, userID uuid.UUID, purpose TokenPurpose, ttl time.Duration) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, s.key(userID, purpose), token, ttl).Err(); err != nil {
		return "", fmt.Errorf("storing token: %w", err)
	}

	return token, nil
}

func (s *RedisTokenStore) Consume(ctx context.Context, userID uuid.UUID, purpose TokenPurpose, token string) error {
	deleted, err := consumeScript.Run(ctx, s.client, []string{s.key(userID, purpose)}, token).Int()
	if err != nil {
		return fmt.Errorf("consuming token: %w", err)
	}
	if deleted == 0 {
		return ErrInvalidToken
	}
	return nil
}
