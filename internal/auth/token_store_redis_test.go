package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*RedisTokenStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisTokenStore(client), mr
}

func TestRedisTokenStore_IssueAndConsume(t *testing.T) {
	ctx := context.Background()
	store, _ := setupRedisStore(t)
	userID := uuid.New()

	token, err := store.Issue(ctx, userID, PurposeVerifyEmail, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	require.NoError(t, store.Consume(ctx, userID, PurposeVerifyEmail, token))

	t.Run("single use", func(t *testing.T) {
		assert.ErrorIs(t, store.Consume(ctx, userID, PurposeVerifyEmail, token), ErrInvalidToken)
	})
}

func TestRedisTokenStore_ConsumeFailures(t *testing.T) {
	ctx := context.Background()
	store, _ := setupRedisStore(t)
	userID := uuid.New()

	token, err := store.Issue(ctx, userID, PurposeVerifyEmail, time.Hour)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Consume(ctx, uuid.New(), PurposeVerifyEmail, token), ErrInvalidToken)
	assert.ErrorIs(t, store.Consume(ctx, userID, PurposeVerifyEmail, "bogus"), ErrInvalidToken)
	assert.ErrorIs(t, store.Consume(ctx, userID, PurposeResetPassword, token), ErrInvalidToken)

	// Still consumable after the failed attempts.
	assert.NoError(t, store.Consume(ctx, userID, PurposeVerifyEmail, token))
}

func TestRedisTokenStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t)
	userID := uuid.New()

	token, err := store.Issue(ctx, userID, PurposeResetPassword, 15*time.Minute)
	require.NoError(t, err)

	mr.FastForward(16 * time.Minute)

	assert.ErrorIs(t, store.Consume(ctx, userID, PurposeResetPassword, token), ErrInvalidToken)
}

func TestRedisTokenStore_ReissueSupersedes(t *testing.T) {
	ctx := context.Background()
	store, _ := setupRedisStore(t)
	userID := uuid.New()

	first, err := store.Issue(ctx, userID, PurposeVerifyEmail, time.Hour)
	require.NoError(t, err)
	second, err := store.Issue(ctx, userID, PurposeVerifyEmail, time.Hour)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Consume(ctx, userID, PurposeVerifyEmail, first), ErrInvalidToken)
	assert.NoError(t, store.Consume(ctx, userID, PurposeVerifyEmail, second))
}
