package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sanadchat/sanad/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()

	svc, err := NewJWTService("test-secret", "sanad-test", "sanad-test-clients", 2*time.Hour)
	require.NoError(t, err)
	return svc
}

func testUser() *models.User {
	return &models.User{
		Base:  models.Base{ID: uuid.New()},
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  models.RoleUser,
	}
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService("", "sanad-test", "sanad-test-clients", 2*time.Hour)
	assert.Error(t, err)
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService(t)
	user := testUser()

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)
	assert.Equal(t, "sanad-test", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTService_ValidateToken_Rejections(t *testing.T) {
	svc := newTestJWTService(t)
	user := testUser()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidJWT)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewJWTService("other-secret", "sanad-test", "sanad-test-clients", 2*time.Hour)
		require.NoError(t, err)
		token, err := other.GenerateToken(user)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidJWT)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewJWTService("test-secret", "someone-else", "sanad-test-clients", 2*time.Hour)
		require.NoError(t, err)
		token, err := other.GenerateToken(user)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidJWT)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other, err := NewJWTService("test-secret", "sanad-test", "someone-else", 2*time.Hour)
		require.NoError(t, err)
		token, err := other.GenerateToken(user)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidJWT)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := NewJWTService("test-secret", "sanad-test", "sanad-test-clients", -time.Minute)
		require.NoError(t, err)
		token, err := expired.GenerateToken(user)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredJWT)
	})
}
