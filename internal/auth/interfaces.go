package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/sanadchat/sanad/internal/database/models"
)

// Authenticator defines the interface for the account flows.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	VerifyEmail(ctx context.Context, userID uuid.UUID, token string) error
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, userID uuid.UUID, token, newPassword string) error
	BeginEmailVerification(ctx context.Context, user *models.User)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenService defines the interface for JWT operations.
type TokenService interface {
	GenerateToken(user *models.User) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
	_ TokenStore    = (*MemoryTokenStore)(nil)
	_ TokenStore    = (*RedisTokenStore)(nil)
)
