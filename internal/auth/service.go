package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sanadchat/sanad/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
)

// Notifier delivers a single HTML email. Implementations are best-effort
// collaborators; the service logs their failures and moves on.
type Notifier interface {
	Send(ctx context.Context, toAddress, toName, subject, htmlBody string) error
}

// Links holds the frontend URLs and token lifetimes used when composing
// verification and reset emails.
type Links struct {
	VerifyEmailURL   string
	ResetPasswordURL string
	VerifyEmailTTL   time.Duration
	ResetPasswordTTL time.Duration
}

type Service struct {
	db       *gorm.DB
	jwt      *JWTService
	tokens   TokenStore
	notifier Notifier
	logger   *slog.Logger
	links    Links
}

func NewService(db *gorm.DB, jwt *JWTService, tokens TokenStore, notifier Notifier, logger *slog.Logger, links Links) *Service {
	if links.VerifyEmailTTL <= 0 {
		links.VerifyEmailTTL = 24 * time.Hour
	}
	if links.ResetPasswordTTL <= 0 {
		links.ResetPasswordTTL = 15 * time.Minute
	}

	return &Service{
		db:       db,
		jwt:      jwt,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
		links:    links,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", input.Email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		Name:          input.Name,
		Email:         input.Email,
		PasswordHash:  hash,
		Role:          role,
		EmailVerified: false,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.BeginEmailVerification(ctx, &user)

	return &user, nil
}

// BeginEmailVerification issues a fresh verification token and emails the
// confirmation link. The send is best-effort: a failure is logged and the
// token stays issued, so the user can retry the flow and a new token will
// simply supersede this one.
func (s *Service) BeginEmailVerification(ctx context.Context, user *models.User) {
	token, err := s.tokens.Issue(ctx, user.ID, PurposeVerifyEmail, s.links.VerifyEmailTTL)
	if err != nil {
		s.logger.Error("failed to issue verification token", "user_id", user.ID, "error", err)
		return
	}

	link := fmt.Sprintf("%s?userId=%s&token=%s", s.links.VerifyEmailURL, user.ID, token)
	body := fmt.Sprintf(`
		<h2>Welcome %s</h2>
		<p>Please verify your email by clicking the link below:</p>
		<p><a href="%s" target="_blank">Verify Email</a></p>
		<br/>
		<p>This link will expire in %d hours.</p>`,
		user.Name, link, int(s.links.VerifyEmailTTL.Hours()))

	if err := s.notifier.Send(ctx, user.Email, user.Name, "Verify your email", body); err != nil {
		s.logger.Error("failed to send verification email", "user_id", user.ID, "error", err)
	}
}

func (s *Service) VerifyEmail(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.tokens.Consume(ctx, userID, PurposeVerifyEmail, token); err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading user: %w", err)
	}

	user.EmailVerified = true
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return fmt.Errorf("saving user: %w", err)
	}

	return nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("loading user: %w", err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.jwt.GenerateToken(&user)
	if err != nil {
		return "", nil, fmt.Errorf("signing token: %w", err)
	}

	return token, &user, nil
}

// ForgotPassword never reveals whether an account exists: an unknown email
// succeeds without side effects, and the presence or absence of a reset
// email is the only signal.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("loading user: %w", err)
	}

	token, err := s.tokens.Issue(ctx, user.ID, PurposeResetPassword, s.links.ResetPasswordTTL)
	if err != nil {
		return fmt.Errorf("issuing reset token: %w", err)
	}

	link := fmt.Sprintf("%s?userId=%s&token=%s", s.links.ResetPasswordURL, user.ID, token)
	body := fmt.Sprintf(`
		<h2>Password Reset Request</h2>
		<p>We received a request to reset your password.</p>
		<p>Click the link below to reset your password:</p>
		<p><a href="%s" target="_blank">Reset Password</a></p>
		<br/>
		<p><b>Note:</b> This link will expire in %d minutes.</p>
		<p>If you didn't request this, please ignore this email.</p>`,
		link, int(s.links.ResetPasswordTTL.Minutes()))

	if err := s.notifier.Send(ctx, user.Email, user.Name, "Password Reset Request", body); err != nil {
		s.logger.Error("failed to send reset email", "user_id", user.ID, "error", err)
	}

	return nil
}

func (s *Service) ResetPassword(ctx context.Context, userID uuid.UUID, token, newPassword string) error {
	if err := s.tokens.Consume(ctx, userID, PurposeResetPassword, token); err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading user: %w", err)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return fmt.Errorf("saving user: %w", err)
	}

	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
