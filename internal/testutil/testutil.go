package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sanadchat/sanad/internal/auth"
	"github.com/sanadchat/sanad/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// NewTestLogger returns a logger that discards output
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NotifierCall records one Send invocation on the fake notifier.
type NotifierCall struct {
	ToAddress string
	ToName    string
	Subject   string
	HTMLBody  string
}

// FakeNotifier records outbound email instead of sending it. Set Err to
// simulate delivery failure.
type FakeNotifier struct {
	mu    sync.Mutex
	Err   error
	calls []NotifierCall
}

func (n *FakeNotifier) Send(_ context.Context, toAddress, toName, subject, htmlBody string) error {
	n.mu.Lock()
	n.calls = append(n.calls, NotifierCall{
		ToAddress: toAddress,
		ToName:    toName,
		Subject:   subject,
		HTMLBody:  htmlBody,
	})
	n.mu.Unlock()
	return n.Err
}

func (n *FakeNotifier) Calls() []NotifierCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]NotifierCall(nil), n.calls...)
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()

	svc, err := auth.NewJWTService("test-secret-key-for-testing", "sanad-test", "sanad-test-clients", 2*time.Hour)
	if err != nil {
		t.Fatalf("failed to create jwt service: %v", err)
	}
	return svc
}

// CreateTestUser creates a verified user ready to log in
func CreateTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("Testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:          "Test User",
		Email:         "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash:  hash,
		Role:          role,
		EmailVerified: true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestConversation creates a conversation owned by the given user
func CreateTestConversation(t *testing.T, db *gorm.DB, userID uuid.UUID, title string) *models.Conversation {
	t.Helper()

	conversation := &models.Conversation{
		Base: models.Base{
			ID: uuid.New(),
		},
		Title:  title,
		UserID: userID,
	}

	if err := db.Create(conversation).Error; err != nil {
		t.Fatalf("failed to create test conversation: %v", err)
	}

	return conversation
}

// CreateTestMessage appends a message to the given conversation
func CreateTestMessage(t *testing.T, db *gorm.DB, conversationID uuid.UUID, role, content string) *models.Message {
	t.Helper()

	message := &models.Message{
		Base: models.Base{
			ID: uuid.New(),
		},
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}

	if err := db.Create(message).Error; err != nil {
		t.Fatalf("failed to create test message: %v", err)
	}

	return message
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB          *gorm.DB
	JWTService  *auth.JWTService
	TokenStore  *auth.MemoryTokenStore
	Notifier    *FakeNotifier
	AuthService *auth.Service
}

// NewTestContext creates a complete test setup with DB, token store, fake
// notifier, and auth service
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService(t)
	tokenStore := auth.NewMemoryTokenStore()
	notifier := &FakeNotifier{}

	authService := auth.NewService(db, jwtService, tokenStore, notifier, NewTestLogger(), auth.Links{
		VerifyEmailURL:   "http://localhost:3000/verify-email",
		ResetPasswordURL: "http://localhost:3000/reset-password",
		VerifyEmailTTL:   24 * time.Hour,
		ResetPasswordTTL: 15 * time.Minute,
	})

	return &TestSetup{
		DB:          db,
		JWTService:  jwtService,
		TokenStore:  tokenStore,
		Notifier:    notifier,
		AuthService: authService,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
