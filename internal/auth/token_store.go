package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidToken is returned for every Consume failure. The caller cannot
// distinguish a missing entry from a mismatch or an expired token.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenPurpose scopes a verification token to the flow it was issued for.
// A pending email-verification token and a password-reset token for the
// same user never collide.
type TokenPurpose string

const (
	PurposeVerifyEmail   TokenPurpose = "verify_email"
	PurposeResetPassword TokenPurpose = "reset_password"
)

// TokenStore maps (user, purpose) to a single-use expiring token. Issue
// overwrites any prior token for the same key; Consume removes the entry
// on success and leaves state unchanged on failure.
type TokenStore interface {
	Issue(ctx context.Context, userID uuid.UUID, purpose TokenPurpose, ttl time.Duration) (string, error)
	Consume(ctx context.Context, userID uuid.UUID, purpose TokenPurpose, token string) error
}

// generateToken returns 32 bytes of CSPRNG output, URL-safe encoded for
// embedding in links.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

type storeKey struct {
	userID  uuid.UUID
	purpose TokenPurpose
}

type storedToken struct {
	token  string
	expiry time.Time
}

// MemoryTokenStore keeps tokens in a process-wide map. Suitable for
// single-instance deployments; swap in RedisTokenStore when the API runs
// on more than one node.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[storeKey]storedToken
	now    func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens: make(map[storeKey]storedToken),
		now:    time.Now,
	}
}

func (s *MemoryTokenStore) Issue(_ context.Context, userID uuid.UUID, purpose TokenPurpose, ttl time.Duration) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.tokens[storeKey{userID, purpose}] = storedToken{
		token:  token,
		expiry: s.now().Add(ttl),
	}
	s.mu.Unlock()

	return token, nil
}

func (s *MemoryTokenStore) Consume(_ context.Context, userID uuid.UUID, purpose TokenPurpose, token string) error {
	key := storeKey{userID, purpose}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[key]
	if !ok {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(entry.token), []byte(token)) != 1 {
		return ErrInvalidToken
	}
	if s.now().After(entry.expiry) {
		return ErrInvalidToken
	}

	delete(s.tokens, key)
	return nil
}
