package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gennadiyev/xplit-pay/internal/models"
)

// memoryStorage is a map-backed UserStorage for tests.
type memoryStorage struct {
	users map[string]*models.User
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{users: make(map[string]*models.User)}
}

func (m *memoryStorage) CreateUser(_ context.Context, user *models.User) error {
	m.users[user.Email] = user
	return nil
}

func (m *memoryStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.users[email], nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := NewPasswordAuthenticator(newMemoryStorage())
	ctx := context.Background()

	user, err := a.Register(ctx, "kb@example.com", "Kunologist", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == "" || user.PasswordHash == "correct-horse" {
		t.Errorf("user = %+v, password must be hashed", user)
	}

	got, err := a.Authenticate(ctx, "kb@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated ID = %s, want %s", got.ID, user.ID)
	}

	if _, err := a.Authenticate(ctx, "kb@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	a := NewPasswordAuthenticator(newMemoryStorage())
	ctx := context.Background()

	if _, err := a.Register(ctx, "kb@example.com", "Kunologist", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password error = %v", err)
	}

	if _, err := a.Register(ctx, "kb@example.com", "Kunologist", "correct-horse"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := a.Register(ctx, "kb@example.com", "Again", "correct-horse"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate email error = %v", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Email: "kb@example.com"}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "kb@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTRejectsBadTokens(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	if _, err := manager.Validate("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}

	other := NewJWTManager("different-secret", time.Hour)
	token, err := other.Generate(&models.User{ID: "user-1", Email: "kb@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := manager.Validate(token); err == nil {
		t.Error("expected error for token signed with a different key")
	}

	expired := NewJWTManager("test-secret", -time.Hour)
	token, err = expired.Generate(&models.User{ID: "user-1", Email: "kb@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := manager.Validate(token); err == nil {
		t.Error("expected error for expired token")
	}
}
