package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/divvyup/divvy/internal/models"
)

// memoryUserStorage is a minimal in-memory UserStorage for authenticator tests.
type memoryUserStorage struct {
	byEmail map[string]*models.User
}

func newMemoryUserStorage() *memoryUserStorage {
	return &memoryUserStorage{byEmail: make(map[string]*models.User)}
}

func (m *memoryUserStorage) CreateUser(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = user.Email
	}
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.byEmail[email], nil
}

func (m *memoryUserStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	authenticator := NewPasswordAuthenticator(newMemoryUserStorage())

	t.Run("register hashes the password", func(t *testing.T) {
		user, err := authenticator.Register(ctx, "alice@example.com", "alice", "long-enough-pw")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.PasswordHash == "long-enough-pw" {
			t.Error("password stored in plaintext")
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := authenticator.Register(ctx, "bob@example.com", "bob", "short")
		if !errors.Is(err, ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := authenticator.Register(ctx, "alice@example.com", "alice2", "another-long-pw")
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("authenticate round trip", func(t *testing.T) {
		user, err := authenticator.Authenticate(ctx, "alice@example.com", "long-enough-pw")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("email = %s, want alice@example.com", user.Email)
		}
	})

	t.Run("wrong password and unknown email report identically", func(t *testing.T) {
		if _, err := authenticator.Authenticate(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := authenticator.Authenticate(ctx, "nobody@example.com", "long-enough-pw"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestHashSecret(t *testing.T) {
	hash, err := HashSecret("group-password")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}

	if !VerifySecret("group-password", hash) {
		t.Error("hash does not verify against its own plaintext")
	}
	if VerifySecret("other-password", hash) {
		t.Error("hash verifies against the wrong plaintext")
	}
}

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	t.Run("generate and validate", func(t *testing.T) {
		token, err := manager.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		claims, err := manager.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.UserID != user.ID {
			t.Errorf("UserID = %s, want %s", claims.UserID, user.ID)
		}
		if claims.Email != user.Email {
			t.Errorf("Email = %s, want %s", claims.Email, user.Email)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		if _, err := manager.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("token signed with another secret rejected", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		token, err := other.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute)
		token, err := expired.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
