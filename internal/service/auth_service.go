package service

import (
	"context"
	"log/slog"

	"github.com/divvyup/divvy/internal/auth"
	"github.com/divvyup/divvy/internal/models"
	"github.com/divvyup/divvy/internal/storage"
)

// AuthService implements signup, login and session introspection.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		logger:        logger,
	}
}

// Signup creates a new user account and returns it with a session token.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*models.User, string, error) {
	s.logger.Info("Signup request", "email", email)

	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		s.logger.Warn("Signup failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Login authenticates a user and returns them with a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	s.logger.Info("User logged in", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Me returns the account behind an authenticated user id.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}
