package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Nabhonil04/stockpredict/internal/auth"
	"github.com/Nabhonil04/stockpredict/internal/database/models"
	"github.com/Nabhonil04/stockpredict/internal/metrics"
)

// TokenIssuer is the part of the token service used by AuthService
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Verify(token string) (string, error)
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, *AccessToken, error)
	Login(ctx context.Context, email, password string) (*models.User, *AccessToken, error)

	// Authenticate resolves a bearer token to the active user it was issued for.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AccessToken is what a client receives after register or login
type AccessToken struct {
	AccessToken string
	TokenType   string
}

type authService struct {
	users  UserService
	hasher auth.PasswordHasher
	tokens TokenIssuer
	logger *slog.Logger

	// Verified against when the email is unknown so that both login failure
	// paths cost the same.
	dummyDigest string
}

// NewAuthService creates a new authentication service instance
func NewAuthService(
	users UserService,
	hasher auth.PasswordHasher,
	tokens TokenIssuer,
	logger *slog.Logger,
) (AuthService, error) {
	dummy, err := hasher.Hash("stockpredict-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}

	return &authService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger,
		dummyDigest: dummy,
	}, nil
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*models.User, *AccessToken, error) {
	s.logger.Info("📝 [AuthService] Registration attempt", "email", email)

	user, err := s.users.Create(ctx, name, email, password)
	if err != nil {
		recordAuth("register", err)
		return nil, nil, err
	}

	token, err := s.issue(user)
	if err != nil {
		recordAuth("register", err)
		return nil, nil, err
	}

	recordAuth("register", nil)
	s.logger.Info("✅ [AuthService] User registered successfully", "user_id", user.ID)
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, *AccessToken, error) {
	email = strings.TrimSpace(email)
	s.logger.Info("🔐 [AuthService] Login attempt", "email", email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.logger.Error("❌ [AuthService] Database error", "error", err)
			recordAuth("login", err)
			return nil, nil, err
		}
		_, _ = s.hasher.Verify(password, s.dummyDigest)
		s.logger.Warn("⚠️ [AuthService] Login failed", "email", email)
		recordAuth("login", ErrInvalidCredentials)
		return nil, nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.HashedPassword)
	if err != nil {
		s.logger.Error("❌ [AuthService] Stored credential unreadable", "user_id", user.ID, "error", err)
	}
	if !ok {
		s.logger.Warn("⚠️ [AuthService] Login failed", "email", email)
		recordAuth("login", ErrInvalidCredentials)
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		recordAuth("login", err)
		return nil, nil, err
	}

	recordAuth("login", nil)
	s.logger.Info("✅ [AuthService] User logged in successfully", "user_id", user.ID)
	return user, token, nil
}

// Authenticate never reveals whether the token's subject exists: a deleted or
// renamed subject is reported as ErrUnauthenticated like a bad token.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	email, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("🔒 [AuthService] Token rejected", "error", err)
		recordAuth("resolve", ErrUnauthenticated)
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Debug("🔒 [AuthService] Token subject no longer exists")
			recordAuth("resolve", ErrUnauthenticated)
			return nil, ErrUnauthenticated
		}
		s.logger.Error("❌ [AuthService] Database error", "error", err)
		recordAuth("resolve", err)
		return nil, err
	}

	if !user.IsActive {
		s.logger.Warn("⚠️ [AuthService] Inactive user rejected", "user_id", user.ID)
		recordAuth("resolve", ErrInactiveUser)
		return nil, ErrInactiveUser
	}

	recordAuth("resolve", nil)
	return user, nil
}

func (s *authService) issue(user *models.User) (*AccessToken, error) {
	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		s.logger.Error("❌ [AuthService] Failed to generate token", "error", err)
		return nil, err
	}
	return &AccessToken{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

func recordAuth(event string, err error) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrEmailAlreadyExists),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInactiveUser):
		result = metrics.ResultFailure
	default:
		result = metrics.ResultError
	}
	metrics.AuthEventsTotal.WithLabelValues(event, result).Inc()
}
