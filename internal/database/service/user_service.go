package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/Nabhonil04/stockpredict/internal/auth"
	"github.com/Nabhonil04/stockpredict/internal/database"
	"github.com/Nabhonil04/stockpredict/internal/database/models"
	"github.com/Nabhonil04/stockpredict/internal/database/repository"
)

// Demo account created on an empty database
const (
	DemoUserName     = "Demo User"
	DemoUserEmail    = "demo@example.com"
	DemoUserPassword = "password123"
)

const (
	maxNameLength     = 100
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

var validate = validator.New()

// UserService defines the interface for the user directory
type UserService interface {
	Create(ctx context.Context, name, email, password string) (*models.User, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, name, email string) (*models.User, error)

	// EnsureDemoUser creates the demo account when no users exist yet.
	EnsureDemoUser(ctx context.Context) (bool, error)
}

type userService struct {
	userRepo repository.UserRepository
	tx       database.Transactor
	hasher   auth.PasswordHasher
	logger   *slog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(
	userRepo repository.UserRepository,
	tx database.Transactor,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo: userRepo,
		tx:       tx,
		hasher:   hasher,
		logger:   logger,
	}
}

func (s *userService) Create(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if err := validateProfile(name, email); err != nil {
		return nil, err
	}
	if password == "" || len(password) > maxPasswordLength {
		return nil, fmt.Errorf("%w: password must be between 1 and %d bytes", ErrValidation, maxPasswordLength)
	}

	// Hash before opening the transaction; hashing is deliberately slow.
	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("❌ [UserService] Failed to hash password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		IsActive:       true,
	}

	err = s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		_, err := users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			return ErrEmailAlreadyExists
		case !errors.Is(err, repository.ErrUserNotFound):
			return err
		}

		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				return ErrEmailAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			s.logger.Warn("⚠️ [UserService] Email already registered", "email", email)
		} else {
			s.logger.Error("❌ [UserService] Failed to create user", "error", err)
		}
		return nil, err
	}

	s.logger.Info("✅ [UserService] User created", "user_id", user.ID)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// UpdateProfile changes name and email. A new email is checked against every
// other user; keeping the current email is never a conflict.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if err := validateProfile(name, email); err != nil {
		return nil, err
	}

	var updated *models.User
	err := s.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		user, err := users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if email != user.Email {
			taken, err := users.EmailTakenByOther(ctx, email, user.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrEmailAlreadyExists
			}
		}

		user.Name = name
		user.Email = email

		if err := users.Update(ctx, user); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				return ErrEmailAlreadyExists
			}
			return err
		}

		updated = user
		return nil
	})
	if err != nil {
		s.logger.Warn("⚠️ [UserService] Profile update rejected", "user_id", userID, "error", err)
		return nil, err
	}

	s.logger.Info("✅ [UserService] Profile updated", "user_id", userID)
	return updated, nil
}

func (s *userService) EnsureDemoUser(ctx context.Context) (bool, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if _, err := s.Create(ctx, DemoUserName, DemoUserEmail, DemoUserPassword); err != nil {
		// Another instance seeded first.
		if errors.Is(err, ErrEmailAlreadyExists) {
			return false, nil
		}
		return false, err
	}

	s.logger.Info("🌱 [UserService] Demo user created", "email", DemoUserEmail)
	return true, nil
}

func validateProfile(name, email string) error {
	if name == "" || len(name) > maxNameLength {
		return fmt.Errorf("%w: name must be between 1 and %d characters", ErrValidation, maxNameLength)
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: email must be a valid email address", ErrValidation)
	}
	return nil
}
