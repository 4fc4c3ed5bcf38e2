package service

import (
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/despensa-app/backend-go/internal/database/models"
	"github.com/despensa-app/backend-go/internal/database/repository"
)

// UpdateProfileInput uses pointers so absent fields are left untouched.
type UpdateProfileInput struct {
	Username *string
	Email    *string
}

// UserService defines the interface for user profile business logic
type UserService interface {
	GetProfile(userID uint) (*models.User, error)
	UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error)
	ChangePassword(userID uint, currentPassword, newPassword string) error
	DeleteAccount(userID uint) error
}

type userService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	logger           *slog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		logger:           logger,
	}
}

func (s *userService) GetProfile(userID uint) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

func (s *userService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && *input.Username != user.Username {
		existing, err := s.userRepo.FindByUsername(*input.Username)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrUsernameTaken
		}
		user.Username = *input.Username
	}

	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.userRepo.FindByEmail(*input.Email)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *input.Email
	}

	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("❌ [UserService] Failed to update profile", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("✅ [UserService] Profile updated", "user_id", userID)
	return user, nil
}

func (s *userService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		s.logger.Warn("⚠️ [UserService] Password change with wrong current password", "user_id", userID)
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)

	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("❌ [UserService] Failed to change password", "error", err, "user_id", userID)
		return err
	}

	// Force re-login everywhere else.
	if err := s.refreshTokenRepo.RevokeAllUserTokens(userID); err != nil {
		s.logger.Error("❌ [UserService] Failed to revoke sessions after password change", "error", err, "user_id", userID)
	}

	s.logger.Info("✅ [UserService] Password changed", "user_id", userID)
	return nil
}

func (s *userService) DeleteAccount(userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllUserTokens(userID); err != nil {
		s.logger.Error("❌ [UserService] Failed to revoke sessions", "error", err, "user_id", userID)
	}
	if err := s.userRepo.Delete(userID); err != nil {
		s.logger.Error("❌ [UserService] Failed to delete account", "error", err, "user_id", userID)
		return err
	}
	s.logger.Info("✅ [UserService] Account deleted", "user_id", userID)
	return nil
}
