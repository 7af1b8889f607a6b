// internal/domain/user/service.go
package user

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-engine/internal/config"
	"github.com/your-org/storefront-engine/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles the customer identity surface the engine needs: account
// creation, credential checks and the Discord identity link used by gating.
type Service struct {
	db        *gorm.DB
	config    *config.Config
	passwords *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		passwords: auth.NewPasswordManager(cfg),
	}
}

// Register creates a new user account
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	var existing User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &u, nil
}

// Authenticate verifies credentials and returns the user
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", email, true).
		First(&u).Error; err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := s.passwords.VerifyPassword(password, u.PasswordHash); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return &u, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

// LinkDiscord attaches an external Discord identity to the account
func (s *Service) LinkDiscord(ctx context.Context, userID uint, discordID string) error {
	if discordID == "" {
		return fmt.Errorf("discord id is required")
	}
	result := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Update("discord_id", discordID)
	if result.Error != nil {
		return fmt.Errorf("failed to link discord account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// UnlinkDiscord removes the external identity link
func (s *Service) UnlinkDiscord(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Update("discord_id", nil).Error
}
