package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sanctuary-app/internal/domain/users"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (s *Users) ByID(ctx context.Context, id uint) (users.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Users) ByEmail(ctx context.Context, email string) (users.User, error) {
	return s.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *Users) first(ctx context.Context, query string, arg any) (users.User, error) {
	var u users.User
	err := s.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return users.User{}, ErrUserNotFound
	}
	if err != nil {
		return users.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// Identity loads the gateway's view of a user.
func (s *Users) Identity(ctx context.Context, id uint) (*users.Identity, error) {
	u, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return users.IdentityOf(u), nil
}

// CountPromptUse bumps the prompt usage counter and returns the new value.
func (s *Users) CountPromptUse(ctx context.Context, id uint) (int, error) {
	res := s.db.WithContext(ctx).
		Model(&users.User{}).
		Where("id = ?", id).
		UpdateColumn("prompt_usage_count", gorm.Expr("prompt_usage_count + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("count prompt use: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}
	u, err := s.ByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return u.PromptUsageCount, nil
}

func (s *Users) MarkPremiumSuggested(ctx context.Context, id uint, at time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&users.User{}).
		Where("id = ?", id).
		UpdateColumn("last_premium_suggested_at", at).Error
	if err != nil {
		return fmt.Errorf("mark premium suggested: %w", err)
	}
	return nil
}
