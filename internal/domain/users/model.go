package users

import (
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	FirstName    string
	LastName     string
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role         string  `gorm:"type:varchar(20);not null;default:'user'"`

	// IsPremium is the membership flag that unlocks every room without a
	// purchase (seeded demo account, comped members).
	IsPremium bool `gorm:"not null;default:false"`

	// Premium room nudges, formerly kept in browser storage.
	PromptUsageCount       int `gorm:"not null;default:0"`
	LastPremiumSuggestedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
