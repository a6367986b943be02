package database

import (
	"fmt"
	"log/slog"

	"sanctuary-app/internal/domain/billing"
	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/content"
	"sanctuary-app/internal/domain/journal"
	"sanctuary-app/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB connects to Postgres and migrates every model. The handle is also
// kept in DB for the CLI commands.
func InitDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	DB = db
	slog.Info("database connected and migrated")
	return db, nil
}

// Migrate creates or updates every table the app uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// identity
		&users.User{},

		// shop + ledger
		&catalog.Product{},
		&billing.Purchase{},
		&billing.PurchaseItem{},

		// content
		&content.BlogPost{},
		&content.Testimonial{},
		&content.ContactMessage{},
		&content.RoomPrompt{},

		// journaling
		&journal.Entry{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
