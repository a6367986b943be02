package journalapi

import (
	"sanctuary-app/internal/domain/journal"

	"gorm.io/gorm"
)

func userEntriesQuery(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&journal.Entry{}).Where("user_id = ?", userID)
}
