package contentapi

import (
	"sanctuary-app/internal/domain/content"

	"gorm.io/gorm"
)

func blogPostsQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&content.BlogPost{}).Order("created_at DESC")
}

func roomPromptsQuery(db *gorm.DB, roomID string) *gorm.DB {
	return db.Model(&content.RoomPrompt{}).
		Where("room_id = ?", roomID).
		Order("sort_index ASC")
}
