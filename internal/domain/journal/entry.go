package journal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxListed = 100

type Entry struct {
	ID       string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID   uint    `gorm:"not null;index:idx_journal_entries_user_created,priority:1" json:"-"`
	RoomID   *string `gorm:"type:varchar(64);index" json:"room_id,omitempty"`
	Title    string  `gorm:"not null" json:"title"`
	Content  string  `gorm:"not null" json:"content"`
	Mood     *string `json:"mood"`
	PromptID *int    `json:"prompt_id"`

	CreatedAt time.Time `gorm:"index:idx_journal_entries_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// SuggestionPolicy decides when the free writing room nudges towards the
// premium room.
type SuggestionPolicy struct {
	MinPrompts int
	Cooldown   time.Duration
}

func DefaultSuggestionPolicy() SuggestionPolicy {
	return SuggestionPolicy{MinPrompts: 3, Cooldown: 7 * 24 * time.Hour}
}

func (p SuggestionPolicy) ShouldSuggest(now time.Time, promptsUsed int, lastSuggested *time.Time) bool {
	if promptsUsed < p.MinPrompts {
		return false
	}
	return lastSuggested == nil || now.Sub(*lastSuggested) > p.Cooldown
}
