package content

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BlogPost struct {
	ID            string    `gorm:"primaryKey;type:varchar(128)" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	FeaturedImage string    `json:"featured_image,omitempty"`
	Tags          string    `json:"-"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TagList splits the comma-joined tag column.
func (p BlogPost) TagList() []string {
	out := []string{}
	for _, t := range strings.Split(p.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type Testimonial struct {
	ID         string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name       string  `gorm:"not null" json:"name"`
	Role       string  `json:"role"`
	Content    string  `json:"content"`
	IsFeatured bool    `gorm:"not null;default:false;index" json:"is_featured"`
	AvatarURL  *string `json:"avatar_url"`
	SortIndex  int     `gorm:"not null;default:0" json:"-"`
}

const (
	InquiryGeneral  = "general"
	InquirySpeaking = "speaking"
	InquiryCoaching = "coaching"
	InquiryMedia    = "media"

	MessageStatusNew = "new"
)

type ContactMessage struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"not null;index" json:"email"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	InquiryType string    `gorm:"type:varchar(20);not null;default:'general'" json:"inquiry_type"`
	Status      string    `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m *ContactMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = MessageStatusNew
	}
	return nil
}

// NormalizeInquiryType falls back to general for anything unknown.
func NormalizeInquiryType(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case InquiryGeneral, InquirySpeaking, InquiryCoaching, InquiryMedia:
		return s
	default:
		return InquiryGeneral
	}
}

// RoomPrompt is one writing prompt inside a gated room.
type RoomPrompt struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	RoomID    string `gorm:"type:varchar(64);not null;index:idx_room_prompts_room_sort,priority:1" json:"room_id"`
	SortIndex int    `gorm:"not null;default:0;index:idx_room_prompts_room_sort,priority:2" json:"-"`
	Content   string `gorm:"not null" json:"content"`
}
