package contentapi

import (
	"time"

	"sanctuary-app/internal/domain/content"
)

type BlogPostDTO struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content,omitempty"`
	Author        string    `json:"author"`
	FeaturedImage string    `json:"featured_image,omitempty"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
}

func toBlogPostDTO(p content.BlogPost, withBody bool) BlogPostDTO {
	dto := BlogPostDTO{
		ID:            p.ID,
		Title:         p.Title,
		Excerpt:       p.Excerpt,
		Author:        p.Author,
		FeaturedImage: p.FeaturedImage,
		Tags:          p.TagList(),
		CreatedAt:     p.CreatedAt,
	}
	if withBody {
		dto.Content = p.Content
	}
	return dto
}

type ContactRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Email       string `json:"email" binding:"required,email"`
	Subject     string `json:"subject" binding:"max=300"`
	Message     string `json:"message" binding:"required,max=5000"`
	InquiryType string `json:"inquiry_type"`
}

type PromptDTO struct {
	Number  int    `json:"id"`
	Content string `json:"content"`
}

type RoomResponse struct {
	RoomID       string      `json:"room_id"`
	Source       string      `json:"source"`
	Capabilities []string    `json:"capabilities"`
	Prompts      []PromptDTO `json:"prompts"`
}
