// Package contentapi serves the read-only site content (blog, testimonials,
// room prompts) and accepts contact messages.
package contentapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"sanctuary-app/internal/app/http/middleware"
	"sanctuary-app/internal/domain/content"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxListed = 100

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// GET /api/blog/posts
func (h *Handler) ListBlogPosts(c *gin.Context) {
	var posts []content.BlogPost
	if err := blogPostsQuery(h.db.WithContext(c.Request.Context())).Limit(maxListed).Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}

	out := make([]BlogPostDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, toBlogPostDTO(p, false))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/blog/posts/:id
func (h *Handler) GetBlogPost(c *gin.Context) {
	var post content.BlogPost
	err := h.db.WithContext(c.Request.Context()).First(&post, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Blog post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	c.JSON(http.StatusOK, toBlogPostDTO(post, true))
}

// GET /api/testimonials?featured=true
func (h *Handler) ListTestimonials(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&content.Testimonial{})
	if c.Query("featured") == "true" {
		q = q.Where("is_featured = ?", true)
	}

	var out []content.Testimonial
	if err := q.Order("sort_index ASC, id ASC").Limit(maxListed).Find(&out).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load testimonials"})
		return
	}
	if out == nil {
		out = []content.Testimonial{}
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/contact
func (h *Handler) CreateContactMessage(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := content.ContactMessage{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:     strings.TrimSpace(req.Subject),
		Message:     strings.TrimSpace(req.Message),
		InquiryType: content.NormalizeInquiryType(req.InquiryType),
		Status:      content.MessageStatusNew,
	}
	if msg.Name == "" || msg.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and message are required"})
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	slog.Info("contact message received",
		slog.String("id", msg.ID),
		slog.String("inquiry_type", msg.InquiryType),
	)
	c.JSON(http.StatusCreated, gin.H{"message": "Contact message sent successfully", "id": msg.ID})
}

// GET /api/rooms/:room_id/prompts
//
// Mounted behind middleware.RequireEntitlement, so reaching it means access
// was granted.
func (h *Handler) ListRoomPrompts(c *gin.Context) {
	roomID := c.Param("room_id")

	var prompts []content.RoomPrompt
	if err := roomPromptsQuery(h.db.WithContext(c.Request.Context()), roomID).Find(&prompts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load prompts"})
		return
	}

	resp := RoomResponse{
		RoomID:       roomID,
		Capabilities: []string{},
		Prompts:      make([]PromptDTO, 0, len(prompts)),
	}
	if policy, ok := middleware.PolicyFrom(c); ok {
		resp.Source = string(policy.Source)
		if policy.Capabilities != nil {
			resp.Capabilities = policy.Capabilities
		}
	}
	for _, p := range prompts {
		resp.Prompts = append(resp.Prompts, PromptDTO{Number: p.SortIndex, Content: p.Content})
	}
	c.JSON(http.StatusOK, resp)
}
