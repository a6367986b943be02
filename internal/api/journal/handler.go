package journalapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sanctuary-app/internal/api/respond"
	"sanctuary-app/internal/app/http/middleware"
	"sanctuary-app/internal/domain/journal"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PromptCounter tracks how many prompts a user has written to.
type PromptCounter interface {
	CountPromptUse(ctx context.Context, userID uint) (int, error)
}

type Handler struct {
	db      *gorm.DB
	prompts PromptCounter
	gate    middleware.AccessGate
}

func NewHandler(db *gorm.DB, prompts PromptCounter, gate middleware.AccessGate) *Handler {
	return &Handler{db: db, prompts: prompts, gate: gate}
}

type EntryRequest struct {
	Title    string  `json:"title" binding:"required,max=300"`
	Content  string  `json:"content" binding:"required"`
	Mood     *string `json:"mood"`
	PromptID *int    `json:"prompt_id"`
	RoomID   *string `json:"room_id"`
}

func mustUserID(c *gin.Context) (uint, bool) {
	id := middleware.CurrentIdentity(c)
	if !id.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "action": "log_in"})
		return 0, false
	}
	return id.ID, true
}

// roomAllowed makes writing into a room go through the same gate as reading
// its prompts.
func (h *Handler) roomAllowed(c *gin.Context, roomID *string) bool {
	if roomID == nil || *roomID == "" {
		return true
	}
	policy, err := h.gate.AccessPolicy(c.Request.Context(), middleware.CurrentIdentity(c), *roomID)
	if err != nil {
		respond.Error(c, err)
		return false
	}
	if !policy.Granted() {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Purchase required", "resource_id": *roomID, "state": policy.State})
		return false
	}
	return true
}

// GET /api/journal/entries
func (h *Handler) ListEntries(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var entries []journal.Entry
	err := userEntriesQuery(h.db.WithContext(c.Request.Context()), userID).
		Order("created_at DESC").
		Limit(journal.MaxListed).
		Find(&entries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load entries"})
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

// GET /api/journal/entries/:id
func (h *Handler) GetEntry(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var entry journal.Entry
	err := userEntriesQuery(h.db.WithContext(c.Request.Context()), userID).
		First(&entry, "id = ?", c.Param("id")).Error
	if err != nil {
		entryError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// POST /api/journal/entries
func (h *Handler) CreateEntry(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.roomAllowed(c, req.RoomID) {
		return
	}

	entry := journal.Entry{
		UserID:   userID,
		RoomID:   emptyToNil(req.RoomID),
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Mood:     emptyToNil(req.Mood),
		PromptID: req.PromptID,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save entry"})
		return
	}

	resp := gin.H{"message": "Journal entry created successfully", "entry_id": entry.ID, "entry": entry}
	if entry.PromptID != nil && entry.RoomID == nil {
		count, err := h.prompts.CountPromptUse(c.Request.Context(), userID)
		if err != nil {
			// the entry is saved; a missed count only delays the suggestion
			slog.Warn("prompt usage not counted", slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
		} else {
			resp["prompt_usage_count"] = count
		}
	}
	c.JSON(http.StatusCreated, resp)
}

// PUT /api/journal/entries/:id
func (h *Handler) UpdateEntry(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := userEntriesQuery(h.db.WithContext(c.Request.Context()), userID).
		Where("id = ?", c.Param("id")).
		Updates(map[string]any{
			"title":      strings.TrimSpace(req.Title),
			"content":    req.Content,
			"mood":       emptyToNil(req.Mood),
			"prompt_id":  req.PromptID,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update entry"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Journal entry updated successfully"})
}

// DELETE /api/journal/entries/:id
func (h *Handler) DeleteEntry(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		Delete(&journal.Entry{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete entry"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Journal entry deleted successfully"})
}

func entryError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load entry"})
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
