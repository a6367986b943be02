package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sanctuary-app/internal/app/http/middleware"
	"sanctuary-app/internal/domain/billing"
	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/domain/journal"
	"sanctuary-app/internal/domain/users"
	"sanctuary-app/internal/infra/store"

	"github.com/gin-gonic/gin"
)

type UserStore interface {
	ByID(ctx context.Context, id uint) (users.User, error)
	MarkPremiumSuggested(ctx context.Context, id uint, at time.Time) error
}

type PurchaseLister interface {
	PurchasesFor(ctx context.Context, userID uint) ([]billing.Purchase, error)
}

type Handler struct {
	users      UserStore
	purchases  PurchaseLister
	suggestion journal.SuggestionPolicy
	now        func() time.Time
}

func NewHandler(u UserStore, p PurchaseLister) *Handler {
	return &Handler{users: u, purchases: p, suggestion: journal.DefaultSuggestionPolicy(), now: time.Now}
}

// GET /api/auth/me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, ok := h.load(c)
	if !ok {
		return
	}

	purchases, err := h.purchases.PurchasesFor(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load purchases"})
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		ID:        user.ID,
		Name:      user.DisplayName(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		IsPremium: user.IsPremium,
		Owned:     ownedProducts(purchases),
		CreatedAt: user.CreatedAt,
	})
}

// GET /api/journal/suggestion answers whether the free writing room should
// nudge towards the premium room, and records the nudge when it does.
func (h *Handler) PremiumSuggestion(c *gin.Context) {
	user, ok := h.load(c)
	if !ok {
		return
	}

	resp := SuggestionResponse{PromptUsageCount: user.PromptUsageCount, LastSuggestedAt: user.LastPremiumSuggestedAt}
	now := h.now()
	if !user.IsPremium && h.suggestion.ShouldSuggest(now, user.PromptUsageCount, user.LastPremiumSuggestedAt) {
		if err := h.users.MarkPremiumSuggested(c.Request.Context(), user.ID, now); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record suggestion"})
			return
		}
		resp.Suggest = true
		resp.LastSuggestedAt = &now
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) load(c *gin.Context) (users.User, bool) {
	id := middleware.CurrentIdentity(c)
	if !id.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "action": checkout.ActionLogIn})
		return users.User{}, false
	}

	user, err := h.users.ByID(c.Request.Context(), id.ID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		}
		return users.User{}, false
	}
	return user, true
}

// ownedProducts lists product ids from paid purchases, first purchase first.
func ownedProducts(purchases []billing.Purchase) []string {
	owned := []string{}
	seen := map[string]bool{}
	for i := len(purchases) - 1; i >= 0; i-- {
		s := purchases[i].Session()
		if s.Status != checkout.StatusPaid {
			continue
		}
		for _, id := range s.ProductIDs {
			if !seen[id] {
				seen[id] = true
				owned = append(owned, id)
			}
		}
	}
	return owned
}
