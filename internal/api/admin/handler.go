package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"sanctuary-app/internal/domain/billing"
	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/domain/content"
	"sanctuary-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultPurchaseLimit = 200

type PurchaseStore interface {
	AllPurchases(ctx context.Context, limit int) ([]billing.Purchase, error)
	PurchasesFor(ctx context.Context, userID uint) ([]billing.Purchase, error)
}

type Handler struct {
	db        *gorm.DB
	purchases PurchaseStore
}

func NewHandler(db *gorm.DB, purchases PurchaseStore) *Handler {
	return &Handler{db: db, purchases: purchases}
}

type AdminUser struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	AuthProvider     string    `json:"auth_provider"`
	IsPremium        bool      `json:"is_premium"`
	PromptUsageCount int       `json:"prompt_usage_count"`
	CreatedAt        time.Time `json:"created_at"`
}

type AdminPurchase struct {
	ID         uint     `json:"id"`
	Email      string   `json:"email"`
	SessionID  string   `json:"session_id"`
	ProductIDs []string `json:"product_ids"`
	Status     string   `json:"status"`
	OrderTotal string   `json:"order_total,omitempty"`
	SettledAt  string   `json:"settled_at,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

type AdminStats struct {
	TotalUsers      int              `json:"total_users"`
	PremiumUsers    int              `json:"premium_users"`
	PaidPurchases   int              `json:"paid_purchases"`
	OpenPurchases   int              `json:"open_purchases"`
	Revenue         map[string]int64 `json:"revenue_minor"`
	RecentRevenue   map[string]int64 `json:"recent_revenue_minor"`
	SalesPerProduct map[string]int   `json:"sales_per_product"`
	NewMessages     int              `json:"new_messages"`
}

func toAdminUser(u users.User) AdminUser {
	return AdminUser{
		ID:               u.ID,
		Name:             u.DisplayName(),
		Email:            u.Email,
		Role:             u.Role,
		AuthProvider:     u.AuthProvider,
		IsPremium:        u.IsPremium,
		PromptUsageCount: u.PromptUsageCount,
		CreatedAt:        u.CreatedAt,
	}
}

func toAdminPurchase(p billing.Purchase) AdminPurchase {
	s := p.Session()
	out := AdminPurchase{
		ID:         p.ID,
		Email:      p.User.Email,
		SessionID:  s.ID,
		ProductIDs: s.ProductIDs,
		Status:     string(s.Status),
		CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04"),
	}
	if s.Currency != "" && s.AmountTotal > 0 {
		out.OrderTotal = catalog.FormatAmount(s.AmountTotal, s.Currency)
	}
	if p.SettledAt != nil {
		out.SettledAt = p.SettledAt.Format("2006-01-02 15:04")
	}
	return out
}

// GET /api/admin/users
func (h *Handler) ListAllUsers(c *gin.Context) {
	var all []users.User
	if err := h.db.WithContext(c.Request.Context()).Order("created_at DESC").Find(&all).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	out := make([]AdminUser, 0, len(all))
	for _, u := range all {
		out = append(out, toAdminUser(u))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/admin/purchases?limit=N
func (h *Handler) ListAllPurchases(c *gin.Context) {
	limit := defaultPurchaseLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	rows, err := h.purchases.AllPurchases(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load purchases"})
		return
	}

	out := make([]AdminPurchase, 0, len(rows))
	for _, p := range rows {
		out = append(out, toAdminPurchase(p))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/admin/contact-messages?status=new
func (h *Handler) ListContactMessages(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&content.ContactMessage{})
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var msgs []content.ContactMessage
	if err := q.Order("created_at DESC").Limit(500).Find(&msgs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []content.ContactMessage{}
	}
	c.JSON(http.StatusOK, msgs)
}

// GET /api/admin/stats
func (h *Handler) GetAdminStats(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())

	var totalUsers, premiumUsers, newMessages int64
	db.Model(&users.User{}).Count(&totalUsers)
	db.Model(&users.User{}).Where("is_premium = ?", true).Count(&premiumUsers)
	db.Model(&content.ContactMessage{}).Where("status = ?", content.MessageStatusNew).Count(&newMessages)

	stats := AdminStats{
		TotalUsers:      int(totalUsers),
		PremiumUsers:    int(premiumUsers),
		NewMessages:     int(newMessages),
		Revenue:         map[string]int64{},
		RecentRevenue:   map[string]int64{},
		SalesPerProduct: map[string]int{},
	}

	var purchases []billing.Purchase
	if err := db.Preload("Items").Find(&purchases).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load purchases"})
		return
	}

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	for _, p := range purchases {
		s := p.Session()
		switch s.Status {
		case checkout.StatusOpen:
			stats.OpenPurchases++
		case checkout.StatusPaid:
			stats.PaidPurchases++
			stats.Revenue[s.Currency] += s.AmountTotal
			if p.SettledAt != nil && p.SettledAt.After(thirtyDaysAgo) {
				stats.RecentRevenue[s.Currency] += s.AmountTotal
			}
			for _, id := range s.ProductIDs {
				stats.SalesPerProduct[id]++
			}
		}
	}

	c.JSON(http.StatusOK, stats)
}

// GET /api/admin/users/:id
func (h *Handler) GetUserDetails(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var user users.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	rows, err := h.purchases.PurchasesFor(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch purchases"})
		return
	}
	purchases := make([]AdminPurchase, 0, len(rows))
	for _, p := range rows {
		p.User = user
		purchases = append(purchases, toAdminPurchase(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      toAdminUser(user),
		"purchases": purchases,
	})
}
