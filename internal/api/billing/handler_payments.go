package billing

import (
	"net/http"
	"time"

	"sanctuary-app/internal/api/respond"
	"sanctuary-app/internal/app/http/middleware"
	"sanctuary-app/internal/domain/access"
	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"

	"github.com/gin-gonic/gin"
)

type purchaseDTO struct {
	SessionID   string     `json:"session_id"`
	Status      string     `json:"status"`
	ProductIDs  []string   `json:"product_ids"`
	AmountTotal int64      `json:"amount_total"`
	Currency    string     `json:"currency"`
	OrderTotal  string     `json:"order_total,omitempty"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// GET /api/payments/purchases
func (h *Handler) GetPurchaseHistory(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	if !id.Authenticated() {
		respond.Error(c, checkout.ErrUnauthenticated)
		return
	}

	rows, err := h.purchases.PurchasesFor(c.Request.Context(), id.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load purchases"})
		return
	}

	out := make([]purchaseDTO, 0, len(rows))
	for _, p := range rows {
		s := p.Session()
		dto := purchaseDTO{
			SessionID:   s.ID,
			Status:      string(s.Status),
			ProductIDs:  s.ProductIDs,
			AmountTotal: s.AmountTotal,
			Currency:    s.Currency,
			SettledAt:   p.SettledAt,
			CreatedAt:   p.CreatedAt,
		}
		if s.Currency != "" && s.AmountTotal > 0 {
			dto.OrderTotal = catalog.FormatAmount(s.AmountTotal, s.Currency)
		}
		out = append(out, dto)
	}

	c.JSON(http.StatusOK, out)
}

// GET /api/access/:resource_id
func (h *Handler) CheckAccess(c *gin.Context) {
	resourceID := c.Param("resource_id")

	policy, err := h.gateway.AccessPolicy(c.Request.Context(), middleware.CurrentIdentity(c), resourceID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	caps := policy.Capabilities
	if caps == nil {
		caps = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"resource_id":  resourceID,
		"granted":      policy.State == access.AccessGranted,
		"state":        policy.State,
		"source":       policy.Source,
		"view_mode":    policy.ViewMode,
		"session_id":   policy.SessionID,
		"capabilities": caps,
	})
}
