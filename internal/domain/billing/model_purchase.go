package billing

import (
	"cmp"
	"slices"
	"time"

	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/domain/users"
)

// Purchase links a processor checkout session to the identity that started
// it. Status is the last status observed from the processor; the processor
// stays authoritative.
type Purchase struct {
	ID              uint `gorm:"primaryKey"`
	UserID          uint `gorm:"index;not null"`
	User            users.User
	StripeSessionID string         `gorm:"uniqueIndex;not null"`
	Items           []PurchaseItem `gorm:"constraint:OnDelete:CASCADE;"`
	Status          string         `gorm:"type:varchar(20);not null;default:'open';index"`
	AmountTotal     int64
	Currency        string `gorm:"type:varchar(3)"`
	SettledAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type PurchaseItem struct {
	ID         uint   `gorm:"primaryKey"`
	PurchaseID uint   `gorm:"not null;index;uniqueIndex:idx_purchase_items_product,priority:1"`
	ProductID  string `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_purchase_items_product,priority:2"`
	Position   int    `gorm:"not null;default:0"`
}

// Session converts the stored row into the domain view.
func (p Purchase) Session() checkout.Session {
	status, ok := checkout.ParseStatus(p.Status)
	if !ok {
		status = checkout.StatusOpen
	}
	ids := make([]string, 0, len(p.Items))
	for _, it := range orderedItems(p.Items) {
		ids = append(ids, it.ProductID)
	}
	return checkout.Session{
		ID:          p.StripeSessionID,
		ProductIDs:  ids,
		Status:      status,
		AmountTotal: p.AmountTotal,
		Currency:    p.Currency,
	}
}

func orderedItems(items []PurchaseItem) []PurchaseItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b PurchaseItem) int {
		return cmp.Compare(a.Position, b.Position)
	})
	return out
}

// NewPurchase builds the row recorded when a session is created.
func NewPurchase(userID uint, s checkout.Session) Purchase {
	items := make([]PurchaseItem, 0, len(s.ProductIDs))
	for i, id := range s.ProductIDs {
		items = append(items, PurchaseItem{ProductID: id, Position: i})
	}
	status := s.Status
	if status == "" {
		status = checkout.StatusOpen
	}
	return Purchase{
		UserID:          userID,
		StripeSessionID: s.ID,
		Items:           items,
		Status:          string(status),
		AmountTotal:     s.AmountTotal,
		Currency:        s.Currency,
	}
}
