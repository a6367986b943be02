// Package store holds the gorm-backed implementations of the entitlement
// gateway's collaborators.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sanctuary-app/internal/domain/billing"
	"sanctuary-app/internal/domain/checkout"

	"gorm.io/gorm"
)

// Ledger records which identity started which checkout session and the last
// status observed for it. Rows only ever move open -> paid|expired.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// Record stores a newly created session. Recording the same session twice is
// a no-op.
func (l *Ledger) Record(ctx context.Context, userID uint, s checkout.Session) error {
	if s.ID == "" {
		return errors.New("session id required")
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing billing.Purchase
		err := tx.Where("stripe_session_id = ?", s.ID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup purchase: %w", err)
		}

		p := billing.NewPurchase(userID, s)
		if s.Status == checkout.StatusPaid {
			now := l.now()
			p.SettledAt = &now
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		return nil
	})
}

func (l *Ledger) Lookup(ctx context.Context, sessionID string) (checkout.Session, bool, error) {
	var p billing.Purchase
	err := l.db.WithContext(ctx).
		Preload("Items").
		Where("stripe_session_id = ?", sessionID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return checkout.Session{}, false, nil
	}
	if err != nil {
		return checkout.Session{}, false, fmt.Errorf("lookup purchase: %w", err)
	}
	return p.Session(), true, nil
}

// Observe stores a terminal observation. Only rows still open are touched, so
// a late or replayed observation can never rewrite a settled session.
func (l *Ledger) Observe(ctx context.Context, s checkout.Session) error {
	if !s.Status.Terminal() {
		return nil
	}

	updates := map[string]any{"status": string(s.Status)}
	if s.AmountTotal > 0 {
		updates["amount_total"] = s.AmountTotal
	}
	if s.Currency != "" {
		updates["currency"] = s.Currency
	}
	if s.Status == checkout.StatusPaid {
		updates["settled_at"] = l.now()
	}

	err := l.db.WithContext(ctx).
		Model(&billing.Purchase{}).
		Where("stripe_session_id = ? AND status = ?", s.ID, string(checkout.StatusOpen)).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("observe purchase %s: %w", s.ID, err)
	}
	return nil
}

// Settle is the webhook path: it records the session if the create-time
// write never happened, then applies the observation.
func (l *Ledger) Settle(ctx context.Context, userID uint, s checkout.Session) error {
	if err := l.Record(ctx, userID, s); err != nil {
		return err
	}
	return l.Observe(ctx, s)
}

func (l *Ledger) SessionsFor(ctx context.Context, userID uint, productID string) ([]checkout.Session, error) {
	sub := l.db.Model(&billing.PurchaseItem{}).Select("purchase_id").Where("product_id = ?", productID)

	var rows []billing.Purchase
	err := l.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND id IN (?)", userID, sub).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}

	out := make([]checkout.Session, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.Session())
	}
	return out, nil
}

// PurchasesFor lists a user's purchases, newest first.
func (l *Ledger) PurchasesFor(ctx context.Context, userID uint) ([]billing.Purchase, error) {
	var rows []billing.Purchase
	err := l.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}
	return rows, nil
}

// AllPurchases backs the admin listing.
func (l *Ledger) AllPurchases(ctx context.Context, limit int) ([]billing.Purchase, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	var rows []billing.Purchase
	err := l.db.WithContext(ctx).
		Preload("User").
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}
	return rows, nil
}
