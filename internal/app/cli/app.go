package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sanctuary-app/config"
	"sanctuary-app/database"
	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/entitlement"
	stripeinfra "sanctuary-app/internal/infra/stripe"
	"sanctuary-app/internal/infra/store"

	"gorm.io/gorm"
)

func openDB() (*gorm.DB, error) {
	db, err := database.InitDB(config.DB_URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// newGateway wires the Stripe processor and the gorm-backed catalog and
// ledger into a gateway.
func newGateway(db *gorm.DB, opts ...entitlement.Option) (*entitlement.Gateway, error) {
	var processor entitlement.PaymentProcessor = disabledProcessor{}
	if config.STRIPE_SECRET_KEY == "" {
		slog.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	} else {
		p, err := stripeinfra.NewProcessor(stripeinfra.Config{
			SecretKey: config.STRIPE_SECRET_KEY,
			AppURL:    config.APP_URL,
			AppEnv:    config.APP_ENV,
			Timeout:   config.PAYMENT_TIMEOUT,
		})
		if err != nil {
			return nil, err
		}
		processor = p
	}

	opts = append([]entitlement.Option{
		entitlement.WithLogger(slog.Default()),
		entitlement.WithProcessorTimeout(config.PAYMENT_TIMEOUT),
	}, opts...)
	return entitlement.NewGateway(processor, store.NewCatalog(db), store.NewLedger(db), opts...), nil
}

var errStripeNotConfigured = errors.New("stripe not configured")

// disabledProcessor stands in when no Stripe key is set, so the content API
// still serves while every checkout answers with the retry action.
type disabledProcessor struct{}

func (disabledProcessor) CreateSession(context.Context, entitlement.SessionRequest) (entitlement.CreatedSession, error) {
	return entitlement.CreatedSession{}, errStripeNotConfigured
}

func (disabledProcessor) GetSession(context.Context, string) (checkout.Session, error) {
	return checkout.Session{}, errStripeNotConfigured
}
