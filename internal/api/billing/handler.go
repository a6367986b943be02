package billing

import (
	"context"

	"sanctuary-app/internal/domain/access"
	"sanctuary-app/internal/domain/billing"
	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/domain/users"
	"sanctuary-app/internal/entitlement"
)

// Gateway is the entitlement gateway as the payment routes see it.
type Gateway interface {
	RequestCheckout(ctx context.Context, id *users.Identity, productIDs []string) (entitlement.Checkout, error)
	ResolveCheckout(ctx context.Context, sessionID string) (checkout.Resolution, error)
	AccessPolicy(ctx context.Context, id *users.Identity, resourceID string) (access.Policy, error)
}

type PurchaseLister interface {
	PurchasesFor(ctx context.Context, userID uint) ([]billing.Purchase, error)
}

type Handler struct {
	gateway   Gateway
	purchases PurchaseLister
	policy    checkout.PollPolicy
}

func NewHandler(g Gateway, p PurchaseLister, policy checkout.PollPolicy) *Handler {
	return &Handler{gateway: g, purchases: p, policy: policy.Normalize()}
}
