package stripewebhooks

import (
	"context"
	"fmt"
	"log/slog"

	"sanctuary-app/internal/domain/checkout"
	stripeinfra "sanctuary-app/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
)

// handleCheckoutSession records what Stripe tells us about a session. The
// ledger ignores anything that would move a settled session backwards, so
// replays and out-of-order deliveries are harmless.
func (h *Handler) handleCheckoutSession(ctx context.Context, eventType string, raw *stripe.CheckoutSession) error {
	if raw.ID == "" {
		return fmt.Errorf("%s: session missing id", eventType)
	}

	userID, err := stripeinfra.UserIDFromSession(raw)
	if err != nil {
		// Not ours (dashboard-created session or a foreign integration).
		// Acknowledge so Stripe stops retrying.
		h.logger.Warn("checkout session without owner",
			slog.String("event", eventType),
			slog.String("session_id", raw.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	session := stripeinfra.SessionFromStripe(raw)
	if eventType == "checkout.session.async_payment_failed" {
		// the customer has to start over with a new session
		session.Status = checkout.StatusExpired
	}

	if err := h.ledger.Settle(ctx, userID, session); err != nil {
		return fmt.Errorf("settle checkout session %s: %w", raw.ID, err)
	}

	h.logger.Info("checkout session observed",
		slog.String("event", eventType),
		slog.String("session_id", session.ID),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("status", string(session.Status)),
	)
	return nil
}
