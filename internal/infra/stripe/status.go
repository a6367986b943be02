package stripe

import (
	"strings"

	"sanctuary-app/internal/domain/checkout"

	stripego "github.com/stripe/stripe-go/v75"
)

// NormalizeSessionStatus folds Stripe's (status, payment_status) pair into the
// three checkout states. A session counts as paid only once Stripe reports the
// payment settled; "complete" with an unpaid async payment is still open.
func NormalizeSessionStatus(status, paymentStatus string) checkout.Status {
	switch strings.TrimSpace(paymentStatus) {
	case "paid", "no_payment_required":
		return checkout.StatusPaid
	}
	if strings.TrimSpace(status) == "expired" {
		return checkout.StatusExpired
	}
	return checkout.StatusOpen
}

// SessionFromStripe maps a Stripe checkout session to the domain view. The
// product ids travel in the session metadata.
func SessionFromStripe(s *stripego.CheckoutSession) checkout.Session {
	if s == nil {
		return checkout.Session{}
	}
	var ids []string
	if s.Metadata != nil {
		ids = checkout.SplitProductIDs(s.Metadata[metadataProductIDs])
	}
	return checkout.Session{
		ID:          s.ID,
		ProductIDs:  ids,
		Status:      NormalizeSessionStatus(string(s.Status), string(s.PaymentStatus)),
		AmountTotal: s.AmountTotal,
		Currency:    strings.ToLower(string(s.Currency)),
	}
}
