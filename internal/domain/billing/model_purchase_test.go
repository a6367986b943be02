package billing

import (
	"testing"

	"sanctuary-app/internal/domain/checkout"

	"github.com/stretchr/testify/assert"
)

func TestPurchaseSessionRoundTripKeepsOrder(t *testing.T) {
	p := NewPurchase(3, checkout.Session{ID: "cs_1", ProductIDs: []string{"b", "a", "c"}, AmountTotal: 100, Currency: "usd"})
	assert.Equal(t, "open", p.Status)

	// rows come back from the database in arbitrary order
	p.Items = []PurchaseItem{p.Items[2], p.Items[0], p.Items[1]}

	s := p.Session()
	assert.Equal(t, []string{"b", "a", "c"}, s.ProductIDs)
	assert.Equal(t, checkout.StatusOpen, s.Status)
	assert.EqualValues(t, 100, s.AmountTotal)
}

func TestPurchaseSessionUnknownStatusIsOpen(t *testing.T) {
	p := Purchase{StripeSessionID: "cs_2", Status: "weird"}
	assert.Equal(t, checkout.StatusOpen, p.Session().Status)
}
