package stripewebhooks

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/domain/users"
	"sanctuary-app/internal/infra/store"
	"sanctuary-app/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75/webhook"
)

const testSecret = "whsec_test"

func sessionEvent(eventType, sessionID, status, paymentStatus, userID string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": "evt_%[2]s_%[1]s",
  "object": "event",
  "api_version": "2023-10-16",
  "type": %[1]q,
  "data": {"object": {
    "id": %[2]q,
    "object": "checkout.session",
    "status": %[3]q,
    "payment_status": %[4]q,
    "amount_total": 2999,
    "currency": "usd",
    "client_reference_id": %[5]q,
    "metadata": {"product_ids": "journal-001", "user_id": %[5]q}
  }}
}`, eventType, sessionID, status, paymentStatus, userID))
}

type fixture struct {
	router *gin.Engine
	ledger *store.Ledger
	user   users.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	u := users.User{FirstName: "Sam", Email: "sam@example.com"}
	require.NoError(t, db.Create(&u).Error)

	ledger := store.NewLedger(db)
	r := gin.New()
	r.POST("/webhook", NewHandler(ledger, testSecret).StripeWebhook)
	return &fixture{router: r, ledger: ledger, user: u}
}

func (f *fixture) deliver(t *testing.T, payload []byte, secret string) *httptest.ResponseRecorder {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) uid() string {
	return fmt.Sprint(f.user.ID)
}

func TestCompletedPaidSessionIsSettled(t *testing.T) {
	f := newFixture(t)

	rec := f.deliver(t, sessionEvent("checkout.session.completed", "cs_123", "complete", "paid", f.uid()), testSecret)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	s, ok, err := f.ledger.Lookup(t.Context(), "cs_123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, checkout.StatusPaid, s.Status)
	assert.Equal(t, []string{"journal-001"}, s.ProductIDs)
	assert.EqualValues(t, 2999, s.AmountTotal)

	// a late expiry must not undo the payment
	rec = f.deliver(t, sessionEvent("checkout.session.expired", "cs_123", "expired", "unpaid", f.uid()), testSecret)
	require.Equal(t, http.StatusOK, rec.Code)
	s, _, _ = f.ledger.Lookup(t.Context(), "cs_123")
	assert.Equal(t, checkout.StatusPaid, s.Status)
}

func TestAsyncPaymentSettlesLater(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.deliver(t, sessionEvent("checkout.session.completed", "cs_ach", "complete", "unpaid", f.uid()), testSecret).Code)
	s, ok, _ := f.ledger.Lookup(t.Context(), "cs_ach")
	require.True(t, ok)
	assert.Equal(t, checkout.StatusOpen, s.Status)

	require.Equal(t, http.StatusOK, f.deliver(t, sessionEvent("checkout.session.async_payment_succeeded", "cs_ach", "complete", "paid", f.uid()), testSecret).Code)
	s, _, _ = f.ledger.Lookup(t.Context(), "cs_ach")
	assert.Equal(t, checkout.StatusPaid, s.Status)
}

func TestAsyncPaymentFailureExpiresSession(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.deliver(t, sessionEvent("checkout.session.async_payment_failed", "cs_fail", "complete", "unpaid", f.uid()), testSecret).Code)
	s, ok, _ := f.ledger.Lookup(t.Context(), "cs_fail")
	require.True(t, ok)
	assert.Equal(t, checkout.StatusExpired, s.Status)
}

func TestRejectsBadSignature(t *testing.T) {
	f := newFixture(t)

	rec := f.deliver(t, sessionEvent("checkout.session.completed", "cs_forged", "complete", "paid", f.uid()), "whsec_other")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, ok, err := f.ledger.Lookup(t.Context(), "cs_forged")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAcknowledgesForeignAndUnknownEvents(t *testing.T) {
	f := newFixture(t)

	rec := f.deliver(t, sessionEvent("checkout.session.completed", "cs_dash", "complete", "paid", ""), testSecret)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, ok, _ := f.ledger.Lookup(t.Context(), "cs_dash")
	assert.False(t, ok)

	rec = f.deliver(t, []byte(`{"id":"evt_1","object":"event","type":"invoice.paid","data":{"object":{}}}`), testSecret)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
}

func TestMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook", NewHandler(nil, "").StripeWebhook)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString("{}")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
