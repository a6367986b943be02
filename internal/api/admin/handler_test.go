package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/domain/content"
	"sanctuary-app/internal/domain/users"
	"sanctuary-app/internal/infra/store"
	"sanctuary-app/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, users.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	ctx := t.Context()

	buyer := users.User{FirstName: "Sam", LastName: "Lee", Email: "sam@example.com"}
	member := users.User{FirstName: "Demo", Email: "demo@example.com", IsPremium: true}
	require.NoError(t, db.Create(&buyer).Error)
	require.NoError(t, db.Create(&member).Error)

	ledger := store.NewLedger(db)
	require.NoError(t, ledger.Record(ctx, buyer.ID, checkout.Session{ID: "cs_paid", ProductIDs: []string{"journal-001"}, AmountTotal: 2999, Currency: "usd"}))
	require.NoError(t, ledger.Observe(ctx, checkout.Session{ID: "cs_paid", Status: checkout.StatusPaid}))
	require.NoError(t, ledger.Record(ctx, buyer.ID, checkout.Session{ID: "cs_open", ProductIDs: []string{"ebook-002"}, AmountTotal: 1999, Currency: "usd"}))

	require.NoError(t, db.Create(&[]content.ContactMessage{
		{Name: "A", Email: "a@example.com", Message: "hi"},
		{Name: "B", Email: "b@example.com", Message: "done", Status: "replied"},
	}).Error)

	h := NewHandler(db, ledger)
	r := gin.New()
	r.GET("/users", h.ListAllUsers)
	r.GET("/users/:id", h.GetUserDetails)
	r.GET("/purchases", h.ListAllPurchases)
	r.GET("/stats", h.GetAdminStats)
	r.GET("/contact-messages", h.ListContactMessages)
	return r, buyer
}

func getJSON(t *testing.T, r *gin.Engine, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestListAllPurchases(t *testing.T) {
	r, _ := newRouter(t)

	var out []AdminPurchase
	require.Equal(t, http.StatusOK, getJSON(t, r, "/purchases", &out))
	require.Len(t, out, 2)

	bySession := map[string]AdminPurchase{}
	for _, p := range out {
		bySession[p.SessionID] = p
	}
	assert.Equal(t, "paid", bySession["cs_paid"].Status)
	assert.Equal(t, "$29.99", bySession["cs_paid"].OrderTotal)
	assert.Equal(t, "sam@example.com", bySession["cs_paid"].Email)
	assert.NotEmpty(t, bySession["cs_paid"].SettledAt)
	assert.Empty(t, bySession["cs_open"].SettledAt)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, r, "/purchases?limit=zero", nil))
}

func TestAdminStats(t *testing.T) {
	r, _ := newRouter(t)

	var stats AdminStats
	require.Equal(t, http.StatusOK, getJSON(t, r, "/stats", &stats))
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.PremiumUsers)
	assert.Equal(t, 1, stats.PaidPurchases)
	assert.Equal(t, 1, stats.OpenPurchases)
	assert.Equal(t, int64(2999), stats.Revenue["usd"])
	assert.Equal(t, int64(2999), stats.RecentRevenue["usd"])
	assert.Equal(t, map[string]int{"journal-001": 1}, stats.SalesPerProduct)
	assert.Equal(t, 1, stats.NewMessages)
}

func TestContactMessagesByStatus(t *testing.T) {
	r, _ := newRouter(t)

	var all, fresh []content.ContactMessage
	require.Equal(t, http.StatusOK, getJSON(t, r, "/contact-messages", &all))
	assert.Len(t, all, 2)
	require.Equal(t, http.StatusOK, getJSON(t, r, "/contact-messages?status=new", &fresh))
	require.Len(t, fresh, 1)
	assert.Equal(t, "A", fresh[0].Name)
}

func TestUserDetails(t *testing.T) {
	r, buyer := newRouter(t)

	var out struct {
		User      AdminUser       `json:"user"`
		Purchases []AdminPurchase `json:"purchases"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, r, "/users/"+itoa(buyer.ID), &out))
	assert.Equal(t, "Sam Lee", out.User.Name)
	assert.Len(t, out.Purchases, 2)

	assert.Equal(t, http.StatusNotFound, getJSON(t, r, "/users/9999", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, r, "/users/abc", nil))

	var list []AdminUser
	require.Equal(t, http.StatusOK, getJSON(t, r, "/users", &list))
	assert.Len(t, list, 2)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
