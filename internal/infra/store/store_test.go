package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/domain/users"
	"sanctuary-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email string) users.User {
	t.Helper()
	u := users.User{FirstName: "Sam", LastName: "Rivera", Email: email, Role: users.RoleUser, AuthProvider: users.ProviderLocal}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedProducts(t *testing.T, db *gorm.DB) {
	t.Helper()
	products := []catalog.Product{
		{ID: "journal-001", Name: "Guided Journal", UnitAmount: 2999, Currency: "usd", Category: catalog.CategoryJournal, SortIndex: 1},
		{ID: "ebook-002", Name: "Say Yes", UnitAmount: 1999, Currency: "usd", Category: catalog.CategoryEbook, SortIndex: 0},
		{ID: "yes-and-room", Name: "Yes, And Room", UnitAmount: 999, Currency: "usd", Category: catalog.CategoryRoom},
	}
	require.NoError(t, db.Create(&products).Error)
}

func TestLedgerRecordAndLookup(t *testing.T) {
	db := testutil.OpenDB(t)
	u := seedUser(t, db, "sam@example.com")
	l := NewLedger(db)
	ctx := context.Background()

	s := checkout.Session{ID: "cs_123", ProductIDs: []string{"journal-001", "ebook-002"}, Status: checkout.StatusOpen, AmountTotal: 4998, Currency: "usd"}
	require.NoError(t, l.Record(ctx, u.ID, s))
	require.NoError(t, l.Record(ctx, u.ID, s), "recording twice is a no-op")

	got, ok, err := l.Lookup(ctx, "cs_123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s, got)

	_, ok, err = l.Lookup(ctx, "cs_missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedgerObserveIsMonotonic(t *testing.T) {
	db := testutil.OpenDB(t)
	u := seedUser(t, db, "sam@example.com")
	l := NewLedger(db)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, u.ID, checkout.Session{ID: "cs_123", ProductIDs: []string{"journal-001"}, Status: checkout.StatusOpen}))

	// open observations are not stored
	require.NoError(t, l.Observe(ctx, checkout.Session{ID: "cs_123", Status: checkout.StatusOpen}))

	require.NoError(t, l.Observe(ctx, checkout.Session{ID: "cs_123", Status: checkout.StatusPaid, AmountTotal: 2999, Currency: "usd"}))
	require.NoError(t, l.Observe(ctx, checkout.Session{ID: "cs_123", Status: checkout.StatusExpired}))

	got, ok, err := l.Lookup(ctx, "cs_123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, checkout.StatusPaid, got.Status)
	assert.EqualValues(t, 2999, got.AmountTotal)

	rows, err := l.PurchasesFor(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].SettledAt)
}

func TestLedgerSettleRecordsUnknownSession(t *testing.T) {
	db := testutil.OpenDB(t)
	u := seedUser(t, db, "sam@example.com")
	l := NewLedger(db)
	ctx := context.Background()

	s := checkout.Session{ID: "cs_hook", ProductIDs: []string{"ebook-002"}, Status: checkout.StatusPaid, AmountTotal: 1999, Currency: "usd"}
	require.NoError(t, l.Settle(ctx, u.ID, s))
	require.NoError(t, l.Settle(ctx, u.ID, s))

	got, ok, err := l.Lookup(ctx, "cs_hook")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, checkout.StatusPaid, got.Status)

	all, err := l.AllPurchases(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "sam@example.com", all[0].User.Email)
}

func TestLedgerSessionsFor(t *testing.T) {
	db := testutil.OpenDB(t)
	sam := seedUser(t, db, "sam@example.com")
	alex := seedUser(t, db, "alex@example.com")
	l := NewLedger(db)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, sam.ID, checkout.Session{ID: "cs_a", ProductIDs: []string{"journal-001"}, Status: checkout.StatusOpen}))
	require.NoError(t, l.Record(ctx, sam.ID, checkout.Session{ID: "cs_b", ProductIDs: []string{"ebook-002", "journal-001"}, Status: checkout.StatusOpen}))
	require.NoError(t, l.Record(ctx, sam.ID, checkout.Session{ID: "cs_c", ProductIDs: []string{"ebook-002"}, Status: checkout.StatusOpen}))
	require.NoError(t, l.Record(ctx, alex.ID, checkout.Session{ID: "cs_d", ProductIDs: []string{"journal-001"}, Status: checkout.StatusOpen}))

	got, err := l.SessionsFor(ctx, sam.ID, "journal-001")
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
		assert.True(t, s.Contains("journal-001"))
	}
	assert.ElementsMatch(t, []string{"cs_a", "cs_b"}, ids)

	none, err := l.SessionsFor(ctx, alex.ID, "ebook-002")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalog(t *testing.T) {
	db := testutil.OpenDB(t)
	seedProducts(t, db)
	c := NewCatalog(db)
	ctx := context.Background()

	listed, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "ebook-002", listed[0].ID)
	assert.Equal(t, "journal-001", listed[1].ID)

	room, err := c.Product(ctx, "yes-and-room")
	require.NoError(t, err)
	assert.Equal(t, catalog.CategoryRoom, room.Category)

	_, err = c.Product(ctx, "nope")
	assert.True(t, errors.Is(err, checkout.ErrUnknownProduct))

	some, err := c.ProductsByIDs(ctx, []string{"journal-001", "nope"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.EqualValues(t, 2999, some[0].UnitAmount)
}

func TestUsersPromptUsage(t *testing.T) {
	db := testutil.OpenDB(t)
	u := seedUser(t, db, "sam@example.com")
	s := NewUsers(db)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		n, err := s.CountPromptUse(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.MarkPremiumSuggested(ctx, u.ID, at))

	got, err := s.ByEmail(ctx, " SAM@example.com ")
	require.NoError(t, err)
	require.NotNil(t, got.LastPremiumSuggestedAt)
	assert.True(t, at.Equal(*got.LastPremiumSuggestedAt))

	id, err := s.Identity(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam Rivera", id.Name)
	assert.True(t, id.Authenticated())

	_, err = s.ByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.CountPromptUse(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
