package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by the requested delay instead of sleeping.
type fakeClock struct {
	now    time.Time
	waited time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(d)
	c.waited += d
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func newTestPoller(r Resolver, policy checkout.PollPolicy) (*Poller, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	p := NewPoller(r, policy, nil)
	p.now = clock.Now
	p.after = clock.After
	return p, clock
}

func TestAwaitScenarioOpenThenPaid(t *testing.T) {
	h := newHarness()
	h.processor.nextID = "cs_123"
	_, err := h.gateway.RequestCheckout(context.Background(), mary, []string{"journal-001"})
	require.NoError(t, err)
	h.processor.script["cs_123"] = []checkout.Status{checkout.StatusOpen, checkout.StatusPaid}

	p, clock := newTestPoller(h.gateway, checkout.DefaultPollPolicy())
	final := p.Await(context.Background(), "cs_123")

	assert.Equal(t, checkout.UISuccess, final.State)
	assert.Equal(t, 2, final.Attempts)
	assert.Equal(t, 2*time.Second, clock.waited)
	assert.Equal(t, "$29.99", catalog.FormatAmount(final.Resolution.Session.AmountTotal, final.Resolution.Session.Currency))

	granted, err := h.gateway.CheckAccess(context.Background(), mary, "journal-001")
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestAwaitScenarioNeverLeavesOpen(t *testing.T) {
	h := newHarness()
	h.processor.nextID = "cs_456"
	_, err := h.gateway.RequestCheckout(context.Background(), mary, []string{"journal-001"})
	require.NoError(t, err)

	policy := checkout.PollPolicy{Interval: 2 * time.Second, MaxAttempts: 5}
	p, clock := newTestPoller(h.gateway, policy)
	final := p.Await(context.Background(), "cs_456")

	assert.Equal(t, checkout.UIError, final.State)
	assert.Equal(t, checkout.ActionContactSupport, final.Action)
	assert.Equal(t, 5, final.Attempts)
	assert.LessOrEqual(t, clock.waited, time.Duration(policy.MaxAttempts)*policy.Interval)

	_, gets := h.processor.calls()
	assert.Equal(t, 5, gets)
}

func TestAwaitTerminatesWithinBudgetForAnyPolicy(t *testing.T) {
	policies := []checkout.PollPolicy{
		{Interval: time.Second, MaxAttempts: 1},
		{Interval: 2 * time.Second, MaxAttempts: 10},
		{Interval: 500 * time.Millisecond, Multiplier: 2, MaxInterval: 4 * time.Second, MaxAttempts: 8},
		{Interval: 2 * time.Second, MaxAttempts: 1000, MaxWait: 9 * time.Second},
	}
	for _, policy := range policies {
		h := newHarness()
		h.processor.nextID = "cs_slow"
		_, err := h.gateway.RequestCheckout(context.Background(), mary, []string{"journal-001"})
		require.NoError(t, err)

		p, clock := newTestPoller(h.gateway, policy)
		final := p.Await(context.Background(), "cs_slow")

		assert.Equal(t, checkout.UIError, final.State)
		assert.LessOrEqual(t, final.Attempts, p.Policy().MaxAttempts)
		assert.LessOrEqual(t, clock.waited, p.Policy().Budget())
	}
}

func TestAwaitExpiredAndNotFound(t *testing.T) {
	h := newHarness()
	h.processor.nextID = "cs_exp"
	_, err := h.gateway.RequestCheckout(context.Background(), mary, []string{"journal-001"})
	require.NoError(t, err)
	h.processor.script["cs_exp"] = []checkout.Status{checkout.StatusExpired}

	p, _ := newTestPoller(h.gateway, checkout.DefaultPollPolicy())

	final := p.Await(context.Background(), "cs_exp")
	assert.Equal(t, checkout.UIExpired, final.State)
	assert.Equal(t, checkout.ActionRestartPurchase, final.Action)
	assert.Equal(t, 1, final.Attempts)

	final = p.Await(context.Background(), "cs_unknown")
	assert.Equal(t, checkout.UINotFound, final.State)
	assert.ErrorIs(t, final.Err, checkout.ErrSessionNotFound)
}

func TestAwaitRetriesUpstreamErrorsWithinBudget(t *testing.T) {
	h := newHarness()
	h.processor.getErr = errors.New("503 from processor")

	p, _ := newTestPoller(h.gateway, checkout.PollPolicy{Interval: time.Second, MaxAttempts: 3})
	final := p.Await(context.Background(), "cs_down")

	assert.Equal(t, checkout.UIError, final.State)
	assert.Equal(t, checkout.ActionContactSupport, final.Action)
	assert.Equal(t, 3, final.Attempts)
	assert.ErrorIs(t, final.Err, checkout.ErrUpstreamUnavailable)
}

func TestAwaitStopsOnCancel(t *testing.T) {
	h := newHarness()
	h.processor.nextID = "cs_cancel"
	_, err := h.gateway.RequestCheckout(context.Background(), mary, []string{"journal-001"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPoller(h.gateway, checkout.PollPolicy{Interval: time.Hour, MaxAttempts: 100}, nil)
	final := p.Await(ctx, "cs_cancel")

	assert.Equal(t, checkout.UIError, final.State)
	assert.Equal(t, 1, final.Attempts)
	assert.ErrorIs(t, final.Err, context.Canceled)
}
