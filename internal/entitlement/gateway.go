// Package entitlement decides when an identity may use a gated resource and
// drives the checkout-to-unlock flow. It owns no authoritative state: session
// status lives with the payment processor, and the ledger only remembers which
// identity started which session plus terminal observations.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sanctuary-app/internal/domain/access"
	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/domain/users"
)

// SessionRequest is what the processor needs to open a checkout session.
type SessionRequest struct {
	Identity users.Identity
	Products []catalog.Product
	Currency string
}

// CreatedSession is the processor's answer to SessionRequest.
type CreatedSession struct {
	ID          string
	RedirectURL string
	AmountTotal int64
	Currency    string
}

// PaymentProcessor is the external payment collaborator. GetSession returns
// an error wrapping checkout.ErrSessionNotFound for unknown ids; any other
// error is treated as the processor being unavailable.
type PaymentProcessor interface {
	CreateSession(ctx context.Context, req SessionRequest) (CreatedSession, error)
	GetSession(ctx context.Context, sessionID string) (checkout.Session, error)
}

// Catalog resolves product ids. Missing ids are simply absent from the result.
type Catalog interface {
	ProductsByIDs(ctx context.Context, ids []string) ([]catalog.Product, error)
	Product(ctx context.Context, id string) (catalog.Product, error)
}

// Ledger remembers which identity started which session.
type Ledger interface {
	Record(ctx context.Context, userID uint, s checkout.Session) error
	Lookup(ctx context.Context, sessionID string) (checkout.Session, bool, error)
	// Observe stores a processor observation; it must never move a session out
	// of a terminal state.
	Observe(ctx context.Context, s checkout.Session) error
	SessionsFor(ctx context.Context, userID uint, productID string) ([]checkout.Session, error)
}

// Recorder receives gateway metrics.
type Recorder interface {
	RecordCheckoutRequest(result string)
	RecordResolution(outcome checkout.Outcome)
	RecordAccessCheck(state access.AccessState)
	RecordProcessorLatency(op string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordCheckoutRequest(string)                 {}
func (nopRecorder) RecordResolution(checkout.Outcome)            {}
func (nopRecorder) RecordAccessCheck(access.AccessState)         {}
func (nopRecorder) RecordProcessorLatency(string, time.Duration) {}

// Checkout is what RequestCheckout hands back to the visitor.
type Checkout struct {
	SessionID   string
	RedirectURL string
}

type Gateway struct {
	processor PaymentProcessor
	catalog   Catalog
	ledger    Ledger
	metrics   Recorder
	logger    *slog.Logger
	timeout   time.Duration
}

type Option func(*Gateway)

func WithRecorder(r Recorder) Option {
	return func(g *Gateway) {
		if r != nil {
			g.metrics = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithProcessorTimeout bounds every processor call. Zero disables the bound.
func WithProcessorTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

func NewGateway(p PaymentProcessor, c Catalog, l Ledger, opts ...Option) *Gateway {
	g := &Gateway{
		processor: p,
		catalog:   c,
		ledger:    l,
		metrics:   nopRecorder{},
		logger:    slog.Default(),
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequestCheckout opens a processor session for productIDs on behalf of id.
// Identity and product validation happen before the processor is contacted.
func (g *Gateway) RequestCheckout(ctx context.Context, id *users.Identity, productIDs []string) (Checkout, error) {
	if !id.Authenticated() {
		g.metrics.RecordCheckoutRequest("unauthenticated")
		return Checkout{}, checkout.ErrUnauthenticated
	}

	ids := checkout.NormalizeProductIDs(productIDs)
	if len(ids) == 0 {
		g.metrics.RecordCheckoutRequest("invalid")
		return Checkout{}, checkout.ErrNoProducts
	}

	products, err := g.orderedProducts(ctx, ids)
	if err != nil {
		g.metrics.RecordCheckoutRequest("invalid")
		return Checkout{}, err
	}

	currency := products[0].Currency
	for _, p := range products[1:] {
		if p.Currency != currency {
			g.metrics.RecordCheckoutRequest("invalid")
			return Checkout{}, fmt.Errorf("%w: %s and %s", checkout.ErrMixedCurrency, currency, p.Currency)
		}
	}

	pctx, cancel := g.processorContext(ctx)
	defer cancel()

	started := time.Now()
	created, err := g.processor.CreateSession(pctx, SessionRequest{Identity: *id, Products: products, Currency: currency})
	g.metrics.RecordProcessorLatency("create_session", time.Since(started))
	if err != nil {
		g.metrics.RecordCheckoutRequest("upstream_error")
		g.logger.Error("checkout session create failed",
			slog.Uint64("user_id", uint64(id.ID)),
			slog.Any("product_ids", ids),
			slog.String("error", err.Error()),
		)
		return Checkout{}, fmt.Errorf("create checkout session: %w", errors.Join(checkout.ErrUpstreamUnavailable, err))
	}

	session := checkout.Session{
		ID:          created.ID,
		ProductIDs:  ids,
		Status:      checkout.StatusOpen,
		AmountTotal: created.AmountTotal,
		Currency:    created.Currency,
	}
	if err := g.ledger.Record(ctx, id.ID, session); err != nil {
		// The processor session will expire on its own; the webhook can still
		// attach it to the user through client_reference_id.
		g.metrics.RecordCheckoutRequest("ledger_error")
		return Checkout{}, fmt.Errorf("record checkout session: %w", err)
	}

	g.metrics.RecordCheckoutRequest("created")
	g.logger.Info("checkout session created",
		slog.Uint64("user_id", uint64(id.ID)),
		slog.String("session_id", created.ID),
		slog.Any("product_ids", ids),
	)

	return Checkout{SessionID: created.ID, RedirectURL: created.RedirectURL}, nil
}

func (g *Gateway) orderedProducts(ctx context.Context, ids []string) ([]catalog.Product, error) {
	found, err := g.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[string]catalog.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", checkout.ErrUnknownProduct, id)
		}
		out = append(out, p)
	}
	return out, nil
}

// ResolveCheckout reports the current state of a session. Terminal states
// already observed are answered from the ledger; everything else is a
// read-through to the processor.
func (g *Gateway) ResolveCheckout(ctx context.Context, sessionID string) (checkout.Resolution, error) {
	res, err := g.resolve(ctx, sessionID)
	g.metrics.RecordResolution(res.Outcome)
	return res, err
}

func (g *Gateway) resolve(ctx context.Context, sessionID string) (checkout.Resolution, error) {
	if !checkout.ValidSessionID(sessionID) {
		return checkout.Resolution{Outcome: checkout.OutcomeNotFound}, checkout.ErrSessionNotFound
	}

	known, ok, err := g.ledger.Lookup(ctx, sessionID)
	if err != nil {
		g.logger.Warn("ledger lookup failed", slog.String("session_id", sessionID), slog.String("error", err.Error()))
		ok = false
	}
	if ok && known.Status.Terminal() {
		return checkout.ResolutionFor(known), nil
	}

	pctx, cancel := g.processorContext(ctx)
	defer cancel()

	started := time.Now()
	observed, err := g.processor.GetSession(pctx, sessionID)
	g.metrics.RecordProcessorLatency("get_session", time.Since(started))
	if err != nil {
		if errors.Is(err, checkout.ErrSessionNotFound) {
			return checkout.Resolution{Outcome: checkout.OutcomeNotFound}, checkout.ErrSessionNotFound
		}
		g.logger.Error("checkout session retrieve failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return checkout.Resolution{Outcome: checkout.OutcomeError}, fmt.Errorf("retrieve checkout session: %w", errors.Join(checkout.ErrUpstreamUnavailable, err))
	}

	session := observed
	if ok {
		session = known.Observe(observed)
	}

	if ok && session.Status != known.Status {
		if err := g.ledger.Observe(ctx, session); err != nil {
			g.logger.Warn("ledger observe failed", slog.String("session_id", sessionID), slog.String("error", err.Error()))
		}
	}

	return checkout.ResolutionFor(session), nil
}

// CheckAccess is the single gate before any protected view.
func (g *Gateway) CheckAccess(ctx context.Context, id *users.Identity, resourceID string) (bool, error) {
	p, err := g.AccessPolicy(ctx, id, resourceID)
	return p.Granted(), err
}

// AccessPolicy is CheckAccess with the reasoning attached. Open sessions are
// resolved read-through so a payment settled since the last look counts.
func (g *Gateway) AccessPolicy(ctx context.Context, id *users.Identity, resourceID string) (access.Policy, error) {
	if !id.Authenticated() {
		g.metrics.RecordAccessCheck(access.AccessLocked)
		return access.Policy{ResourceID: resourceID, State: access.AccessLocked}, checkout.ErrUnauthenticated
	}

	product, err := g.catalog.Product(ctx, resourceID)
	if err != nil {
		return access.Policy{ResourceID: resourceID, State: access.AccessLocked}, fmt.Errorf("load resource %s: %w", resourceID, err)
	}

	sessions, err := g.ledger.SessionsFor(ctx, id.ID, resourceID)
	if err != nil {
		return access.Policy{ResourceID: resourceID, State: access.AccessLocked}, fmt.Errorf("load sessions: %w", err)
	}

	policy := access.ComputePolicy(id, product, sessions)
	if policy.State == access.AccessPending {
		for i, s := range sessions {
			if s.Status != checkout.StatusOpen || !s.Contains(resourceID) {
				continue
			}
			res, err := g.ResolveCheckout(ctx, s.ID)
			if err != nil {
				continue
			}
			sessions[i] = s.Observe(res.Session)
		}
		policy = access.ComputePolicy(id, product, sessions)
	}

	g.metrics.RecordAccessCheck(policy.State)
	return policy, nil
}

func (g *Gateway) processorContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}
