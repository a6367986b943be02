package entitlement

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"
)

type fakeProcessor struct {
	mu        sync.Mutex
	creates   []SessionRequest
	gets      int
	createErr error
	getErr    error
	nextID    string
	// scripted statuses per session; the last one repeats
	script   map[string][]checkout.Status
	sessions map[string]checkout.Session
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{
		script:   map[string][]checkout.Status{},
		sessions: map[string]checkout.Session{},
	}
}

func (f *fakeProcessor) CreateSession(ctx context.Context, req SessionRequest) (CreatedSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, req)
	if f.createErr != nil {
		return CreatedSession{}, f.createErr
	}
	id := f.nextID
	if id == "" {
		id = fmt.Sprintf("cs_fake_%d", len(f.creates))
	}
	var total int64
	ids := make([]string, 0, len(req.Products))
	for _, p := range req.Products {
		total += p.UnitAmount
		ids = append(ids, p.ID)
	}
	f.sessions[id] = checkout.Session{ID: id, ProductIDs: ids, Status: checkout.StatusOpen, AmountTotal: total, Currency: req.Currency}
	return CreatedSession{ID: id, RedirectURL: "https://pay.example.com/" + id, AmountTotal: total, Currency: req.Currency}, nil
}

func (f *fakeProcessor) GetSession(ctx context.Context, id string) (checkout.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return checkout.Session{}, f.getErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return checkout.Session{}, fmt.Errorf("no such session %s: %w", id, checkout.ErrSessionNotFound)
	}
	if steps := f.script[id]; len(steps) > 0 {
		s.Status = steps[0]
		if len(steps) > 1 {
			f.script[id] = steps[1:]
		}
	}
	return s, nil
}

func (f *fakeProcessor) calls() (creates, gets int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates), f.gets
}

type fakeCatalog struct {
	products map[string]catalog.Product
	err      error
}

func newFakeCatalog(ps ...catalog.Product) *fakeCatalog {
	c := &fakeCatalog{products: map[string]catalog.Product{}}
	for _, p := range ps {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) ProductsByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *fakeCatalog) Product(ctx context.Context, id string) (catalog.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: %s", checkout.ErrUnknownProduct, id)
	}
	return p, nil
}

type fakeLedger struct {
	mu       sync.Mutex
	owners   map[string]uint
	sessions map[string]checkout.Session
	err      error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{owners: map[string]uint{}, sessions: map[string]checkout.Session{}}
}

func (l *fakeLedger) Record(ctx context.Context, userID uint, s checkout.Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.owners[s.ID] = userID
	l.sessions[s.ID] = s
	return nil
}

func (l *fakeLedger) Lookup(ctx context.Context, id string) (checkout.Session, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sessions[id]
	return s, ok, nil
}

func (l *fakeLedger) Observe(ctx context.Context, s checkout.Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, ok := l.sessions[s.ID]
	if !ok {
		return errors.New("unknown session")
	}
	l.sessions[s.ID] = cur.Observe(s)
	return nil
}

func (l *fakeLedger) SessionsFor(ctx context.Context, userID uint, productID string) ([]checkout.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []checkout.Session
	for id, owner := range l.owners {
		if owner == userID && l.sessions[id].Contains(productID) {
			out = append(out, l.sessions[id])
		}
	}
	return out, nil
}
