// Package stripe adapts Stripe Checkout to the entitlement gateway's
// PaymentProcessor contract.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/entitlement"

	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

const (
	metadataProductIDs = "product_ids"
	metadataUserID     = "user_id"
)

// sessionAPI is the slice of the Stripe checkout session client we use.
type sessionAPI interface {
	New(params *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error)
	Get(id string, params *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error)
}

type Config struct {
	SecretKey string
	AppURL    string
	AppEnv    string
	Timeout   time.Duration
}

type Processor struct {
	sessions   sessionAPI
	successURL string
	cancelURL  string
	appEnv     string
}

// NewProcessor builds a processor on its own Stripe client; the global
// stripe.Key is never touched.
func NewProcessor(cfg Config) (*Processor, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sc := client.New(cfg.SecretKey, stripego.NewBackends(&http.Client{Timeout: timeout}))
	return newProcessor(sc.CheckoutSessions, cfg), nil
}

func newProcessor(api sessionAPI, cfg Config) *Processor {
	appURL := strings.TrimRight(cfg.AppURL, "/")
	if appURL == "" {
		appURL = "http://localhost:3000"
	}
	return &Processor{
		sessions:   api,
		successURL: appURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  appURL + "/shop",
		appEnv:     cfg.AppEnv,
	}
}

func (p *Processor) CreateSession(ctx context.Context, req entitlement.SessionRequest) (entitlement.CreatedSession, error) {
	ids := make([]string, 0, len(req.Products))
	items := make([]*stripego.CheckoutSessionLineItemParams, 0, len(req.Products))
	for _, prod := range req.Products {
		ids = append(ids, prod.ID)
		items = append(items, &stripego.CheckoutSessionLineItemParams{
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripego.String(strings.ToLower(req.Currency)),
				UnitAmount: stripego.Int64(prod.UnitAmount),
				ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripego.String(prod.Name),
					Description: optionalString(prod.Description),
				},
			},
			Quantity: stripego.Int64(1),
		})
	}

	params := &stripego.CheckoutSessionParams{
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		LineItems:          items,
		SuccessURL:         stripego.String(p.successURL),
		CancelURL:          stripego.String(p.cancelURL),
		ClientReferenceID:  stripego.String(strconv.FormatUint(uint64(req.Identity.ID), 10)),
	}
	if req.Identity.Email != "" {
		params.CustomerEmail = stripego.String(req.Identity.Email)
	}
	params.Context = ctx
	params.AddMetadata(metadataProductIDs, checkout.JoinProductIDs(ids))
	params.AddMetadata(metadataUserID, strconv.FormatUint(uint64(req.Identity.ID), 10))
	if p.appEnv != "" {
		params.AddMetadata("app_env", p.appEnv)
	}

	s, err := p.sessions.New(params)
	if err != nil {
		return entitlement.CreatedSession{}, fmt.Errorf("stripe create session: %w", err)
	}

	return entitlement.CreatedSession{
		ID:          s.ID,
		RedirectURL: s.URL,
		AmountTotal: s.AmountTotal,
		Currency:    strings.ToLower(string(s.Currency)),
	}, nil
}

func (p *Processor) GetSession(ctx context.Context, sessionID string) (checkout.Session, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.sessions.Get(sessionID, params)
	if err != nil {
		if isNotFound(err) {
			return checkout.Session{}, fmt.Errorf("stripe session %s: %w", sessionID, checkout.ErrSessionNotFound)
		}
		return checkout.Session{}, fmt.Errorf("stripe get session: %w", err)
	}
	return SessionFromStripe(s), nil
}

func isNotFound(err error) bool {
	var se *stripego.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.HTTPStatusCode == http.StatusNotFound || se.Code == stripego.ErrorCodeResourceMissing
}

// UserIDFromSession finds the owning user: metadata.user_id first, then
// client_reference_id.
func UserIDFromSession(s *stripego.CheckoutSession) (uint, error) {
	ref := ""
	if s.Metadata != nil {
		ref = s.Metadata[metadataUserID]
	}
	if ref == "" {
		ref = s.ClientReferenceID
	}
	if ref == "" {
		return 0, errors.New("missing user_id (metadata.user_id or client_reference_id)")
	}
	uid, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user_id %q: %w", ref, err)
	}
	return uint(uid), nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return stripego.String(s)
}
