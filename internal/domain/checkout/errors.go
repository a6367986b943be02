package checkout

import "errors"

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrUpstreamUnavailable = errors.New("payment provider unavailable")
	ErrSessionExpired      = errors.New("checkout session expired")
	ErrSessionNotFound     = errors.New("checkout session not found")

	ErrNoProducts     = errors.New("at least one product is required")
	ErrUnknownProduct = errors.New("unknown product")
	ErrMixedCurrency  = errors.New("products use different currencies")
)

// Action is what the visitor can do to recover from an outcome.
type Action string

const (
	ActionNone            Action = ""
	ActionLogIn           Action = "log_in"
	ActionRetry           Action = "retry"
	ActionRestartPurchase Action = "restart_purchase"
	ActionContactSupport  Action = "contact_support"
	ActionFixRequest      Action = "fix_request"
)

// ActionFor maps an error of the checkout taxonomy to its recovery action.
func ActionFor(err error) Action {
	switch {
	case err == nil:
		return ActionNone
	case errors.Is(err, ErrUnauthenticated):
		return ActionLogIn
	case errors.Is(err, ErrUpstreamUnavailable):
		return ActionRetry
	case errors.Is(err, ErrSessionExpired):
		return ActionRestartPurchase
	case errors.Is(err, ErrSessionNotFound):
		return ActionContactSupport
	case errors.Is(err, ErrNoProducts), errors.Is(err, ErrUnknownProduct), errors.Is(err, ErrMixedCurrency):
		return ActionFixRequest
	default:
		return ActionContactSupport
	}
}
