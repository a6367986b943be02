package checkout

// Outcome is the finite result of resolving a checkout session.
type Outcome string

const (
	OutcomePaid     Outcome = "paid"
	OutcomeExpired  Outcome = "expired"
	OutcomePending  Outcome = "pending"
	OutcomeNotFound Outcome = "not_found"
	OutcomeError    Outcome = "error"
)

// Resolution is what ResolveCheckout hands to the presentation layer.
// Pending is an ordinary value, not an error.
type Resolution struct {
	Outcome Outcome
	Session Session
}

func ResolutionFor(s Session) Resolution {
	switch s.Status {
	case StatusPaid:
		return Resolution{Outcome: OutcomePaid, Session: s}
	case StatusExpired:
		return Resolution{Outcome: OutcomeExpired, Session: s}
	default:
		return Resolution{Outcome: OutcomePending, Session: s}
	}
}

func (r Resolution) Terminal() bool {
	return r.Outcome != OutcomePending
}

// Err returns the taxonomy error the outcome corresponds to, nil for paid and
// pending.
func (r Resolution) Err() error {
	switch r.Outcome {
	case OutcomeExpired:
		return ErrSessionExpired
	case OutcomeNotFound:
		return ErrSessionNotFound
	case OutcomeError:
		return ErrUpstreamUnavailable
	default:
		return nil
	}
}

// UIState is the screen the visitor ends up on.
type UIState string

const (
	UIPending  UIState = "pending"
	UISuccess  UIState = "success"
	UIExpired  UIState = "expired"
	UINotFound UIState = "not_found"
	UIError    UIState = "error"
)

// StateFor maps a resolution to a UI state. exhausted turns a still-pending
// session into the terminal error screen.
func StateFor(r Resolution, exhausted bool) (UIState, Action) {
	switch r.Outcome {
	case OutcomePaid:
		return UISuccess, ActionNone
	case OutcomeExpired:
		return UIExpired, ActionRestartPurchase
	case OutcomeNotFound:
		return UINotFound, ActionContactSupport
	case OutcomeError:
		if exhausted {
			return UIError, ActionContactSupport
		}
		return UIError, ActionRetry
	default:
		if exhausted {
			return UIError, ActionContactSupport
		}
		return UIPending, ActionNone
	}
}
