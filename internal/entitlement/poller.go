package entitlement

import (
	"context"
	"log/slog"
	"time"

	"sanctuary-app/internal/domain/checkout"
)

// Resolver is the part of the gateway a poller needs.
type Resolver interface {
	ResolveCheckout(ctx context.Context, sessionID string) (checkout.Resolution, error)
}

// Final is where a polling run ends up.
type Final struct {
	State      checkout.UIState
	Action     checkout.Action
	Resolution checkout.Resolution
	Attempts   int
	Err        error
}

// Poller re-resolves a pending session under a bounded policy. Each poll is
// an independent read, so a run can be abandoned at any point.
type Poller struct {
	resolver Resolver
	policy   checkout.PollPolicy
	logger   *slog.Logger
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
}

func NewPoller(r Resolver, policy checkout.PollPolicy, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		resolver: r,
		policy:   policy.Normalize(),
		logger:   logger,
		now:      time.Now,
		after:    time.After,
	}
}

func (p *Poller) Policy() checkout.PollPolicy {
	return p.policy
}

// Await polls until the session reaches a terminal UI state, the policy
// budget runs out, or ctx is done. It never returns a pending state.
func (p *Poller) Await(ctx context.Context, sessionID string) Final {
	started := p.now()
	var last checkout.Resolution
	var lastErr error

	for attempt := 1; ; attempt++ {
		res, err := p.resolver.ResolveCheckout(ctx, sessionID)
		last, lastErr = res, err

		elapsed := p.now().Sub(started)
		exhausted := p.policy.Exhausted(attempt, elapsed)

		switch {
		case res.Terminal() && res.Outcome != checkout.OutcomeError:
			state, action := checkout.StateFor(res, exhausted)
			return Final{State: state, Action: action, Resolution: res, Attempts: attempt, Err: err}
		case exhausted:
			p.logger.Warn("checkout polling budget exhausted",
				slog.String("session_id", sessionID),
				slog.Int("attempts", attempt),
				slog.Duration("elapsed", elapsed),
			)
			state, action := checkout.StateFor(res, true)
			return Final{State: state, Action: action, Resolution: res, Attempts: attempt, Err: err}
		}

		select {
		case <-ctx.Done():
			return Final{
				State:      checkout.UIError,
				Action:     checkout.ActionRetry,
				Resolution: last,
				Attempts:   attempt,
				Err:        firstErr(ctx.Err(), lastErr),
			}
		case <-p.after(p.policy.Delay(attempt)):
		}
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
