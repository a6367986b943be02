package checkout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolutionFor(t *testing.T) {
	assert.Equal(t, OutcomePaid, ResolutionFor(Session{Status: StatusPaid}).Outcome)
	assert.Equal(t, OutcomeExpired, ResolutionFor(Session{Status: StatusExpired}).Outcome)
	assert.Equal(t, OutcomePending, ResolutionFor(Session{Status: StatusOpen}).Outcome)
	assert.False(t, ResolutionFor(Session{Status: StatusOpen}).Terminal())
}

func TestResolutionErr(t *testing.T) {
	assert.NoError(t, Resolution{Outcome: OutcomePaid}.Err())
	assert.NoError(t, Resolution{Outcome: OutcomePending}.Err())
	assert.ErrorIs(t, Resolution{Outcome: OutcomeExpired}.Err(), ErrSessionExpired)
	assert.ErrorIs(t, Resolution{Outcome: OutcomeNotFound}.Err(), ErrSessionNotFound)
	assert.ErrorIs(t, Resolution{Outcome: OutcomeError}.Err(), ErrUpstreamUnavailable)
}

func TestStateFor(t *testing.T) {
	tests := []struct {
		name      string
		outcome   Outcome
		exhausted bool
		state     UIState
		action    Action
	}{
		{"paid", OutcomePaid, false, UISuccess, ActionNone},
		{"expired", OutcomeExpired, false, UIExpired, ActionRestartPurchase},
		{"not found", OutcomeNotFound, false, UINotFound, ActionContactSupport},
		{"pending", OutcomePending, false, UIPending, ActionNone},
		{"pending out of budget", OutcomePending, true, UIError, ActionContactSupport},
		{"upstream error", OutcomeError, false, UIError, ActionRetry},
		{"upstream error out of budget", OutcomeError, true, UIError, ActionContactSupport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, action := StateFor(Resolution{Outcome: tt.outcome}, tt.exhausted)
			assert.Equal(t, tt.state, state)
			assert.Equal(t, tt.action, action)
		})
	}
}

func TestActionFor(t *testing.T) {
	assert.Equal(t, ActionLogIn, ActionFor(fmt.Errorf("checkout: %w", ErrUnauthenticated)))
	assert.Equal(t, ActionRetry, ActionFor(fmt.Errorf("create: %w", ErrUpstreamUnavailable)))
	assert.Equal(t, ActionRestartPurchase, ActionFor(ErrSessionExpired))
	assert.Equal(t, ActionContactSupport, ActionFor(ErrSessionNotFound))
	assert.Equal(t, ActionFixRequest, ActionFor(ErrNoProducts))
	assert.Equal(t, ActionContactSupport, ActionFor(errors.New("boom")))
	assert.Equal(t, ActionNone, ActionFor(nil))
}
