package access

import (
	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/domain/users"
)

type Policy struct {
	ResourceID   string
	State        AccessState
	Source       Source
	SessionID    string
	ViewMode     ViewMode
	Capabilities []string
}

func (p Policy) Granted() bool {
	return p.State == AccessGranted
}

func ComputePolicy(id *users.Identity, product catalog.Product, sessions []checkout.Session) Policy {
	state, source, sessionID := ComputeAccessState(id, product, sessions)

	return Policy{
		ResourceID:   product.ID,
		State:        state,
		Source:       source,
		SessionID:    sessionID,
		ViewMode:     ViewModeFromState(state),
		Capabilities: CapabilitiesFor(state, product.Category),
	}
}
