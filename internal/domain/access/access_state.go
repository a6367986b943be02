package access

import (
	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/domain/users"
)

// ComputeAccessState is the entitlement predicate: granted iff the identity
// holds a paid session containing the product, or the product is a room and
// the identity is a premium member. Pure; sessions are whatever the caller
// has observed for this identity.
func ComputeAccessState(id *users.Identity, product catalog.Product, sessions []checkout.Session) (AccessState, Source, string) {
	if !id.Authenticated() {
		return AccessLocked, SourceNone, ""
	}

	if product.Category == catalog.CategoryRoom && id.Premium {
		return AccessGranted, SourceMembership, ""
	}

	pending := ""
	for _, s := range sessions {
		if !s.Contains(product.ID) {
			continue
		}
		switch s.Status {
		case checkout.StatusPaid:
			return AccessGranted, SourcePurchase, s.ID
		case checkout.StatusOpen:
			if pending == "" {
				pending = s.ID
			}
		}
	}

	if pending != "" {
		return AccessPending, SourceNone, pending
	}
	return AccessLocked, SourceNone, ""
}
