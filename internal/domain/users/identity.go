package users

// Identity is the authenticated visitor handed explicitly to the entitlement
// gateway. It is a snapshot; the gateway never mutates it.
type Identity struct {
	ID      uint
	Name    string
	Email   string
	Role    string
	Premium bool
}

func IdentityOf(u User) *Identity {
	return &Identity{
		ID:      u.ID,
		Name:    u.DisplayName(),
		Email:   u.Email,
		Role:    u.Role,
		Premium: u.IsPremium,
	}
}

func (i *Identity) Authenticated() bool {
	return i != nil && i.ID != 0
}
