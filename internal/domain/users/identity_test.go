package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityOf(t *testing.T) {
	id := IdentityOf(User{ID: 7, FirstName: "Mary", LastName: " ", Email: "m@example.com", Role: RoleUser, IsPremium: true})
	assert.Equal(t, uint(7), id.ID)
	assert.Equal(t, "Mary", id.Name)
	assert.True(t, id.Premium)
	assert.True(t, id.Authenticated())
}

func TestIdentityAuthenticated(t *testing.T) {
	var nilID *Identity
	assert.False(t, nilID.Authenticated())
	assert.False(t, (&Identity{}).Authenticated())
}
