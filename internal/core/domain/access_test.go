package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	owner := &Subject{UserID: 1, Username: "alice", Role: RoleUser}
	other := &Subject{UserID: 2, Username: "bob", Role: RoleUser}
	admin := &Subject{UserID: 3, Username: "root", Role: RoleAdmin}

	cases := []struct {
		name    string
		sub     *Subject
		ownerID int64
		cat     EndpointCategory
		want    Decision
	}{
		{"public without subject", nil, 0, CategoryPublic, Allow},
		{"public with subject", other, 0, CategoryPublic, Allow},
		{"owner on own pet", owner, 1, CategoryOwnedResource, Allow},
		{"non-owner on pet", other, 1, CategoryOwnedResource, Deny},
		{"admin on any pet", admin, 1, CategoryOwnedResource, Allow},
		{"admin on admin route", admin, 0, CategoryAdminOnly, Allow},
		{"user on admin route", owner, 0, CategoryAdminOnly, Deny},
		{"user on self scoped", owner, 0, CategorySelfScoped, Allow},
		{"anonymous on owned", nil, 0, CategoryOwnedResource, Deny},
		{"anonymous on self scoped", nil, 0, CategorySelfScoped, Deny},
		{"anonymous on admin route", nil, 0, CategoryAdminOnly, Deny},
		{"unknown category", owner, 1, EndpointCategory("other"), Deny},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.sub, tc.ownerID, tc.cat))
		})
	}
}

func TestDecide_AnonymousMatchingOwnerZero(t *testing.T) {
	// A zero owner id must never let an anonymous caller through.
	assert.Equal(t, Deny, Decide(nil, 0, CategoryOwnedResource))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny", Deny.String())
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "is required", "color": "bad"}}
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "validation failed: color: bad; name: is required", err.Error())
}
