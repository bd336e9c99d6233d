package domain

// EndpointCategory groups routes by the access rule that governs them.
type EndpointCategory string

const (
	CategoryPublic        EndpointCategory = "public"
	CategoryAdminOnly     EndpointCategory = "admin_only"
	CategoryOwnedResource EndpointCategory = "owned_resource"
	CategorySelfScoped    EndpointCategory = "self_scoped"
)

// Decision is the outcome of an access check.
type Decision bool

const (
	Allow Decision = true
	Deny  Decision = false
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// Decide is the single access rule for every entry point. Rules are evaluated
// in order and the first match wins. resourceOwnerID is only consulted for
// CategoryOwnedResource.
func Decide(sub *Subject, resourceOwnerID int64, cat EndpointCategory) Decision {
	if cat == CategoryPublic {
		return Allow
	}
	// Unauthenticated callers never reach role or ownership checks.
	if sub == nil {
		return Deny
	}
	if sub.Role == RoleAdmin {
		return Allow
	}

	switch cat {
	case CategoryAdminOnly:
		return Deny
	case CategoryOwnedResource:
		return Decision(sub.UserID == resourceOwnerID)
	case CategorySelfScoped:
		return Allow
	}
	return Deny
}
