package domain

import "time"

// Role is the permission level attached to a User.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User models a registered account. PasswordHash never leaves the service layer.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Subject is the authenticated identity attached to a request.
type Subject struct {
	UserID   int64
	Username string
	Role     Role
}

// SubjectOf projects a stored user onto the identity carried through a request.
func SubjectOf(u *User) *Subject {
	return &Subject{UserID: u.ID, Username: u.Username, Role: u.Role}
}
