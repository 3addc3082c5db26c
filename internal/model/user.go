package model

import "time"

// Role values a user account can hold. A user has one primary role plus an
// optional set of additional roles; entitlement checks must consult both.
const (
	RoleAdmin        = "ADMIN"
	RolePlatformUser = "PLATFORM_USER"
	RoleMember       = "MEMBER"
)

// User represents an account. PasswordHash is a bcrypt hash and is never
// serialized into responses.
type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Role              string    `json:"role"`
	AdditionalRoles   []string  `json:"additional_roles,omitempty"`
	FreeDocumentCount int       `json:"free_document_count"`
	PaidDocumentCount int       `json:"paid_document_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// HasRole reports whether the user holds the given role either as the
// primary role or through additional roles.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	if u.Role == role {
		return true
	}
	for _, r := range u.AdditionalRoles {
		if r == role {
			return true
		}
	}
	return false
}
