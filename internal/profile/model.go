package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors role and activity state for one identity-provider user.
// The ID is the provider's user id; a profile must never exist without a
// matching provider record.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Application roles, compared as plain text with no normalization.
const (
	RoleStaff   = "staff"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Roles lists the valid roles in the order they appear in error messages.
var Roles = []string{RoleStaff, RoleManager, RoleAdmin}

// ValidRole reports whether role is one of the fixed application roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStaff, RoleManager, RoleAdmin:
		return true
	}
	return false
}
