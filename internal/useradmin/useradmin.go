// Package useradmin implements the access-controlled user operations:
// resolving whether a verified caller may perform an invite, resend, or
// delete, and executing the operation against the identity provider with
// best-effort reconciliation of the profile store.
package useradmin

import (
	"context"

	"github.com/google/uuid"

	"gwocadmin/internal/identity"
	"gwocadmin/internal/profile"
)

// Action identifies a privileged user operation.
type Action string

const (
	ActionInvite     Action = "invite"
	ActionResend     Action = "resend"
	ActionDeleteUser Action = "delete_user"
)

// Request is the JSON body of a user-admin call. Field requirements depend
// on the action.
type Request struct {
	Action   string `json:"action"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// Result is the outcome of a successfully executed operation. UserID is set
// for invite and resend.
type Result struct {
	UserID string
}

// IdentityAdmin is the privileged slice of the identity provider client.
type IdentityAdmin interface {
	InviteByEmail(ctx context.Context, email string, meta identity.InviteMetadata, redirectTo string) (*identity.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// ProfileStore is the slice of the profile manager this package uses.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	EnsureExists(ctx context.Context, p *profile.Profile) (bool, error)
	Remove(ctx context.Context, id uuid.UUID) error
}
