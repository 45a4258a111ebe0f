package useradmin

import (
	"context"
	"fmt"

	"gwocadmin/internal/identity"
	"gwocadmin/internal/profile"
)

// Gate decides whether a verified caller may perform a requested action,
// based on the caller's stored profile role. Decisions are computed fresh on
// every request; nothing is cached.
type Gate struct {
	profiles ProfileStore
}

// NewGate creates a gate over the given profile store.
func NewGate(profiles ProfileStore) *Gate {
	return &Gate{profiles: profiles}
}

// callerRole resolves the caller's role from the profile store. A missing
// row or a lookup failure both surface as ErrRoleUnresolvable.
func (g *Gate) callerRole(ctx context.Context, caller *identity.Caller) (string, error) {
	p, err := g.profiles.GetByID(ctx, caller.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRoleUnresolvable, err)
	}
	return p.Role, nil
}

// Check loads the caller's profile and applies the permission rules:
// managing users requires the admin or manager role, creating admin accounts
// requires admin, and deleting users requires admin and a target other than
// the caller.
func (g *Gate) Check(ctx context.Context, caller *identity.Caller, req *Request) error {
	role, err := g.callerRole(ctx, caller)
	if err != nil {
		return err
	}

	isAdmin := role == profile.RoleAdmin
	isManager := role == profile.RoleManager

	if !isAdmin && !isManager {
		return &ForbiddenError{Reason: "You do not have permission to manage users"}
	}

	switch Action(req.Action) {
	case ActionInvite, ActionResend:
		if req.Role == profile.RoleAdmin && !isAdmin {
			return &ForbiddenError{Reason: "Only admins can create admin accounts"}
		}
	case ActionDeleteUser:
		if !isAdmin {
			return &ForbiddenError{Reason: "Only admins can remove users"}
		}
		if req.UserID != "" && req.UserID == caller.ID.String() {
			return &InvalidRequestError{Reason: "You cannot remove your own account"}
		}
	}

	return nil
}

// RequireAdmin requires the admin role. The profile listing is stricter
// than the manage-users baseline, so it has its own entry point.
func (g *Gate) RequireAdmin(ctx context.Context, caller *identity.Caller) error {
	role, err := g.callerRole(ctx, caller)
	if err != nil {
		return err
	}
	if role != profile.RoleAdmin {
		return &ForbiddenError{Reason: "Only admins can list users"}
	}
	return nil
}
