package useradmin

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"gwocadmin/internal/identity"
	"gwocadmin/internal/profile"
)

// Executor performs gated user operations against the identity provider and
// reconciles the profile store afterwards. All outbound calls are single
// attempts; there is no retry.
type Executor struct {
	idp         IdentityAdmin
	profiles    ProfileStore
	redirectURL string
}

// NewExecutor creates an executor. redirectURL is the fixed post-invite
// target sent with every invite email.
func NewExecutor(idp IdentityAdmin, profiles ProfileStore, redirectURL string) *Executor {
	return &Executor{idp: idp, profiles: profiles, redirectURL: redirectURL}
}

// Execute runs the requested operation. An unknown action is rejected before
// any side effect occurs.
func (e *Executor) Execute(ctx context.Context, req *Request) (*Result, error) {
	switch Action(req.Action) {
	case ActionInvite, ActionResend:
		return e.invite(ctx, req)
	case ActionDeleteUser:
		return e.deleteUser(ctx, req)
	default:
		return nil, &InvalidRequestError{Reason: fmt.Sprintf("Unknown action: %s", req.Action)}
	}
}

// invite sends (or resends) an invite email and ensures a profile row exists
// for the invited user. A provider-side trigger normally creates the row;
// the explicit check-and-insert covers deployments where it is missing.
func (e *Executor) invite(ctx context.Context, req *Request) (*Result, error) {
	if req.Email == "" || req.FullName == "" || req.Role == "" {
		return nil, &InvalidRequestError{Reason: "email, full_name and role are all required"}
	}
	if !profile.ValidRole(req.Role) {
		return nil, &InvalidRequestError{Reason: "role must be one of: " + strings.Join(profile.Roles, ", ")}
	}

	meta := identity.InviteMetadata{FullName: req.FullName, Role: req.Role}
	user, err := e.idp.InviteByEmail(ctx, req.Email, meta, e.redirectURL)
	if err != nil {
		return nil, err
	}

	created, err := e.profiles.EnsureExists(ctx, &profile.Profile{
		ID:       user.ID,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		Active:   true,
	})
	if err != nil {
		// The invite itself succeeded; the trigger may still create the
		// row, so the primary result stands.
		log.Printf("profile reconciliation failed for invited user %s: %v", user.ID, err)
	} else if created {
		log.Printf("created missing profile row for invited user %s", user.ID)
	}

	return &Result{UserID: user.ID.String()}, nil
}

// deleteUser removes the user from the identity provider and then clears the
// profile row. The row is usually gone already via cascade; the explicit
// delete is a safety net and an absent row is fine.
func (e *Executor) deleteUser(ctx context.Context, req *Request) (*Result, error) {
	if req.UserID == "" {
		return nil, &InvalidRequestError{Reason: "user_id is required"}
	}
	uid, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, &InvalidRequestError{Reason: "user_id must be a valid user id"}
	}

	if err := e.idp.DeleteUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	if err := e.profiles.Remove(ctx, uid); err != nil {
		log.Printf("profile cleanup failed for deleted user %s: %v", uid, err)
	}

	return &Result{}, nil
}
