package useradmin

import "errors"

// ErrRoleUnresolvable means the caller's profile row is missing or could not
// be read, so no permission decision is possible.
var ErrRoleUnresolvable = errors.New("could not verify caller role")

// ForbiddenError is a permission denial. Reason is user-facing.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// InvalidRequestError is a malformed or disallowed request. Reason is
// user-facing.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return e.Reason
}
