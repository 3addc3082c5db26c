package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers translate these to HTTP
// statuses; anything else is reported as an internal error without detail.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("access denied")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrValidation       = errors.New("validation error")
	ErrPasswordRequired = errors.New("password required")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrNoPasswordSet    = errors.New("share has no password")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrRateLimited      = errors.New("rate limited")
)

// Share policy denial reasons, in evaluation-order precedence. The order is
// observable by clients under compound failures and must not change: a
// revoked-and-expired link reports INACTIVE, and an exhausted
// password-protected link reports VIEW_LIMIT_EXCEEDED without prompting for
// the password.
const (
	DenyInactive          = "INACTIVE"
	DenyExpired           = "EXPIRED"
	DenyViewLimitExceeded = "VIEW_LIMIT_EXCEEDED"
	DenyEmailMismatch     = "EMAIL_MISMATCH"
)

// ShareDenialError is a share policy denial with a machine-readable reason.
type ShareDenialError struct {
	Reason string
}

func (e *ShareDenialError) Error() string {
	return fmt.Sprintf("share access denied: %s", e.Reason)
}

// AsShareDenial extracts a ShareDenialError from an error chain.
func AsShareDenial(err error) (*ShareDenialError, bool) {
	var d *ShareDenialError
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
