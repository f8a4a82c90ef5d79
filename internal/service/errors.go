package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers translate these into the
// HTTP error envelope: access denials must stay distinguishable from
// not-found outcomes.
var (
	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccessDenied indicates the actor lacks permission for the action.
	ErrAccessDenied = errors.New("access denied")
	// ErrSelfDeleteForbidden indicates an attempt to delete one's own account.
	ErrSelfDeleteForbidden = errors.New("cannot delete your own account")
	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive indicates the account has been deactivated.
	ErrAccountInactive = errors.New("account is inactive")
	// ErrNoSystemActor indicates no account is available to attribute
	// automated log entries to.
	ErrNoSystemActor = errors.New("no system or admin account available for logging")
)

// PolicyViolationError reports a business-rule rejection, distinct from a
// plain access denial (422 rather than 403).
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return e.Reason
}

// NewPolicyViolation builds a policy violation with a formatted reason.
func NewPolicyViolation(format string, args ...interface{}) *PolicyViolationError {
	return &PolicyViolationError{Reason: fmt.Sprintf(format, args...)}
}

// FieldError reports a single invalid input field with per-field detail,
// complementing validator.ValidationErrors for rules the struct tags cannot
// express (date comparisons, referential checks, uniqueness).
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
