package edit

import (
	"errors"
	"fmt"
)

// ErrPrecondition is wrapped by the errors returned when an operation is
// called with arguments that would break the invariants of a store. Nothing
// has been changed when such an error is returned.
var ErrPrecondition = errors.New("precondition violated")

// Preconditionf formats an error wrapping ErrPrecondition.
func Preconditionf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrPrecondition)
}

// VetoError is returned when an authorizer or a listener rejects a change.
// Reason is meant to be shown to the user.
type VetoError struct {
	Reason string
}

func (e *VetoError) Error() string {
	return "change rejected: " + e.Reason
}

// Veto formats a new VetoError.
func Veto(format string, args ...any) error {
	return &VetoError{Reason: fmt.Sprintf(format, args...)}
}

// IsVeto reports if err is, or wraps, a VetoError.
func IsVeto(err error) bool {
	var v *VetoError
	return errors.As(err, &v)
}
