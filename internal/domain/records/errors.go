package records

import "errors"

var (
	// ErrNotFound means the record (or a referenced entity) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is not the record's attending doctor.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition means the record has already left PENDING.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStaffInactive means the acting staff member is not ACTIVE.
	ErrStaffInactive = errors.New("staff inactive")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
