// Package errs holds the error taxonomy shared by the circulation and fines
// services. Callers match with errors.Is; services wrap with context.
package errs

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnavailable       = errors.New("unavailable")
	ErrDuplicateLoan     = errors.New("student already has an active loan for this book")
	ErrLimitExceeded     = errors.New("student has reached the maximum number of borrowed books")
	ErrAlreadyReturned   = errors.New("loan already returned")
	ErrAlreadyPaid       = errors.New("fine already paid")
	ErrCannotWaivePaid   = errors.New("cannot waive a paid fine")
	ErrFineWaived        = errors.New("fine already waived")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyExists     = errors.New("already exists")
)

// Conflict reports whether err is a business-rule rejection rather than a
// missing entity or malformed input.
func Conflict(err error) bool {
	for _, target := range []error{
		ErrUnavailable,
		ErrDuplicateLoan,
		ErrLimitExceeded,
		ErrAlreadyReturned,
		ErrAlreadyPaid,
		ErrCannotWaivePaid,
		ErrFineWaived,
		ErrInvalidTransition,
		ErrAlreadyExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
