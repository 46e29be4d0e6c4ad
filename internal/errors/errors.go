// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNoWorkingDays means no weekday is left before the interval boundary,
	// so today's quota cannot be derived.
	ErrNoWorkingDays = errors.New("no working days left in interval")

	// ErrInvalidInterval means the customer's interval is outside [1,4] weeks.
	ErrInvalidInterval = errors.New("customer interval out of range")
)

// ErrEnrollmentNotFound is returned when an enrollment id does not exist
type ErrEnrollmentNotFound struct {
	EnrollmentID int
}

func (e *ErrEnrollmentNotFound) Error() string {
	return fmt.Sprintf("enrollment with ID %d not found", e.EnrollmentID)
}

// Helper constructor
func NewEnrollmentNotFound(id int) error {
	return &ErrEnrollmentNotFound{EnrollmentID: id}
}

// IsDataError reports whether err is a per-enrollment configuration/data problem
// that should skip the enrollment instead of failing the pass.
func IsDataError(err error) bool {
	return errors.Is(err, ErrNoWorkingDays) || errors.Is(err, ErrInvalidInterval)
}
