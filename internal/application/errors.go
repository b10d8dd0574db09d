package application

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when creating a resource whose id is taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidTransition is returned when a booking status change is not
	// permitted from its current state.
	ErrInvalidTransition = errors.New("application: invalid status transition")
)

// BookingReason identifies why a booking occurrence was rejected.
type BookingReason string

const (
	ReasonMalformedBooking    BookingReason = "MALFORMED_BOOKING"
	ReasonInvalidFormat       BookingReason = "INVALID_FORMAT"
	ReasonInvalidTimeRange    BookingReason = "INVALID_TIME_RANGE"
	ReasonNotFound            BookingReason = "NOT_FOUND"
	ReasonLocationMismatch    BookingReason = "LOCATION_MISMATCH"
	ReasonInsufficientNotice  BookingReason = "INSUFFICIENT_NOTICE"
	ReasonTierNotOffered      BookingReason = "TIER_NOT_OFFERED"
	ReasonNotAvailableThisDay BookingReason = "NOT_AVAILABLE_THIS_DAY"
	ReasonOutsideWorkingHours BookingReason = "OUTSIDE_WORKING_HOURS"
	ReasonSlotConflict        BookingReason = "SLOT_CONFLICT"
)

// BookingError reports the first occurrence that failed validation and why.
// One failed occurrence rejects the entire submission. Details carries
// reason-specific context, such as the two locations of a mismatch.
type BookingError struct {
	Reason       BookingReason
	OccurrenceID string
	Message      string
	Details      map[string]string
}

// Error implements the error interface.
func (e *BookingError) Error() string {
	if e == nil {
		return ""
	}
	if e.OccurrenceID == "" {
		return fmt.Sprintf("booking rejected (%s): %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("booking %s rejected (%s): %s", e.OccurrenceID, e.Reason, e.Message)
}

func newBookingError(reason BookingReason, occurrenceID, format string, args ...any) *BookingError {
	return &BookingError{
		Reason:       reason,
		OccurrenceID: occurrenceID,
		Message:      fmt.Sprintf(format, args...),
	}
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
