package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/care-booking/internal/dateutil"
)

// Window represents one weekly availability window declared by a worker.
// Multiple windows may exist for the same weekday and are treated as a union
// of independent time ranges.
type Window struct {
	Weekday       time.Weekday
	StartMinutes  int
	EndMinutes    int
	EffectiveFrom *dateutil.Date
	EffectiveTo   *dateutil.Date
}

// Booking is the minimal view of an existing booking needed for conflict
// detection.
type Booking struct {
	ID           string
	StartMinutes int
	EndMinutes   int
}

// ErrNotAvailableThisDay indicates the worker has no window on the weekday.
var ErrNotAvailableThisDay = errors.New("availability: worker does not work on this day")

// ErrOutsideWorkingHours indicates no window covers the requested range.
var ErrOutsideWorkingHours = errors.New("availability: requested time falls outside working hours")

// ConflictError reports an overlap with an existing booking.
type ConflictError struct {
	BookingID    string
	StartMinutes int
	EndMinutes   int
}

// Error implements the error interface, naming the conflicting time range.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("availability: conflicts with booking %s (%s-%s)",
		e.BookingID, dateutil.FormatClock(e.StartMinutes), dateutil.FormatClock(e.EndMinutes))
}

// Check confirms the worker works the requested day and time and has no
// overlapping booking. Checks run in order, each with a distinct failure:
//
//  1. At least one window matches the weekday of date and, when the window
//     carries an effective range, contains date. None => ErrNotAvailableThisDay.
//  2. The requested [start, end) range fits entirely within one matching
//     window. None covers it => ErrOutsideWorkingHours.
//  3. The range must not intersect any existing booking. Touching boundaries
//     are not conflicts. Any intersection => *ConflictError.
//
// Check is a pure predicate: the caller supplies a consistent snapshot of the
// worker's non-cancelled bookings for that date, de-duplicated here by id as
// a guard against merged sources.
func Check(windows []Window, date dateutil.Date, startMinutes, endMinutes int, existing []Booking) error {
	weekday := date.Weekday()

	matching := make([]Window, 0, len(windows))
	for _, window := range windows {
		if window.Weekday != weekday {
			continue
		}
		if window.EffectiveFrom != nil && date.Before(*window.EffectiveFrom) {
			continue
		}
		if window.EffectiveTo != nil && date.After(*window.EffectiveTo) {
			continue
		}
		matching = append(matching, window)
	}
	if len(matching) == 0 {
		return ErrNotAvailableThisDay
	}

	covered := false
	for _, window := range matching {
		if startMinutes >= window.StartMinutes && endMinutes <= window.EndMinutes {
			covered = true
			break
		}
	}
	if !covered {
		return ErrOutsideWorkingHours
	}

	seen := make(map[string]struct{}, len(existing))
	for _, booking := range existing {
		if booking.ID != "" {
			if _, ok := seen[booking.ID]; ok {
				continue
			}
			seen[booking.ID] = struct{}{}
		}
		if startMinutes < booking.EndMinutes && endMinutes > booking.StartMinutes {
			return &ConflictError{
				BookingID:    booking.ID,
				StartMinutes: booking.StartMinutes,
				EndMinutes:   booking.EndMinutes,
			}
		}
	}

	return nil
}
