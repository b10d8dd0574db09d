package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/example/care-booking/internal/dateutil"
)

// 2025-01-06 is a Monday.
var monday = dateutil.Date{Year: 2025, Month: time.January, Day: 6}
var tuesday = monday.AddDays(1)

func mondayWindow() []Window {
	return []Window{{
		Weekday:      time.Monday,
		StartMinutes: 8 * 60,
		EndMinutes:   17 * 60,
	}}
}

func TestCheck_WithinWindowSucceeds(t *testing.T) {
	t.Parallel()

	if err := Check(mondayWindow(), monday, 9*60, 10*60, nil); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestCheck_WrongWeekday(t *testing.T) {
	t.Parallel()

	err := Check(mondayWindow(), tuesday, 9*60, 10*60, nil)
	if !errors.Is(err, ErrNotAvailableThisDay) {
		t.Fatalf("expected ErrNotAvailableThisDay, got %v", err)
	}
}

func TestCheck_OutsideWorkingHours(t *testing.T) {
	t.Parallel()

	err := Check(mondayWindow(), monday, 7*60, 8*60, nil)
	if !errors.Is(err, ErrOutsideWorkingHours) {
		t.Fatalf("expected ErrOutsideWorkingHours, got %v", err)
	}
}

func TestCheck_MustFitSingleWindow(t *testing.T) {
	t.Parallel()

	// Two adjacent windows; a range spanning the seam fits neither.
	windows := []Window{
		{Weekday: time.Monday, StartMinutes: 8 * 60, EndMinutes: 12 * 60},
		{Weekday: time.Monday, StartMinutes: 13 * 60, EndMinutes: 17 * 60},
	}

	if err := Check(windows, monday, 9*60, 11*60, nil); err != nil {
		t.Fatalf("expected morning visit to fit, got %v", err)
	}
	if err := Check(windows, monday, 14*60, 16*60, nil); err != nil {
		t.Fatalf("expected afternoon visit to fit, got %v", err)
	}

	err := Check(windows, monday, 11*60, 14*60, nil)
	if !errors.Is(err, ErrOutsideWorkingHours) {
		t.Fatalf("expected ErrOutsideWorkingHours for seam-spanning visit, got %v", err)
	}
}

func TestCheck_EffectiveDateRange(t *testing.T) {
	t.Parallel()

	from := monday.AddDays(7)
	windows := []Window{{
		Weekday:       time.Monday,
		StartMinutes:  8 * 60,
		EndMinutes:    17 * 60,
		EffectiveFrom: &from,
	}}

	err := Check(windows, monday, 9*60, 10*60, nil)
	if !errors.Is(err, ErrNotAvailableThisDay) {
		t.Fatalf("expected window not yet effective, got %v", err)
	}

	if err := Check(windows, from, 9*60, 10*60, nil); err != nil {
		t.Fatalf("expected window effective on start date, got %v", err)
	}
}

func TestCheck_SlotConflict(t *testing.T) {
	t.Parallel()

	existing := []Booking{{ID: "b-1", StartMinutes: 9 * 60, EndMinutes: 10 * 60}}

	err := Check(mondayWindow(), monday, 9*60+30, 10*60+30, existing)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.BookingID != "b-1" {
		t.Fatalf("expected conflict with b-1, got %s", conflict.BookingID)
	}
}

func TestCheck_TouchingBoundaryIsNotConflict(t *testing.T) {
	t.Parallel()

	existing := []Booking{{ID: "b-1", StartMinutes: 9 * 60, EndMinutes: 10 * 60}}

	if err := Check(mondayWindow(), monday, 10*60, 11*60, existing); err != nil {
		t.Fatalf("expected back-to-back visit to succeed, got %v", err)
	}
	if err := Check(mondayWindow(), monday, 8*60, 9*60, existing); err != nil {
		t.Fatalf("expected preceding visit to succeed, got %v", err)
	}
}

func TestCheck_DeduplicatesMergedBookings(t *testing.T) {
	t.Parallel()

	// The same booking arriving from two merged sources counts once; a
	// non-overlapping request still succeeds.
	existing := []Booking{
		{ID: "b-1", StartMinutes: 9 * 60, EndMinutes: 10 * 60},
		{ID: "b-1", StartMinutes: 9 * 60, EndMinutes: 10 * 60},
	}

	if err := Check(mondayWindow(), monday, 10*60, 11*60, existing); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	err := Check(mondayWindow(), monday, 9*60, 10*60, existing)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}
