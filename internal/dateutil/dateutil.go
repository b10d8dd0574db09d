package dateutil

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFormat indicates a date or clock value could not be parsed.
var ErrInvalidFormat = errors.New("dateutil: invalid format")

// Date is a calendar day with no time-of-day or timezone component.
//
// Booking dates travel through the system as plain calendar days so that a
// UTC-midnight timestamp can never render as the prior day in a
// negative-offset zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar day from t as observed in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate normalizes a date expressed as either a YYYY-MM-DD string or an
// ISO datetime string into a calendar day. Datetime inputs keep the calendar
// day of their own offset rather than being converted to another zone first.
func ParseDate(value string) (Date, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: date %q", ErrInvalidFormat, value)
}

// String formats the date in canonical zero-padded YYYY-MM-DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Weekday returns the day of week, with Sunday == 0 as in time.Weekday.
func (d Date) Weekday() time.Weekday {
	return d.midnight(time.UTC).Weekday()
}

// AddDays returns the date shifted by the given number of calendar days.
func (d Date) AddDays(days int) Date {
	return DateOf(d.midnight(time.UTC).AddDate(0, 0, days))
}

// AddMonths advances the date by whole calendar months, preserving the
// day-of-month. Months lacking that day normalize forward per time.AddDate.
func (d Date) AddMonths(months int) Date {
	return DateOf(d.midnight(time.UTC).AddDate(0, months, 0))
}

// DaysSince returns the number of calendar days from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.midnight(time.UTC).Sub(other.midnight(time.UTC)) / (24 * time.Hour))
}

// Before reports whether d falls earlier on the calendar than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d falls later on the calendar than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// At combines the date with a minutes-since-midnight offset in the given
// location, yielding the concrete instant the local calendar intends.
func (d Date) At(minutes int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, minutes/60, minutes%60, 0, 0, loc)
}

func (d Date) midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// ParseClock converts a zero-padded HH:MM string into minutes since
// midnight. Every character position is checked, so stray non-digits
// anywhere in the value are rejected rather than partially parsed.
func ParseClock(value string) (int, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("%w: clock %q", ErrInvalidFormat, value)
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return 0, fmt.Errorf("%w: clock %q", ErrInvalidFormat, value)
		}
	}
	hour := int(value[0]-'0')*10 + int(value[1]-'0')
	minute := int(value[3]-'0')*10 + int(value[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: clock %q", ErrInvalidFormat, value)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight back into HH:MM form.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
