package recurrence

import (
	"errors"
	"time"

	"github.com/example/care-booking/internal/dateutil"
)

// Frequency represents supported recurrence intervals.
type Frequency string

const (
	// FrequencyDaily generates an occurrence for each day within the range.
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly generates occurrences for the selected weekdays.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyBiweekly generates occurrences for the selected weekdays on
	// alternating weeks measured from the anchor date.
	FrequencyBiweekly Frequency = "biweekly"
	// FrequencyMonthly repeats the anchor's day-of-month each calendar month.
	FrequencyMonthly Frequency = "monthly"
)

// ErrInvalidFrequency indicates the recurrence frequency is not supported.
var ErrInvalidFrequency = errors.New("recurrence: invalid frequency")

// ErrInvalidRange indicates the end date precedes the start date.
var ErrInvalidRange = errors.New("recurrence: end date precedes start date")

// Rule describes a recurring visit request.
type Rule struct {
	Frequency Frequency
	StartDate dateutil.Date
	EndDate   dateutil.Date
	Weekdays  []time.Weekday
}

// Expand produces the ordered calendar dates covered by the rule.
//
// The engine enforces the following semantics:
//   - The range is anchored at StartDate and bounded by EndDate, inclusive.
//   - Weekly and biweekly rules without explicit weekdays default to the
//     weekday of the anchor date.
//   - Biweekly rules keep only days whose whole-week offset from the anchor
//     is even.
//   - Monthly rules advance the anchor's day-of-month one calendar month at a
//     time; months lacking that day are skipped.
//   - An inverted range is rejected rather than silently truncated.
func Expand(rule Rule) ([]dateutil.Date, error) {
	if rule.EndDate.Before(rule.StartDate) {
		return nil, ErrInvalidRange
	}

	switch rule.Frequency {
	case FrequencyDaily:
		return expandDaily(rule), nil
	case FrequencyWeekly, FrequencyBiweekly:
		return expandWeekly(rule), nil
	case FrequencyMonthly:
		return expandMonthly(rule), nil
	default:
		return nil, ErrInvalidFrequency
	}
}

func expandDaily(rule Rule) []dateutil.Date {
	dates := make([]dateutil.Date, 0)
	for current := rule.StartDate; !current.After(rule.EndDate); current = current.AddDays(1) {
		dates = append(dates, current)
	}
	return dates
}

func expandWeekly(rule Rule) []dateutil.Date {
	weekdaySet := make(map[time.Weekday]struct{}, len(rule.Weekdays))
	for _, day := range rule.Weekdays {
		weekdaySet[day] = struct{}{}
	}
	if len(weekdaySet) == 0 {
		weekdaySet[rule.StartDate.Weekday()] = struct{}{}
	}

	dates := make([]dateutil.Date, 0)
	for current := rule.StartDate; !current.After(rule.EndDate); current = current.AddDays(1) {
		if _, ok := weekdaySet[current.Weekday()]; !ok {
			continue
		}
		if rule.Frequency == FrequencyBiweekly {
			if (current.DaysSince(rule.StartDate)/7)%2 != 0 {
				continue
			}
		}
		dates = append(dates, current)
	}
	return dates
}

func expandMonthly(rule Rule) []dateutil.Date {
	dates := make([]dateutil.Date, 0)
	for months := 0; ; months++ {
		current := rule.StartDate.AddMonths(months)
		if current.After(rule.EndDate) {
			return dates
		}
		// AddMonths normalizes a day-of-month overflow forward (for example
		// Jan 31 plus one month lands in early March), which would repeat a
		// month or drift off the anchor day. Skip those months.
		if current.Day != rule.StartDate.Day {
			continue
		}
		dates = append(dates, current)
	}
}
