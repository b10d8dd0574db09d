package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	t.Run("plain calendar date round-trips", func(t *testing.T) {
		t.Parallel()

		date, err := ParseDate("2025-01-06")
		if err != nil {
			t.Fatalf("ParseDate returned error: %v", err)
		}
		if got := date.String(); got != "2025-01-06" {
			t.Fatalf("expected 2025-01-06, got %s", got)
		}

		again, err := ParseDate(date.String())
		if err != nil {
			t.Fatalf("round-trip parse returned error: %v", err)
		}
		if again != date {
			t.Fatalf("round trip changed date: %v vs %v", again, date)
		}
	})

	t.Run("datetime keeps its own calendar day", func(t *testing.T) {
		t.Parallel()

		// Midnight UTC on the 6th must not become the 5th, whatever the
		// process timezone is.
		date, err := ParseDate("2025-01-06T00:00:00Z")
		if err != nil {
			t.Fatalf("ParseDate returned error: %v", err)
		}
		if got := date.String(); got != "2025-01-06" {
			t.Fatalf("expected 2025-01-06, got %s", got)
		}
	})

	t.Run("negative offset datetime keeps local day", func(t *testing.T) {
		t.Parallel()

		date, err := ParseDate("2025-01-06T20:30:00-05:00")
		if err != nil {
			t.Fatalf("ParseDate returned error: %v", err)
		}
		if got := date.String(); got != "2025-01-06" {
			t.Fatalf("expected 2025-01-06, got %s", got)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()

		for _, value := range []string{"", "06/01/2025", "2025-13-40", "next tuesday"} {
			if _, err := ParseDate(value); !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("expected ErrInvalidFormat for %q, got %v", value, err)
			}
		}
	})
}

func TestDateOf(t *testing.T) {
	t.Parallel()

	est := time.FixedZone("EST", -5*60*60)
	instant := time.Date(2025, time.January, 6, 23, 45, 0, 0, est)
	if got := DateOf(instant).String(); got != "2025-01-06" {
		t.Fatalf("expected 2025-01-06, got %s", got)
	}
}

func TestDateArithmetic(t *testing.T) {
	t.Parallel()

	anchor, err := ParseDate("2025-01-06")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}

	if got := anchor.Weekday(); got != time.Monday {
		t.Fatalf("expected Monday, got %v", got)
	}
	if got := anchor.AddDays(7).String(); got != "2025-01-13" {
		t.Fatalf("expected 2025-01-13, got %s", got)
	}
	if got := anchor.AddMonths(1).String(); got != "2025-02-06" {
		t.Fatalf("expected 2025-02-06, got %s", got)
	}

	later := anchor.AddDays(21)
	if got := later.DaysSince(anchor); got != 21 {
		t.Fatalf("expected 21 days, got %d", got)
	}
	if !anchor.Before(later) || !later.After(anchor) {
		t.Fatal("ordering comparisons disagree")
	}
}

func TestDateAt(t *testing.T) {
	t.Parallel()

	date, err := ParseDate("2025-01-06")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}

	instant := date.At(9*60+30, time.UTC)
	want := time.Date(2025, time.January, 6, 9, 30, 0, 0, time.UTC)
	if !instant.Equal(want) {
		t.Fatalf("expected %v, got %v", want, instant)
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value   string
		minutes int
		wantErr bool
	}{
		{value: "00:00", minutes: 0},
		{value: "09:00", minutes: 540},
		{value: "17:30", minutes: 1050},
		{value: "23:59", minutes: 1439},
		{value: "24:00", wantErr: true},
		{value: "12:60", wantErr: true},
		{value: "9:00", wantErr: true},
		{value: "0900", wantErr: true},
		{value: "09:3x", wantErr: true},
		{value: "0x:30", wantErr: true},
		{value: "09-30", wantErr: true},
		{value: " 9:30", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tc := range cases {
		minutes, err := ParseClock(tc.value)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("expected ErrInvalidFormat for %q, got %v", tc.value, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseClock(%q) returned error: %v", tc.value, err)
		}
		if minutes != tc.minutes {
			t.Fatalf("ParseClock(%q) = %d, want %d", tc.value, minutes, tc.minutes)
		}
		if got := FormatClock(minutes); got != tc.value {
			t.Fatalf("FormatClock(%d) = %s, want %s", minutes, got, tc.value)
		}
	}
}
