package persistence

import "time"

// Worker represents a personal-support worker in the directory.
type Worker struct {
	ID           string
	FullName     string
	Location     string
	HourlyRate   float64
	ServiceTiers []string
	Specialties  []string
	Availability []AvailabilityWindow
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AvailabilityWindow represents one weekly availability window belonging to a
// worker. Day of week uses 0=Sunday..6=Saturday; times are HH:MM strings; the
// effective date range is optional and uses YYYY-MM-DD strings.
type AvailabilityWindow struct {
	DayOfWeek     int
	StartTime     string
	EndTime       string
	EffectiveFrom *string
	EffectiveTo   *string
}

// Client represents a care recipient in the directory.
type Client struct {
	ID        string
	FullName  string
	Location  string
	Age       int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking represents one concrete visit occurrence stored in persistence.
// The date is a plain YYYY-MM-DD string and times are HH:MM strings, never
// timestamps, so a stored day can never shift when read in another timezone.
type Booking struct {
	ID                   string
	ClientID             string
	WorkerID             string
	Date                 string
	StartTime            string
	EndTime              string
	ServiceTier          string
	Price                float64
	Status               string
	RequestedAt          time.Time
	ConfirmationDeadline time.Time
	ConfirmedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
