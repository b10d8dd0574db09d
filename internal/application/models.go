package application

import "time"

// AvailabilityWindow describes one recurring block of working hours. Times
// are zero-padded HH:MM strings; the optional effective dates are YYYY-MM-DD
// strings bounding the window's validity.
type AvailabilityWindow struct {
	DayOfWeek     int
	StartTime     string
	EndTime       string
	EffectiveFrom *string
	EffectiveTo   *string
}

// WorkerInput captures caller provided worker profile fields.
type WorkerInput struct {
	FullName     string
	Location     string
	HourlyRate   float64
	ServiceTiers []string
	Specialties  []string
	Availability []AvailabilityWindow
}

// Worker represents a care worker profile in the directory.
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

// ClientInput captures caller provided client profile fields.
type ClientInput struct {
	FullName string
	Location string
	Age      int
}

// Client represents a care recipient profile.
type Client struct {
	ID        string
	FullName  string
	Location  string
	Age       int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// RecurringPattern describes how a booking request repeats. EndDate is
// inclusive; an empty Weekdays defaults weekly and biweekly patterns to the
// request date's weekday.
type RecurringPattern struct {
	Frequency string
	EndDate   string
	Weekdays  []int
}

// BookingInput captures one booking request before expansion and validation.
// Date is YYYY-MM-DD, times are HH:MM. An empty ServiceTier defaults to
// basic; a nil Price means the price is computed from the worker's rate.
type BookingInput struct {
	ClientID    string
	WorkerID    string
	Date        string
	StartTime   string
	EndTime     string
	ServiceTier string
	Price       *float64
	Recurring   *RecurringPattern
}

// Booking represents one persisted visit occurrence.
type Booking struct {
	ID                   string
	ClientID             string
	WorkerID             string
	Date                 string
	StartTime            string
	EndTime              string
	ServiceTier          string
	Price                float64
	Status               BookingStatus
	RequestedAt          time.Time
	ConfirmationDeadline time.Time
	ConfirmedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// SubmitResult summarizes a successful booking submission.
type SubmitResult struct {
	Bookings []Booking
}

// RescheduleParams wraps the data required to move a pending or confirmed
// booking to a new slot.
type RescheduleParams struct {
	BookingID string
	Date      string
	StartTime string
	EndTime   string
}

// SearchParams narrows a worker directory search. Nil rate bounds mean
// unbounded; MatchClientLocation restricts results to workers in the
// requesting client's city.
type SearchParams struct {
	Keyword             string
	MinRate             *float64
	MaxRate             *float64
	Location            string
	Specialty           string
	ServiceTier         string
	ClientID            string
	MatchClientLocation bool
	AvailableWeekdays   []int
	SortBy              string
}
