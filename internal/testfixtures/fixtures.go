package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/care-booking/internal/application"
	"github.com/example/care-booking/internal/persistence"
)

var (
	workerCounter  uint64
	clientCounter  uint64
	bookingCounter uint64
)

// referenceTime is a Wednesday; the Monday of the following week is
// 2025-01-06, which fixtures use as the default booking date.
var referenceTime = time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Worker fixtures ----------------------------

// WorkerFixture represents a deterministic worker profile that can be
// materialised for application or persistence tests.
type WorkerFixture struct {
	ID           string
	FullName     string
	Location     string
	HourlyRate   float64
	ServiceTiers []string
	Specialties  []string
	Availability []application.AvailabilityWindow
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WorkerOption configures the generated worker fixture.
type WorkerOption func(*WorkerFixture)

// NewWorkerFixture returns a deterministic worker fixture with optional
// overrides. The default worker is available Monday through Friday from
// 09:00 to 17:00 and offers the basic and enhanced tiers.
func NewWorkerFixture(opts ...WorkerOption) WorkerFixture {
	idx := atomic.AddUint64(&workerCounter, 1)
	id := fmt.Sprintf("worker-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	windows := make([]application.AvailabilityWindow, 0, 5)
	for day := 1; day <= 5; day++ {
		windows = append(windows, application.AvailabilityWindow{
			DayOfWeek: day,
			StartTime: "09:00",
			EndTime:   "17:00",
		})
	}
	fixture := WorkerFixture{
		ID:           id,
		FullName:     fmt.Sprintf("Worker %03d", idx),
		Location:     "Springfield",
		HourlyRate:   20,
		ServiceTiers: []string{"basic", "enhanced"},
		Specialties:  []string{"dementia care"},
		Availability: windows,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithWorkerID overrides the generated worker ID.
func WithWorkerID(id string) WorkerOption {
	return func(f *WorkerFixture) {
		f.ID = id
	}
}

// WithWorkerName overrides the generated full name.
func WithWorkerName(name string) WorkerOption {
	return func(f *WorkerFixture) {
		f.FullName = name
	}
}

// WithWorkerLocation overrides the generated location.
func WithWorkerLocation(location string) WorkerOption {
	return func(f *WorkerFixture) {
		f.Location = location
	}
}

// WithWorkerHourlyRate overrides the generated hourly rate.
func WithWorkerHourlyRate(rate float64) WorkerOption {
	return func(f *WorkerFixture) {
		f.HourlyRate = rate
	}
}

// WithWorkerServiceTiers sets the offered service tiers.
func WithWorkerServiceTiers(tiers ...string) WorkerOption {
	return func(f *WorkerFixture) {
		f.ServiceTiers = append([]string(nil), tiers...)
	}
}

// WithWorkerSpecialties sets the listed specialties.
func WithWorkerSpecialties(specialties ...string) WorkerOption {
	return func(f *WorkerFixture) {
		f.Specialties = append([]string(nil), specialties...)
	}
}

// WithWorkerAvailability replaces the weekly availability windows.
func WithWorkerAvailability(windows ...application.AvailabilityWindow) WorkerOption {
	return func(f *WorkerFixture) {
		f.Availability = append([]application.AvailabilityWindow(nil), windows...)
	}
}

// WithWorkerTimestamps sets both created and updated timestamps.
func WithWorkerTimestamps(created, updated time.Time) WorkerOption {
	return func(f *WorkerFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Worker value.
func (f WorkerFixture) Application() application.Worker {
	return application.Worker{
		ID:           f.ID,
		FullName:     f.FullName,
		Location:     f.Location,
		HourlyRate:   f.HourlyRate,
		ServiceTiers: append([]string(nil), f.ServiceTiers...),
		Specialties:  append([]string(nil), f.Specialties...),
		Availability: append([]application.AvailabilityWindow(nil), f.Availability...),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Worker value.
func (f WorkerFixture) Persistence() persistence.Worker {
	windows := make([]persistence.AvailabilityWindow, 0, len(f.Availability))
	for _, window := range f.Availability {
		windows = append(windows, persistence.AvailabilityWindow{
			DayOfWeek:     window.DayOfWeek,
			StartTime:     window.StartTime,
			EndTime:       window.EndTime,
			EffectiveFrom: copyStringPtr(window.EffectiveFrom),
			EffectiveTo:   copyStringPtr(window.EffectiveTo),
		})
	}
	return persistence.Worker{
		ID:           f.ID,
		FullName:     f.FullName,
		Location:     f.Location,
		HourlyRate:   f.HourlyRate,
		ServiceTiers: append([]string(nil), f.ServiceTiers...),
		Specialties:  append([]string(nil), f.Specialties...),
		Availability: windows,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.WorkerInput.
func (f WorkerFixture) Input() application.WorkerInput {
	return application.WorkerInput{
		FullName:     f.FullName,
		Location:     f.Location,
		HourlyRate:   f.HourlyRate,
		ServiceTiers: append([]string(nil), f.ServiceTiers...),
		Specialties:  append([]string(nil), f.Specialties...),
		Availability: append([]application.AvailabilityWindow(nil), f.Availability...),
	}
}

// ----------------------------- Client fixtures ----------------------------

// ClientFixture represents a deterministic care recipient record.
type ClientFixture struct {
	ID        string
	FullName  string
	Location  string
	Age       int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientOption configures the generated client fixture.
type ClientOption func(*ClientFixture)

// NewClientFixture returns a deterministic client fixture with optional overrides.
func NewClientFixture(opts ...ClientOption) ClientFixture {
	idx := atomic.AddUint64(&clientCounter, 1)
	id := fmt.Sprintf("client-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ClientFixture{
		ID:        id,
		FullName:  fmt.Sprintf("Client %03d", idx),
		Location:  "Springfield",
		Age:       int(70 + idx%20),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithClientID overrides the generated client ID.
func WithClientID(id string) ClientOption {
	return func(f *ClientFixture) {
		f.ID = id
	}
}

// WithClientName overrides the generated full name.
func WithClientName(name string) ClientOption {
	return func(f *ClientFixture) {
		f.FullName = name
	}
}

// WithClientLocation overrides the generated location.
func WithClientLocation(location string) ClientOption {
	return func(f *ClientFixture) {
		f.Location = location
	}
}

// WithClientAge overrides the generated age.
func WithClientAge(age int) ClientOption {
	return func(f *ClientFixture) {
		f.Age = age
	}
}

// WithClientTimestamps sets both created and updated timestamps.
func WithClientTimestamps(created, updated time.Time) ClientOption {
	return func(f *ClientFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Client value.
func (f ClientFixture) Application() application.Client {
	return application.Client{
		ID:        f.ID,
		FullName:  f.FullName,
		Location:  f.Location,
		Age:       f.Age,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Client value.
func (f ClientFixture) Persistence() persistence.Client {
	return persistence.Client{
		ID:        f.ID,
		FullName:  f.FullName,
		Location:  f.Location,
		Age:       f.Age,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ClientInput.
func (f ClientFixture) Input() application.ClientInput {
	return application.ClientInput{
		FullName: f.FullName,
		Location: f.Location,
		Age:      f.Age,
	}
}

// ---------------------------- Booking fixtures ----------------------------

// BookingFixture represents a deterministic visit occurrence.
type BookingFixture struct {
	ClientID             string
	WorkerID             string
	Date                 string
	StartTime            string
	EndTime              string
	ServiceTier          string
	Price                float64
	Status               application.BookingStatus
	RequestedAt          time.Time
	ConfirmationDeadline time.Time
	ConfirmedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture. Successive
// fixtures occupy successive one hour slots on 2025-01-06 so they never
// conflict with each other unless overridden.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	startHour := 8 + int(idx%9)
	fixture := BookingFixture{
		ClientID:             fmt.Sprintf("client-%03d", idx),
		WorkerID:             fmt.Sprintf("worker-%03d", idx),
		Date:                 "2025-01-06",
		StartTime:            fmt.Sprintf("%02d:00", startHour),
		EndTime:              fmt.Sprintf("%02d:00", startHour+1),
		ServiceTier:          "basic",
		Price:                20,
		Status:               application.StatusPending,
		RequestedAt:          referenceTime,
		ConfirmationDeadline: referenceTime.Add(12 * time.Hour),
		CreatedAt:            referenceTime,
		UpdatedAt:            referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingClient sets the client ID.
func WithBookingClient(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ClientID = id
	}
}

// WithBookingWorker sets the worker ID.
func WithBookingWorker(id string) BookingOption {
	return func(f *BookingFixture) {
		f.WorkerID = id
	}
}

// WithBookingSlot sets the date and time range.
func WithBookingSlot(date, start, end string) BookingOption {
	return func(f *BookingFixture) {
		f.Date = date
		f.StartTime = start
		f.EndTime = end
	}
}

// WithBookingTier sets the service tier.
func WithBookingTier(tier string) BookingOption {
	return func(f *BookingFixture) {
		f.ServiceTier = tier
	}
}

// WithBookingPrice sets the quoted price.
func WithBookingPrice(price float64) BookingOption {
	return func(f *BookingFixture) {
		f.Price = price
	}
}

// WithBookingStatus sets the lifecycle status.
func WithBookingStatus(status application.BookingStatus) BookingOption {
	return func(f *BookingFixture) {
		f.Status = status
	}
}

// WithBookingRequestedAt sets the request timestamp and derives the
// confirmation deadline twelve hours later.
func WithBookingRequestedAt(t time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.RequestedAt = t
		f.ConfirmationDeadline = t.Add(12 * time.Hour)
	}
}

// WithBookingConfirmedAt sets the optional confirmation timestamp.
func WithBookingConfirmedAt(t time.Time) BookingOption {
	return func(f *BookingFixture) {
		confirmed := t
		f.ConfirmedAt = &confirmed
	}
}

// ID derives the deterministic booking identifier from the slot and worker.
func (f BookingFixture) ID() string {
	return fmt.Sprintf("%s_%s_%s", f.Date, f.StartTime, f.WorkerID)
}

// Application returns the fixture as an application.Booking value.
func (f BookingFixture) Application() application.Booking {
	var confirmed *time.Time
	if f.ConfirmedAt != nil {
		t := *f.ConfirmedAt
		confirmed = &t
	}
	return application.Booking{
		ID:                   f.ID(),
		ClientID:             f.ClientID,
		WorkerID:             f.WorkerID,
		Date:                 f.Date,
		StartTime:            f.StartTime,
		EndTime:              f.EndTime,
		ServiceTier:          f.ServiceTier,
		Price:                f.Price,
		Status:               f.Status,
		RequestedAt:          f.RequestedAt,
		ConfirmationDeadline: f.ConfirmationDeadline,
		ConfirmedAt:          confirmed,
		CreatedAt:            f.CreatedAt,
		UpdatedAt:            f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	var confirmed *time.Time
	if f.ConfirmedAt != nil {
		t := *f.ConfirmedAt
		confirmed = &t
	}
	return persistence.Booking{
		ID:                   f.ID(),
		ClientID:             f.ClientID,
		WorkerID:             f.WorkerID,
		Date:                 f.Date,
		StartTime:            f.StartTime,
		EndTime:              f.EndTime,
		ServiceTier:          f.ServiceTier,
		Price:                f.Price,
		Status:               string(f.Status),
		RequestedAt:          f.RequestedAt,
		ConfirmationDeadline: f.ConfirmationDeadline,
		ConfirmedAt:          confirmed,
		CreatedAt:            f.CreatedAt,
		UpdatedAt:            f.UpdatedAt,
	}
}

// Input returns the fixture as a non-recurring application.BookingInput.
func (f BookingFixture) Input() application.BookingInput {
	return application.BookingInput{
		ClientID:    f.ClientID,
		WorkerID:    f.WorkerID,
		Date:        f.Date,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		ServiceTier: f.ServiceTier,
	}
}

// helper to deep copy optional strings.
func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
