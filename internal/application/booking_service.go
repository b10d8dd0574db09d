package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/care-booking/internal/availability"
	"github.com/example/care-booking/internal/dateutil"
	"github.com/example/care-booking/internal/persistence"
	"github.com/example/care-booking/internal/pricing"
	"github.com/example/care-booking/internal/recurrence"
)

// BookingStore captures the persistence interactions needed by the service.
type BookingStore interface {
	CreateBookings(ctx context.Context, bookings []persistence.Booking) error
	GetBooking(ctx context.Context, id string) (persistence.Booking, error)
	ListBookingsForWorkerOnDate(ctx context.Context, workerID, date string) ([]persistence.Booking, error)
	UpdateBookingStatus(ctx context.Context, booking persistence.Booking) error
	ReplaceBooking(ctx context.Context, oldID string, booking persistence.Booking) error
}

// WorkerDirectory exposes worker lookup operations.
type WorkerDirectory interface {
	GetWorker(ctx context.Context, id string) (persistence.Worker, error)
}

// ClientDirectory exposes client lookup operations.
type ClientDirectory interface {
	GetClient(ctx context.Context, id string) (persistence.Client, error)
}

// BookingService orchestrates expansion, validation, pricing, and persistence
// for booking submissions and lifecycle transitions.
type BookingService struct {
	bookings           BookingStore
	workers            WorkerDirectory
	clients            ClientDirectory
	minLeadTime        time.Duration
	confirmationWindow time.Duration
	now                func() time.Time
	logger             *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingStore, workers WorkerDirectory, clients ClientDirectory, minLeadTime, confirmationWindow time.Duration, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, workers, clients, minLeadTime, confirmationWindow, now, nil)
}

// NewBookingServiceWithLogger additionally attaches a base logger used when
// the request context carries none.
func NewBookingServiceWithLogger(bookings BookingStore, workers WorkerDirectory, clients ClientDirectory, minLeadTime, confirmationWindow time.Duration, now func() time.Time, logger *slog.Logger) *BookingService {
	if minLeadTime <= 0 {
		minLeadTime = 24 * time.Hour
	}
	if confirmationWindow <= 0 {
		confirmationWindow = 12 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:           bookings,
		workers:            workers,
		clients:            clients,
		minLeadTime:        minLeadTime,
		confirmationWindow: confirmationWindow,
		now:                now,
		logger:             logger,
	}
}

func (s *BookingService) opLogger(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// BookingID builds the deterministic occurrence identifier. Two requests for
// the same worker, date, and start time always collide on it.
func BookingID(date dateutil.Date, startMinutes int, workerID string) string {
	return fmt.Sprintf("%s_%s_%s", date, dateutil.FormatClock(startMinutes), workerID)
}

// SubmitBookings validates a batch of booking requests, expands each
// recurrence into individual occurrences, and persists every occurrence in
// one atomic batch. A single failing occurrence rejects the entire
// submission; nothing is written.
func (s *BookingService) SubmitBookings(ctx context.Context, inputs []BookingInput) (SubmitResult, error) {
	if s == nil {
		return SubmitResult{}, fmt.Errorf("BookingService is nil")
	}
	if len(inputs) == 0 {
		return SubmitResult{}, newBookingError(ReasonMalformedBooking, "", "at least one booking request is required")
	}

	requestedAt := s.now().UTC()

	var (
		records  []persistence.Booking
		bookings []Booking
	)
	// Occurrences accepted earlier in the batch count as existing bookings
	// for the requests that follow.
	pending := make(map[workerDate][]availability.Booking)

	for _, input := range inputs {
		expanded, err := s.validateRequest(ctx, input, requestedAt, pending)
		if err != nil {
			return SubmitResult{}, err
		}
		for _, record := range expanded {
			records = append(records, record)
			bookings = append(bookings, toAppBooking(record))
		}
	}

	if err := s.bookings.CreateBookings(ctx, records); err != nil {
		s.opLogger(ctx, "submit").
			ErrorContext(ctx, "failed to persist booking batch", "error", err, "error_kind", ErrorKind(err))
		if errors.Is(err, persistence.ErrConflict) || errors.Is(err, persistence.ErrDuplicate) {
			return SubmitResult{}, newBookingError(ReasonSlotConflict, "", "a requested slot was booked concurrently")
		}
		return SubmitResult{}, err
	}

	s.opLogger(ctx, "submit").
		InfoContext(ctx, "booking batch persisted", "requests", len(inputs), "occurrences", len(records))

	return SubmitResult{Bookings: bookings}, nil
}

// workerDate keys the occurrences accepted so far within one batch.
type workerDate struct {
	workerID string
	date     string
}

// validateRequest runs one request of a submission through the full
// pipeline and returns its occurrence records. Occurrences already accepted
// from earlier requests in the same batch are treated as booked.
func (s *BookingService) validateRequest(ctx context.Context, input BookingInput, requestedAt time.Time, pending map[workerDate][]availability.Booking) ([]persistence.Booking, error) {
	if input.ClientID == "" || input.WorkerID == "" {
		return nil, newBookingError(ReasonMalformedBooking, "", "client id and worker id are required")
	}
	if input.Date == "" || input.StartTime == "" || input.EndTime == "" {
		return nil, newBookingError(ReasonMalformedBooking, "", "date, start time, and end time are required")
	}

	date, err := dateutil.ParseDate(input.Date)
	if err != nil {
		return nil, newBookingError(ReasonInvalidFormat, "", "invalid date %q", input.Date)
	}
	startMinutes, err := dateutil.ParseClock(input.StartTime)
	if err != nil {
		return nil, newBookingError(ReasonInvalidFormat, "", "invalid start time %q", input.StartTime)
	}
	endMinutes, err := dateutil.ParseClock(input.EndTime)
	if err != nil {
		return nil, newBookingError(ReasonInvalidFormat, "", "invalid end time %q", input.EndTime)
	}
	if startMinutes >= endMinutes {
		return nil, newBookingError(ReasonInvalidTimeRange, "", "start time must be before end time")
	}

	dates, err := s.expandOccurrences(input, date)
	if err != nil {
		return nil, err
	}

	client, err := s.clients.GetClient(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, newBookingError(ReasonNotFound, "", "client %s does not exist", input.ClientID)
		}
		return nil, err
	}
	worker, err := s.workers.GetWorker(ctx, input.WorkerID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, newBookingError(ReasonNotFound, "", "worker %s does not exist", input.WorkerID)
		}
		return nil, err
	}

	if !sameCity(client.Location, worker.Location) {
		bErr := newBookingError(ReasonLocationMismatch, "",
			"client is in %s but worker serves %s", client.Location, worker.Location)
		bErr.Details = map[string]string{
			"clientLocation": client.Location,
			"workerLocation": worker.Location,
		}
		return nil, bErr
	}

	// Notice is checked before the tier so a request failing both reports
	// the scheduling problem, not the catalogue one.
	earliestStart := requestedAt.Add(s.minLeadTime)
	for _, occurrenceDate := range dates {
		if occurrenceDate.At(startMinutes, time.UTC).Before(earliestStart) {
			return nil, newBookingError(ReasonInsufficientNotice, BookingID(occurrenceDate, startMinutes, worker.ID),
				"bookings require at least %s of notice", s.minLeadTime)
		}
	}

	tierName := input.ServiceTier
	if tierName == "" {
		tierName = string(pricing.TierBasic)
	}
	tier := pricing.Tier(tierName)
	if !tier.Valid() {
		return nil, newBookingError(ReasonMalformedBooking, "", "unknown service tier %q", input.ServiceTier)
	}
	if !offersTier(worker, tierName) {
		return nil, newBookingError(ReasonTierNotOffered, "",
			"worker %s does not offer tier %s", worker.ID, tierName)
	}

	var price float64
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, newBookingError(ReasonMalformedBooking, "", "price must not be negative")
		}
		price = *input.Price
	} else {
		price, err = pricing.Price(worker.HourlyRate, tier, endMinutes-startMinutes)
		if err != nil {
			return nil, newBookingError(ReasonInvalidTimeRange, "", "cannot price booking: %v", err)
		}
	}

	windows, err := workerWindows(worker)
	if err != nil {
		return nil, err
	}

	records := make([]persistence.Booking, 0, len(dates))
	for _, occurrenceDate := range dates {
		occurrenceID := BookingID(occurrenceDate, startMinutes, worker.ID)
		key := workerDate{workerID: worker.ID, date: occurrenceDate.String()}

		existing, err := s.activeBookingsOn(ctx, worker.ID, occurrenceDate.String())
		if err != nil {
			return nil, err
		}
		existing = append(existing, pending[key]...)

		if err := availability.Check(windows, occurrenceDate, startMinutes, endMinutes, existing); err != nil {
			return nil, mapAvailabilityError(err, occurrenceID)
		}

		records = append(records, persistence.Booking{
			ID:                   occurrenceID,
			ClientID:             client.ID,
			WorkerID:             worker.ID,
			Date:                 occurrenceDate.String(),
			StartTime:            dateutil.FormatClock(startMinutes),
			EndTime:              dateutil.FormatClock(endMinutes),
			ServiceTier:          tierName,
			Price:                price,
			Status:               string(StatusPending),
			RequestedAt:          requestedAt,
			ConfirmationDeadline: requestedAt.Add(s.confirmationWindow),
		})
		pending[key] = append(pending[key], availability.Booking{
			ID:           occurrenceID,
			StartMinutes: startMinutes,
			EndMinutes:   endMinutes,
		})
	}
	return records, nil
}

// GetBooking retrieves one booking occurrence.
func (s *BookingService) GetBooking(ctx context.Context, id string) (Booking, error) {
	record, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, err
	}
	return toAppBooking(record), nil
}

// ListWorkerBookings returns a worker's bookings on one date ordered by
// start time.
func (s *BookingService) ListWorkerBookings(ctx context.Context, workerID, date string) ([]Booking, error) {
	parsed, err := dateutil.ParseDate(date)
	if err != nil {
		return nil, newBookingError(ReasonInvalidFormat, "", "invalid date %q", date)
	}
	records, err := s.bookings.ListBookingsForWorkerOnDate(ctx, workerID, parsed.String())
	if err != nil {
		return nil, err
	}
	bookings := make([]Booking, 0, len(records))
	for _, record := range records {
		bookings = append(bookings, toAppBooking(record))
	}
	return bookings, nil
}

// AcceptBooking confirms a pending booking. The worker must act before the
// confirmation deadline passes.
func (s *BookingService) AcceptBooking(ctx context.Context, id string) (Booking, error) {
	return s.transition(ctx, id, func(booking *persistence.Booking) error {
		if booking.Status != string(StatusPending) {
			return fmt.Errorf("%w: cannot accept a %s booking", ErrInvalidTransition, booking.Status)
		}
		now := s.now().UTC()
		if now.After(booking.ConfirmationDeadline) {
			return fmt.Errorf("%w: confirmation deadline has passed", ErrInvalidTransition)
		}
		booking.Status = string(StatusConfirmed)
		booking.ConfirmedAt = &now
		return nil
	})
}

// DeclineBooking rejects a pending booking.
func (s *BookingService) DeclineBooking(ctx context.Context, id string) (Booking, error) {
	return s.transition(ctx, id, func(booking *persistence.Booking) error {
		if booking.Status != string(StatusPending) {
			return fmt.Errorf("%w: cannot decline a %s booking", ErrInvalidTransition, booking.Status)
		}
		booking.Status = string(StatusRejected)
		return nil
	})
}

// CancelBooking cancels any booking that has not already reached a terminal
// state. Cancelled slots immediately become bookable again.
func (s *BookingService) CancelBooking(ctx context.Context, id string) (Booking, error) {
	return s.transition(ctx, id, func(booking *persistence.Booking) error {
		switch booking.Status {
		case string(StatusCancelled), string(StatusCompleted), string(StatusRejected):
			return fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidTransition, booking.Status)
		}
		booking.Status = string(StatusCancelled)
		return nil
	})
}

// CompleteBooking marks a confirmed booking as carried out.
func (s *BookingService) CompleteBooking(ctx context.Context, id string) (Booking, error) {
	return s.transition(ctx, id, func(booking *persistence.Booking) error {
		if booking.Status != string(StatusConfirmed) {
			return fmt.Errorf("%w: cannot complete a %s booking", ErrInvalidTransition, booking.Status)
		}
		booking.Status = string(StatusCompleted)
		return nil
	})
}

// RescheduleBooking moves a pending or confirmed booking to a new slot. The
// new slot passes the same notice, availability, and conflict checks as a
// fresh submission, and the price is recomputed for the new duration.
func (s *BookingService) RescheduleBooking(ctx context.Context, params RescheduleParams) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}

	existing, err := s.bookings.GetBooking(ctx, params.BookingID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, err
	}
	if existing.Status != string(StatusPending) && existing.Status != string(StatusConfirmed) {
		return Booking{}, fmt.Errorf("%w: cannot reschedule a %s booking", ErrInvalidTransition, existing.Status)
	}

	date, err := dateutil.ParseDate(params.Date)
	if err != nil {
		return Booking{}, newBookingError(ReasonInvalidFormat, existing.ID, "invalid date %q", params.Date)
	}
	startMinutes, err := dateutil.ParseClock(params.StartTime)
	if err != nil {
		return Booking{}, newBookingError(ReasonInvalidFormat, existing.ID, "invalid start time %q", params.StartTime)
	}
	endMinutes, err := dateutil.ParseClock(params.EndTime)
	if err != nil {
		return Booking{}, newBookingError(ReasonInvalidFormat, existing.ID, "invalid end time %q", params.EndTime)
	}
	if startMinutes >= endMinutes {
		return Booking{}, newBookingError(ReasonInvalidTimeRange, existing.ID, "start time must be before end time")
	}

	worker, err := s.workers.GetWorker(ctx, existing.WorkerID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Booking{}, newBookingError(ReasonNotFound, existing.ID, "worker %s does not exist", existing.WorkerID)
		}
		return Booking{}, err
	}

	newID := BookingID(date, startMinutes, worker.ID)
	if date.At(startMinutes, time.UTC).Before(s.now().UTC().Add(s.minLeadTime)) {
		return Booking{}, newBookingError(ReasonInsufficientNotice, newID,
			"bookings require at least %s of notice", s.minLeadTime)
	}

	windows, err := workerWindows(worker)
	if err != nil {
		return Booking{}, err
	}

	others, err := s.activeBookingsOn(ctx, worker.ID, date.String())
	if err != nil {
		return Booking{}, err
	}
	filtered := others[:0]
	for _, other := range others {
		if other.ID != existing.ID {
			filtered = append(filtered, other)
		}
	}
	if err := availability.Check(windows, date, startMinutes, endMinutes, filtered); err != nil {
		return Booking{}, mapAvailabilityError(err, newID)
	}

	price, err := pricing.Price(worker.HourlyRate, pricing.Tier(existing.ServiceTier), endMinutes-startMinutes)
	if err != nil {
		return Booking{}, newBookingError(ReasonInvalidTimeRange, newID, "cannot price booking: %v", err)
	}

	moved := existing
	moved.ID = newID
	moved.Date = date.String()
	moved.StartTime = dateutil.FormatClock(startMinutes)
	moved.EndTime = dateutil.FormatClock(endMinutes)
	moved.Price = price

	if err := s.bookings.ReplaceBooking(ctx, existing.ID, moved); err != nil {
		if errors.Is(err, persistence.ErrConflict) || errors.Is(err, persistence.ErrDuplicate) {
			return Booking{}, newBookingError(ReasonSlotConflict, newID, "the requested slot was booked concurrently")
		}
		if errors.Is(err, persistence.ErrNotFound) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, err
	}

	return toAppBooking(moved), nil
}

func (s *BookingService) transition(ctx context.Context, id string, mutate func(*persistence.Booking) error) (Booking, error) {
	if s == nil {
		return Booking{}, fmt.Errorf("BookingService is nil")
	}

	record, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, err
	}

	if err := mutate(&record); err != nil {
		return Booking{}, err
	}

	if err := s.bookings.UpdateBookingStatus(ctx, record); err != nil {
		s.opLogger(ctx, "transition", "booking_id", id).
			ErrorContext(ctx, "failed to update booking status", "error", err, "error_kind", ErrorKind(err))
		if errors.Is(err, persistence.ErrNotFound) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, err
	}

	return toAppBooking(record), nil
}

func (s *BookingService) expandOccurrences(input BookingInput, date dateutil.Date) ([]dateutil.Date, error) {
	if input.Recurring == nil {
		return []dateutil.Date{date}, nil
	}

	endDate, err := dateutil.ParseDate(input.Recurring.EndDate)
	if err != nil {
		return nil, newBookingError(ReasonInvalidFormat, "", "invalid recurrence end date %q", input.Recurring.EndDate)
	}

	weekdays := make([]time.Weekday, 0, len(input.Recurring.Weekdays))
	for _, day := range input.Recurring.Weekdays {
		if day < 0 || day > 6 {
			return nil, newBookingError(ReasonInvalidFormat, "", "invalid weekday %d", day)
		}
		weekdays = append(weekdays, time.Weekday(day))
	}

	dates, err := recurrence.Expand(recurrence.Rule{
		Frequency: recurrence.Frequency(input.Recurring.Frequency),
		StartDate: date,
		EndDate:   endDate,
		Weekdays:  weekdays,
	})
	if err != nil {
		if errors.Is(err, recurrence.ErrInvalidRange) {
			return nil, newBookingError(ReasonInvalidTimeRange, "", "recurrence end date precedes the start date")
		}
		return nil, newBookingError(ReasonInvalidFormat, "", "unknown recurrence frequency %q", input.Recurring.Frequency)
	}
	if len(dates) == 0 {
		return nil, newBookingError(ReasonInvalidTimeRange, "", "recurrence produces no occurrences")
	}
	return dates, nil
}

// activeBookingsOn loads the worker's non-cancelled bookings for a date in
// the minimal form the availability checker consumes.
func (s *BookingService) activeBookingsOn(ctx context.Context, workerID, date string) ([]availability.Booking, error) {
	records, err := s.bookings.ListBookingsForWorkerOnDate(ctx, workerID, date)
	if err != nil {
		return nil, err
	}

	active := make([]availability.Booking, 0, len(records))
	for _, record := range records {
		if record.Status == string(StatusCancelled) {
			continue
		}
		startMinutes, err := dateutil.ParseClock(record.StartTime)
		if err != nil {
			return nil, fmt.Errorf("stored booking %s has invalid start time: %w", record.ID, err)
		}
		endMinutes, err := dateutil.ParseClock(record.EndTime)
		if err != nil {
			return nil, fmt.Errorf("stored booking %s has invalid end time: %w", record.ID, err)
		}
		active = append(active, availability.Booking{
			ID:           record.ID,
			StartMinutes: startMinutes,
			EndMinutes:   endMinutes,
		})
	}
	return active, nil
}

func workerWindows(worker persistence.Worker) ([]availability.Window, error) {
	windows := make([]availability.Window, 0, len(worker.Availability))
	for _, declared := range worker.Availability {
		startMinutes, err := dateutil.ParseClock(declared.StartTime)
		if err != nil {
			return nil, fmt.Errorf("worker %s has invalid availability start: %w", worker.ID, err)
		}
		endMinutes, err := dateutil.ParseClock(declared.EndTime)
		if err != nil {
			return nil, fmt.Errorf("worker %s has invalid availability end: %w", worker.ID, err)
		}
		window := availability.Window{
			Weekday:      time.Weekday(declared.DayOfWeek),
			StartMinutes: startMinutes,
			EndMinutes:   endMinutes,
		}
		if declared.EffectiveFrom != nil {
			from, err := dateutil.ParseDate(*declared.EffectiveFrom)
			if err != nil {
				return nil, fmt.Errorf("worker %s has invalid effective-from date: %w", worker.ID, err)
			}
			window.EffectiveFrom = &from
		}
		if declared.EffectiveTo != nil {
			to, err := dateutil.ParseDate(*declared.EffectiveTo)
			if err != nil {
				return nil, fmt.Errorf("worker %s has invalid effective-to date: %w", worker.ID, err)
			}
			window.EffectiveTo = &to
		}
		windows = append(windows, window)
	}
	return windows, nil
}

func mapAvailabilityError(err error, occurrenceID string) error {
	var conflict *availability.ConflictError
	switch {
	case errors.Is(err, availability.ErrNotAvailableThisDay):
		return newBookingError(ReasonNotAvailableThisDay, occurrenceID, "worker does not work on this day")
	case errors.Is(err, availability.ErrOutsideWorkingHours):
		return newBookingError(ReasonOutsideWorkingHours, occurrenceID, "requested time falls outside working hours")
	case errors.As(err, &conflict):
		return newBookingError(ReasonSlotConflict, occurrenceID,
			"overlaps existing booking %s (%s-%s)", conflict.BookingID,
			dateutil.FormatClock(conflict.StartMinutes), dateutil.FormatClock(conflict.EndMinutes))
	default:
		return err
	}
}

func offersTier(worker persistence.Worker, tier string) bool {
	for _, offered := range worker.ServiceTiers {
		if strings.EqualFold(strings.TrimSpace(offered), strings.TrimSpace(tier)) {
			return true
		}
	}
	return false
}

func sameCity(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func toAppBooking(record persistence.Booking) Booking {
	return Booking{
		ID:                   record.ID,
		ClientID:             record.ClientID,
		WorkerID:             record.WorkerID,
		Date:                 record.Date,
		StartTime:            record.StartTime,
		EndTime:              record.EndTime,
		ServiceTier:          record.ServiceTier,
		Price:                record.Price,
		Status:               BookingStatus(record.Status),
		RequestedAt:          record.RequestedAt,
		ConfirmationDeadline: record.ConfirmationDeadline,
		ConfirmedAt:          record.ConfirmedAt,
		CreatedAt:            record.CreatedAt,
		UpdatedAt:            record.UpdatedAt,
	}
}
