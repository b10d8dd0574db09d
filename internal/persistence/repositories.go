package persistence

import "context"

// WorkerRepository exposes directory operations for workers. Workers are
// never hard-deleted; historical bookings keep referencing them.
type WorkerRepository interface {
	CreateWorker(ctx context.Context, worker Worker) error
	UpdateWorker(ctx context.Context, worker Worker) error
	GetWorker(ctx context.Context, id string) (Worker, error)
	ListWorkers(ctx context.Context) ([]Worker, error)
}

// ClientRepository exposes directory operations for clients.
type ClientRepository interface {
	CreateClient(ctx context.Context, client Client) error
	UpdateClient(ctx context.Context, client Client) error
	GetClient(ctx context.Context, id string) (Client, error)
}

// BookingRepository stores visit occurrences. The bookings table is the
// single source of truth for conflict detection.
type BookingRepository interface {
	// CreateBookings inserts every booking in one atomic transaction. Inside
	// that transaction each booking is re-checked for overlap against
	// committed non-cancelled bookings for the same worker and date, and the
	// insert itself is create-if-absent on the deterministic id. Any failure
	// aborts the whole batch: either every booking is written or none is.
	CreateBookings(ctx context.Context, bookings []Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookingsForWorkerOnDate(ctx context.Context, workerID, date string) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, booking Booking) error
	// ReplaceBooking atomically removes the old occurrence and writes the
	// rescheduled one, with the same overlap re-check as CreateBookings.
	ReplaceBooking(ctx context.Context, oldID string, booking Booking) error
}
