package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/care-booking/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	store *Store
}

// NewBookingRepository creates a new SQLite booking repository.
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

const bookingColumns = `id, client_id, worker_id, date, start_time, end_time, service_tier, price, status, requested_at, confirmation_deadline, confirmed_at, created_at, updated_at`

// CreateBookings writes every booking in one transaction. Each insert is
// preceded by an overlap re-check against committed non-cancelled bookings
// for the same worker and date, and the primary key on the deterministic id
// gives create-if-absent semantics. Any failure rolls the whole batch back.
func (r *BookingRepository) CreateBookings(ctx context.Context, bookings []persistence.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	now := time.Now().UTC()

	return r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, booking := range bookings {
			if booking.ID == "" {
				return persistence.ErrConstraintViolation
			}
			if err := r.checkOverlapTx(ctx, tx, booking, ""); err != nil {
				return err
			}

			booking.CreatedAt = now
			booking.UpdatedAt = now
			if err := r.insertTx(ctx, tx, booking); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBooking retrieves a booking by its deterministic identifier.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	if id == "" {
		return persistence.Booking{}, persistence.ErrNotFound
	}

	row := r.store.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// ListBookingsForWorkerOnDate returns the worker's bookings for the exact
// date, ordered by start time. Cancelled bookings are included; callers
// filter by status as needed.
func (r *BookingRepository) ListBookingsForWorkerOnDate(ctx context.Context, workerID, date string) ([]persistence.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE worker_id = ? AND date = ?
		ORDER BY start_time ASC, id ASC
	`

	rows, err := r.store.db.QueryContext(ctx, query, workerID, date)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return bookings, nil
}

// UpdateBookingStatus overwrites the status-bearing fields of a booking.
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" {
		return persistence.ErrNotFound
	}

	var confirmedAt sql.NullString
	if booking.ConfirmedAt != nil {
		confirmedAt = sql.NullString{String: formatTime(*booking.ConfirmedAt), Valid: true}
	}

	result, err := r.store.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, confirmed_at = ?, updated_at = ?
		WHERE id = ?
	`,
		booking.Status,
		confirmedAt,
		formatTime(time.Now().UTC()),
		booking.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ReplaceBooking atomically removes the old occurrence and inserts the
// rescheduled one, re-checking overlap inside the same transaction.
func (r *BookingRepository) ReplaceBooking(ctx context.Context, oldID string, booking persistence.Booking) error {
	if oldID == "" || booking.ID == "" {
		return persistence.ErrNotFound
	}

	now := time.Now().UTC()

	return r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", oldID)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if err := r.checkOverlapTx(ctx, tx, booking, oldID); err != nil {
			return err
		}

		booking.CreatedAt = now
		booking.UpdatedAt = now
		return r.insertTx(ctx, tx, booking)
	})
}

// checkOverlapTx fails with ErrConflict when a non-cancelled booking for the
// same worker and date intersects the candidate's time range. Zero-padded
// HH:MM strings compare correctly as text.
func (r *BookingRepository) checkOverlapTx(ctx context.Context, tx *sql.Tx, booking persistence.Booking, excludeID string) error {
	var conflictID string
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM bookings
		WHERE worker_id = ? AND date = ? AND status != 'cancelled'
			AND start_time < ? AND end_time > ? AND id != ?
		LIMIT 1
	`,
		booking.WorkerID,
		booking.Date,
		booking.EndTime,
		booking.StartTime,
		excludeID,
	).Scan(&conflictID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return mapError(err)
	}
	return persistence.ErrConflict
}

func (r *BookingRepository) insertTx(ctx context.Context, tx *sql.Tx, booking persistence.Booking) error {
	var confirmedAt sql.NullString
	if booking.ConfirmedAt != nil {
		confirmedAt = sql.NullString{String: formatTime(*booking.ConfirmedAt), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		booking.ID,
		booking.ClientID,
		booking.WorkerID,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.ServiceTier,
		booking.Price,
		booking.Status,
		formatTime(booking.RequestedAt),
		formatTime(booking.ConfirmationDeadline),
		confirmedAt,
		formatTime(booking.CreatedAt),
		formatTime(booking.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var requestedAt, deadline, createdAt, updatedAt string
	var confirmedAt sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.ClientID,
		&booking.WorkerID,
		&booking.Date,
		&booking.StartTime,
		&booking.EndTime,
		&booking.ServiceTier,
		&booking.Price,
		&booking.Status,
		&requestedAt,
		&deadline,
		&confirmedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, mapError(err)
	}

	if booking.RequestedAt, err = parseTime(requestedAt); err != nil {
		return persistence.Booking{}, err
	}
	if booking.ConfirmationDeadline, err = parseTime(deadline); err != nil {
		return persistence.Booking{}, err
	}
	if confirmedAt.Valid {
		t, err := parseTime(confirmedAt.String)
		if err != nil {
			return persistence.Booking{}, err
		}
		booking.ConfirmedAt = &t
	}
	if booking.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Booking{}, err
	}
	if booking.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Booking{}, err
	}

	return booking, nil
}
