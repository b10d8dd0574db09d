package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/care-booking/internal/persistence"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	dsn := filepath.Join(dir, "careapi.db")
	store, err := Open(dsn)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return store
}

func seedWorker(t *testing.T, store *Store, id string) {
	t.Helper()

	repo := NewWorkerRepository(store)
	worker := persistence.Worker{
		ID:           id,
		FullName:     "Dana Fields",
		Location:     "Springfield",
		HourlyRate:   20,
		ServiceTiers: []string{"basic", "enhanced"},
		Specialties:  []string{"dementia"},
		Availability: []persistence.AvailabilityWindow{
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
		},
	}
	if err := repo.CreateWorker(context.Background(), worker); err != nil {
		t.Fatalf("CreateWorker failed: %v", err)
	}
}

func seedClient(t *testing.T, store *Store, id string) {
	t.Helper()

	repo := NewClientRepository(store)
	client := persistence.Client{ID: id, FullName: "Robin Ames", Location: "Springfield", Age: 81}
	if err := repo.CreateClient(context.Background(), client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
}

func testBooking(id, date, start, end string) persistence.Booking {
	requestedAt := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	return persistence.Booking{
		ID:                   id,
		ClientID:             "client-1",
		WorkerID:             "worker-1",
		Date:                 date,
		StartTime:            start,
		EndTime:              end,
		ServiceTier:          "basic",
		Price:                20,
		Status:               "pending",
		RequestedAt:          requestedAt,
		ConfirmationDeadline: requestedAt.Add(12 * time.Hour),
	}
}

func TestWorkerRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := NewWorkerRepository(store)

	seedWorker(t, store, "worker-1")

	fetched, err := repo.GetWorker(ctx, "worker-1")
	if err != nil {
		t.Fatalf("GetWorker failed: %v", err)
	}
	if fetched.FullName != "Dana Fields" || fetched.HourlyRate != 20 {
		t.Fatalf("unexpected worker retrieved: %#v", fetched)
	}
	if len(fetched.ServiceTiers) != 2 || fetched.ServiceTiers[1] != "enhanced" {
		t.Fatalf("unexpected service tiers: %v", fetched.ServiceTiers)
	}
	if len(fetched.Availability) != 1 || fetched.Availability[0].StartTime != "09:00" {
		t.Fatalf("unexpected availability: %#v", fetched.Availability)
	}

	fetched.FullName = "Dana Fields-Ruiz"
	fetched.Availability = append(fetched.Availability, persistence.AvailabilityWindow{
		DayOfWeek: 3, StartTime: "10:00", EndTime: "14:00",
	})
	if err := repo.UpdateWorker(ctx, fetched); err != nil {
		t.Fatalf("UpdateWorker failed: %v", err)
	}

	updated, err := repo.GetWorker(ctx, "worker-1")
	if err != nil {
		t.Fatalf("GetWorker after update failed: %v", err)
	}
	if updated.FullName != "Dana Fields-Ruiz" || len(updated.Availability) != 2 {
		t.Fatalf("update not persisted: %#v", updated)
	}

	workers, err := repo.ListWorkers(ctx)
	if err != nil {
		t.Fatalf("ListWorkers failed: %v", err)
	}
	if len(workers) != 1 {
		t.Fatalf("expected 1 worker, got %d", len(workers))
	}
}

func TestWorkerRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := NewWorkerRepository(store)

	if _, err := repo.GetWorker(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateWorker(ctx, persistence.Worker{ID: "missing"}); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestWorkerRepository_DuplicateID(t *testing.T) {
	store := newTestStore(t)
	seedWorker(t, store, "worker-1")

	repo := NewWorkerRepository(store)
	err := repo.CreateWorker(context.Background(), persistence.Worker{
		ID: "worker-1", FullName: "Other", Location: "Elsewhere", HourlyRate: 10,
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestClientRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := NewClientRepository(store)

	seedClient(t, store, "client-1")

	fetched, err := repo.GetClient(ctx, "client-1")
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	if fetched.FullName != "Robin Ames" || fetched.Age != 81 {
		t.Fatalf("unexpected client retrieved: %#v", fetched)
	}

	fetched.Location = "Shelbyville"
	if err := repo.UpdateClient(ctx, fetched); err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}

	updated, err := repo.GetClient(ctx, "client-1")
	if err != nil {
		t.Fatalf("GetClient after update failed: %v", err)
	}
	if updated.Location != "Shelbyville" {
		t.Fatalf("update not persisted: %#v", updated)
	}

	if _, err := repo.GetClient(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookingRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedWorker(t, store, "worker-1")
	seedClient(t, store, "client-1")
	repo := NewBookingRepository(store)

	bookings := []persistence.Booking{
		testBooking("2025-01-06_09:00_worker-1", "2025-01-06", "09:00", "10:00"),
		testBooking("2025-01-13_09:00_worker-1", "2025-01-13", "09:00", "10:00"),
	}
	if err := repo.CreateBookings(ctx, bookings); err != nil {
		t.Fatalf("CreateBookings failed: %v", err)
	}

	fetched, err := repo.GetBooking(ctx, "2025-01-06_09:00_worker-1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if fetched.Status != "pending" || fetched.Date != "2025-01-06" {
		t.Fatalf("unexpected booking retrieved: %#v", fetched)
	}
	if !fetched.ConfirmationDeadline.Equal(fetched.RequestedAt.Add(12 * time.Hour)) {
		t.Fatalf("confirmation deadline not preserved: %#v", fetched)
	}

	listed, err := repo.ListBookingsForWorkerOnDate(ctx, "worker-1", "2025-01-06")
	if err != nil {
		t.Fatalf("ListBookingsForWorkerOnDate failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 booking on 2025-01-06, got %d", len(listed))
	}
}

func TestBookingRepository_BatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedWorker(t, store, "worker-1")
	seedClient(t, store, "client-1")
	repo := NewBookingRepository(store)

	existing := testBooking("2025-01-13_09:00_worker-1", "2025-01-13", "09:00", "10:00")
	if err := repo.CreateBookings(ctx, []persistence.Booking{existing}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	// Second element overlaps the committed booking, so the whole batch
	// must roll back including the clean first element.
	batch := []persistence.Booking{
		testBooking("2025-01-06_09:00_worker-1", "2025-01-06", "09:00", "10:00"),
		testBooking("2025-01-13_09:30_worker-1", "2025-01-13", "09:30", "10:30"),
	}
	err := repo.CreateBookings(ctx, batch)
	if !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if _, err := repo.GetBooking(ctx, "2025-01-06_09:00_worker-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("first batch element leaked through rollback: %v", err)
	}
}

func TestBookingRepository_TouchingBoundaryIsNotConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedWorker(t, store, "worker-1")
	seedClient(t, store, "client-1")
	repo := NewBookingRepository(store)

	first := testBooking("2025-01-06_09:00_worker-1", "2025-01-06", "09:00", "10:00")
	if err := repo.CreateBookings(ctx, []persistence.Booking{first}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	adjacent := testBooking("2025-01-06_10:00_worker-1", "2025-01-06", "10:00", "11:00")
	if err := repo.CreateBookings(ctx, []persistence.Booking{adjacent}); err != nil {
		t.Fatalf("back-to-back booking should be allowed: %v", err)
	}
}

func TestBookingRepository_CancelledDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedWorker(t, store, "worker-1")
	seedClient(t, store, "client-1")
	repo := NewBookingRepository(store)

	cancelled := testBooking("2025-01-06_09:00_worker-1", "2025-01-06", "09:00", "10:00")
	cancelled.Status = "cancelled"
	if err := repo.CreateBookings(ctx, []persistence.Booking{cancelled}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	replacement := testBooking("2025-01-06_09:30_worker-1", "2025-01-06", "09:30", "10:30")
	if err := repo.CreateBookings(ctx, []persistence.Booking{replacement}); err != nil {
		t.Fatalf("cancelled booking should not block the slot: %v", err)
	}
}

func TestBookingRepository_UpdateBookingStatus(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedWorker(t, store, "worker-1")
	seedClient(t, store, "client-1")
	repo := NewBookingRepository(store)

	booking := testBooking("2025-01-06_09:00_worker-1", "2025-01-06", "09:00", "10:00")
	if err := repo.CreateBookings(ctx, []persistence.Booking{booking}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	confirmedAt := time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)
	booking.Status = "confirmed"
	booking.ConfirmedAt = &confirmedAt
	if err := repo.UpdateBookingStatus(ctx, booking); err != nil {
		t.Fatalf("UpdateBookingStatus failed: %v", err)
	}

	fetched, err := repo.GetBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if fetched.Status != "confirmed" {
		t.Fatalf("expected status confirmed, got %q", fetched.Status)
	}
	if fetched.ConfirmedAt == nil || !fetched.ConfirmedAt.Equal(confirmedAt) {
		t.Fatalf("confirmed_at not persisted: %#v", fetched.ConfirmedAt)
	}

	missing := testBooking("nope", "2025-01-06", "09:00", "10:00")
	if err := repo.UpdateBookingStatus(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookingRepository_ReplaceBooking(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedWorker(t, store, "worker-1")
	seedClient(t, store, "client-1")
	repo := NewBookingRepository(store)

	original := testBooking("2025-01-06_09:00_worker-1", "2025-01-06", "09:00", "10:00")
	blocker := testBooking("2025-01-07_09:00_worker-1", "2025-01-07", "09:00", "10:00")
	if err := repo.CreateBookings(ctx, []persistence.Booking{original, blocker}); err != nil {
		t.Fatalf("seed bookings failed: %v", err)
	}

	moved := testBooking("2025-01-06_11:00_worker-1", "2025-01-06", "11:00", "12:00")
	if err := repo.ReplaceBooking(ctx, original.ID, moved); err != nil {
		t.Fatalf("ReplaceBooking failed: %v", err)
	}

	if _, err := repo.GetBooking(ctx, original.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("old occurrence should be gone, got %v", err)
	}
	if _, err := repo.GetBooking(ctx, moved.ID); err != nil {
		t.Fatalf("moved occurrence missing: %v", err)
	}

	// Moving onto the blocker's slot must fail and keep the current row.
	conflicting := testBooking("2025-01-07_09:30_worker-1", "2025-01-07", "09:30", "10:30")
	err := repo.ReplaceBooking(ctx, moved.ID, conflicting)
	if !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := repo.GetBooking(ctx, moved.ID); err != nil {
		t.Fatalf("failed replace should keep the original row: %v", err)
	}
}

func TestBookingRepository_InvalidTimeRangeRejected(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedWorker(t, store, "worker-1")
	seedClient(t, store, "client-1")
	repo := NewBookingRepository(store)

	inverted := testBooking("2025-01-06_10:00_worker-1", "2025-01-06", "10:00", "09:00")
	err := repo.CreateBookings(ctx, []persistence.Booking{inverted})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}
