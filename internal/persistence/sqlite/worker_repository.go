package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/care-booking/internal/persistence"
)

// WorkerRepository implements persistence.WorkerRepository using SQLite.
type WorkerRepository struct {
	store *Store
}

// NewWorkerRepository creates a new SQLite worker repository.
func NewWorkerRepository(store *Store) *WorkerRepository {
	return &WorkerRepository{store: store}
}

// CreateWorker inserts a worker and its availability windows.
func (r *WorkerRepository) CreateWorker(ctx context.Context, worker persistence.Worker) error {
	if worker.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	worker.CreatedAt = now
	worker.UpdatedAt = now

	return r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO workers (id, full_name, location, hourly_rate, service_tiers, specialties, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			worker.ID,
			worker.FullName,
			worker.Location,
			worker.HourlyRate,
			joinList(worker.ServiceTiers),
			joinList(worker.Specialties),
			formatTime(worker.CreatedAt),
			formatTime(worker.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}

		return r.insertAvailability(ctx, tx, worker.ID, worker.Availability)
	})
}

// UpdateWorker replaces a worker's mutable fields and availability windows.
func (r *WorkerRepository) UpdateWorker(ctx context.Context, worker persistence.Worker) error {
	if worker.ID == "" {
		return persistence.ErrNotFound
	}

	worker.UpdatedAt = time.Now().UTC()

	return r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE workers
			SET full_name = ?, location = ?, hourly_rate = ?, service_tiers = ?, specialties = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := tx.ExecContext(ctx, query,
			worker.FullName,
			worker.Location,
			worker.HourlyRate,
			joinList(worker.ServiceTiers),
			joinList(worker.Specialties),
			formatTime(worker.UpdatedAt),
			worker.ID,
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

		if _, err := tx.ExecContext(ctx, "DELETE FROM worker_availability WHERE worker_id = ?", worker.ID); err != nil {
			return mapError(err)
		}
		return r.insertAvailability(ctx, tx, worker.ID, worker.Availability)
	})
}

// GetWorker retrieves a worker with its availability windows.
func (r *WorkerRepository) GetWorker(ctx context.Context, id string) (persistence.Worker, error) {
	if id == "" {
		return persistence.Worker{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, full_name, location, hourly_rate, service_tiers, specialties, created_at, updated_at
		FROM workers
		WHERE id = ?
	`

	worker, err := scanWorker(r.store.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Worker{}, err
	}

	availability, err := r.loadAvailability(ctx, id)
	if err != nil {
		return persistence.Worker{}, err
	}
	worker.Availability = availability

	return worker, nil
}

// ListWorkers returns the full worker directory ordered by name.
func (r *WorkerRepository) ListWorkers(ctx context.Context) ([]persistence.Worker, error) {
	query := `
		SELECT id, full_name, location, hourly_rate, service_tiers, specialties, created_at, updated_at
		FROM workers
		ORDER BY full_name ASC, id ASC
	`

	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var workers []persistence.Worker
	for rows.Next() {
		worker, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, worker)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range workers {
		availability, err := r.loadAvailability(ctx, workers[i].ID)
		if err != nil {
			return nil, err
		}
		workers[i].Availability = availability
	}

	return workers, nil
}

func (r *WorkerRepository) insertAvailability(ctx context.Context, tx *sql.Tx, workerID string, windows []persistence.AvailabilityWindow) error {
	for _, window := range windows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO worker_availability (worker_id, day_of_week, start_time, end_time, effective_from, effective_to)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			workerID,
			window.DayOfWeek,
			window.StartTime,
			window.EndTime,
			nullString(window.EffectiveFrom),
			nullString(window.EffectiveTo),
		)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *WorkerRepository) loadAvailability(ctx context.Context, workerID string) ([]persistence.AvailabilityWindow, error) {
	query := `
		SELECT day_of_week, start_time, end_time, effective_from, effective_to
		FROM worker_availability
		WHERE worker_id = ?
		ORDER BY day_of_week ASC, start_time ASC
	`

	rows, err := r.store.db.QueryContext(ctx, query, workerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var windows []persistence.AvailabilityWindow
	for rows.Next() {
		var window persistence.AvailabilityWindow
		var effectiveFrom, effectiveTo sql.NullString
		if err := rows.Scan(&window.DayOfWeek, &window.StartTime, &window.EndTime, &effectiveFrom, &effectiveTo); err != nil {
			return nil, mapError(err)
		}
		window.EffectiveFrom = stringPtr(effectiveFrom)
		window.EffectiveTo = stringPtr(effectiveTo)
		windows = append(windows, window)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return windows, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (persistence.Worker, error) {
	var worker persistence.Worker
	var tiers, specialties, createdAt, updatedAt string

	err := row.Scan(
		&worker.ID,
		&worker.FullName,
		&worker.Location,
		&worker.HourlyRate,
		&tiers,
		&specialties,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Worker{}, persistence.ErrNotFound
		}
		return persistence.Worker{}, mapError(err)
	}

	worker.ServiceTiers = splitList(tiers)
	worker.Specialties = splitList(specialties)
	if worker.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Worker{}, err
	}
	if worker.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Worker{}, err
	}

	return worker, nil
}
