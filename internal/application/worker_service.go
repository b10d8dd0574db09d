package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/care-booking/internal/dateutil"
	"github.com/example/care-booking/internal/persistence"
	"github.com/example/care-booking/internal/pricing"
)

// WorkerRepository captures the persistence interactions needed by the service.
type WorkerRepository interface {
	CreateWorker(ctx context.Context, worker persistence.Worker) error
	UpdateWorker(ctx context.Context, worker persistence.Worker) error
	GetWorker(ctx context.Context, id string) (persistence.Worker, error)
	ListWorkers(ctx context.Context) ([]persistence.Worker, error)
}

// WorkerService manages the care worker directory. Workers are never hard
// deleted; historical bookings keep referencing their profiles.
type WorkerService struct {
	workers     WorkerRepository
	idGenerator func() string
	now         func() time.Time
}

// NewWorkerService wires dependencies for worker directory operations.
func NewWorkerService(workers WorkerRepository, idGenerator func() string, now func() time.Time) *WorkerService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &WorkerService{workers: workers, idGenerator: idGenerator, now: now}
}

// CreateWorker validates the profile before delegating to persistence.
func (s *WorkerService) CreateWorker(ctx context.Context, input WorkerInput) (Worker, error) {
	if s == nil {
		return Worker{}, fmt.Errorf("WorkerService is nil")
	}

	vErr := &ValidationError{}
	validateWorkerCore(input, vErr)
	if vErr.HasErrors() {
		return Worker{}, vErr
	}

	worker := persistence.Worker{
		ID:           s.idGenerator(),
		FullName:     strings.TrimSpace(input.FullName),
		Location:     strings.TrimSpace(input.Location),
		HourlyRate:   input.HourlyRate,
		ServiceTiers: normalizeTiers(input.ServiceTiers),
		Specialties:  trimAll(input.Specialties),
		Availability: toPersistenceWindows(input.Availability),
	}

	if err := s.workers.CreateWorker(ctx, worker); err != nil {
		return Worker{}, mapDirectoryRepoError(err)
	}

	created, err := s.workers.GetWorker(ctx, worker.ID)
	if err != nil {
		return Worker{}, mapDirectoryRepoError(err)
	}
	return toAppWorker(created), nil
}

// UpdateWorker validates and replaces a worker's profile.
func (s *WorkerService) UpdateWorker(ctx context.Context, id string, input WorkerInput) (Worker, error) {
	if s == nil {
		return Worker{}, fmt.Errorf("WorkerService is nil")
	}

	vErr := &ValidationError{}
	validateWorkerCore(input, vErr)
	if vErr.HasErrors() {
		return Worker{}, vErr
	}

	existing, err := s.workers.GetWorker(ctx, id)
	if err != nil {
		return Worker{}, mapDirectoryRepoError(err)
	}

	existing.FullName = strings.TrimSpace(input.FullName)
	existing.Location = strings.TrimSpace(input.Location)
	existing.HourlyRate = input.HourlyRate
	existing.ServiceTiers = normalizeTiers(input.ServiceTiers)
	existing.Specialties = trimAll(input.Specialties)
	existing.Availability = toPersistenceWindows(input.Availability)

	if err := s.workers.UpdateWorker(ctx, existing); err != nil {
		return Worker{}, mapDirectoryRepoError(err)
	}

	updated, err := s.workers.GetWorker(ctx, id)
	if err != nil {
		return Worker{}, mapDirectoryRepoError(err)
	}
	return toAppWorker(updated), nil
}

// GetWorker retrieves one worker profile.
func (s *WorkerService) GetWorker(ctx context.Context, id string) (Worker, error) {
	record, err := s.workers.GetWorker(ctx, id)
	if err != nil {
		return Worker{}, mapDirectoryRepoError(err)
	}
	return toAppWorker(record), nil
}

// ListWorkers returns the full directory ordered by name.
func (s *WorkerService) ListWorkers(ctx context.Context) ([]Worker, error) {
	records, err := s.workers.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}
	workers := make([]Worker, 0, len(records))
	for _, record := range records {
		workers = append(workers, toAppWorker(record))
	}
	return workers, nil
}

func validateWorkerCore(input WorkerInput, vErr *ValidationError) {
	if strings.TrimSpace(input.FullName) == "" {
		vErr.add("full_name", "full name is required")
	}
	if strings.TrimSpace(input.Location) == "" {
		vErr.add("location", "location is required")
	}
	if input.HourlyRate <= 0 {
		vErr.add("hourly_rate", "hourly rate must be positive")
	}
	if len(input.ServiceTiers) == 0 {
		vErr.add("service_tiers", "at least one service tier is required")
	}
	for _, tier := range input.ServiceTiers {
		if !pricing.Tier(strings.ToLower(strings.TrimSpace(tier))).Valid() {
			vErr.add("service_tiers", fmt.Sprintf("unknown service tier %q", tier))
			break
		}
	}
	for i, window := range input.Availability {
		field := fmt.Sprintf("availability[%d]", i)
		if window.DayOfWeek < 0 || window.DayOfWeek > 6 {
			vErr.add(field, "day of week must be between 0 and 6")
			continue
		}
		startMinutes, err := dateutil.ParseClock(window.StartTime)
		if err != nil {
			vErr.add(field, fmt.Sprintf("invalid start time %q", window.StartTime))
			continue
		}
		endMinutes, err := dateutil.ParseClock(window.EndTime)
		if err != nil {
			vErr.add(field, fmt.Sprintf("invalid end time %q", window.EndTime))
			continue
		}
		if startMinutes >= endMinutes {
			vErr.add(field, "start time must be before end time")
			continue
		}
		if window.EffectiveFrom != nil {
			if _, err := dateutil.ParseDate(*window.EffectiveFrom); err != nil {
				vErr.add(field, fmt.Sprintf("invalid effective-from date %q", *window.EffectiveFrom))
				continue
			}
		}
		if window.EffectiveTo != nil {
			if _, err := dateutil.ParseDate(*window.EffectiveTo); err != nil {
				vErr.add(field, fmt.Sprintf("invalid effective-to date %q", *window.EffectiveTo))
			}
		}
	}
}

func normalizeTiers(tiers []string) []string {
	out := make([]string, 0, len(tiers))
	seen := make(map[string]struct{}, len(tiers))
	for _, tier := range tiers {
		normalized := strings.ToLower(strings.TrimSpace(tier))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func toPersistenceWindows(windows []AvailabilityWindow) []persistence.AvailabilityWindow {
	out := make([]persistence.AvailabilityWindow, 0, len(windows))
	for _, window := range windows {
		out = append(out, persistence.AvailabilityWindow{
			DayOfWeek:     window.DayOfWeek,
			StartTime:     window.StartTime,
			EndTime:       window.EndTime,
			EffectiveFrom: window.EffectiveFrom,
			EffectiveTo:   window.EffectiveTo,
		})
	}
	return out
}

func toAppWindows(windows []persistence.AvailabilityWindow) []AvailabilityWindow {
	out := make([]AvailabilityWindow, 0, len(windows))
	for _, window := range windows {
		out = append(out, AvailabilityWindow{
			DayOfWeek:     window.DayOfWeek,
			StartTime:     window.StartTime,
			EndTime:       window.EndTime,
			EffectiveFrom: window.EffectiveFrom,
			EffectiveTo:   window.EffectiveTo,
		})
	}
	return out
}

func toAppWorker(record persistence.Worker) Worker {
	return Worker{
		ID:           record.ID,
		FullName:     record.FullName,
		Location:     record.Location,
		HourlyRate:   record.HourlyRate,
		ServiceTiers: record.ServiceTiers,
		Specialties:  record.Specialties,
		Availability: toAppWindows(record.Availability),
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func mapDirectoryRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("profile", "profile violates a storage constraint")
		return vErr
	}
	return err
}
