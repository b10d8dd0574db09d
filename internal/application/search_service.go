package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/care-booking/internal/persistence"
	"github.com/example/care-booking/internal/search"
)

// SearchService answers worker directory queries. Results are cached briefly
// per filter combination, so they may lag profile edits by up to the cache
// TTL; Invalidate drops the cache after directory mutations.
type SearchService struct {
	workers WorkerRepository
	clients ClientRepository
	cache   *searchCache
}

// NewSearchService wires dependencies for directory search.
func NewSearchService(workers WorkerRepository, clients ClientRepository, cacheTTL time.Duration, now func() time.Time) *SearchService {
	return &SearchService{
		workers: workers,
		clients: clients,
		cache:   newSearchCache(cacheTTL, 0, now),
	}
}

// SearchWorkers filters the directory by the given parameters. All filters
// are conjunctive; the keyword alone matches any of name, location, or
// specialty.
func (s *SearchService) SearchWorkers(ctx context.Context, params SearchParams) ([]Worker, error) {
	if s == nil {
		return nil, fmt.Errorf("SearchService is nil")
	}

	if params.MinRate != nil && params.MaxRate != nil && *params.MinRate > *params.MaxRate {
		vErr := &ValidationError{}
		vErr.add("rate", "minimum rate exceeds maximum rate")
		return nil, vErr
	}

	filters := search.Filters{
		Keyword:           params.Keyword,
		MinRate:           params.MinRate,
		MaxRate:           params.MaxRate,
		Location:          params.Location,
		Specialty:         params.Specialty,
		ServiceTier:       params.ServiceTier,
		AvailableWeekdays: params.AvailableWeekdays,
		SortBy:            params.SortBy,
	}

	if params.MatchClientLocation {
		if params.ClientID == "" {
			vErr := &ValidationError{}
			vErr.add("client_id", "client id is required to match by client location")
			return nil, vErr
		}
		client, err := s.clients.GetClient(ctx, params.ClientID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		filters.ClientLocation = client.Location
		filters.MatchClientLocation = true
	}

	key := buildSearchCacheKey(params)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	records, err := s.workers.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]search.Worker, 0, len(records))
	byID := make(map[string]persistence.Worker, len(records))
	for _, record := range records {
		byID[record.ID] = record
		candidates = append(candidates, search.Worker{
			ID:                record.ID,
			FullName:          record.FullName,
			Location:          record.Location,
			HourlyRate:        record.HourlyRate,
			ServiceTiers:      record.ServiceTiers,
			Specialties:       record.Specialties,
			AvailableWeekdays: availableWeekdays(record.Availability),
		})
	}

	matched := search.Apply(candidates, filters)

	workers := make([]Worker, 0, len(matched))
	for _, candidate := range matched {
		workers = append(workers, toAppWorker(byID[candidate.ID]))
	}

	s.cache.Store(key, workers)
	return workers, nil
}

// Invalidate drops cached search results. Call after any worker profile
// mutation.
func (s *SearchService) Invalidate() {
	if s != nil {
		s.cache.Invalidate()
	}
}

func availableWeekdays(windows []persistence.AvailabilityWindow) []int {
	seen := make(map[int]struct{}, len(windows))
	days := make([]int, 0, len(windows))
	for _, window := range windows {
		if _, ok := seen[window.DayOfWeek]; ok {
			continue
		}
		seen[window.DayOfWeek] = struct{}{}
		days = append(days, window.DayOfWeek)
	}
	return days
}
