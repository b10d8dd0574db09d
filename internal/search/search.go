// Package search implements the worker directory filter engine. All filters
// are pure functions over in-memory worker profiles; persistence is the
// caller's concern.
package search

import (
	"sort"
	"strings"
)

// Worker is the directory profile the engine filters over.
type Worker struct {
	ID                string
	FullName          string
	Location          string
	HourlyRate        float64
	ServiceTiers      []string
	Specialties       []string
	AvailableWeekdays []int
}

// Filters describes one search request. Zero values mean "not specified";
// every specified filter must match (keyword is the only internally
// disjunctive one, matching any of name, location, or specialty).
type Filters struct {
	Keyword             string
	MinRate             *float64
	MaxRate             *float64
	Location            string
	Specialty           string
	ServiceTier         string
	ClientLocation      string
	MatchClientLocation bool
	AvailableWeekdays   []int
	SortBy              string
}

// Sort keys accepted by Filters.SortBy. An empty or unknown key preserves
// the input order.
const (
	SortByRate     = "rate"
	SortByName     = "name"
	SortByLocation = "location"
)

// Apply returns the workers matching every specified filter, sorted by the
// requested key. The input slice is never mutated.
func Apply(workers []Worker, filters Filters) []Worker {
	matched := make([]Worker, 0, len(workers))
	for _, worker := range workers {
		if matches(worker, filters) {
			matched = append(matched, worker)
		}
	}
	sortWorkers(matched, filters.SortBy)
	return matched
}

func matches(worker Worker, filters Filters) bool {
	if filters.Keyword != "" && !matchesKeyword(worker, filters.Keyword) {
		return false
	}
	if filters.MinRate != nil && worker.HourlyRate < *filters.MinRate {
		return false
	}
	if filters.MaxRate != nil && worker.HourlyRate > *filters.MaxRate {
		return false
	}
	if filters.Location != "" && !sameCity(worker.Location, filters.Location) {
		return false
	}
	if filters.MatchClientLocation && !sameCity(worker.Location, filters.ClientLocation) {
		return false
	}
	if filters.Specialty != "" && !containsFold(worker.Specialties, filters.Specialty) {
		return false
	}
	if filters.ServiceTier != "" && !containsFold(worker.ServiceTiers, filters.ServiceTier) {
		return false
	}
	if len(filters.AvailableWeekdays) > 0 && !availableOnAny(worker, filters.AvailableWeekdays) {
		return false
	}
	return true
}

// matchesKeyword is a case-insensitive substring match over name, location,
// and each specialty.
func matchesKeyword(worker Worker, keyword string) bool {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(worker.FullName), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(worker.Location), needle) {
		return true
	}
	for _, specialty := range worker.Specialties {
		if strings.Contains(strings.ToLower(specialty), needle) {
			return true
		}
	}
	return false
}

// sameCity compares city names after trimming and case folding. Substring
// matches are deliberately excluded so "York" never matches "New York".
func sameCity(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}

// availableOnAny treats the requested weekdays as a union: one covered day
// is enough.
func availableOnAny(worker Worker, weekdays []int) bool {
	for _, requested := range weekdays {
		for _, available := range worker.AvailableWeekdays {
			if requested == available {
				return true
			}
		}
	}
	return false
}

func sortWorkers(workers []Worker, sortBy string) {
	switch sortBy {
	case SortByRate:
		sort.SliceStable(workers, func(i, j int) bool {
			return workers[i].HourlyRate < workers[j].HourlyRate
		})
	case SortByName:
		sort.SliceStable(workers, func(i, j int) bool {
			return strings.ToLower(workers[i].FullName) < strings.ToLower(workers[j].FullName)
		})
	case SortByLocation:
		sort.SliceStable(workers, func(i, j int) bool {
			return strings.ToLower(workers[i].Location) < strings.ToLower(workers[j].Location)
		})
	}
}
