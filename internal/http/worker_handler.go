package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/care-booking/internal/application"
)

type workerService interface {
	CreateWorker(ctx context.Context, input application.WorkerInput) (application.Worker, error)
	UpdateWorker(ctx context.Context, id string, input application.WorkerInput) (application.Worker, error)
	GetWorker(ctx context.Context, id string) (application.Worker, error)
	ListWorkers(ctx context.Context) ([]application.Worker, error)
}

type workerSearchService interface {
	SearchWorkers(ctx context.Context, params application.SearchParams) ([]application.Worker, error)
	Invalidate()
}

type workerBookingLister interface {
	ListWorkerBookings(ctx context.Context, workerID, date string) ([]application.Booking, error)
}

type WorkerHandler struct {
	service   workerService
	search    workerSearchService
	bookings  workerBookingLister
	responder responder
}

func NewWorkerHandler(service workerService, search workerSearchService, bookings workerBookingLister, logger *slog.Logger) *WorkerHandler {
	return &WorkerHandler{service: service, search: search, bookings: bookings, responder: newResponder(logger)}
}

func (h *WorkerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req workerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	worker, err := h.service.CreateWorker(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if h.search != nil {
		h.search.Invalidate()
	}

	handlerLogger(r.Context(), h.responder.logger, "worker", "create").
		InfoContext(r.Context(), "worker created", "worker_id", worker.ID)

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, workerResponse{Worker: toWorkerDTO(worker)})
}

func (h *WorkerHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := WorkerIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkerID)
		return
	}

	var req workerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	worker, err := h.service.UpdateWorker(r.Context(), id, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if h.search != nil {
		h.search.Invalidate()
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, workerResponse{Worker: toWorkerDTO(worker)})
}

func (h *WorkerHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := WorkerIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkerID)
		return
	}

	worker, err := h.service.GetWorker(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, workerResponse{Worker: toWorkerDTO(worker)})
}

func (h *WorkerHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	workers, err := h.service.ListWorkers(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listWorkersResponse{Workers: toWorkerDTOs(workers)})
}

func (h *WorkerHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.search == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := buildSearchParams(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	workers, err := h.search.SearchWorkers(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listWorkersResponse{Workers: toWorkerDTOs(workers)})
}

func (h *WorkerHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.bookings == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := WorkerIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkerID)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("date query parameter is required"))
		return
	}

	bookings, err := h.bookings.ListWorkerBookings(r.Context(), id, date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, submitResponse{Bookings: toBookingDTOs(bookings)})
}

func buildSearchParams(values url.Values) (application.SearchParams, error) {
	params := application.SearchParams{
		Keyword:     strings.TrimSpace(values.Get("keyword")),
		Location:    strings.TrimSpace(values.Get("location")),
		Specialty:   strings.TrimSpace(values.Get("specialty")),
		ServiceTier: strings.ToLower(strings.TrimSpace(values.Get("service_tier"))),
		ClientID:    strings.TrimSpace(values.Get("client_id")),
		SortBy:      strings.TrimSpace(values.Get("sort_by")),
	}

	if raw := strings.TrimSpace(values.Get("min_rate")); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 {
			return application.SearchParams{}, errors.New("min_rate must be a non-negative number")
		}
		params.MinRate = &rate
	}
	if raw := strings.TrimSpace(values.Get("max_rate")); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 {
			return application.SearchParams{}, errors.New("max_rate must be a non-negative number")
		}
		params.MaxRate = &rate
	}

	if raw := strings.TrimSpace(values.Get("match_client_location")); raw != "" {
		match, err := strconv.ParseBool(raw)
		if err != nil {
			return application.SearchParams{}, errors.New("match_client_location must be a boolean")
		}
		params.MatchClientLocation = match
	}

	if raw := strings.TrimSpace(values.Get("weekdays")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			day, err := strconv.Atoi(part)
			if err != nil || day < 0 || day > 6 {
				return application.SearchParams{}, errors.New("weekdays must be integers between 0 and 6")
			}
			params.AvailableWeekdays = append(params.AvailableWeekdays, day)
		}
	}

	return params, nil
}

type workerRequest struct {
	FullName     string            `json:"full_name"`
	Location     string            `json:"location"`
	HourlyRate   float64           `json:"hourly_rate"`
	ServiceTiers []string          `json:"service_tiers"`
	Specialties  []string          `json:"specialties"`
	Availability []availabilityDTO `json:"availability"`
}

type availabilityDTO struct {
	DayOfWeek     int     `json:"day_of_week"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	EffectiveFrom *string `json:"effective_from,omitempty"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
}

func (r workerRequest) toInput() application.WorkerInput {
	windows := make([]application.AvailabilityWindow, 0, len(r.Availability))
	for _, window := range r.Availability {
		windows = append(windows, application.AvailabilityWindow{
			DayOfWeek:     window.DayOfWeek,
			StartTime:     strings.TrimSpace(window.StartTime),
			EndTime:       strings.TrimSpace(window.EndTime),
			EffectiveFrom: window.EffectiveFrom,
			EffectiveTo:   window.EffectiveTo,
		})
	}
	return application.WorkerInput{
		FullName:     strings.TrimSpace(r.FullName),
		Location:     strings.TrimSpace(r.Location),
		HourlyRate:   r.HourlyRate,
		ServiceTiers: append([]string(nil), r.ServiceTiers...),
		Specialties:  append([]string(nil), r.Specialties...),
		Availability: windows,
	}
}

type workerResponse struct {
	Worker workerDTO `json:"worker"`
}

type listWorkersResponse struct {
	Workers []workerDTO `json:"workers"`
}

type workerDTO struct {
	ID           string            `json:"id"`
	FullName     string            `json:"full_name"`
	Location     string            `json:"location"`
	HourlyRate   float64           `json:"hourly_rate"`
	ServiceTiers []string          `json:"service_tiers"`
	Specialties  []string          `json:"specialties,omitempty"`
	Availability []availabilityDTO `json:"availability,omitempty"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

func toWorkerDTO(worker application.Worker) workerDTO {
	windows := make([]availabilityDTO, 0, len(worker.Availability))
	for _, window := range worker.Availability {
		windows = append(windows, availabilityDTO{
			DayOfWeek:     window.DayOfWeek,
			StartTime:     window.StartTime,
			EndTime:       window.EndTime,
			EffectiveFrom: window.EffectiveFrom,
			EffectiveTo:   window.EffectiveTo,
		})
	}
	return workerDTO{
		ID:           worker.ID,
		FullName:     worker.FullName,
		Location:     worker.Location,
		HourlyRate:   worker.HourlyRate,
		ServiceTiers: append([]string(nil), worker.ServiceTiers...),
		Specialties:  append([]string(nil), worker.Specialties...),
		Availability: windows,
		CreatedAt:    worker.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    worker.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toWorkerDTOs(workers []application.Worker) []workerDTO {
	if len(workers) == 0 {
		return nil
	}
	out := make([]workerDTO, 0, len(workers))
	for _, worker := range workers {
		out = append(out, toWorkerDTO(worker))
	}
	return out
}
