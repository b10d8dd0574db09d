package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/care-booking/internal/application"
)

type bookingServiceStub struct {
	submitResult application.SubmitResult
	booking      application.Booking
	err          error
	lastInputs   []application.BookingInput
	lastParams   application.RescheduleParams
	lastID       string
}

func (s *bookingServiceStub) SubmitBookings(ctx context.Context, inputs []application.BookingInput) (application.SubmitResult, error) {
	s.lastInputs = inputs
	if s.err != nil {
		return application.SubmitResult{}, s.err
	}
	return s.submitResult, nil
}

func (s *bookingServiceStub) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	s.lastID = id
	return s.booking, s.err
}

func (s *bookingServiceStub) AcceptBooking(ctx context.Context, id string) (application.Booking, error) {
	s.lastID = id
	return s.booking, s.err
}

func (s *bookingServiceStub) DeclineBooking(ctx context.Context, id string) (application.Booking, error) {
	s.lastID = id
	return s.booking, s.err
}

func (s *bookingServiceStub) CancelBooking(ctx context.Context, id string) (application.Booking, error) {
	s.lastID = id
	return s.booking, s.err
}

func (s *bookingServiceStub) CompleteBooking(ctx context.Context, id string) (application.Booking, error) {
	s.lastID = id
	return s.booking, s.err
}

func (s *bookingServiceStub) RescheduleBooking(ctx context.Context, params application.RescheduleParams) (application.Booking, error) {
	s.lastParams = params
	return s.booking, s.err
}

func (s *bookingServiceStub) ListWorkerBookings(ctx context.Context, workerID, date string) ([]application.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []application.Booking{s.booking}, nil
}

type workerServiceStub struct {
	worker application.Worker
	list   []application.Worker
	err    error
}

func (s *workerServiceStub) CreateWorker(ctx context.Context, input application.WorkerInput) (application.Worker, error) {
	return s.worker, s.err
}

func (s *workerServiceStub) UpdateWorker(ctx context.Context, id string, input application.WorkerInput) (application.Worker, error) {
	return s.worker, s.err
}

func (s *workerServiceStub) GetWorker(ctx context.Context, id string) (application.Worker, error) {
	return s.worker, s.err
}

func (s *workerServiceStub) ListWorkers(ctx context.Context) ([]application.Worker, error) {
	return s.list, s.err
}

type searchServiceStub struct {
	workers     []application.Worker
	err         error
	lastParams  application.SearchParams
	invalidated int
}

func (s *searchServiceStub) SearchWorkers(ctx context.Context, params application.SearchParams) ([]application.Worker, error) {
	s.lastParams = params
	return s.workers, s.err
}

func (s *searchServiceStub) Invalidate() { s.invalidated++ }

type clientServiceStub struct {
	client application.Client
	err    error
}

func (s *clientServiceStub) CreateClient(ctx context.Context, input application.ClientInput) (application.Client, error) {
	return s.client, s.err
}

func (s *clientServiceStub) UpdateClient(ctx context.Context, id string, input application.ClientInput) (application.Client, error) {
	return s.client, s.err
}

func (s *clientServiceStub) GetClient(ctx context.Context, id string) (application.Client, error) {
	return s.client, s.err
}

func newTestRouter(bookings *bookingServiceStub, workers *workerServiceStub, search *searchServiceStub, clients *clientServiceStub) http.Handler {
	return NewRouter(RouterConfig{
		Bookings: NewBookingHandler(bookings, nil),
		Workers:  NewWorkerHandler(workers, search, bookings, nil),
		Clients:  NewClientHandler(clients, nil),
	})
}

func performRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestBookingHandler_Submit(t *testing.T) {
	t.Parallel()

	bookings := &bookingServiceStub{
		submitResult: application.SubmitResult{Bookings: []application.Booking{
			{ID: "2025-01-06_09:00_worker-1", Status: application.StatusPending},
		}},
	}
	router := newTestRouter(bookings, &workerServiceStub{}, &searchServiceStub{}, &clientServiceStub{})

	body := `{"client_id":"client-1","worker_id":"worker-1","date":"2025-01-06","start_time":"09:00","end_time":"10:00","service_tier":"Basic","recurring":{"frequency":"Weekly","end_date":"2025-01-27"}}`
	recorder := performRequest(t, router, http.MethodPost, "/bookings", body)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if len(bookings.lastInputs) != 1 {
		t.Fatalf("expected a single-request batch, got %d", len(bookings.lastInputs))
	}
	if bookings.lastInputs[0].ServiceTier != "basic" {
		t.Errorf("expected tier lowercased, got %q", bookings.lastInputs[0].ServiceTier)
	}
	if bookings.lastInputs[0].Recurring == nil || bookings.lastInputs[0].Recurring.Frequency != "weekly" {
		t.Errorf("expected recurrence to be forwarded, got %#v", bookings.lastInputs[0].Recurring)
	}

	var payload struct {
		Bookings []bookingDTO `json:"bookings"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Bookings) != 1 || payload.Bookings[0].ID != "2025-01-06_09:00_worker-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestBookingHandler_Submit_ArrayPayload(t *testing.T) {
	t.Parallel()

	bookings := &bookingServiceStub{
		submitResult: application.SubmitResult{Bookings: []application.Booking{
			{ID: "2025-01-06_09:00_worker-1", Status: application.StatusPending},
			{ID: "2025-01-06_10:00_worker-2", Status: application.StatusPending},
		}},
	}
	router := newTestRouter(bookings, &workerServiceStub{}, &searchServiceStub{}, &clientServiceStub{})

	body := `[
		{"client_id":"client-1","worker_id":"worker-1","date":"2025-01-06","start_time":"09:00","end_time":"10:00"},
		{"client_id":"client-2","worker_id":"worker-2","date":"2025-01-06","start_time":"10:00","end_time":"11:00","price":42.5}
	]`
	recorder := performRequest(t, router, http.MethodPost, "/bookings", body)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if len(bookings.lastInputs) != 2 {
		t.Fatalf("expected 2 requests forwarded, got %d", len(bookings.lastInputs))
	}
	if bookings.lastInputs[0].Price != nil {
		t.Errorf("expected no price on the first request, got %v", *bookings.lastInputs[0].Price)
	}
	if bookings.lastInputs[1].Price == nil || *bookings.lastInputs[1].Price != 42.5 {
		t.Errorf("expected price 42.5 forwarded, got %#v", bookings.lastInputs[1].Price)
	}
	if bookings.lastInputs[1].WorkerID != "worker-2" {
		t.Errorf("expected each request to keep its own worker, got %q", bookings.lastInputs[1].WorkerID)
	}
}

func TestBookingHandler_LocationMismatchDetails(t *testing.T) {
	t.Parallel()

	err := &application.BookingError{
		Reason:  application.ReasonLocationMismatch,
		Message: "client is in Shelbyville but worker serves Springfield",
		Details: map[string]string{
			"clientLocation": "Shelbyville",
			"workerLocation": "Springfield",
		},
	}
	router := newTestRouter(&bookingServiceStub{err: err}, &workerServiceStub{}, &searchServiceStub{}, &clientServiceStub{})

	recorder := performRequest(t, router, http.MethodPost, "/bookings", `{}`)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", recorder.Code)
	}

	var payload errorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Details["workerLocation"] != "Springfield" || payload.Details["clientLocation"] != "Shelbyville" {
		t.Errorf("expected location details in the body, got %+v", payload.Details)
	}
}

func TestBookingHandler_Submit_BadJSON(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&bookingServiceStub{}, &workerServiceStub{}, &searchServiceStub{}, &clientServiceStub{})
	recorder := performRequest(t, router, http.MethodPost, "/bookings", "{not json")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestBookingHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", application.ErrNotFound, http.StatusNotFound},
		{"invalid transition", application.ErrInvalidTransition, http.StatusConflict},
		{"malformed", &application.BookingError{Reason: application.ReasonMalformedBooking}, http.StatusBadRequest},
		{"bad format", &application.BookingError{Reason: application.ReasonInvalidFormat}, http.StatusBadRequest},
		{"unknown reference", &application.BookingError{Reason: application.ReasonNotFound}, http.StatusNotFound},
		{"location mismatch", &application.BookingError{Reason: application.ReasonLocationMismatch}, http.StatusConflict},
		{"insufficient notice", &application.BookingError{Reason: application.ReasonInsufficientNotice}, http.StatusConflict},
		{"slot conflict", &application.BookingError{Reason: application.ReasonSlotConflict}, http.StatusConflict},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(&bookingServiceStub{err: tc.err}, &workerServiceStub{}, &searchServiceStub{}, &clientServiceStub{})
			recorder := performRequest(t, router, http.MethodPost, "/bookings", `{}`)
			if recorder.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestBookingHandler_Transitions(t *testing.T) {
	t.Parallel()

	for _, action := range []string{"accept", "decline", "cancel", "complete"} {
		action := action
		t.Run(action, func(t *testing.T) {
			t.Parallel()

			bookings := &bookingServiceStub{booking: application.Booking{ID: "booking-1", Status: application.StatusConfirmed}}
			router := newTestRouter(bookings, &workerServiceStub{}, &searchServiceStub{}, &clientServiceStub{})

			recorder := performRequest(t, router, http.MethodPost, "/bookings/booking-1/"+action, "")
			if recorder.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
			}
			if bookings.lastID != "booking-1" {
				t.Errorf("expected id booking-1, got %q", bookings.lastID)
			}
		})
	}
}

func TestBookingHandler_Reschedule(t *testing.T) {
	t.Parallel()

	bookings := &bookingServiceStub{booking: application.Booking{ID: "2025-01-13_14:00_worker-1"}}
	router := newTestRouter(bookings, &workerServiceStub{}, &searchServiceStub{}, &clientServiceStub{})

	body := `{"date":"2025-01-13","start_time":"14:00","end_time":"16:00"}`
	recorder := performRequest(t, router, http.MethodPost, "/bookings/booking-1/reschedule", body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if bookings.lastParams.BookingID != "booking-1" || bookings.lastParams.Date != "2025-01-13" {
		t.Errorf("unexpected reschedule params: %+v", bookings.lastParams)
	}
}

func TestBookingHandler_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&bookingServiceStub{}, &workerServiceStub{}, &searchServiceStub{}, &clientServiceStub{})
	recorder := performRequest(t, router, http.MethodGet, "/bookings", "")
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", recorder.Code)
	}
	if allow := recorder.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("expected Allow header POST, got %q", allow)
	}
}

func TestWorkerHandler_CreateInvalidatesSearchCache(t *testing.T) {
	t.Parallel()

	search := &searchServiceStub{}
	router := newTestRouter(&bookingServiceStub{}, &workerServiceStub{worker: application.Worker{ID: "worker-1"}}, search, &clientServiceStub{})

	body := `{"full_name":"Dana Fields","location":"Springfield","hourly_rate":20,"service_tiers":["basic"]}`
	recorder := performRequest(t, router, http.MethodPost, "/workers", body)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if search.invalidated != 1 {
		t.Errorf("expected search cache invalidation, got %d", search.invalidated)
	}
}

func TestWorkerHandler_ValidationErrorsAre422(t *testing.T) {
	t.Parallel()

	vErr := &application.ValidationError{FieldErrors: map[string]string{"full_name": "full name is required"}}
	router := newTestRouter(&bookingServiceStub{}, &workerServiceStub{err: vErr}, &searchServiceStub{}, &clientServiceStub{})

	recorder := performRequest(t, router, http.MethodPost, "/workers", `{}`)
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", recorder.Code)
	}

	var payload errorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Errors["full_name"] != "full name is required" {
		t.Errorf("expected field error to be surfaced, got %+v", payload.Errors)
	}
}

func TestWorkerHandler_SearchQueryParsing(t *testing.T) {
	t.Parallel()

	search := &searchServiceStub{}
	router := newTestRouter(&bookingServiceStub{}, &workerServiceStub{}, search, &clientServiceStub{})

	target := "/workers/search?keyword=dementia&min_rate=15&max_rate=30&location=Springfield&service_tier=Enhanced&client_id=client-1&match_client_location=true&weekdays=1,3&sort_by=rate"
	recorder := performRequest(t, router, http.MethodGet, target, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	params := search.lastParams
	if params.Keyword != "dementia" || params.Location != "Springfield" {
		t.Errorf("unexpected text filters: %+v", params)
	}
	if params.MinRate == nil || *params.MinRate != 15 || params.MaxRate == nil || *params.MaxRate != 30 {
		t.Errorf("unexpected rate bounds: %+v", params)
	}
	if params.ServiceTier != "enhanced" {
		t.Errorf("expected tier lowercased, got %q", params.ServiceTier)
	}
	if !params.MatchClientLocation || params.ClientID != "client-1" {
		t.Errorf("unexpected client matching: %+v", params)
	}
	if len(params.AvailableWeekdays) != 2 || params.AvailableWeekdays[0] != 1 || params.AvailableWeekdays[1] != 3 {
		t.Errorf("unexpected weekdays: %v", params.AvailableWeekdays)
	}
	if params.SortBy != "rate" {
		t.Errorf("unexpected sort key %q", params.SortBy)
	}
}

func TestWorkerHandler_SearchRejectsBadQuery(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&bookingServiceStub{}, &workerServiceStub{}, &searchServiceStub{}, &clientServiceStub{})

	for _, target := range []string{
		"/workers/search?min_rate=cheap",
		"/workers/search?weekdays=9",
		"/workers/search?match_client_location=maybe",
	} {
		recorder := performRequest(t, router, http.MethodGet, target, "")
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, recorder.Code)
		}
	}
}

func TestWorkerHandler_BookingsRequiresDate(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&bookingServiceStub{}, &workerServiceStub{}, &searchServiceStub{}, &clientServiceStub{})

	recorder := performRequest(t, router, http.MethodGet, "/workers/worker-1/bookings", "")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without date, got %d", recorder.Code)
	}

	recorder = performRequest(t, router, http.MethodGet, "/workers/worker-1/bookings?date=2025-01-06", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestClientHandler_CRUD(t *testing.T) {
	t.Parallel()

	clients := &clientServiceStub{client: application.Client{ID: "client-1", FullName: "Robin Ames", Location: "Springfield"}}
	router := newTestRouter(&bookingServiceStub{}, &workerServiceStub{}, &searchServiceStub{}, clients)

	recorder := performRequest(t, router, http.MethodPost, "/clients", `{"full_name":"Robin Ames","location":"Springfield","age":81}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", recorder.Code)
	}

	recorder = performRequest(t, router, http.MethodGet, "/clients/client-1", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	recorder = performRequest(t, router, http.MethodPut, "/clients/client-1", `{"full_name":"Robin Ames","location":"Shelbyville","age":82}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	recorder = performRequest(t, router, http.MethodDelete, "/clients/client-1", "")
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", recorder.Code)
	}
}
