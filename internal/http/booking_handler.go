package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/care-booking/internal/application"
)

type bookingService interface {
	SubmitBookings(ctx context.Context, inputs []application.BookingInput) (application.SubmitResult, error)
	GetBooking(ctx context.Context, id string) (application.Booking, error)
	AcceptBooking(ctx context.Context, id string) (application.Booking, error)
	DeclineBooking(ctx context.Context, id string) (application.Booking, error)
	CancelBooking(ctx context.Context, id string) (application.Booking, error)
	CompleteBooking(ctx context.Context, id string) (application.Booking, error)
	RescheduleBooking(ctx context.Context, params application.RescheduleParams) (application.Booking, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: service, responder: newResponder(logger)}
}

func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reqs, err := decodeBookingRequests(r.Body)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	inputs := make([]application.BookingInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, req.toInput())
	}

	result, err := h.service.SubmitBookings(r.Context(), inputs)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.responder.logger, "booking", "submit").
		InfoContext(r.Context(), "bookings created", "count", len(result.Bookings))

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, submitResponse{
		Bookings: toBookingDTOs(result.Bookings),
	})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, "accept", func(ctx context.Context, id string) (application.Booking, error) {
		return h.service.AcceptBooking(ctx, id)
	})
}

func (h *BookingHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, "decline", func(ctx context.Context, id string) (application.Booking, error) {
		return h.service.DeclineBooking(ctx, id)
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, "cancel", func(ctx context.Context, id string) (application.Booking, error) {
		return h.service.CancelBooking(ctx, id)
	})
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, "complete", func(ctx context.Context, id string) (application.Booking, error) {
		return h.service.CompleteBooking(ctx, id)
	})
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	booking, err := h.service.RescheduleBooking(r.Context(), application.RescheduleParams{
		BookingID: id,
		Date:      strings.TrimSpace(req.Date),
		StartTime: strings.TrimSpace(req.StartTime),
		EndTime:   strings.TrimSpace(req.EndTime),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.responder.logger, "booking", "reschedule").
		InfoContext(r.Context(), "booking moved", "booking_id", booking.ID)

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) applyTransition(w http.ResponseWriter, r *http.Request, operation string, transition func(context.Context, string) (application.Booking, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := BookingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	booking, err := transition(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.responder.logger, "booking", operation).
		InfoContext(r.Context(), "booking status changed", "booking_id", booking.ID, "status", string(booking.Status))

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Booking: toBookingDTO(booking)})
}

type bookingRequest struct {
	ClientID    string            `json:"client_id"`
	WorkerID    string            `json:"worker_id"`
	Date        string            `json:"date"`
	StartTime   string            `json:"start_time"`
	EndTime     string            `json:"end_time"`
	ServiceTier string            `json:"service_tier,omitempty"`
	Price       *float64          `json:"price,omitempty"`
	Recurring   *recurringPattern `json:"recurring,omitempty"`
}

// decodeBookingRequests reads a submission body, which is either an array of
// booking requests or a single bare request object.
func decodeBookingRequests(body io.Reader) ([]bookingRequest, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []bookingRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, err
		}
		return reqs, nil
	}

	var req bookingRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, err
	}
	return []bookingRequest{req}, nil
}

type recurringPattern struct {
	Frequency string `json:"frequency"`
	EndDate   string `json:"end_date"`
	Weekdays  []int  `json:"weekdays,omitempty"`
}

func (r bookingRequest) toInput() application.BookingInput {
	input := application.BookingInput{
		ClientID:    strings.TrimSpace(r.ClientID),
		WorkerID:    strings.TrimSpace(r.WorkerID),
		Date:        strings.TrimSpace(r.Date),
		StartTime:   strings.TrimSpace(r.StartTime),
		EndTime:     strings.TrimSpace(r.EndTime),
		ServiceTier: strings.ToLower(strings.TrimSpace(r.ServiceTier)),
		Price:       r.Price,
	}
	if r.Recurring != nil {
		input.Recurring = &application.RecurringPattern{
			Frequency: strings.ToLower(strings.TrimSpace(r.Recurring.Frequency)),
			EndDate:   strings.TrimSpace(r.Recurring.EndDate),
			Weekdays:  append([]int(nil), r.Recurring.Weekdays...),
		}
	}
	return input
}

type rescheduleRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type submitResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type bookingDTO struct {
	ID                   string  `json:"id"`
	ClientID             string  `json:"client_id"`
	WorkerID             string  `json:"worker_id"`
	Date                 string  `json:"date"`
	StartTime            string  `json:"start_time"`
	EndTime              string  `json:"end_time"`
	ServiceTier          string  `json:"service_tier"`
	Price                float64 `json:"price"`
	Status               string  `json:"status"`
	RequestedAt          string  `json:"requested_at"`
	ConfirmationDeadline string  `json:"confirmation_deadline"`
	ConfirmedAt          string  `json:"confirmed_at,omitempty"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	dto := bookingDTO{
		ID:                   booking.ID,
		ClientID:             booking.ClientID,
		WorkerID:             booking.WorkerID,
		Date:                 booking.Date,
		StartTime:            booking.StartTime,
		EndTime:              booking.EndTime,
		ServiceTier:          booking.ServiceTier,
		Price:                booking.Price,
		Status:               string(booking.Status),
		RequestedAt:          booking.RequestedAt.UTC().Format(time.RFC3339),
		ConfirmationDeadline: booking.ConfirmationDeadline.UTC().Format(time.RFC3339),
	}
	if booking.ConfirmedAt != nil {
		dto.ConfirmedAt = booking.ConfirmedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toBookingDTOs(bookings []application.Booking) []bookingDTO {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toBookingDTO(booking))
	}
	return out
}
