package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/care-booking/internal/application"
)

var (
	errBadRequestBody   = errors.New("request body is not valid JSON")
	errInvalidBookingID = errors.New("invalid booking id")
	errInvalidWorkerID  = errors.New("invalid worker id")
	errInvalidClientID  = errors.New("invalid client id")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested resource was not found"})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "a resource with that id already exists"})
	case errors.Is(err, application.ErrInvalidTransition):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: err.Error()})
	default:
		var bErr *application.BookingError
		if errors.As(err, &bErr) {
			r.writeJSON(ctx, w, bookingErrorStatus(bErr.Reason), errorResponse{
				ErrorCode:    string(bErr.Reason),
				Message:      bErr.Message,
				OccurrenceID: bErr.OccurrenceID,
				Details:      bErr.Details,
			})
			return
		}

		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "the submitted fields are invalid",
				Errors:  vErr.FieldErrors,
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unhandled service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

// bookingErrorStatus maps rejection reasons onto HTTP statuses: malformed
// input is the caller's fault, missing references are 404, and policy or
// scheduling collisions are conflicts.
func bookingErrorStatus(reason application.BookingReason) int {
	switch reason {
	case application.ReasonMalformedBooking,
		application.ReasonInvalidFormat,
		application.ReasonInvalidTimeRange:
		return http.StatusBadRequest
	case application.ReasonNotFound:
		return http.StatusNotFound
	case application.ReasonLocationMismatch,
		application.ReasonInsufficientNotice,
		application.ReasonTierNotOffered,
		application.ReasonNotAvailableThisDay,
		application.ReasonOutsideWorkingHours,
		application.ReasonSlotConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode    string            `json:"error_code,omitempty"`
	Message      string            `json:"message"`
	OccurrenceID string            `json:"occurrence_id,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
}
