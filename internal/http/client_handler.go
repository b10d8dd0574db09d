package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/care-booking/internal/application"
)

type clientService interface {
	CreateClient(ctx context.Context, input application.ClientInput) (application.Client, error)
	UpdateClient(ctx context.Context, id string, input application.ClientInput) (application.Client, error)
	GetClient(ctx context.Context, id string) (application.Client, error)
}

type ClientHandler struct {
	service   clientService
	responder responder
}

func NewClientHandler(service clientService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{service: service, responder: newResponder(logger)}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	client, err := h.service.CreateClient(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.responder.logger, "client", "create").
		InfoContext(r.Context(), "client created", "client_id", client.ID)

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, clientResponse{Client: toClientDTO(client)})
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ClientIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClientID)
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	client, err := h.service.UpdateClient(r.Context(), id, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, clientResponse{Client: toClientDTO(client)})
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ClientIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClientID)
		return
	}

	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, clientResponse{Client: toClientDTO(client)})
}

type clientRequest struct {
	FullName string `json:"full_name"`
	Location string `json:"location"`
	Age      int    `json:"age"`
}

func (r clientRequest) toInput() application.ClientInput {
	return application.ClientInput{
		FullName: strings.TrimSpace(r.FullName),
		Location: strings.TrimSpace(r.Location),
		Age:      r.Age,
	}
}

type clientResponse struct {
	Client clientDTO `json:"client"`
}

type clientDTO struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Location  string `json:"location"`
	Age       int    `json:"age"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toClientDTO(client application.Client) clientDTO {
	return clientDTO{
		ID:        client.ID,
		FullName:  client.FullName,
		Location:  client.Location,
		Age:       client.Age,
		CreatedAt: client.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: client.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
