package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/care-booking/internal/persistence"
)

// ClientRepository captures the persistence interactions needed by the service.
type ClientRepository interface {
	CreateClient(ctx context.Context, client persistence.Client) error
	UpdateClient(ctx context.Context, client persistence.Client) error
	GetClient(ctx context.Context, id string) (persistence.Client, error)
}

// ClientService manages care recipient profiles.
type ClientService struct {
	clients     ClientRepository
	idGenerator func() string
	now         func() time.Time
}

// NewClientService wires dependencies for client directory operations.
func NewClientService(clients ClientRepository, idGenerator func() string, now func() time.Time) *ClientService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ClientService{clients: clients, idGenerator: idGenerator, now: now}
}

// CreateClient validates the profile before delegating to persistence.
func (s *ClientService) CreateClient(ctx context.Context, input ClientInput) (Client, error) {
	if s == nil {
		return Client{}, fmt.Errorf("ClientService is nil")
	}

	vErr := &ValidationError{}
	validateClientCore(input, vErr)
	if vErr.HasErrors() {
		return Client{}, vErr
	}

	client := persistence.Client{
		ID:       s.idGenerator(),
		FullName: strings.TrimSpace(input.FullName),
		Location: strings.TrimSpace(input.Location),
		Age:      input.Age,
	}

	if err := s.clients.CreateClient(ctx, client); err != nil {
		return Client{}, mapDirectoryRepoError(err)
	}

	created, err := s.clients.GetClient(ctx, client.ID)
	if err != nil {
		return Client{}, mapDirectoryRepoError(err)
	}
	return toAppClient(created), nil
}

// UpdateClient validates and replaces a client's profile.
func (s *ClientService) UpdateClient(ctx context.Context, id string, input ClientInput) (Client, error) {
	if s == nil {
		return Client{}, fmt.Errorf("ClientService is nil")
	}

	vErr := &ValidationError{}
	validateClientCore(input, vErr)
	if vErr.HasErrors() {
		return Client{}, vErr
	}

	existing, err := s.clients.GetClient(ctx, id)
	if err != nil {
		return Client{}, mapDirectoryRepoError(err)
	}

	existing.FullName = strings.TrimSpace(input.FullName)
	existing.Location = strings.TrimSpace(input.Location)
	existing.Age = input.Age

	if err := s.clients.UpdateClient(ctx, existing); err != nil {
		return Client{}, mapDirectoryRepoError(err)
	}

	updated, err := s.clients.GetClient(ctx, id)
	if err != nil {
		return Client{}, mapDirectoryRepoError(err)
	}
	return toAppClient(updated), nil
}

// GetClient retrieves one client profile.
func (s *ClientService) GetClient(ctx context.Context, id string) (Client, error) {
	record, err := s.clients.GetClient(ctx, id)
	if err != nil {
		return Client{}, mapDirectoryRepoError(err)
	}
	return toAppClient(record), nil
}

func validateClientCore(input ClientInput, vErr *ValidationError) {
	if strings.TrimSpace(input.FullName) == "" {
		vErr.add("full_name", "full name is required")
	}
	if strings.TrimSpace(input.Location) == "" {
		vErr.add("location", "location is required")
	}
	if input.Age < 0 {
		vErr.add("age", "age must not be negative")
	}
}

func toAppClient(record persistence.Client) Client {
	return Client{
		ID:        record.ID,
		FullName:  record.FullName,
		Location:  record.Location,
		Age:       record.Age,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
