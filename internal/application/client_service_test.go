package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/care-booking/internal/persistence"
)

type clientRepoStub struct {
	clients map[string]persistence.Client
}

func newClientRepoStub() *clientRepoStub {
	return &clientRepoStub{clients: make(map[string]persistence.Client)}
}

func (s *clientRepoStub) CreateClient(ctx context.Context, client persistence.Client) error {
	if _, ok := s.clients[client.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.clients[client.ID] = client
	return nil
}

func (s *clientRepoStub) UpdateClient(ctx context.Context, client persistence.Client) error {
	if _, ok := s.clients[client.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.clients[client.ID] = client
	return nil
}

func (s *clientRepoStub) GetClient(ctx context.Context, id string) (persistence.Client, error) {
	client, ok := s.clients[id]
	if !ok {
		return persistence.Client{}, persistence.ErrNotFound
	}
	return client, nil
}

func TestClientService_CreateClient(t *testing.T) {
	t.Parallel()

	repo := newClientRepoStub()
	svc := NewClientService(repo, func() string { return "client-1" }, fixedNow)

	created, err := svc.CreateClient(context.Background(), ClientInput{
		FullName: "  Robin Ames ",
		Location: "Springfield",
		Age:      81,
	})
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if created.ID != "client-1" {
		t.Errorf("expected generated id client-1, got %q", created.ID)
	}
	if created.FullName != "Robin Ames" {
		t.Errorf("expected trimmed name, got %q", created.FullName)
	}
}

func TestClientService_CreateClient_Validation(t *testing.T) {
	t.Parallel()

	svc := NewClientService(newClientRepoStub(), func() string { return "client-1" }, fixedNow)

	_, err := svc.CreateClient(context.Background(), ClientInput{FullName: "", Location: "", Age: -1})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"full_name", "location", "age"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected error on %s, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestClientService_UpdateClient(t *testing.T) {
	t.Parallel()

	repo := newClientRepoStub()
	svc := NewClientService(repo, func() string { return "client-1" }, fixedNow)

	if _, err := svc.CreateClient(context.Background(), ClientInput{
		FullName: "Robin Ames", Location: "Springfield", Age: 81,
	}); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	updated, err := svc.UpdateClient(context.Background(), "client-1", ClientInput{
		FullName: "Robin Ames", Location: "Shelbyville", Age: 82,
	})
	if err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}
	if updated.Location != "Shelbyville" || updated.Age != 82 {
		t.Errorf("update not applied: %#v", updated)
	}

	if _, err := svc.UpdateClient(context.Background(), "missing", ClientInput{
		FullName: "Nobody", Location: "Nowhere",
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientService_GetClient(t *testing.T) {
	t.Parallel()

	repo := newClientRepoStub()
	svc := NewClientService(repo, func() string { return "client-1" }, fixedNow)

	if _, err := svc.GetClient(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
