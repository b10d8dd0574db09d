package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/care-booking/internal/persistence"
)

// ClientRepository implements persistence.ClientRepository using SQLite.
type ClientRepository struct {
	store *Store
}

// NewClientRepository creates a new SQLite client repository.
func NewClientRepository(store *Store) *ClientRepository {
	return &ClientRepository{store: store}
}

// CreateClient inserts a client record.
func (r *ClientRepository) CreateClient(ctx context.Context, client persistence.Client) error {
	if client.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	query := `
		INSERT INTO clients (id, full_name, location, age, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.store.db.ExecContext(ctx, query,
		client.ID,
		client.FullName,
		client.Location,
		client.Age,
		formatTime(client.CreatedAt),
		formatTime(client.UpdatedAt),
	)
	return mapError(err)
}

// UpdateClient replaces a client's mutable fields.
func (r *ClientRepository) UpdateClient(ctx context.Context, client persistence.Client) error {
	if client.ID == "" {
		return persistence.ErrNotFound
	}

	client.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE clients
		SET full_name = ?, location = ?, age = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.store.db.ExecContext(ctx, query,
		client.FullName,
		client.Location,
		client.Age,
		formatTime(client.UpdatedAt),
		client.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetClient retrieves a client by ID.
func (r *ClientRepository) GetClient(ctx context.Context, id string) (persistence.Client, error) {
	if id == "" {
		return persistence.Client{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, full_name, location, age, created_at, updated_at
		FROM clients
		WHERE id = ?
	`

	var client persistence.Client
	var createdAt, updatedAt string
	err := r.store.db.QueryRowContext(ctx, query, id).Scan(
		&client.ID,
		&client.FullName,
		&client.Location,
		&client.Age,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Client{}, persistence.ErrNotFound
		}
		return persistence.Client{}, mapError(err)
	}

	if client.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Client{}, err
	}
	if client.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Client{}, err
	}

	return client, nil
}
