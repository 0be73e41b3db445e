package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

type LocationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// GetByOwner returns all locations belonging to an owner, sorted by name.
func (r *LocationRepository) GetByOwner(ctx context.Context, ownerID string) ([]models.Location, error) {
	const query = `
		SELECT id, owner_id, name, address, manager, phone, email, status, created_at
		FROM locations
		WHERE owner_id = ?
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query GetByOwner locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan GetByOwner location row: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetByOwner locations: %w", err)
	}
	return locations, nil
}

// GetByID fetches a single location document.
func (r *LocationRepository) GetByID(ctx context.Context, id string) (models.Location, error) {
	const query = `
		SELECT id, owner_id, name, address, manager, phone, email, status, created_at
		FROM locations
		WHERE id = ?
	`

	row := r.db.QueryRowContext(ctx, query, id)
	l, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Location{}, ErrNotFound
		}
		return models.Location{}, fmt.Errorf("query GetByID location: %w", err)
	}
	return l, nil
}

// Create inserts a new location document.
func (r *LocationRepository) Create(ctx context.Context, l models.Location) error {
	const query = `
		INSERT INTO locations (id, owner_id, name, address, manager, phone, email, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.OwnerID, l.Name, l.Address, l.Manager, l.Phone, l.Email, l.Status,
		l.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("exec Create location: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of a location document.
func (r *LocationRepository) Update(ctx context.Context, l models.Location) error {
	const query = `
		UPDATE locations
		SET name = ?, address = ?, manager = ?, phone = ?, email = ?, status = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		l.Name, l.Address, l.Manager, l.Phone, l.Email, l.Status, l.ID)
	if err != nil {
		return fmt.Errorf("exec Update location: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a location document.
func (r *LocationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM locations WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("exec Delete location: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLocation(row rowScanner) (models.Location, error) {
	var l models.Location
	var createdAt string

	if err := row.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Address, &l.Manager,
		&l.Phone, &l.Email, &l.Status, &createdAt); err != nil {
		return models.Location{}, err
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Location{}, fmt.Errorf("parse created_at for location %s: %w", l.ID, err)
	}
	l.CreatedAt = ts
	return l, nil
}
