package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetProfile fetches a user profile by uid.
func (r *UserRepository) GetProfile(ctx context.Context, uid string) (models.UserProfile, error) {
	const query = `SELECT uid, name, email, plan, created_at FROM users WHERE uid = ?`

	var p models.UserProfile
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, uid).Scan(&p.UID, &p.Name, &p.Email, &p.Plan, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UserProfile{}, ErrNotFound
		}
		return models.UserProfile{}, fmt.Errorf("query GetProfile: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("parse created_at for user %s: %w", p.UID, err)
	}
	p.CreatedAt = ts
	return p, nil
}

// UpsertProfile creates or replaces a user profile.
func (r *UserRepository) UpsertProfile(ctx context.Context, p models.UserProfile) error {
	const query = `
		INSERT INTO users (uid, name, email, plan, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET name = excluded.name, email = excluded.email, plan = excluded.plan
	`
	_, err := r.db.ExecContext(ctx, query,
		p.UID, p.Name, p.Email, p.Plan, p.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("exec UpsertProfile: %w", err)
	}
	return nil
}
