package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

// ErrNotFound is returned when a single-document lookup matches nothing.
var ErrNotFound = errors.New("not found")

type SurveyRepository struct {
	db *sql.DB
}

func NewSurveyRepository(db *sql.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// GetByOwner returns all surveys belonging to an owner, newest first.
func (r *SurveyRepository) GetByOwner(ctx context.Context, ownerID string) ([]models.Survey, error) {
	const query = `
		SELECT id, owner_id, name, description, sede, language, status, questions, created_at
		FROM surveys
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query GetByOwner: %w", err)
	}
	defer rows.Close()

	var surveys []models.Survey
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan GetByOwner row: %w", err)
		}
		surveys = append(surveys, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetByOwner: %w", err)
	}
	return surveys, nil
}

// GetByID fetches a single survey schema document.
func (r *SurveyRepository) GetByID(ctx context.Context, id string) (models.Survey, error) {
	const query = `
		SELECT id, owner_id, name, description, sede, language, status, questions, created_at
		FROM surveys
		WHERE id = ?
	`

	row := r.db.QueryRowContext(ctx, query, id)
	s, err := scanSurvey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Survey{}, ErrNotFound
		}
		return models.Survey{}, fmt.Errorf("query GetByID: %w", err)
	}
	return s, nil
}

// Create inserts a new survey document.
func (r *SurveyRepository) Create(ctx context.Context, s models.Survey) error {
	questions, err := json.Marshal(s.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	const query = `
		INSERT INTO surveys (id, owner_id, name, description, sede, language, status, questions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.OwnerID, s.Name, s.Description, s.Sede, s.Language, s.Status,
		string(questions), s.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("exec Create survey: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of a survey document.
func (r *SurveyRepository) Update(ctx context.Context, s models.Survey) error {
	questions, err := json.Marshal(s.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	const query = `
		UPDATE surveys
		SET name = ?, description = ?, sede = ?, language = ?, status = ?, questions = ?
		WHERE id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		s.Name, s.Description, s.Sede, s.Language, s.Status, string(questions), s.ID)
	if err != nil {
		return fmt.Errorf("exec Update survey: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByOwner returns the number of surveys an owner has, for quota checks.
func (r *SurveyRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM surveys WHERE owner_id = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("query CountByOwner: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row rowScanner) (models.Survey, error) {
	var s models.Survey
	var questions, createdAt string

	if err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.Sede,
		&s.Language, &s.Status, &questions, &createdAt); err != nil {
		return models.Survey{}, err
	}

	if err := json.Unmarshal([]byte(questions), &s.Questions); err != nil {
		return models.Survey{}, fmt.Errorf("unmarshal questions for survey %s: %w", s.ID, err)
	}
	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Survey{}, fmt.Errorf("parse created_at for survey %s: %w", s.ID, err)
	}
	s.CreatedAt = ts
	return s, nil
}
