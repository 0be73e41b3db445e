package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// GetByOwner returns an owner's reports, newest first.
func (r *ReportRepository) GetByOwner(ctx context.Context, ownerID string) ([]models.Report, error) {
	const query = `
		SELECT id, owner_id, name, type, status, format, survey_ids, sedes, metrics, created_at
		FROM reports
		WHERE owner_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query reports GetByOwner: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reports GetByOwner row: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports GetByOwner: %w", err)
	}
	return reports, nil
}

// GetByStatus returns all reports in a given state, oldest first, for the
// scheduler to work through.
func (r *ReportRepository) GetByStatus(ctx context.Context, status string) ([]models.Report, error) {
	const query = `
		SELECT id, owner_id, name, type, status, format, survey_ids, sedes, metrics, created_at
		FROM reports
		WHERE status = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("query reports GetByStatus: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reports GetByStatus row: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports GetByStatus: %w", err)
	}
	return reports, nil
}

// Create inserts a new report document.
func (r *ReportRepository) Create(ctx context.Context, rep models.Report) error {
	surveyIDs, err := json.Marshal(rep.SurveyIDs)
	if err != nil {
		return fmt.Errorf("marshal survey_ids: %w", err)
	}
	sedes, err := json.Marshal(rep.Sedes)
	if err != nil {
		return fmt.Errorf("marshal sedes: %w", err)
	}

	var metrics sql.NullString
	if rep.Metrics != nil {
		raw, err := json.Marshal(rep.Metrics)
		if err != nil {
			return fmt.Errorf("marshal metrics: %w", err)
		}
		metrics = sql.NullString{String: string(raw), Valid: true}
	}

	const query = `
		INSERT INTO reports (id, owner_id, name, type, status, format, survey_ids, sedes, metrics, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		rep.ID, rep.OwnerID, rep.Name, rep.Type, rep.Status, rep.Format,
		string(surveyIDs), string(sedes), metrics, rep.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("exec Create report: %w", err)
	}
	return nil
}

// SetCompleted flips a report to its final state and stores computed metrics.
func (r *ReportRepository) SetCompleted(ctx context.Context, id string, metrics models.ReportMetrics) error {
	raw, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	const query = `UPDATE reports SET status = ?, metrics = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, models.ReportStatusCompleted, string(raw), id)
	if err != nil {
		return fmt.Errorf("exec SetCompleted: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a report document.
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM reports WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("exec Delete report: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReport(rows *sql.Rows) (models.Report, error) {
	var rep models.Report
	var surveyIDs, sedes, createdAt string
	var metrics sql.NullString

	if err := rows.Scan(&rep.ID, &rep.OwnerID, &rep.Name, &rep.Type, &rep.Status,
		&rep.Format, &surveyIDs, &sedes, &metrics, &createdAt); err != nil {
		return models.Report{}, err
	}

	if err := json.Unmarshal([]byte(surveyIDs), &rep.SurveyIDs); err != nil {
		return models.Report{}, fmt.Errorf("unmarshal survey_ids for report %s: %w", rep.ID, err)
	}
	if err := json.Unmarshal([]byte(sedes), &rep.Sedes); err != nil {
		return models.Report{}, fmt.Errorf("unmarshal sedes for report %s: %w", rep.ID, err)
	}
	if metrics.Valid {
		var m models.ReportMetrics
		if err := json.Unmarshal([]byte(metrics.String), &m); err != nil {
			return models.Report{}, fmt.Errorf("unmarshal metrics for report %s: %w", rep.ID, err)
		}
		rep.Metrics = &m
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Report{}, fmt.Errorf("parse created_at for report %s: %w", rep.ID, err)
	}
	rep.CreatedAt = ts
	return rep, nil
}
