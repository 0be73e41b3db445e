package service

import (
	"context"

	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

// SurveyStore defines the survey document operations the services need.
type SurveyStore interface {
	GetByOwner(ctx context.Context, ownerID string) ([]models.Survey, error)
	GetByID(ctx context.Context, id string) (models.Survey, error)
	Create(ctx context.Context, s models.Survey) error
	Update(ctx context.Context, s models.Survey) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

// ResponseStore defines the response document operations the services need.
type ResponseStore interface {
	GetBySurveyIDs(ctx context.Context, surveyIDs []string, sede string) ([]models.Response, error)
	GetBySurveyID(ctx context.Context, surveyID string) ([]models.Response, error)
	Create(ctx context.Context, resp models.Response) error
	CountBySurveyIDs(ctx context.Context, surveyIDs []string) (int64, error)
}

// LocationStore defines the location document operations.
type LocationStore interface {
	GetByOwner(ctx context.Context, ownerID string) ([]models.Location, error)
	GetByID(ctx context.Context, id string) (models.Location, error)
	Create(ctx context.Context, l models.Location) error
	Update(ctx context.Context, l models.Location) error
	Delete(ctx context.Context, id string) error
}

// UserStore reads user profiles (plan tier lives there).
type UserStore interface {
	GetProfile(ctx context.Context, uid string) (models.UserProfile, error)
}

// ReportStore defines the report document operations.
type ReportStore interface {
	GetByOwner(ctx context.Context, ownerID string) ([]models.Report, error)
	GetByStatus(ctx context.Context, status string) ([]models.Report, error)
	Create(ctx context.Context, rep models.Report) error
	SetCompleted(ctx context.Context, id string, metrics models.ReportMetrics) error
	Delete(ctx context.Context, id string) error
}

// QuotaChecker gates plan-limited operations.
type QuotaChecker interface {
	Check(ctx context.Context, ownerID string, kind QuotaKind) (QuotaStatus, error)
}
