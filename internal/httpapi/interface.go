package httpapi

import (
	"context"
	"time"

	"github.com/pulsometrics/analytics-server/internal/repository/models"
	"github.com/pulsometrics/analytics-server/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type DashboardService interface {
	GetDashboard(ctx context.Context, ownerID, sede string) (service.DashboardReport, error)
}

type ResultsService interface {
	GetSurveyResults(ctx context.Context, surveyID string) (service.ResultsReport, error)
}

type SurveyManager interface {
	ListSurveys(ctx context.Context, ownerID string) ([]models.Survey, error)
	GetSurvey(ctx context.Context, id string) (models.Survey, error)
	CreateSurvey(ctx context.Context, ownerID string, input service.SurveyInput) (models.Survey, error)
	UpdateSurvey(ctx context.Context, id string, input service.SurveyInput) (models.Survey, error)
	DuplicateSurvey(ctx context.Context, surveyID, ownerID string) (models.Survey, error)
	SubmitResponse(ctx context.Context, input service.ResponseInput) (models.Response, error)
}

type LocationManager interface {
	ListLocations(ctx context.Context, ownerID string) ([]models.Location, error)
	CreateLocation(ctx context.Context, ownerID string, input service.LocationInput) (models.Location, error)
	UpdateLocation(ctx context.Context, id string, input service.LocationInput) (models.Location, error)
	DeleteLocation(ctx context.Context, id string) error
}

type ReportManager interface {
	ListReports(ctx context.Context, ownerID string) ([]models.Report, error)
	CreateReport(ctx context.Context, ownerID string, input service.ReportInput) (models.Report, error)
	DeleteReport(ctx context.Context, id string) error
	Export(ctx context.Context, surveyIDs, sedes []string, format string) ([]byte, error)
}
