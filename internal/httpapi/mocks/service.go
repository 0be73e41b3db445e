package mocks

import (
	"context"
	"errors"

	"github.com/pulsometrics/analytics-server/internal/repository/models"
	"github.com/pulsometrics/analytics-server/internal/service"
)

// MockDashboardService is a mock implementation of the DashboardService
// interface for testing the handler layer.
type MockDashboardService struct {
	GetDashboardFunc func(ctx context.Context, ownerID, sede string) (service.DashboardReport, error)
}

// GetDashboard implements the DashboardService interface
func (m *MockDashboardService) GetDashboard(ctx context.Context, ownerID, sede string) (service.DashboardReport, error) {
	if m.GetDashboardFunc != nil {
		return m.GetDashboardFunc(ctx, ownerID, sede)
	}
	return service.DashboardReport{}, errors.New("GetDashboardFunc not implemented")
}

// MockResultsService is a mock implementation of the ResultsService interface.
type MockResultsService struct {
	GetSurveyResultsFunc func(ctx context.Context, surveyID string) (service.ResultsReport, error)
}

// GetSurveyResults implements the ResultsService interface
func (m *MockResultsService) GetSurveyResults(ctx context.Context, surveyID string) (service.ResultsReport, error) {
	if m.GetSurveyResultsFunc != nil {
		return m.GetSurveyResultsFunc(ctx, surveyID)
	}
	return service.ResultsReport{}, errors.New("GetSurveyResultsFunc not implemented")
}

// MockSurveyManager is a mock implementation of the SurveyManager interface.
type MockSurveyManager struct {
	ListSurveysFunc     func(ctx context.Context, ownerID string) ([]models.Survey, error)
	GetSurveyFunc       func(ctx context.Context, id string) (models.Survey, error)
	CreateSurveyFunc    func(ctx context.Context, ownerID string, input service.SurveyInput) (models.Survey, error)
	UpdateSurveyFunc    func(ctx context.Context, id string, input service.SurveyInput) (models.Survey, error)
	DuplicateSurveyFunc func(ctx context.Context, surveyID, ownerID string) (models.Survey, error)
	SubmitResponseFunc  func(ctx context.Context, input service.ResponseInput) (models.Response, error)
}

// ListSurveys implements the SurveyManager interface
func (m *MockSurveyManager) ListSurveys(ctx context.Context, ownerID string) ([]models.Survey, error) {
	if m.ListSurveysFunc != nil {
		return m.ListSurveysFunc(ctx, ownerID)
	}
	return nil, errors.New("ListSurveysFunc not implemented")
}

// GetSurvey implements the SurveyManager interface
func (m *MockSurveyManager) GetSurvey(ctx context.Context, id string) (models.Survey, error) {
	if m.GetSurveyFunc != nil {
		return m.GetSurveyFunc(ctx, id)
	}
	return models.Survey{}, errors.New("GetSurveyFunc not implemented")
}

// CreateSurvey implements the SurveyManager interface
func (m *MockSurveyManager) CreateSurvey(ctx context.Context, ownerID string, input service.SurveyInput) (models.Survey, error) {
	if m.CreateSurveyFunc != nil {
		return m.CreateSurveyFunc(ctx, ownerID, input)
	}
	return models.Survey{}, errors.New("CreateSurveyFunc not implemented")
}

// UpdateSurvey implements the SurveyManager interface
func (m *MockSurveyManager) UpdateSurvey(ctx context.Context, id string, input service.SurveyInput) (models.Survey, error) {
	if m.UpdateSurveyFunc != nil {
		return m.UpdateSurveyFunc(ctx, id, input)
	}
	return models.Survey{}, errors.New("UpdateSurveyFunc not implemented")
}

// DuplicateSurvey implements the SurveyManager interface
func (m *MockSurveyManager) DuplicateSurvey(ctx context.Context, surveyID, ownerID string) (models.Survey, error) {
	if m.DuplicateSurveyFunc != nil {
		return m.DuplicateSurveyFunc(ctx, surveyID, ownerID)
	}
	return models.Survey{}, errors.New("DuplicateSurveyFunc not implemented")
}

// SubmitResponse implements the SurveyManager interface
func (m *MockSurveyManager) SubmitResponse(ctx context.Context, input service.ResponseInput) (models.Response, error) {
	if m.SubmitResponseFunc != nil {
		return m.SubmitResponseFunc(ctx, input)
	}
	return models.Response{}, errors.New("SubmitResponseFunc not implemented")
}

// MockLocationManager is a mock implementation of the LocationManager interface.
type MockLocationManager struct {
	ListLocationsFunc  func(ctx context.Context, ownerID string) ([]models.Location, error)
	CreateLocationFunc func(ctx context.Context, ownerID string, input service.LocationInput) (models.Location, error)
	UpdateLocationFunc func(ctx context.Context, id string, input service.LocationInput) (models.Location, error)
	DeleteLocationFunc func(ctx context.Context, id string) error
}

// ListLocations implements the LocationManager interface
func (m *MockLocationManager) ListLocations(ctx context.Context, ownerID string) ([]models.Location, error) {
	if m.ListLocationsFunc != nil {
		return m.ListLocationsFunc(ctx, ownerID)
	}
	return nil, errors.New("ListLocationsFunc not implemented")
}

// CreateLocation implements the LocationManager interface
func (m *MockLocationManager) CreateLocation(ctx context.Context, ownerID string, input service.LocationInput) (models.Location, error) {
	if m.CreateLocationFunc != nil {
		return m.CreateLocationFunc(ctx, ownerID, input)
	}
	return models.Location{}, errors.New("CreateLocationFunc not implemented")
}

// UpdateLocation implements the LocationManager interface
func (m *MockLocationManager) UpdateLocation(ctx context.Context, id string, input service.LocationInput) (models.Location, error) {
	if m.UpdateLocationFunc != nil {
		return m.UpdateLocationFunc(ctx, id, input)
	}
	return models.Location{}, errors.New("UpdateLocationFunc not implemented")
}

// DeleteLocation implements the LocationManager interface
func (m *MockLocationManager) DeleteLocation(ctx context.Context, id string) error {
	if m.DeleteLocationFunc != nil {
		return m.DeleteLocationFunc(ctx, id)
	}
	return errors.New("DeleteLocationFunc not implemented")
}

// MockReportManager is a mock implementation of the ReportManager interface.
type MockReportManager struct {
	ListReportsFunc  func(ctx context.Context, ownerID string) ([]models.Report, error)
	CreateReportFunc func(ctx context.Context, ownerID string, input service.ReportInput) (models.Report, error)
	DeleteReportFunc func(ctx context.Context, id string) error
	ExportFunc       func(ctx context.Context, surveyIDs, sedes []string, format string) ([]byte, error)
}

// ListReports implements the ReportManager interface
func (m *MockReportManager) ListReports(ctx context.Context, ownerID string) ([]models.Report, error) {
	if m.ListReportsFunc != nil {
		return m.ListReportsFunc(ctx, ownerID)
	}
	return nil, errors.New("ListReportsFunc not implemented")
}

// CreateReport implements the ReportManager interface
func (m *MockReportManager) CreateReport(ctx context.Context, ownerID string, input service.ReportInput) (models.Report, error) {
	if m.CreateReportFunc != nil {
		return m.CreateReportFunc(ctx, ownerID, input)
	}
	return models.Report{}, errors.New("CreateReportFunc not implemented")
}

// DeleteReport implements the ReportManager interface
func (m *MockReportManager) DeleteReport(ctx context.Context, id string) error {
	if m.DeleteReportFunc != nil {
		return m.DeleteReportFunc(ctx, id)
	}
	return errors.New("DeleteReportFunc not implemented")
}

// Export implements the ReportManager interface
func (m *MockReportManager) Export(ctx context.Context, surveyIDs, sedes []string, format string) ([]byte, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, surveyIDs, sedes, format)
	}
	return nil, errors.New("ExportFunc not implemented")
}
