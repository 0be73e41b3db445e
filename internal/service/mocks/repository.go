package mocks

import (
	"context"
	"errors"

	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

// MockSurveyStore is a mock implementation of the SurveyStore interface
// for testing the service layer.
type MockSurveyStore struct {
	GetByOwnerFunc   func(ctx context.Context, ownerID string) ([]models.Survey, error)
	GetByIDFunc      func(ctx context.Context, id string) (models.Survey, error)
	CreateFunc       func(ctx context.Context, s models.Survey) error
	UpdateFunc       func(ctx context.Context, s models.Survey) error
	CountByOwnerFunc func(ctx context.Context, ownerID string) (int64, error)
}

// GetByOwner implements the SurveyStore interface
func (m *MockSurveyStore) GetByOwner(ctx context.Context, ownerID string) ([]models.Survey, error) {
	if m.GetByOwnerFunc != nil {
		return m.GetByOwnerFunc(ctx, ownerID)
	}
	return nil, errors.New("GetByOwnerFunc not implemented")
}

// GetByID implements the SurveyStore interface
func (m *MockSurveyStore) GetByID(ctx context.Context, id string) (models.Survey, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return models.Survey{}, errors.New("GetByIDFunc not implemented")
}

// Create implements the SurveyStore interface
func (m *MockSurveyStore) Create(ctx context.Context, s models.Survey) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	return errors.New("CreateFunc not implemented")
}

// Update implements the SurveyStore interface
func (m *MockSurveyStore) Update(ctx context.Context, s models.Survey) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, s)
	}
	return errors.New("UpdateFunc not implemented")
}

// CountByOwner implements the SurveyStore interface
func (m *MockSurveyStore) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	if m.CountByOwnerFunc != nil {
		return m.CountByOwnerFunc(ctx, ownerID)
	}
	return 0, errors.New("CountByOwnerFunc not implemented")
}

// MockResponseStore is a mock implementation of the ResponseStore interface.
type MockResponseStore struct {
	GetBySurveyIDsFunc   func(ctx context.Context, surveyIDs []string, sede string) ([]models.Response, error)
	GetBySurveyIDFunc    func(ctx context.Context, surveyID string) ([]models.Response, error)
	CreateFunc           func(ctx context.Context, resp models.Response) error
	CountBySurveyIDsFunc func(ctx context.Context, surveyIDs []string) (int64, error)
}

// GetBySurveyIDs implements the ResponseStore interface
func (m *MockResponseStore) GetBySurveyIDs(ctx context.Context, surveyIDs []string, sede string) ([]models.Response, error) {
	if m.GetBySurveyIDsFunc != nil {
		return m.GetBySurveyIDsFunc(ctx, surveyIDs, sede)
	}
	return nil, errors.New("GetBySurveyIDsFunc not implemented")
}

// GetBySurveyID implements the ResponseStore interface
func (m *MockResponseStore) GetBySurveyID(ctx context.Context, surveyID string) ([]models.Response, error) {
	if m.GetBySurveyIDFunc != nil {
		return m.GetBySurveyIDFunc(ctx, surveyID)
	}
	return nil, errors.New("GetBySurveyIDFunc not implemented")
}

// Create implements the ResponseStore interface
func (m *MockResponseStore) Create(ctx context.Context, resp models.Response) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, resp)
	}
	return errors.New("CreateFunc not implemented")
}

// CountBySurveyIDs implements the ResponseStore interface
func (m *MockResponseStore) CountBySurveyIDs(ctx context.Context, surveyIDs []string) (int64, error) {
	if m.CountBySurveyIDsFunc != nil {
		return m.CountBySurveyIDsFunc(ctx, surveyIDs)
	}
	return 0, errors.New("CountBySurveyIDsFunc not implemented")
}

// MockLocationStore is a mock implementation of the LocationStore interface.
type MockLocationStore struct {
	GetByOwnerFunc func(ctx context.Context, ownerID string) ([]models.Location, error)
	GetByIDFunc    func(ctx context.Context, id string) (models.Location, error)
	CreateFunc     func(ctx context.Context, l models.Location) error
	UpdateFunc     func(ctx context.Context, l models.Location) error
	DeleteFunc     func(ctx context.Context, id string) error
}

// GetByOwner implements the LocationStore interface
func (m *MockLocationStore) GetByOwner(ctx context.Context, ownerID string) ([]models.Location, error) {
	if m.GetByOwnerFunc != nil {
		return m.GetByOwnerFunc(ctx, ownerID)
	}
	return nil, errors.New("GetByOwnerFunc not implemented")
}

// GetByID implements the LocationStore interface
func (m *MockLocationStore) GetByID(ctx context.Context, id string) (models.Location, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return models.Location{}, errors.New("GetByIDFunc not implemented")
}

// Create implements the LocationStore interface
func (m *MockLocationStore) Create(ctx context.Context, l models.Location) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, l)
	}
	return errors.New("CreateFunc not implemented")
}

// Update implements the LocationStore interface
func (m *MockLocationStore) Update(ctx context.Context, l models.Location) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, l)
	}
	return errors.New("UpdateFunc not implemented")
}

// Delete implements the LocationStore interface
func (m *MockLocationStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errors.New("DeleteFunc not implemented")
}

// MockUserStore is a mock implementation of the UserStore interface.
type MockUserStore struct {
	GetProfileFunc func(ctx context.Context, uid string) (models.UserProfile, error)
}

// GetProfile implements the UserStore interface
func (m *MockUserStore) GetProfile(ctx context.Context, uid string) (models.UserProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, uid)
	}
	return models.UserProfile{}, errors.New("GetProfileFunc not implemented")
}

// MockReportStore is a mock implementation of the ReportStore interface.
type MockReportStore struct {
	GetByOwnerFunc   func(ctx context.Context, ownerID string) ([]models.Report, error)
	GetByStatusFunc  func(ctx context.Context, status string) ([]models.Report, error)
	CreateFunc       func(ctx context.Context, rep models.Report) error
	SetCompletedFunc func(ctx context.Context, id string, metrics models.ReportMetrics) error
	DeleteFunc       func(ctx context.Context, id string) error
}

// GetByOwner implements the ReportStore interface
func (m *MockReportStore) GetByOwner(ctx context.Context, ownerID string) ([]models.Report, error) {
	if m.GetByOwnerFunc != nil {
		return m.GetByOwnerFunc(ctx, ownerID)
	}
	return nil, errors.New("GetByOwnerFunc not implemented")
}

// GetByStatus implements the ReportStore interface
func (m *MockReportStore) GetByStatus(ctx context.Context, status string) ([]models.Report, error) {
	if m.GetByStatusFunc != nil {
		return m.GetByStatusFunc(ctx, status)
	}
	return nil, errors.New("GetByStatusFunc not implemented")
}

// Create implements the ReportStore interface
func (m *MockReportStore) Create(ctx context.Context, rep models.Report) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rep)
	}
	return errors.New("CreateFunc not implemented")
}

// SetCompleted implements the ReportStore interface
func (m *MockReportStore) SetCompleted(ctx context.Context, id string, metrics models.ReportMetrics) error {
	if m.SetCompletedFunc != nil {
		return m.SetCompletedFunc(ctx, id, metrics)
	}
	return errors.New("SetCompletedFunc not implemented")
}

// Delete implements the ReportStore interface
func (m *MockReportStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errors.New("DeleteFunc not implemented")
}
