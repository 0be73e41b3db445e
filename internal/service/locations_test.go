package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pulsometrics/analytics-server/internal/repository"
	"github.com/pulsometrics/analytics-server/internal/repository/models"
	"github.com/pulsometrics/analytics-server/internal/service/mocks"
)

// TestListLocations tests the live survey/response counting per sede
func TestListLocations(t *testing.T) {
	ctx := context.Background()

	locationStore := &mocks.MockLocationStore{
		GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Location, error) {
			return []models.Location{
				{ID: "loc-1", OwnerID: ownerID, Name: "Centro", Status: models.LocationStatusActive},
				{ID: "loc-2", OwnerID: ownerID, Name: "Norte", Status: models.LocationStatusInactive},
			}, nil
		},
	}

	t.Run("counts surveys and responses by sede name", func(t *testing.T) {
		surveys := &mocks.MockSurveyStore{
			GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Survey, error) {
				return []models.Survey{
					{ID: "sv-a", Sede: "Centro"},
					{ID: "sv-b", Sede: "Centro"},
					{ID: "sv-c", Sede: "Sur"},
				}, nil
			},
		}
		responses := &mocks.MockResponseStore{
			GetBySurveyIDsFunc: func(ctx context.Context, surveyIDs []string, sede string) ([]models.Response, error) {
				assert.Equal(t, []string{"sv-a", "sv-b", "sv-c"}, surveyIDs)
				assert.Empty(t, sede)
				return []models.Response{
					{ID: "r1", SurveyID: "sv-a", Sede: "Centro"},
					{ID: "r2", SurveyID: "sv-b", Sede: "Centro"},
					{ID: "r3", SurveyID: "sv-c", Sede: "Norte"},
				}, nil
			},
		}

		svc := NewLocationService(locationStore, surveys, responses, zap.NewNop())
		locations, err := svc.ListLocations(ctx, "owner-1")

		assert.NoError(t, err)
		assert.Len(t, locations, 2)
		assert.Equal(t, 2, locations[0].SurveysCount)
		assert.Equal(t, 2, locations[0].ResponsesCount)
		assert.Equal(t, 0, locations[1].SurveysCount)
		assert.Equal(t, 1, locations[1].ResponsesCount)
	})

	t.Run("no locations skips the survey lookup", func(t *testing.T) {
		empty := &mocks.MockLocationStore{
			GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Location, error) {
				return nil, nil
			},
		}

		svc := NewLocationService(empty, &mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, zap.NewNop())
		locations, err := svc.ListLocations(ctx, "owner-1")

		assert.NoError(t, err)
		assert.Empty(t, locations)
	})

	t.Run("owner without surveys gets zero counts", func(t *testing.T) {
		surveys := &mocks.MockSurveyStore{
			GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Survey, error) {
				return nil, nil
			},
		}

		svc := NewLocationService(locationStore, surveys, &mocks.MockResponseStore{}, zap.NewNop())
		locations, err := svc.ListLocations(ctx, "owner-1")

		assert.NoError(t, err)
		assert.Len(t, locations, 2)
		assert.Zero(t, locations[0].SurveysCount)
		assert.Zero(t, locations[0].ResponsesCount)
	})

	t.Run("storage failure", func(t *testing.T) {
		broken := &mocks.MockLocationStore{
			GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Location, error) {
				return nil, errors.New("locked")
			},
		}

		svc := NewLocationService(broken, &mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, zap.NewNop())
		_, err := svc.ListLocations(ctx, "owner-1")

		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

// TestCreateLocation tests defaults and validation
func TestCreateLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("new locations start active", func(t *testing.T) {
		var stored models.Location
		locations := &mocks.MockLocationStore{
			CreateFunc: func(ctx context.Context, l models.Location) error {
				stored = l
				return nil
			},
		}

		svc := NewLocationService(locations, &mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, zap.NewNop())
		svc.now = func() time.Time { return fixedNow }
		svc.newID = func() string { return "loc-1" }

		location, err := svc.CreateLocation(ctx, "owner-1", LocationInput{
			Name:    "Sucursal Centro",
			Address: "Av. Principal 100",
			Manager: "Ana",
		})

		assert.NoError(t, err)
		assert.Equal(t, "loc-1", location.ID)
		assert.Equal(t, models.LocationStatusActive, location.Status)
		assert.Equal(t, fixedNow, location.CreatedAt)
		assert.Equal(t, location, stored)
	})

	t.Run("name is required", func(t *testing.T) {
		svc := NewLocationService(&mocks.MockLocationStore{}, &mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, zap.NewNop())

		_, err := svc.CreateLocation(ctx, "owner-1", LocationInput{Address: "sin nombre"})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

// TestUpdateLocation tests field merging and status validation
func TestUpdateLocation(t *testing.T) {
	ctx := context.Background()

	existing := models.Location{
		ID:      "loc-1",
		OwnerID: "owner-1",
		Name:    "Centro",
		Manager: "Ana",
		Status:  models.LocationStatusActive,
	}

	newService := func(updated *models.Location) *LocationService {
		locations := &mocks.MockLocationStore{
			GetByIDFunc: func(ctx context.Context, id string) (models.Location, error) {
				if id != existing.ID {
					return models.Location{}, repository.ErrNotFound
				}
				return existing, nil
			},
			UpdateFunc: func(ctx context.Context, l models.Location) error {
				if updated != nil {
					*updated = l
				}
				return nil
			},
		}
		return NewLocationService(locations, &mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, zap.NewNop())
	}

	t.Run("deactivate keeps the rest", func(t *testing.T) {
		var updated models.Location
		svc := newService(&updated)

		location, err := svc.UpdateLocation(ctx, "loc-1", LocationInput{
			Name:    "Centro",
			Manager: "Luis",
			Status:  models.LocationStatusInactive,
		})

		assert.NoError(t, err)
		assert.Equal(t, models.LocationStatusInactive, location.Status)
		assert.Equal(t, "Luis", location.Manager)
		assert.Equal(t, location, updated)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		svc := newService(nil)

		_, err := svc.UpdateLocation(ctx, "loc-1", LocationInput{Status: "Cerrada"})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown location", func(t *testing.T) {
		svc := newService(nil)

		_, err := svc.UpdateLocation(ctx, "missing", LocationInput{Name: "Otro"})

		assert.ErrorIs(t, err, ErrLocationNotFound)
	})
}

// TestDeleteLocation tests the not-found mapping
func TestDeleteLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown location", func(t *testing.T) {
		locations := &mocks.MockLocationStore{
			DeleteFunc: func(ctx context.Context, id string) error {
				return repository.ErrNotFound
			},
		}

		svc := NewLocationService(locations, &mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, zap.NewNop())
		err := svc.DeleteLocation(ctx, "missing")

		assert.ErrorIs(t, err, ErrLocationNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		locations := &mocks.MockLocationStore{
			DeleteFunc: func(ctx context.Context, id string) error {
				return errors.New("locked")
			},
		}

		svc := NewLocationService(locations, &mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, zap.NewNop())
		err := svc.DeleteLocation(ctx, "loc-1")

		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}
