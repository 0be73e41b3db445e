package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulsometrics/analytics-server/internal/repository"
	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

var ErrLocationNotFound = errors.New("location not found")

// LocationService manages the owner's sedes. Listing enriches each location
// with live survey and response counts matched by sede name.
type LocationService struct {
	locations LocationStore
	surveys   SurveyStore
	responses ResponseStore
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewLocationService(locations LocationStore, surveys SurveyStore, responses ResponseStore, logger *zap.Logger) *LocationService {
	if locations == nil || surveys == nil || responses == nil {
		panic("stores must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &LocationService{
		locations: locations,
		surveys:   surveys,
		responses: responses,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// LocationInput carries the editable parts of a location.
type LocationInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Manager string `json:"manager"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Status  string `json:"status"`
}

// ListLocations returns the owner's locations sorted by name, each carrying
// the number of surveys and responses tagged with its sede.
func (s *LocationService) ListLocations(ctx context.Context, ownerID string) ([]models.Location, error) {
	locations, err := s.locations.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(locations) == 0 {
		return []models.Location{}, nil
	}

	surveys, err := s.surveys.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	surveysBySede := make(map[string]int)
	surveyIDs := make([]string, 0, len(surveys))
	for _, sv := range surveys {
		surveysBySede[sv.Sede]++
		surveyIDs = append(surveyIDs, sv.ID)
	}

	responsesBySede := make(map[string]int)
	if len(surveyIDs) > 0 {
		responses, err := s.responses.GetBySurveyIDs(ctx, surveyIDs, "")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		for _, r := range responses {
			responsesBySede[r.Sede]++
		}
	}

	for i := range locations {
		locations[i].SurveysCount = surveysBySede[locations[i].Name]
		locations[i].ResponsesCount = responsesBySede[locations[i].Name]
	}
	return locations, nil
}

// CreateLocation registers a new active sede for the owner.
func (s *LocationService) CreateLocation(ctx context.Context, ownerID string, input LocationInput) (models.Location, error) {
	if input.Name == "" {
		return models.Location{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	location := models.Location{
		ID:        s.newID(),
		OwnerID:   ownerID,
		Name:      input.Name,
		Address:   input.Address,
		Manager:   input.Manager,
		Phone:     input.Phone,
		Email:     input.Email,
		Status:    models.LocationStatusActive,
		CreatedAt: s.now(),
	}
	if err := s.locations.Create(ctx, location); err != nil {
		return models.Location{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("location created",
		zap.String("location_id", location.ID),
		zap.String("owner_id", ownerID),
		zap.String("name", location.Name))

	return location, nil
}

// UpdateLocation overwrites the editable fields of an existing location.
func (s *LocationService) UpdateLocation(ctx context.Context, id string, input LocationInput) (models.Location, error) {
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Location{}, ErrLocationNotFound
		}
		return models.Location{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if input.Name != "" {
		location.Name = input.Name
	}
	location.Address = input.Address
	location.Manager = input.Manager
	location.Phone = input.Phone
	location.Email = input.Email
	if input.Status != "" {
		if input.Status != models.LocationStatusActive && input.Status != models.LocationStatusInactive {
			return models.Location{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
		}
		location.Status = input.Status
	}

	if err := s.locations.Update(ctx, location); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Location{}, ErrLocationNotFound
		}
		return models.Location{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return location, nil
}

// DeleteLocation removes a location document. Responses keep their sede tag.
func (s *LocationService) DeleteLocation(ctx context.Context, id string) error {
	if err := s.locations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLocationNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}
