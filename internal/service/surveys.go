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

var ErrInvalidInput = errors.New("invalid input")

// SurveyService handles survey lifecycle and response submission.
type SurveyService struct {
	surveys   SurveyStore
	responses ResponseStore
	quotas    QuotaChecker
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewSurveyService(surveys SurveyStore, responses ResponseStore, quotas QuotaChecker, logger *zap.Logger) *SurveyService {
	if surveys == nil || responses == nil || quotas == nil {
		panic("dependencies must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &SurveyService{
		surveys:   surveys,
		responses: responses,
		quotas:    quotas,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SurveyInput carries the editable parts of a survey.
type SurveyInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Sede        string            `json:"sede"`
	Language    string            `json:"language"`
	Questions   []models.Question `json:"questions"`
}

// ListSurveys returns the owner's surveys, newest first.
func (s *SurveyService) ListSurveys(ctx context.Context, ownerID string) ([]models.Survey, error) {
	surveys, err := s.surveys.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return surveys, nil
}

// GetSurvey fetches one survey schema.
func (s *SurveyService) GetSurvey(ctx context.Context, id string) (models.Survey, error) {
	survey, err := s.surveys.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Survey{}, ErrSurveyNotFound
		}
		return models.Survey{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return survey, nil
}

// CreateSurvey creates a published survey for the owner, subject to the plan's
// survey quota.
func (s *SurveyService) CreateSurvey(ctx context.Context, ownerID string, input SurveyInput) (models.Survey, error) {
	if input.Name == "" {
		return models.Survey{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	quota, err := s.quotas.Check(ctx, ownerID, QuotaSurveys)
	if err != nil {
		return models.Survey{}, err
	}
	if !quota.Allowed {
		return models.Survey{}, fmt.Errorf("%w: límite de %d encuestas para el plan actual", ErrQuotaExceeded, quota.Limit)
	}

	survey := models.Survey{
		ID:          s.newID(),
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Sede:        input.Sede,
		Language:    input.Language,
		Status:      models.SurveyStatusPublished,
		Questions:   input.Questions,
		CreatedAt:   s.now(),
	}
	if err := s.surveys.Create(ctx, survey); err != nil {
		return models.Survey{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("survey created",
		zap.String("survey_id", survey.ID),
		zap.String("owner_id", ownerID),
		zap.Int("questions", len(survey.Questions)))

	return survey, nil
}

// UpdateSurvey overwrites the editable fields of an existing survey.
func (s *SurveyService) UpdateSurvey(ctx context.Context, id string, input SurveyInput) (models.Survey, error) {
	survey, err := s.GetSurvey(ctx, id)
	if err != nil {
		return models.Survey{}, err
	}

	if input.Name != "" {
		survey.Name = input.Name
	}
	survey.Description = input.Description
	if input.Sede != "" {
		survey.Sede = input.Sede
	}
	if input.Language != "" {
		survey.Language = input.Language
	}
	if input.Questions != nil {
		survey.Questions = input.Questions
	}

	if err := s.surveys.Update(ctx, survey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Survey{}, ErrSurveyNotFound
		}
		return models.Survey{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return survey, nil
}

// DuplicateSurvey copies an existing survey as a draft for the same owner,
// subject to the survey quota.
func (s *SurveyService) DuplicateSurvey(ctx context.Context, surveyID, ownerID string) (models.Survey, error) {
	source, err := s.GetSurvey(ctx, surveyID)
	if err != nil {
		return models.Survey{}, err
	}

	quota, err := s.quotas.Check(ctx, ownerID, QuotaSurveys)
	if err != nil {
		return models.Survey{}, err
	}
	if !quota.Allowed {
		return models.Survey{}, fmt.Errorf("%w: límite de %d encuestas para el plan actual", ErrQuotaExceeded, quota.Limit)
	}

	dup := source
	dup.ID = s.newID()
	dup.OwnerID = ownerID
	dup.Name = source.Name + " (Copia)"
	dup.Status = models.SurveyStatusDraft
	dup.CreatedAt = s.now()

	if err := s.surveys.Create(ctx, dup); err != nil {
		return models.Survey{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("survey duplicated",
		zap.String("source_id", surveyID),
		zap.String("survey_id", dup.ID),
		zap.String("owner_id", ownerID))

	return dup, nil
}

// ResponseInput is a submitted survey response.
type ResponseInput struct {
	SurveyID  string                   `json:"surveyId"`
	Sede      string                   `json:"sede"`
	Answers   map[string]models.Answer `json:"answers"`
	StartedAt *time.Time               `json:"startedAt,omitempty"`
}

// SubmitResponse stores a response and derives its 0-5 rating scalar from the
// ratable answers: rating answers on their native 1-5 scale, nps answers
// rescaled by /2. Responses without ratable answers get rating 0.
func (s *SurveyService) SubmitResponse(ctx context.Context, input ResponseInput) (models.Response, error) {
	if input.SurveyID == "" {
		return models.Response{}, fmt.Errorf("%w: surveyId is required", ErrInvalidInput)
	}

	survey, err := s.GetSurvey(ctx, input.SurveyID)
	if err != nil {
		return models.Response{}, err
	}

	sede := input.Sede
	if sede == "" {
		sede = survey.Sede
	}
	if sede == "" {
		sede = models.DefaultSede
	}

	response := models.Response{
		ID:        s.newID(),
		SurveyID:  survey.ID,
		Sede:      sede,
		Answers:   input.Answers,
		Rating:    deriveRating(survey.Questions, input.Answers),
		CreatedAt: s.now(),
		StartedAt: input.StartedAt,
	}

	if err := s.responses.Create(ctx, response); err != nil {
		return models.Response{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("response submitted",
		zap.String("survey_id", survey.ID),
		zap.String("sede", sede),
		zap.Float64("rating", response.Rating))

	return response, nil
}

func deriveRating(questions []models.Question, answers map[string]models.Answer) float64 {
	var sum float64
	var count int
	for _, q := range questions {
		ans, ok := answers[q.ID]
		if !ok {
			continue
		}
		switch q.Type {
		case models.QuestionRating:
			if ans.Score > 0 {
				sum += ans.Score
				count++
			}
		case models.QuestionNPS:
			sum += ans.Score / 2
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
