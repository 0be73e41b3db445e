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

type stubQuota struct {
	status QuotaStatus
	err    error
}

func (s stubQuota) Check(ctx context.Context, ownerID string, kind QuotaKind) (QuotaStatus, error) {
	return s.status, s.err
}

func allowAll() stubQuota {
	return stubQuota{status: QuotaStatus{Allowed: true, Limit: 50}}
}

func surveyServiceWith(surveys SurveyStore, responses ResponseStore, quotas QuotaChecker) *SurveyService {
	svc := NewSurveyService(surveys, responses, quotas, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "fixed-id" }
	return svc
}

// TestCreateSurvey tests creation, validation and quota gating
func TestCreateSurvey(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a published survey", func(t *testing.T) {
		var stored models.Survey
		surveys := &mocks.MockSurveyStore{
			CreateFunc: func(ctx context.Context, s models.Survey) error {
				stored = s
				return nil
			},
		}

		svc := surveyServiceWith(surveys, &mocks.MockResponseStore{}, allowAll())
		created, err := svc.CreateSurvey(ctx, "owner-1", SurveyInput{
			Name: "Experiencia",
			Sede: "Centro",
			Questions: []models.Question{
				{ID: "q1", Type: models.QuestionRating, Title: "Califica"},
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, "fixed-id", created.ID)
		assert.Equal(t, "owner-1", created.OwnerID)
		assert.Equal(t, models.SurveyStatusPublished, created.Status)
		assert.Equal(t, fixedNow, created.CreatedAt)
		assert.Equal(t, created, stored)
	})

	t.Run("name is required", func(t *testing.T) {
		svc := surveyServiceWith(&mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, allowAll())

		_, err := svc.CreateSurvey(ctx, "owner-1", SurveyInput{})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("quota exhausted", func(t *testing.T) {
		quota := stubQuota{status: QuotaStatus{Allowed: false, Limit: 3, Current: 3}}
		svc := surveyServiceWith(&mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, quota)

		_, err := svc.CreateSurvey(ctx, "owner-1", SurveyInput{Name: "Nueva"})

		assert.ErrorIs(t, err, ErrQuotaExceeded)
		assert.Contains(t, err.Error(), "límite de 3 encuestas")
	})

	t.Run("quota check failure propagates", func(t *testing.T) {
		quota := stubQuota{err: errors.New("quota backend down")}
		svc := surveyServiceWith(&mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, quota)

		_, err := svc.CreateSurvey(ctx, "owner-1", SurveyInput{Name: "Nueva"})

		assert.Error(t, err)
	})
}

// TestUpdateSurvey tests the partial-overwrite semantics
func TestUpdateSurvey(t *testing.T) {
	ctx := context.Background()

	existing := models.Survey{
		ID:       "sv-a",
		OwnerID:  "owner-1",
		Name:     "Original",
		Sede:     "Centro",
		Language: "es",
		Status:   models.SurveyStatusPublished,
	}

	t.Run("keeps unset fields", func(t *testing.T) {
		var updated models.Survey
		surveys := &mocks.MockSurveyStore{
			GetByIDFunc: func(ctx context.Context, id string) (models.Survey, error) {
				return existing, nil
			},
			UpdateFunc: func(ctx context.Context, s models.Survey) error {
				updated = s
				return nil
			},
		}

		svc := surveyServiceWith(surveys, &mocks.MockResponseStore{}, allowAll())
		result, err := svc.UpdateSurvey(ctx, "sv-a", SurveyInput{Name: "Renombrada"})

		assert.NoError(t, err)
		assert.Equal(t, "Renombrada", result.Name)
		assert.Equal(t, "Centro", result.Sede)
		assert.Equal(t, "es", result.Language)
		assert.Equal(t, result, updated)
	})

	t.Run("unknown survey", func(t *testing.T) {
		surveys := &mocks.MockSurveyStore{
			GetByIDFunc: func(ctx context.Context, id string) (models.Survey, error) {
				return models.Survey{}, repository.ErrNotFound
			},
		}

		svc := surveyServiceWith(surveys, &mocks.MockResponseStore{}, allowAll())
		_, err := svc.UpdateSurvey(ctx, "missing", SurveyInput{Name: "X"})

		assert.ErrorIs(t, err, ErrSurveyNotFound)
	})
}

// TestDuplicateSurvey tests the copy semantics
func TestDuplicateSurvey(t *testing.T) {
	ctx := context.Background()

	source := models.Survey{
		ID:      "sv-a",
		OwnerID: "owner-1",
		Name:    "Experiencia",
		Status:  models.SurveyStatusPublished,
		Questions: []models.Question{
			{ID: "q1", Type: models.QuestionRating, Title: "Califica"},
		},
		CreatedAt: fixedNow.AddDate(0, -1, 0),
	}

	t.Run("copies as a draft", func(t *testing.T) {
		var stored models.Survey
		surveys := &mocks.MockSurveyStore{
			GetByIDFunc: func(ctx context.Context, id string) (models.Survey, error) {
				assert.Equal(t, "sv-a", id)
				return source, nil
			},
			CreateFunc: func(ctx context.Context, s models.Survey) error {
				stored = s
				return nil
			},
		}

		svc := surveyServiceWith(surveys, &mocks.MockResponseStore{}, allowAll())
		dup, err := svc.DuplicateSurvey(ctx, "sv-a", "owner-1")

		assert.NoError(t, err)
		assert.Equal(t, "fixed-id", dup.ID)
		assert.Equal(t, "Experiencia (Copia)", dup.Name)
		assert.Equal(t, models.SurveyStatusDraft, dup.Status)
		assert.Equal(t, fixedNow, dup.CreatedAt)
		assert.Equal(t, source.Questions, dup.Questions)
		assert.Equal(t, dup, stored)
	})

	t.Run("duplicate is quota-gated", func(t *testing.T) {
		surveys := &mocks.MockSurveyStore{
			GetByIDFunc: func(ctx context.Context, id string) (models.Survey, error) {
				return source, nil
			},
		}
		quota := stubQuota{status: QuotaStatus{Allowed: false, Limit: 3}}

		svc := surveyServiceWith(surveys, &mocks.MockResponseStore{}, quota)
		_, err := svc.DuplicateSurvey(ctx, "sv-a", "owner-1")

		assert.ErrorIs(t, err, ErrQuotaExceeded)
	})
}

// TestSubmitResponse tests sede defaulting and rating derivation
func TestSubmitResponse(t *testing.T) {
	ctx := context.Background()

	survey := models.Survey{
		ID:   "sv-a",
		Sede: "Centro",
		Questions: []models.Question{
			{ID: "q-rating", Type: models.QuestionRating, Title: "Califica"},
			{ID: "q-nps", Type: models.QuestionNPS, Title: "¿Nos recomendarías?"},
			{ID: "comment", Type: models.QuestionText, Title: "Comentarios"},
		},
	}

	newService := func(captured *models.Response) *SurveyService {
		surveys := &mocks.MockSurveyStore{
			GetByIDFunc: func(ctx context.Context, id string) (models.Survey, error) {
				return survey, nil
			},
		}
		responses := &mocks.MockResponseStore{
			CreateFunc: func(ctx context.Context, resp models.Response) error {
				*captured = resp
				return nil
			},
		}
		return surveyServiceWith(surveys, responses, allowAll())
	}

	t.Run("derives the rating scalar", func(t *testing.T) {
		var stored models.Response
		svc := newService(&stored)

		resp, err := svc.SubmitResponse(ctx, ResponseInput{
			SurveyID: "sv-a",
			Sede:     "Norte",
			Answers: map[string]models.Answer{
				"q-rating": {Score: 4},
				"q-nps":    {Score: 10},
				"comment":  {Text: "todo bien"},
			},
		})

		assert.NoError(t, err)
		// (4 + 10/2) / 2
		assert.InDelta(t, 4.5, resp.Rating, 0.001)
		assert.Equal(t, "Norte", resp.Sede)
		assert.Equal(t, resp, stored)
	})

	t.Run("sede falls back to the survey's", func(t *testing.T) {
		var stored models.Response
		svc := newService(&stored)

		resp, err := svc.SubmitResponse(ctx, ResponseInput{SurveyID: "sv-a"})

		assert.NoError(t, err)
		assert.Equal(t, "Centro", resp.Sede)
	})

	t.Run("no ratable answers means rating zero", func(t *testing.T) {
		var stored models.Response
		svc := newService(&stored)

		resp, err := svc.SubmitResponse(ctx, ResponseInput{
			SurveyID: "sv-a",
			Answers:  map[string]models.Answer{"comment": {Text: "sin calificación"}},
		})

		assert.NoError(t, err)
		assert.Equal(t, 0.0, resp.Rating)
	})

	t.Run("survey id required", func(t *testing.T) {
		var stored models.Response
		svc := newService(&stored)

		_, err := svc.SubmitResponse(ctx, ResponseInput{})

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown survey", func(t *testing.T) {
		surveys := &mocks.MockSurveyStore{
			GetByIDFunc: func(ctx context.Context, id string) (models.Survey, error) {
				return models.Survey{}, repository.ErrNotFound
			},
		}

		svc := surveyServiceWith(surveys, &mocks.MockResponseStore{}, allowAll())
		_, err := svc.SubmitResponse(ctx, ResponseInput{SurveyID: "missing"})

		assert.ErrorIs(t, err, ErrSurveyNotFound)
	})
}
