package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pulsometrics/analytics-server/internal/repository/models"
	"github.com/pulsometrics/analytics-server/internal/service/mocks"
)

// Saturday noon, so the trailing week runs Dom..Sáb.
var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

// TestNewAnalyticsService tests the constructor
func TestNewAnalyticsService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		svc := NewAnalyticsService(&mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, zap.NewNop())

		assert.NotNil(t, svc)
	})

	t.Run("nil store panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewAnalyticsService(nil, &mocks.MockResponseStore{}, zap.NewNop())
		})
		assert.Panics(t, func() {
			NewAnalyticsService(&mocks.MockSurveyStore{}, nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		svc := NewAnalyticsService(&mocks.MockSurveyStore{}, &mocks.MockResponseStore{}, nil)

		assert.NotNil(t, svc)
		assert.NotNil(t, svc.logger)
	})
}

// TestGetDashboardEmpty tests the zero-data and failure paths
func TestGetDashboardEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("owner without surveys gets a zeroed report", func(t *testing.T) {
		surveyStore := &mocks.MockSurveyStore{
			GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Survey, error) {
				return []models.Survey{}, nil
			},
		}

		svc := NewAnalyticsService(surveyStore, &mocks.MockResponseStore{}, zap.NewNop())
		report, err := svc.GetDashboard(ctx, "owner-1", "")

		assert.NoError(t, err)
		assert.Equal(t, 0, report.TotalResponses)
		assert.Equal(t, 0, report.TotalSurveys)
		assert.Equal(t, 0.0, report.AvgSatisfaction)
		assert.Equal(t, 0.0, report.GlobalNPS)
		assert.NotNil(t, report.LocationPerformance)
		assert.NotNil(t, report.ResponsesByDay)
		assert.NotNil(t, report.TopSurveys)
		assert.NotNil(t, report.HourlyDistribution)
		assert.NotNil(t, report.SatisfactionDrivers)
		assert.NotNil(t, report.RiskAnalysis)
		assert.NotNil(t, report.HeatmapData)
		assert.NotNil(t, report.CustomerClusters)
		assert.Empty(t, report.LocationPerformance)
	})

	t.Run("surveys with no responses keep the calendar shape", func(t *testing.T) {
		surveyStore := &mocks.MockSurveyStore{
			GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Survey, error) {
				return []models.Survey{{ID: "sv-a", Name: "Experiencia"}}, nil
			},
		}
		responseStore := &mocks.MockResponseStore{
			GetBySurveyIDsFunc: func(ctx context.Context, surveyIDs []string, sede string) ([]models.Response, error) {
				return []models.Response{}, nil
			},
		}

		svc := NewAnalyticsService(surveyStore, responseStore, zap.NewNop())
		svc.now = func() time.Time { return fixedNow }
		report, err := svc.GetDashboard(ctx, "owner-1", "")

		assert.NoError(t, err)
		assert.Equal(t, 1, report.TotalSurveys)
		assert.Equal(t, 0, report.TotalResponses)
		assert.Len(t, report.ResponsesByDay, 7)
		assert.Len(t, report.HourlyDistribution, 24)
		assert.Len(t, report.HeatmapData, 7*24)
	})

	t.Run("survey store failure", func(t *testing.T) {
		surveyStore := &mocks.MockSurveyStore{
			GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Survey, error) {
				return nil, errors.New("connection refused")
			},
		}

		svc := NewAnalyticsService(surveyStore, &mocks.MockResponseStore{}, zap.NewNop())
		_, err := svc.GetDashboard(ctx, "owner-1", "")

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("response store failure", func(t *testing.T) {
		surveyStore := &mocks.MockSurveyStore{
			GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Survey, error) {
				return []models.Survey{{ID: "sv-a"}}, nil
			},
		}
		responseStore := &mocks.MockResponseStore{
			GetBySurveyIDsFunc: func(ctx context.Context, surveyIDs []string, sede string) ([]models.Response, error) {
				return nil, errors.New("query timeout")
			},
		}

		svc := NewAnalyticsService(surveyStore, responseStore, zap.NewNop())
		_, err := svc.GetDashboard(ctx, "owner-1", "")

		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func dashboardFixture() ([]models.Survey, []models.Response) {
	surveys := []models.Survey{
		{
			ID:      "sv-a",
			OwnerID: "owner-1",
			Name:    "Experiencia",
			Questions: []models.Question{
				{ID: "q-rating", Type: models.QuestionRating, Title: "Califica tu experiencia"},
				{ID: "q-nps", Type: models.QuestionNPS, Title: "¿Nos recomendarías?"},
				{ID: "q-drink", Type: models.QuestionMultipleChoice, Title: "¿Qué pediste?", Options: []string{"Café", "Té"}},
				{ID: "comment", Type: models.QuestionText, Title: "Comentarios"},
			},
		},
		{ID: "sv-b", OwnerID: "owner-1", Name: "Sucursal Norte"},
	}

	responses := []models.Response{
		{
			ID:       "r1",
			SurveyID: "sv-a",
			Sede:     "Centro",
			Rating:   5,
			Answers: map[string]models.Answer{
				"q-rating": {Score: 5},
				"q-nps":    {Score: 10},
				"q-drink":  {Text: "Café"},
				"comment":  {Text: "excelente atención y servicio"},
			},
			CreatedAt: fixedNow.Add(-1 * time.Hour),
			StartedAt: ptrTime(fixedNow.Add(-90 * time.Minute)),
		},
		{
			ID:       "r2",
			SurveyID: "sv-a",
			Sede:     "Centro",
			Rating:   5,
			Answers: map[string]models.Answer{
				"q-rating": {Score: 5},
				"q-nps":    {Score: 2},
				"q-drink":  {Text: "Café"},
			},
			CreatedAt: fixedNow.Add(-2 * time.Hour),
			StartedAt: ptrTime(fixedNow.Add(-4 * time.Hour)),
		},
		{
			ID:       "r3",
			SurveyID: "sv-a",
			Sede:     "Norte",
			Rating:   1,
			Answers: map[string]models.Answer{
				"q-rating": {Score: 1},
				"q-nps":    {Score: 8},
				"q-drink":  {Text: "Té"},
			},
			CreatedAt: fixedNow.Add(-26 * time.Hour),
		},
		{
			ID:        "r4",
			SurveyID:  "sv-b",
			Sede:      "",
			Rating:    0,
			Answers:   map[string]models.Answer{},
			CreatedAt: fixedNow.AddDate(0, 0, -10),
		},
	}

	return surveys, responses
}

func fixtureService(t *testing.T) *AnalyticsService {
	t.Helper()
	surveys, responses := dashboardFixture()

	surveyStore := &mocks.MockSurveyStore{
		GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Survey, error) {
			return surveys, nil
		},
	}
	responseStore := &mocks.MockResponseStore{
		GetBySurveyIDsFunc: func(ctx context.Context, surveyIDs []string, sede string) ([]models.Response, error) {
			assert.Equal(t, []string{"sv-a", "sv-b"}, surveyIDs)
			return responses, nil
		},
	}

	svc := NewAnalyticsService(surveyStore, responseStore, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// TestGetDashboardAggregation exercises the whole aggregation on one fixture
func TestGetDashboardAggregation(t *testing.T) {
	ctx := context.Background()
	svc := fixtureService(t)

	report, err := svc.GetDashboard(ctx, "owner-1", "")
	assert.NoError(t, err)

	t.Run("totals", func(t *testing.T) {
		assert.Equal(t, 4, report.TotalResponses)
		assert.Equal(t, 2, report.TotalSurveys)
		// Ratings 5, 5 and 1; the unrated response is excluded.
		assert.InDelta(t, 11.0/3.0, report.AvgSatisfaction, 0.001)
	})

	t.Run("nps from declared answers", func(t *testing.T) {
		// Scores 10 (promoter), 2 (detractor) and 8 (passive); the response
		// without an nps answer and without a rating does not vote.
		assert.InDelta(t, 0.0, report.GlobalNPS, 0.001)
	})

	t.Run("completion time excludes outliers", func(t *testing.T) {
		// 30min kept, 2h discarded as abandoned.
		assert.InDelta(t, 1800.0, report.AvgCompletionTime, 0.001)
	})

	t.Run("location performance partitions the response set", func(t *testing.T) {
		assert.Len(t, report.LocationPerformance, 3)

		total := 0
		for _, lp := range report.LocationPerformance {
			total += lp.Responses
		}
		assert.Equal(t, report.TotalResponses, total)

		assert.Equal(t, "Centro", report.LocationPerformance[0].Sede)
		assert.Equal(t, 2, report.LocationPerformance[0].Responses)
		assert.InDelta(t, 5.0, report.LocationPerformance[0].Satisfaction, 0.001)
		// Untagged responses land in the default sede.
		assert.Equal(t, "General", report.LocationPerformance[1].Sede)
		assert.Equal(t, "Norte", report.LocationPerformance[2].Sede)
	})

	t.Run("risk analysis", func(t *testing.T) {
		assert.Len(t, report.RiskAnalysis, 3)

		byTarget := make(map[string]RiskFactor)
		for _, rf := range report.RiskAnalysis {
			byTarget[rf.Target] = rf
		}
		assert.Equal(t, RiskLow, byTarget["Centro"].RiskLevel)
		assert.Equal(t, "Rendimiento estable", byTarget["Centro"].Reason)
		assert.Equal(t, RiskHigh, byTarget["Norte"].RiskLevel)

		// High severity sorts first.
		assert.Equal(t, RiskHigh, report.RiskAnalysis[0].RiskLevel)
		assert.Equal(t, RiskLow, report.RiskAnalysis[2].RiskLevel)
	})

	t.Run("satisfaction drivers", func(t *testing.T) {
		assert.Len(t, report.SatisfactionDrivers, 2)

		// Té deviates further from the mean than Café.
		assert.Equal(t, "Té", report.SatisfactionDrivers[0].Driver)
		assert.InDelta(t, 1.0-11.0/3.0, report.SatisfactionDrivers[0].Impact, 0.001)
		assert.Equal(t, "Café", report.SatisfactionDrivers[1].Driver)
		assert.InDelta(t, 5.0-11.0/3.0, report.SatisfactionDrivers[1].Impact, 0.001)
	})

	t.Run("customer clusters from comment keywords", func(t *testing.T) {
		assert.Len(t, report.CustomerClusters, 2)
		assert.Equal(t, "Atención", report.CustomerClusters[0].Tag)
		assert.Equal(t, "Servicio", report.CustomerClusters[1].Tag)
		assert.Equal(t, 1, report.CustomerClusters[0].Count)
	})

	t.Run("top surveys", func(t *testing.T) {
		assert.Len(t, report.TopSurveys, 2)
		assert.Equal(t, "Experiencia", report.TopSurveys[0].Name)
		assert.Equal(t, 3, report.TopSurveys[0].Responses)
		assert.InDelta(t, 11.0/3.0, report.TopSurveys[0].Rating, 0.001)
		assert.Equal(t, "Sucursal Norte", report.TopSurveys[1].Name)
		assert.Equal(t, 0.0, report.TopSurveys[1].Rating)
	})

	t.Run("responses by day covers the trailing week", func(t *testing.T) {
		assert.Len(t, report.ResponsesByDay, 7)
		assert.Equal(t, "Dom", report.ResponsesByDay[0].Day)
		assert.Equal(t, "Sáb", report.ResponsesByDay[6].Day)
		// Two responses today, one yesterday; the 10-day-old one is outside
		// the window.
		assert.Equal(t, 2, report.ResponsesByDay[6].Responses)
		assert.Equal(t, 1, report.ResponsesByDay[5].Responses)

		total := 0
		for _, dc := range report.ResponsesByDay {
			total += dc.Responses
		}
		assert.Equal(t, 3, total)
	})

	t.Run("hourly distribution counts every response", func(t *testing.T) {
		assert.Len(t, report.HourlyDistribution, 24)
		assert.Equal(t, "0:00", report.HourlyDistribution[0].Hour)

		total := 0
		for _, hc := range report.HourlyDistribution {
			total += hc.Responses
		}
		assert.Equal(t, 4, total)
		assert.Equal(t, 2, report.HourlyDistribution[10].Responses)
		assert.Equal(t, 1, report.HourlyDistribution[11].Responses)
	})

	t.Run("heatmap has a cell per day and hour", func(t *testing.T) {
		assert.Len(t, report.HeatmapData, 7*24)

		var found bool
		for _, cell := range report.HeatmapData {
			if cell.Day == "Sáb" && cell.Hour == 11 {
				found = true
				assert.InDelta(t, 5.0, cell.Satisfaction, 0.001)
			}
		}
		assert.True(t, found)
	})
}

// TestGetDashboardIdempotent verifies recomputation yields identical output
func TestGetDashboardIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := fixtureService(t)

	first, err := svc.GetDashboard(ctx, "owner-1", "")
	assert.NoError(t, err)
	second, err := svc.GetDashboard(ctx, "owner-1", "")
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestNPSFallback tests the derived-rating vote for responses without a
// declared nps answer
func TestNPSFallback(t *testing.T) {
	ctx := context.Background()

	surveys := []models.Survey{{ID: "sv-a", Name: "Rápida"}}
	responses := []models.Response{
		{ID: "r1", SurveyID: "sv-a", Rating: 5, CreatedAt: fixedNow},
		{ID: "r2", SurveyID: "sv-a", Rating: 4, CreatedAt: fixedNow},
		{ID: "r3", SurveyID: "sv-a", Rating: 2, CreatedAt: fixedNow},
		{ID: "r4", SurveyID: "sv-a", Rating: 3.5, CreatedAt: fixedNow},
		{ID: "r5", SurveyID: "sv-a", Rating: 0, CreatedAt: fixedNow},
	}

	surveyStore := &mocks.MockSurveyStore{
		GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Survey, error) {
			return surveys, nil
		},
	}
	responseStore := &mocks.MockResponseStore{
		GetBySurveyIDsFunc: func(ctx context.Context, surveyIDs []string, sede string) ([]models.Response, error) {
			return responses, nil
		},
	}

	svc := NewAnalyticsService(surveyStore, responseStore, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }

	report, err := svc.GetDashboard(ctx, "owner-1", "")
	assert.NoError(t, err)

	// 2 promoters (>=4), 1 detractor (<=3), 1 passive; the unrated response
	// does not vote. (2-1)/4 * 100.
	assert.InDelta(t, 25.0, report.GlobalNPS, 0.001)
	assert.GreaterOrEqual(t, report.GlobalNPS, -100.0)
	assert.LessOrEqual(t, report.GlobalNPS, 100.0)
}

// TestRiskDrop covers a good location with a fresh satisfaction drop
func TestRiskDrop(t *testing.T) {
	ctx := context.Background()

	surveys := []models.Survey{{ID: "sv-a", Name: "Experiencia"}}
	responses := []models.Response{
		// Strong history, older than 24h.
		{ID: "r1", SurveyID: "sv-a", Sede: "Centro", Rating: 5, CreatedAt: fixedNow.Add(-30 * time.Hour)},
		{ID: "r2", SurveyID: "sv-a", Sede: "Centro", Rating: 5, CreatedAt: fixedNow.Add(-40 * time.Hour)},
		{ID: "r3", SurveyID: "sv-a", Sede: "Centro", Rating: 5, CreatedAt: fixedNow.Add(-50 * time.Hour)},
		// Fresh bad day.
		{ID: "r4", SurveyID: "sv-a", Sede: "Centro", Rating: 3, CreatedAt: fixedNow.Add(-2 * time.Hour)},
	}

	surveyStore := &mocks.MockSurveyStore{
		GetByOwnerFunc: func(ctx context.Context, ownerID string) ([]models.Survey, error) {
			return surveys, nil
		},
	}
	responseStore := &mocks.MockResponseStore{
		GetBySurveyIDsFunc: func(ctx context.Context, surveyIDs []string, sede string) ([]models.Response, error) {
			return responses, nil
		},
	}

	svc := NewAnalyticsService(surveyStore, responseStore, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }

	report, err := svc.GetDashboard(ctx, "owner-1", "")
	assert.NoError(t, err)

	assert.Len(t, report.RiskAnalysis, 1)
	assert.Equal(t, "Centro", report.RiskAnalysis[0].Target)
	assert.Equal(t, RiskHigh, report.RiskAnalysis[0].RiskLevel)
	assert.Equal(t, "Caída drástica de satisfacción en las últimas 24h", report.RiskAnalysis[0].Reason)
}
