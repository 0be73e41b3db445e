package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pulsometrics/analytics-server/internal/repository"
	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

var ErrQuotaExceeded = errors.New("plan quota exceeded")

// QuotaKind selects which plan limit a check runs against.
type QuotaKind string

const (
	QuotaSurveys   QuotaKind = "surveys"
	QuotaResponses QuotaKind = "responses"
)

type planLimits struct {
	surveys   int64
	responses int64
}

var limitsByPlan = map[string]planLimits{
	models.PlanFree: {surveys: 3, responses: 100},
	models.PlanPro:  {surveys: 50, responses: 5000},
}

// QuotaService compares an owner's live usage against their plan limits.
// Usage is counted fresh on every check; there is no cached counter to drift.
type QuotaService struct {
	surveys   SurveyStore
	responses ResponseStore
	users     UserStore
	logger    *zap.Logger
}

func NewQuotaService(surveys SurveyStore, responses ResponseStore, users UserStore, logger *zap.Logger) *QuotaService {
	if surveys == nil || responses == nil || users == nil {
		panic("stores must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &QuotaService{surveys: surveys, responses: responses, users: users, logger: logger}
}

// Check reports whether the owner may create one more item of the given kind.
// Owners without a stored profile are treated as free-plan.
func (s *QuotaService) Check(ctx context.Context, ownerID string, kind QuotaKind) (QuotaStatus, error) {
	plan := models.PlanFree
	profile, err := s.users.GetProfile(ctx, ownerID)
	switch {
	case err == nil:
		if _, known := limitsByPlan[profile.Plan]; known {
			plan = profile.Plan
		}
	case errors.Is(err, repository.ErrNotFound):
		// no profile yet, free tier
	default:
		return QuotaStatus{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	limits := limitsByPlan[plan]

	var current, limit int64
	switch kind {
	case QuotaSurveys:
		limit = limits.surveys
		current, err = s.surveys.CountByOwner(ctx, ownerID)
		if err != nil {
			return QuotaStatus{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	case QuotaResponses:
		limit = limits.responses
		surveys, err := s.surveys.GetByOwner(ctx, ownerID)
		if err != nil {
			return QuotaStatus{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		ids := make([]string, len(surveys))
		for i, sv := range surveys {
			ids[i] = sv.ID
		}
		current, err = s.responses.CountBySurveyIDs(ctx, ids)
		if err != nil {
			return QuotaStatus{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	default:
		return QuotaStatus{}, fmt.Errorf("unknown quota kind %q", kind)
	}

	status := QuotaStatus{
		Allowed: current < limit,
		Limit:   limit,
		Current: current,
	}
	if !status.Allowed {
		s.logger.Info("quota limit reached",
			zap.String("owner_id", ownerID),
			zap.String("kind", string(kind)),
			zap.String("plan", plan),
			zap.Int64("limit", limit))
	}
	return status, nil
}
