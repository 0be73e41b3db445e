package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/pulsometrics/analytics-server/internal/repository"
	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

var ErrSurveyNotFound = errors.New("survey not found")

// Likert questions always render on the fixed agreement scale, whatever the
// schema declares as options.
var likertScale = []string{
	"Muy en desacuerdo", "En desacuerdo", "Neutral", "De acuerdo", "Muy de acuerdo",
}

const maxTextSamples = 10

// ResultsService computes the per-question breakdown for a single survey.
type ResultsService struct {
	surveys   SurveyStore
	responses ResponseStore
	logger    *zap.Logger
}

func NewResultsService(surveys SurveyStore, responses ResponseStore, logger *zap.Logger) *ResultsService {
	if surveys == nil || responses == nil {
		panic("stores must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &ResultsService{surveys: surveys, responses: responses, logger: logger}
}

// GetSurveyResults scans a survey's responses against its question schema.
// Every question of the schema appears in the output, zero-answer ones with
// Total 0 and correctly shaped zeroed data.
func (s *ResultsService) GetSurveyResults(ctx context.Context, surveyID string) (ResultsReport, error) {
	survey, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ResultsReport{}, ErrSurveyNotFound
		}
		return ResultsReport{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	// Newest first, so text samples pick up the most recent comments.
	responses, err := s.responses.GetBySurveyID(ctx, surveyID)
	if err != nil {
		return ResultsReport{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	report := buildResults(survey, responses)

	s.logger.Info("survey results aggregated",
		zap.String("survey_id", surveyID),
		zap.Int("responses", len(responses)),
		zap.Int("questions", len(survey.Questions)))

	return report, nil
}

func buildResults(survey models.Survey, responses []models.Response) ResultsReport {
	report := ResultsReport{
		SurveyID:           survey.ID,
		SurveyName:         survey.Name,
		TotalResponses:     len(responses),
		RatingDistribution: []RatingBucket{},
		NPSData:            []NPSSegment{},
		ResponsesByDay:     []DayCount{},
		QuestionResults:    []QuestionResult{},
	}

	var (
		totalRating float64
		ratedCount  int
		// index 1..5; 0 unused
		ratingCounts [6]int

		promoters  int
		passives   int
		detractors int
		npsCount   int
	)

	for _, q := range survey.Questions {
		result := QuestionResult{
			QuestionID: q.ID,
			Title:      q.Title,
			Type:       q.Type,
		}

		switch q.Type {
		case models.QuestionText:
			result.Samples = []TextSample{}
			for _, r := range responses {
				ans, ok := r.Answers[q.ID]
				if !ok || ans.Text == "" {
					continue
				}
				result.Total++
				if len(result.Samples) < maxTextSamples {
					sede := r.Sede
					if sede == "" {
						sede = models.DefaultSede
					}
					result.Samples = append(result.Samples, TextSample{
						Text: ans.Text,
						Date: r.CreatedAt.Format("02/01/2006"),
						Sede: sede,
					})
				}
			}

		case models.QuestionMultipleChoice, models.QuestionLikert:
			options := q.Options
			if q.Type == models.QuestionLikert {
				options = likertScale
			}

			counts := make(map[string]int, len(options))
			for _, opt := range options {
				counts[opt] = 0
			}
			for _, r := range responses {
				ans, ok := r.Answers[q.ID]
				if !ok || ans.Text == "" {
					continue
				}
				if _, known := counts[ans.Text]; known {
					counts[ans.Text]++
					result.Total++
				}
			}

			result.Options = make([]OptionCount, 0, len(options))
			for _, opt := range options {
				result.Options = append(result.Options, OptionCount{
					Name:       opt,
					Value:      counts[opt],
					Percentage: percentage(counts[opt], result.Total),
				})
			}

		case models.QuestionRating:
			var counts [6]int
			for _, r := range responses {
				ans, ok := r.Answers[q.ID]
				if !ok || ans.Score <= 0 {
					continue
				}
				star := int(math.Round(ans.Score))
				if star < 1 || star > 5 {
					continue
				}
				counts[star]++
				result.Total++
				totalRating += ans.Score
				ratedCount++
				ratingCounts[star]++
			}

			result.Options = make([]OptionCount, 0, 5)
			for star := 5; star >= 1; star-- {
				result.Options = append(result.Options, OptionCount{
					Name:       fmt.Sprintf("%d ★", star),
					Value:      counts[star],
					Percentage: percentage(counts[star], result.Total),
				})
			}

		case models.QuestionNPS:
			var split NPSBreakdown
			for _, r := range responses {
				ans, ok := r.Answers[q.ID]
				if !ok {
					continue
				}
				result.Total++
				npsCount++
				switch {
				case ans.Score >= 9:
					split.Promoters++
					promoters++
				case ans.Score >= 7:
					split.Passives++
					passives++
				default:
					split.Detractors++
					detractors++
				}
			}
			result.NPS = &split
		}

		report.QuestionResults = append(report.QuestionResults, result)
	}

	if ratedCount > 0 {
		report.AvgRating = totalRating / float64(ratedCount)
	}

	for star := 5; star >= 1; star-- {
		report.RatingDistribution = append(report.RatingDistribution, RatingBucket{
			Rating:     fmt.Sprintf("%d estrellas", star),
			Count:      ratingCounts[star],
			Percentage: percentage(ratingCounts[star], report.TotalResponses),
		})
	}

	report.NPSData = append(report.NPSData,
		NPSSegment{Category: "Promotores", Count: promoters, Percentage: percentage(promoters, npsCount)},
		NPSSegment{Category: "Neutros", Count: passives, Percentage: percentage(passives, npsCount)},
		NPSSegment{Category: "Detractores", Count: detractors, Percentage: percentage(detractors, npsCount)},
	)

	dayCounts := make(map[string]int, 7)
	for _, r := range responses {
		dayCounts[weekdayLabel(r.CreatedAt)]++
	}
	for _, label := range spanishWeekdays {
		report.ResponsesByDay = append(report.ResponsesByDay, DayCount{
			Day:       label,
			Responses: dayCounts[label],
		})
	}

	return report
}

// percentage is round(part/total*100); 0 when total is 0, never a division by
// zero.
func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
