package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

var (
	ErrStorageFailure = errors.New("storage failure")
)

// Short Spanish weekday labels indexed by time.Weekday.
var spanishWeekdays = [7]string{"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"}

// Fixed vocabulary scanned for in free-text comments.
var topicKeywords = []string{
	"atención", "servicio", "precio", "comida", "limpieza", "tiempo", "espera", "calidad",
}

const (
	maxDrivers    = 5
	maxClusters   = 4
	maxTopSurveys = 5

	// Completion durations at or above this are treated as abandoned-and-resumed
	// forms and excluded from the average.
	maxCompletionSeconds = 3600
)

const (
	riskReasonStable   = "Rendimiento estable"
	riskReasonDrop     = "Caída drástica de satisfacción en las últimas 24h"
	riskReasonLowSat   = "Baja satisfacción histórica"
	deletedSurveyLabel = "Eliminada"
)

// AnalyticsService computes the global dashboard report from raw response
// records. Aggregation is a pure recomputation on every call; nothing is
// cached or written back.
type AnalyticsService struct {
	surveys   SurveyStore
	responses ResponseStore
	logger    *zap.Logger
	now       func() time.Time
}

func NewAnalyticsService(surveys SurveyStore, responses ResponseStore, logger *zap.Logger) *AnalyticsService {
	if surveys == nil || responses == nil {
		panic("stores must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &AnalyticsService{
		surveys:   surveys,
		responses: responses,
		logger:    logger,
		now:       time.Now,
	}
}

// GetDashboard builds the full analytics report for one owner. filterSede
// restricts the response set to an exact location match; "" or "all" means no
// filter. An owner with no surveys gets a fully zeroed report, not an error.
func (s *AnalyticsService) GetDashboard(ctx context.Context, ownerID, filterSede string) (DashboardReport, error) {
	surveys, err := s.surveys.GetByOwner(ctx, ownerID)
	if err != nil {
		return DashboardReport{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(surveys) == 0 {
		return emptyDashboardReport(), nil
	}

	ids := make([]string, len(surveys))
	for i, sv := range surveys {
		ids[i] = sv.ID
	}

	responses, err := s.responses.GetBySurveyIDs(ctx, ids, filterSede)
	if err != nil {
		return DashboardReport{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	report := buildDashboard(surveys, responses, s.now())

	s.logger.Info("dashboard aggregated",
		zap.String("owner_id", ownerID),
		zap.String("sede_filter", filterSede),
		zap.Int("surveys", len(surveys)),
		zap.Int("responses", len(responses)))

	return report, nil
}

type locationStats struct {
	responses       int
	ratingSum       float64
	ratedCount      int
	recentRatingSum float64
	recentCount     int
}

type ratingAgg struct {
	sum   float64
	count int
}

type driverKey struct {
	title  string
	answer string
}

type heatKey struct {
	day  string
	hour int
}

type surveyVolume struct {
	responses  int
	ratingSum  float64
	ratedCount int
}

// buildDashboard is the single-pass aggregation over the response set, with a
// few dependent post-passes for derived metrics. It never mutates its inputs.
func buildDashboard(surveys []models.Survey, responses []models.Response, now time.Time) DashboardReport {
	report := emptyDashboardReport()
	report.TotalSurveys = len(surveys)
	report.TotalResponses = len(responses)

	surveysByID := make(map[string]models.Survey, len(surveys))
	questionIndex := make(map[string]map[string]models.Question, len(surveys))
	for _, sv := range surveys {
		surveysByID[sv.ID] = sv
		byID := make(map[string]models.Question, len(sv.Questions))
		for _, q := range sv.Questions {
			byID[q.ID] = q
		}
		questionIndex[sv.ID] = byID
	}

	var (
		totalRatingSum  float64
		ratedCount      int
		promoters       int
		detractors      int
		npsCount        int
		completionSum   float64
		completionCount int
	)

	locations := make(map[string]*locationStats)
	var hourCounts [24]int
	dayCounts := make(map[string]int, 7)
	heat := make(map[heatKey]*ratingAgg)
	drivers := make(map[driverKey]*ratingAgg)
	topics := make(map[string]int)
	volumes := make(map[string]*surveyVolume)

	last24h := now.Add(-24 * time.Hour)
	dayLabels := trailingWeekLabels(now)
	windowStart := dayStart(now).AddDate(0, 0, -6)
	for _, label := range dayLabels {
		dayCounts[label] = 0
	}

	for _, r := range responses {
		rating := r.Rating

		if rating > 0 {
			totalRatingSum += rating
			ratedCount++
		}

		// NPS: a declared nps answer counts on the native 0-10 scale; a
		// response without one falls back to its derived 0-5 rating scalar.
		if score, ok := npsAnswer(r, surveysByID); ok {
			npsCount++
			if score >= 9 {
				promoters++
			} else if score <= 6 {
				detractors++
			}
		} else if rating > 0 {
			npsCount++
			if rating >= 4 {
				promoters++
			} else if rating <= 3 {
				detractors++
			}
		}

		if r.StartedAt != nil {
			elapsed := r.CreatedAt.Sub(*r.StartedAt).Seconds()
			if elapsed > 0 && elapsed < maxCompletionSeconds {
				completionSum += elapsed
				completionCount++
			}
		}

		sede := r.Sede
		if sede == "" {
			sede = models.DefaultSede
		}
		ls := locations[sede]
		if ls == nil {
			ls = &locationStats{}
			locations[sede] = ls
		}
		ls.responses++
		ls.ratingSum += rating
		if rating > 0 {
			ls.ratedCount++
		}
		if r.CreatedAt.After(last24h) {
			ls.recentRatingSum += rating
			if rating > 0 {
				ls.recentCount++
			}
		}

		hourCounts[r.CreatedAt.Hour()]++

		if !r.CreatedAt.Before(windowStart) {
			label := weekdayLabel(r.CreatedAt)
			if _, ok := dayCounts[label]; ok {
				dayCounts[label]++
			}
			hk := heatKey{day: label, hour: r.CreatedAt.Hour()}
			cell := heat[hk]
			if cell == nil {
				cell = &ratingAgg{}
				heat[hk] = cell
			}
			cell.sum += rating
			if rating > 0 {
				cell.count++
			}
		}

		if rating > 0 {
			questions := questionIndex[r.SurveyID]
			for qID, ans := range r.Answers {
				q, known := questions[qID]
				if known && q.Type == models.QuestionMultipleChoice && ans.Text != "" {
					k := driverKey{title: q.Title, answer: ans.Text}
					d := drivers[k]
					if d == nil {
						d = &ratingAgg{}
						drivers[k] = d
					}
					d.sum += rating
					d.count++
				}
				if qID == "comment" && len(ans.Text) > 5 {
					for _, word := range strings.Fields(strings.ToLower(ans.Text)) {
						for _, kw := range topicKeywords {
							if word == kw {
								topics[kw]++
							}
						}
					}
				}
			}
		}

		vol := volumes[r.SurveyID]
		if vol == nil {
			vol = &surveyVolume{}
			volumes[r.SurveyID] = vol
		}
		vol.responses++
		vol.ratingSum += rating
		if rating > 0 {
			vol.ratedCount++
		}
	}

	if ratedCount > 0 {
		report.AvgSatisfaction = totalRatingSum / float64(ratedCount)
	}
	if npsCount > 0 {
		report.GlobalNPS = float64(promoters-detractors) / float64(npsCount) * 100
	}
	if completionCount > 0 {
		report.AvgCompletionTime = completionSum / float64(completionCount)
	}

	report.LocationPerformance = locationPerformance(locations)
	report.RiskAnalysis = classifyRisk(report.LocationPerformance, locations)
	report.SatisfactionDrivers = rankDrivers(drivers, report.AvgSatisfaction)
	report.CustomerClusters = rankClusters(topics)
	report.TopSurveys = rankSurveys(volumes, surveysByID)

	for _, label := range dayLabels {
		report.ResponsesByDay = append(report.ResponsesByDay, DayCount{Day: label, Responses: dayCounts[label]})
	}
	for h := 0; h < 24; h++ {
		report.HourlyDistribution = append(report.HourlyDistribution, HourCount{
			Hour:      fmt.Sprintf("%d:00", h),
			Responses: hourCounts[h],
		})
	}
	for _, label := range dayLabels {
		for h := 0; h < 24; h++ {
			var satisfaction float64
			if cell := heat[heatKey{day: label, hour: h}]; cell != nil && cell.count > 0 {
				satisfaction = cell.sum / float64(cell.count)
			}
			report.HeatmapData = append(report.HeatmapData, HeatmapCell{
				Day:          label,
				Hour:         h,
				Satisfaction: satisfaction,
			})
		}
	}

	return report
}

func locationPerformance(locations map[string]*locationStats) []LocationPerformance {
	out := make([]LocationPerformance, 0, len(locations))
	for sede, ls := range locations {
		var satisfaction float64
		if ls.ratedCount > 0 {
			satisfaction = ls.ratingSum / float64(ls.ratedCount)
		}
		out = append(out, LocationPerformance{
			Sede:         sede,
			Responses:    ls.responses,
			Satisfaction: satisfaction,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Responses != out[j].Responses {
			return out[i].Responses > out[j].Responses
		}
		return out[i].Sede < out[j].Sede
	})
	return out
}

// classifyRisk compares each location's last-24h mean against its historical
// mean: it catches both chronically poor locations with fresh data and
// previously good locations experiencing a drop.
func classifyRisk(performance []LocationPerformance, locations map[string]*locationStats) []RiskFactor {
	out := make([]RiskFactor, 0, len(performance))
	for _, lp := range performance {
		ls := locations[lp.Sede]

		recent := lp.Satisfaction
		if ls != nil && ls.recentCount > 0 {
			recent = ls.recentRatingSum / float64(ls.recentCount)
		}

		level, reason := RiskLow, riskReasonStable
		switch {
		case recent < 3.0 || (lp.Satisfaction > 4 && recent < 3.5):
			level, reason = RiskHigh, riskReasonDrop
		case lp.Satisfaction < 3.5:
			level, reason = RiskMedium, riskReasonLowSat
		}

		out = append(out, RiskFactor{Target: lp.Sede, RiskLevel: level, Reason: reason})
	}

	weights := map[string]int{RiskHigh: 3, RiskMedium: 2, RiskLow: 1}
	sort.SliceStable(out, func(i, j int) bool {
		return weights[out[i].RiskLevel] > weights[out[j].RiskLevel]
	})
	return out
}

func rankDrivers(drivers map[driverKey]*ratingAgg, globalMean float64) []SatisfactionDriver {
	out := make([]SatisfactionDriver, 0, len(drivers))
	for k, d := range drivers {
		segmentMean := d.sum / float64(d.count)
		out = append(out, SatisfactionDriver{
			Driver: k.answer,
			Impact: segmentMean - globalMean,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Impact), math.Abs(out[j].Impact)
		if ai != aj {
			return ai > aj
		}
		return out[i].Driver < out[j].Driver
	})
	if len(out) > maxDrivers {
		out = out[:maxDrivers]
	}
	return out
}

func rankClusters(topics map[string]int) []CustomerCluster {
	out := make([]CustomerCluster, 0, len(topics))
	for tag, count := range topics {
		out = append(out, CustomerCluster{
			Tag:       capitalize(tag),
			Sentiment: "neutral",
			Count:     count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > maxClusters {
		out = out[:maxClusters]
	}
	return out
}

func rankSurveys(volumes map[string]*surveyVolume, surveysByID map[string]models.Survey) []TopSurvey {
	out := make([]TopSurvey, 0, len(volumes))
	for id, vol := range volumes {
		name := deletedSurveyLabel
		if sv, ok := surveysByID[id]; ok {
			name = sv.Name
		}
		var rating float64
		if vol.ratedCount > 0 {
			rating = vol.ratingSum / float64(vol.ratedCount)
		}
		out = append(out, TopSurvey{Name: name, Responses: vol.responses, Rating: rating})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Responses != out[j].Responses {
			return out[i].Responses > out[j].Responses
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > maxTopSurveys {
		out = out[:maxTopSurveys]
	}
	return out
}

// npsAnswer returns the first declared-nps answer of a response, in the
// survey's question order.
func npsAnswer(r models.Response, surveysByID map[string]models.Survey) (float64, bool) {
	sv, ok := surveysByID[r.SurveyID]
	if !ok {
		return 0, false
	}
	for _, q := range sv.Questions {
		if q.Type != models.QuestionNPS {
			continue
		}
		if ans, answered := r.Answers[q.ID]; answered {
			return ans.Score, true
		}
	}
	return 0, false
}

// trailingWeekLabels returns the weekday labels of the last 7 days, oldest
// first, ending today.
func trailingWeekLabels(now time.Time) []string {
	labels := make([]string, 0, 7)
	for i := 6; i >= 0; i-- {
		labels = append(labels, weekdayLabel(now.AddDate(0, 0, -i)))
	}
	return labels
}

func weekdayLabel(t time.Time) string {
	return spanishWeekdays[int(t.Weekday())]
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func emptyDashboardReport() DashboardReport {
	return DashboardReport{
		LocationPerformance: []LocationPerformance{},
		ResponsesByDay:      []DayCount{},
		TopSurveys:          []TopSurvey{},
		HourlyDistribution:  []HourCount{},
		SatisfactionDrivers: []SatisfactionDriver{},
		RiskAnalysis:        []RiskFactor{},
		HeatmapData:         []HeatmapCell{},
		CustomerClusters:    []CustomerCluster{},
	}
}
