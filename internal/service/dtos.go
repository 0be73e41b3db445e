package service

import "github.com/pulsometrics/analytics-server/internal/repository/models"

type LocationPerformance struct {
	Sede         string  `json:"sede"`
	Responses    int     `json:"responses"`
	Satisfaction float64 `json:"satisfaction"`
}

type DayCount struct {
	Day       string `json:"day"`
	Responses int    `json:"responses"`
}

type HourCount struct {
	Hour      string `json:"hour"`
	Responses int    `json:"responses"`
}

type TopSurvey struct {
	Name      string  `json:"name"`
	Responses int     `json:"responses"`
	Rating    float64 `json:"rating"`
}

// SatisfactionDriver is an answer value whose presence correlates with a
// deviation from the global mean rating. Impact is signed: segment mean minus
// global mean.
type SatisfactionDriver struct {
	Driver string  `json:"driver"`
	Impact float64 `json:"impact"`
}

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

type RiskFactor struct {
	Target    string `json:"target"`
	RiskLevel string `json:"riskLevel"`
	Reason    string `json:"reason"`
}

type HeatmapCell struct {
	Day          string  `json:"day"`
	Hour         int     `json:"hour"`
	Satisfaction float64 `json:"satisfaction"`
}

type CustomerCluster struct {
	Tag       string `json:"tag"`
	Sentiment string `json:"sentiment"`
	Count     int    `json:"count"`
}

// DashboardReport is the full global analytics report. Every numeric field is
// zero and every slice empty (never nil) when there is no data behind it.
type DashboardReport struct {
	TotalResponses      int                   `json:"totalResponses"`
	AvgSatisfaction     float64               `json:"avgSatisfaction"`
	TotalSurveys        int                   `json:"totalSurveys"`
	LocationPerformance []LocationPerformance `json:"locationPerformance"`
	ResponsesByDay      []DayCount            `json:"responsesByDay"`
	TopSurveys          []TopSurvey           `json:"topSurveys"`
	GlobalNPS           float64               `json:"globalNps"`
	AvgCompletionTime   float64               `json:"avgCompletionTime"`
	HourlyDistribution  []HourCount           `json:"hourlyDistribution"`
	SatisfactionDrivers []SatisfactionDriver  `json:"satisfactionDrivers"`
	RiskAnalysis        []RiskFactor          `json:"riskAnalysis"`
	HeatmapData         []HeatmapCell         `json:"heatmapData"`
	CustomerClusters    []CustomerCluster     `json:"customerClusters"`
}

type TextSample struct {
	Text string `json:"text"`
	Date string `json:"date"`
	Sede string `json:"sede"`
}

type OptionCount struct {
	Name       string `json:"name"`
	Value      int    `json:"value"`
	Percentage int    `json:"percentage"`
}

type NPSBreakdown struct {
	Promoters  int `json:"promoters"`
	Passives   int `json:"passives"`
	Detractors int `json:"detractors"`
}

// QuestionResult carries one question's breakdown. Exactly one of Options,
// Samples and NPS is populated, decided by the question's declared type;
// questions with zero answers keep their shape with zeroed values.
type QuestionResult struct {
	QuestionID string              `json:"questionId"`
	Title      string              `json:"title"`
	Type       models.QuestionType `json:"type"`
	Total      int                 `json:"total"`
	Options    []OptionCount       `json:"options,omitempty"`
	Samples    []TextSample        `json:"samples,omitempty"`
	NPS        *NPSBreakdown       `json:"nps,omitempty"`
}

type RatingBucket struct {
	Rating     string `json:"rating"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type NPSSegment struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// ResultsReport is the per-question breakdown for a single survey.
type ResultsReport struct {
	SurveyID           string           `json:"surveyId"`
	SurveyName         string           `json:"surveyName"`
	TotalResponses     int              `json:"totalResponses"`
	AvgRating          float64          `json:"avgRating"`
	RatingDistribution []RatingBucket   `json:"ratingDistribution"`
	NPSData            []NPSSegment     `json:"npsData"`
	ResponsesByDay     []DayCount       `json:"responsesByDay"`
	QuestionResults    []QuestionResult `json:"questionResults"`
}

type QuotaStatus struct {
	Allowed bool  `json:"allowed"`
	Limit   int64 `json:"limit"`
	Current int64 `json:"current"`
}
