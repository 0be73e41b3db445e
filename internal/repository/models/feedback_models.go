package models

import "time"

// QuestionType enumerates the supported survey question kinds.
type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionRating         QuestionType = "rating"
	QuestionNPS            QuestionType = "nps"
	QuestionLikert         QuestionType = "likert"
)

// Survey lifecycle states, as shown in the dashboard.
const (
	SurveyStatusPublished = "Publicada"
	SurveyStatusDraft     = "Borrador"
	SurveyStatusPaused    = "Pausada"
	SurveyStatusFinished  = "Finalizada"
)

// DefaultSede is the location bucket used when a response carries no sede tag.
const DefaultSede = "General"

type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Required    bool         `json:"required"`
	Options     []string     `json:"options,omitempty"`
}

type Survey struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Sede        string     `json:"sede"`
	Language    string     `json:"language"`
	Status      string     `json:"status"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Answer holds a single answer value. Which field is meaningful is decided by
// the declared type of the question it answers: Text for text, multiple_choice
// and likert questions, Score for rating (1-5) and nps (0-10) questions.
type Answer struct {
	Text  string  `json:"text,omitempty"`
	Score float64 `json:"score,omitempty"`
}

type Response struct {
	ID       string            `json:"id"`
	SurveyID string            `json:"surveyId"`
	Sede     string            `json:"sede"`
	Answers  map[string]Answer `json:"answers"`
	// Rating is a 0-5 scalar derived at submission time from the ratable
	// answers in the response. Zero means no ratable answer.
	Rating    float64    `json:"rating"`
	CreatedAt time.Time  `json:"createdAt"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

// Location lifecycle states.
const (
	LocationStatusActive   = "Activa"
	LocationStatusInactive = "Inactiva"
)

// Location is a physical sede. Responses and surveys reference it by name,
// not by id, so renames do not rewrite history.
type Location struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Manager   string    `json:"manager"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	// SurveysCount and ResponsesCount are derived at read time, never stored.
	SurveysCount   int `json:"surveysCount"`
	ResponsesCount int `json:"responsesCount"`
}

// Plan tiers. Billing itself lives in the payment gateway; only the tier flag
// is read here.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

type UserProfile struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"createdAt"`
}

// Report states.
const (
	ReportStatusCompleted  = "Completado"
	ReportStatusProcessing = "Procesando"
	ReportStatusScheduled  = "Programado"
)

type ReportMetrics struct {
	Responses       int     `json:"responses"`
	AvgSatisfaction float64 `json:"avgSatisfaction"`
	NPS             float64 `json:"nps"`
}

type Report struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"ownerId"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Status    string         `json:"status"`
	Format    string         `json:"format"`
	SurveyIDs []string       `json:"surveyIds"`
	Sedes     []string       `json:"sedes"`
	Metrics   *ReportMetrics `json:"metrics,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
