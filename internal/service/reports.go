package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pulsometrics/analytics-server/internal/repository"
	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

var ErrReportNotFound = errors.New("report not found")

// SedeAllReports is the sentinel location filter meaning "every sede" in
// report definitions.
const SedeAllReports = "Todas"

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var exportBaseHeaders = []string{"Fecha", "Sede", "Rating"}

// ReportService manages report documents and builds response exports.
type ReportService struct {
	reports   ReportStore
	surveys   SurveyStore
	responses ResponseStore
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewReportService(reports ReportStore, surveys SurveyStore, responses ResponseStore, logger *zap.Logger) *ReportService {
	if reports == nil || surveys == nil || responses == nil {
		panic("stores must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &ReportService{
		reports:   reports,
		surveys:   surveys,
		responses: responses,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ReportInput defines a new report.
type ReportInput struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Format    string   `json:"format"`
	SurveyIDs []string `json:"surveyIds"`
	Sedes     []string `json:"sedes"`
	Scheduled bool     `json:"scheduled"`
}

// ListReports returns the owner's reports, newest first.
func (s *ReportService) ListReports(ctx context.Context, ownerID string) ([]models.Report, error) {
	reports, err := s.reports.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return reports, nil
}

// CreateReport stores a report definition. Immediate reports get their
// metrics computed right away; scheduled ones stay pending until the
// scheduler materializes them.
func (s *ReportService) CreateReport(ctx context.Context, ownerID string, input ReportInput) (models.Report, error) {
	if input.Name == "" {
		return models.Report{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	format := input.Format
	if format == "" {
		format = FormatCSV
	}

	report := models.Report{
		ID:        s.newID(),
		OwnerID:   ownerID,
		Name:      input.Name,
		Type:      input.Type,
		Status:    models.ReportStatusScheduled,
		Format:    format,
		SurveyIDs: input.SurveyIDs,
		Sedes:     input.Sedes,
		CreatedAt: s.now(),
	}

	if !input.Scheduled {
		metrics, err := s.computeMetrics(ctx, report)
		if err != nil {
			return models.Report{}, err
		}
		report.Status = models.ReportStatusCompleted
		report.Metrics = &metrics
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return models.Report{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("report created",
		zap.String("report_id", report.ID),
		zap.String("owner_id", ownerID),
		zap.String("status", report.Status))

	return report, nil
}

// DeleteReport removes a report document.
func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	if err := s.reports.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReportNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

// MaterializeScheduled computes metrics for every pending scheduled report
// and marks it completed. Returns the number of reports processed.
func (s *ReportService) MaterializeScheduled(ctx context.Context) (int, error) {
	pending, err := s.reports.GetByStatus(ctx, models.ReportStatusScheduled)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	done := 0
	for _, report := range pending {
		metrics, err := s.computeMetrics(ctx, report)
		if err != nil {
			s.logger.Error("scheduled report failed",
				zap.String("report_id", report.ID), zap.Error(err))
			return done, err
		}
		if err := s.reports.SetCompleted(ctx, report.ID, metrics); err != nil {
			return done, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		done++
	}
	return done, nil
}

// FilteredResponses fetches all responses for the given surveys, restricted
// to the given sedes. An empty sede list, or one containing the "Todas"
// sentinel, means no location restriction.
func (s *ReportService) FilteredResponses(ctx context.Context, surveyIDs, sedes []string) ([]models.Response, error) {
	if len(surveyIDs) == 0 {
		return []models.Response{}, nil
	}

	responses, err := s.responses.GetBySurveyIDs(ctx, surveyIDs, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if len(sedes) == 0 || contains(sedes, SedeAllReports) {
		return responses, nil
	}

	filtered := make([]models.Response, 0, len(responses))
	for _, r := range responses {
		if contains(sedes, r.Sede) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// Export renders the filtered responses in the requested format.
func (s *ReportService) Export(ctx context.Context, surveyIDs, sedes []string, format string) ([]byte, error) {
	responses, err := s.FilteredResponses(ctx, surveyIDs, sedes)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV, "":
		return exportCSV(responses)
	case FormatXLSX:
		return exportXLSX(responses)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidInput, format)
	}
}

func (s *ReportService) computeMetrics(ctx context.Context, report models.Report) (models.ReportMetrics, error) {
	if len(report.SurveyIDs) == 0 {
		return models.ReportMetrics{}, nil
	}

	var surveys []models.Survey
	for _, id := range report.SurveyIDs {
		sv, err := s.surveys.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return models.ReportMetrics{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		surveys = append(surveys, sv)
	}

	responses, err := s.FilteredResponses(ctx, report.SurveyIDs, report.Sedes)
	if err != nil {
		return models.ReportMetrics{}, err
	}

	// The dashboard aggregation already derives everything a report summary
	// needs; reuse it instead of keeping a second counting path.
	dashboard := buildDashboard(surveys, responses, s.now())
	return models.ReportMetrics{
		Responses:       dashboard.TotalResponses,
		AvgSatisfaction: dashboard.AvgSatisfaction,
		NPS:             dashboard.GlobalNPS,
	}, nil
}

// answerColumns collects the union of answer keys across responses so every
// export row has the same width, in a stable order.
func answerColumns(responses []models.Response) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range responses {
		for k := range r.Answers {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func exportRow(r models.Response, answerKeys []string) []string {
	sede := r.Sede
	if sede == "" {
		sede = models.DefaultSede
	}
	row := []string{
		r.CreatedAt.Format("02/01/2006"),
		sede,
		fmt.Sprintf("%.1f", r.Rating),
	}
	for _, key := range answerKeys {
		ans, ok := r.Answers[key]
		switch {
		case !ok:
			row = append(row, "")
		case ans.Text != "":
			row = append(row, ans.Text)
		default:
			row = append(row, fmt.Sprintf("%g", ans.Score))
		}
	}
	return row
}

func exportCSV(responses []models.Response) ([]byte, error) {
	answerKeys := answerColumns(responses)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(append(append([]string{}, exportBaseHeaders...), answerKeys...)); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range responses {
		if err := w.Write(exportRow(r, answerKeys)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func exportXLSX(responses []models.Response) ([]byte, error) {
	answerKeys := answerColumns(responses)
	headers := append(append([]string{}, exportBaseHeaders...), answerKeys...)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Respuestas"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("set header cell: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header cell: %w", err)
		}
	}

	for i, r := range responses {
		row := exportRow(r, answerKeys)
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("set cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
