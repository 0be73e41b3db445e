package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pulsometrics/analytics-server/internal/repository/models"
)

// queryChunkSize bounds the number of ids in a single IN clause. The storage
// backend this schema was migrated from capped contains-any-of queries at 30
// items, so callers could never observe larger batches.
const queryChunkSize = 30

// SedeAll is the sentinel meaning "do not filter by location".
const SedeAll = "all"

type ResponseRepository struct {
	db *sql.DB
}

func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// GetBySurveyIDs fetches every response belonging to any of the given surveys,
// optionally restricted to an exact sede match. The id set is partitioned into
// chunks and queried independently; results are concatenated. A failure on any
// chunk aborts the whole fetch.
func (r *ResponseRepository) GetBySurveyIDs(ctx context.Context, surveyIDs []string, sede string) ([]models.Response, error) {
	var all []models.Response
	for _, chunk := range chunkIDs(surveyIDs, queryChunkSize) {
		batch, err := r.queryChunk(ctx, chunk, sede)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

// GetBySurveyID fetches one survey's responses, newest first.
func (r *ResponseRepository) GetBySurveyID(ctx context.Context, surveyID string) ([]models.Response, error) {
	const query = `
		SELECT id, survey_id, sede, answers, rating, created_at, started_at
		FROM responses
		WHERE survey_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("query GetBySurveyID: %w", err)
	}
	defer rows.Close()

	return collectResponses(rows, "GetBySurveyID")
}

// Create inserts a new response document.
func (r *ResponseRepository) Create(ctx context.Context, resp models.Response) error {
	answers, err := json.Marshal(resp.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	var startedAt sql.NullString
	if resp.StartedAt != nil {
		startedAt = sql.NullString{String: resp.StartedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	const query = `
		INSERT INTO responses (id, survey_id, sede, answers, rating, created_at, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		resp.ID, resp.SurveyID, resp.Sede, string(answers), resp.Rating,
		resp.CreatedAt.UTC().Format(time.RFC3339), startedAt)
	if err != nil {
		return fmt.Errorf("exec Create response: %w", err)
	}
	return nil
}

// CountBySurveyIDs returns the total response count across the given surveys,
// for quota checks.
func (r *ResponseRepository) CountBySurveyIDs(ctx context.Context, surveyIDs []string) (int64, error) {
	var total int64
	for _, chunk := range chunkIDs(surveyIDs, queryChunkSize) {
		query := fmt.Sprintf(
			`SELECT COUNT(*) FROM responses WHERE survey_id IN (%s)`,
			placeholders(len(chunk)))

		var count int64
		if err := r.db.QueryRowContext(ctx, query, toAnySlice(chunk)...).Scan(&count); err != nil {
			return 0, fmt.Errorf("query CountBySurveyIDs: %w", err)
		}
		total += count
	}
	return total, nil
}

func (r *ResponseRepository) queryChunk(ctx context.Context, chunk []string, sede string) ([]models.Response, error) {
	query := fmt.Sprintf(`
		SELECT id, survey_id, sede, answers, rating, created_at, started_at
		FROM responses
		WHERE survey_id IN (%s)`, placeholders(len(chunk)))

	args := toAnySlice(chunk)
	if sede != "" && sede != SedeAll {
		query += ` AND sede = ?`
		args = append(args, sede)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query GetBySurveyIDs chunk: %w", err)
	}
	defer rows.Close()

	return collectResponses(rows, "GetBySurveyIDs")
}

func collectResponses(rows *sql.Rows, op string) ([]models.Response, error) {
	var responses []models.Response
	for rows.Next() {
		var resp models.Response
		var answers, createdAt string
		var startedAt sql.NullString

		if err := rows.Scan(&resp.ID, &resp.SurveyID, &resp.Sede, &answers,
			&resp.Rating, &createdAt, &startedAt); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", op, err)
		}

		if err := json.Unmarshal([]byte(answers), &resp.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers for response %s: %w", resp.ID, err)
		}
		ts, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for response %s: %w", resp.ID, err)
		}
		resp.CreatedAt = ts

		if startedAt.Valid {
			st, err := time.Parse(time.RFC3339, startedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse started_at for response %s: %w", resp.ID, err)
			}
			resp.StartedAt = &st
		}

		responses = append(responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return responses, nil
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toAnySlice(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
