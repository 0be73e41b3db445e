package repository

import (
	"database/sql"
	"fmt"
)

// Migrate creates the storage schema if it does not exist yet. Surveys and
// responses keep their variable-shaped parts (questions, answers) as JSON
// columns, mirroring the document-store layout they were migrated from.
func Migrate(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS surveys (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		sede TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT 'es',
		status TEXT NOT NULL,
		questions TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_surveys_owner ON surveys(owner_id);

	CREATE TABLE IF NOT EXISTS responses (
		id TEXT PRIMARY KEY,
		survey_id TEXT NOT NULL,
		sede TEXT NOT NULL DEFAULT '',
		answers TEXT NOT NULL DEFAULT '{}',
		rating REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		started_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_responses_survey ON responses(survey_id);
	CREATE INDEX IF NOT EXISTS idx_responses_survey_sede ON responses(survey_id, sede);

	CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		manager TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_locations_owner ON locations(owner_id);

	CREATE TABLE IF NOT EXISTS users (
		uid TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		plan TEXT NOT NULL DEFAULT 'free',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		format TEXT NOT NULL DEFAULT 'csv',
		survey_ids TEXT NOT NULL DEFAULT '[]',
		sedes TEXT NOT NULL DEFAULT '[]',
		metrics TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_owner ON reports(owner_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
