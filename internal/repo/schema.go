package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied at startup. Statements are idempotent so restarts
// against an existing database are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id      TEXT PRIMARY KEY,
		email        TEXT NOT NULL DEFAULT '',
		display_name TEXT NOT NULL DEFAULT '',
		credits      INTEGER NOT NULL DEFAULT 0,
		admin        BOOLEAN NOT NULL DEFAULT FALSE,
		api_token    TEXT NOT NULL UNIQUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS brands (
		brand_id                 TEXT PRIMARY KEY,
		user_id                  TEXT NOT NULL REFERENCES users(user_id),
		company_name             TEXT NOT NULL,
		domain                   TEXT NOT NULL DEFAULT '',
		competitors              JSONB NOT NULL DEFAULT '[]',
		queries                  JSONB NOT NULL DEFAULT '[]',
		query_processing_results JSONB NOT NULL DEFAULT '[]',
		schedule_cron            TEXT NOT NULL DEFAULT '',
		last_processed_at        TIMESTAMPTZ,
		updated_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		job_id            TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		brand_id          TEXT NOT NULL,
		status            TEXT NOT NULL,
		total_queries     INTEGER NOT NULL DEFAULT 0,
		processed_queries INTEGER NOT NULL DEFAULT 0,
		current_query     TEXT NOT NULL DEFAULT '',
		credits_used      INTEGER NOT NULL DEFAULT 0,
		total_results     INTEGER NOT NULL DEFAULT 0,
		error_message     TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		started_at        TIMESTAMPTZ,
		completed_at      TIMESTAMPTZ,
		failed_at         TIMESTAMPTZ,
		last_updated      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_brand_active
		ON jobs (user_id, brand_id) WHERE status NOT IN ('completed', 'failed')`,
	`CREATE TABLE IF NOT EXISTS brand_analytics (
		brand_id                     TEXT PRIMARY KEY,
		user_id                      TEXT NOT NULL,
		brand_name                   TEXT NOT NULL DEFAULT '',
		domain                       TEXT NOT NULL DEFAULT '',
		last_session_id              TEXT NOT NULL DEFAULT '',
		last_session_timestamp       TIMESTAMPTZ,
		total_queries                INTEGER NOT NULL DEFAULT 0,
		total_brand_mentions         INTEGER NOT NULL DEFAULT 0,
		total_domain_citations       INTEGER NOT NULL DEFAULT 0,
		total_citations              INTEGER NOT NULL DEFAULT 0,
		queries_with_brand_mention   INTEGER NOT NULL DEFAULT 0,
		queries_with_domain_citation INTEGER NOT NULL DEFAULT 0,
		mentions_by_provider         JSONB NOT NULL DEFAULT '{}',
		citations_by_provider        JSONB NOT NULL DEFAULT '{}',
		updated_at                   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS competitor_analytics (
		brand_id               TEXT PRIMARY KEY,
		user_id                TEXT NOT NULL,
		brand_name             TEXT NOT NULL DEFAULT '',
		domain                 TEXT NOT NULL DEFAULT '',
		last_session_id        TEXT NOT NULL DEFAULT '',
		last_session_timestamp TIMESTAMPTZ,
		competitors            JSONB NOT NULL DEFAULT '{}',
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS detailed_results (
		id         BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		job_id     TEXT NOT NULL,
		user_id    TEXT NOT NULL,
		brand_id   TEXT NOT NULL,
		query      TEXT NOT NULL,
		keyword    TEXT NOT NULL DEFAULT '',
		category   TEXT NOT NULL DEFAULT '',
		results    JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_detailed_results_session
		ON detailed_results (session_id)`,
}

// EnsureSchema creates the tables the service needs.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
