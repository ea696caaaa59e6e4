package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/TayyabArif/Firtz/internal/models"
)

type resultsRepo struct {
	db *sqlx.DB
}

// DetailedResult is one raw per-query outcome kept for auditing. The
// brand cache is capped; this table is not.
type DetailedResult struct {
	SessionID string
	JobID     string
	UserID    string
	BrandID   string
	Query     string
	Keyword   string
	Category  string
	Results   models.ProviderResultSet
	CreatedAt time.Time
}

func (r *resultsRepo) SaveDetailed(ctx context.Context, row *DetailedResult) error {
	encoded, err := json.Marshal(row.Results)
	if err != nil {
		return fmt.Errorf("encoding detailed results: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO detailed_results (session_id, job_id, user_id, brand_id, query, keyword, category, results, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		row.SessionID, row.JobID, row.UserID, row.BrandID,
		row.Query, row.Keyword, row.Category, encoded, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving detailed result for session %s: %w", row.SessionID, err)
	}
	return nil
}
