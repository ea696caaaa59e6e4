package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/TayyabArif/Firtz/internal/models"
)

type jobRepo struct {
	db *sqlx.DB
}

// JobUpdate carries the columns one progress write may change. Nil
// fields are left untouched.
type JobUpdate struct {
	Status           *models.JobStatus
	ProcessedQueries *int
	CurrentQuery     *string
	CreditsUsed      *int
	TotalResults     *int
	Error            *string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	FailedAt         *time.Time
}

// Create inserts the job. The unique partial index on active jobs
// makes the insert itself the arbiter when two starts race for the
// same brand; the loser gets ErrActiveJobExists.
func (r *jobRepo) Create(ctx context.Context, job *models.Job) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO jobs (job_id, user_id, brand_id, status, total_queries,
			processed_queries, current_query, credits_used, total_results,
			error_message, created_at, last_updated)
		 VALUES (:job_id, :user_id, :brand_id, :status, :total_queries,
			:processed_queries, :current_query, :credits_used, :total_results,
			:error_message, :created_at, :last_updated)`, job)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "idx_jobs_brand_active" {
		return ErrActiveJobExists
	}
	if err != nil {
		return fmt.Errorf("creating job %s: %w", job.ID, err)
	}
	return nil
}

func (r *jobRepo) Get(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	err := r.db.GetContext(ctx, &job, `SELECT * FROM jobs WHERE job_id = $1`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting job %s: %w", jobID, err)
	}
	return &job, nil
}

// Update refuses to touch terminal jobs so a late progress write from a
// finished run cannot resurrect it.
func (r *jobRepo) Update(ctx context.Context, jobID string, updates JobUpdate) error {
	setClauses := []string{"last_updated = NOW()"}
	args := map[string]interface{}{"job_id": jobID}

	add := func(column, param string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = :%s", column, param))
		args[param] = value
	}

	if updates.Status != nil {
		add("status", "status", *updates.Status)
	}
	if updates.ProcessedQueries != nil {
		add("processed_queries", "processed_queries", *updates.ProcessedQueries)
	}
	if updates.CurrentQuery != nil {
		add("current_query", "current_query", *updates.CurrentQuery)
	}
	if updates.CreditsUsed != nil {
		add("credits_used", "credits_used", *updates.CreditsUsed)
	}
	if updates.TotalResults != nil {
		add("total_results", "total_results", *updates.TotalResults)
	}
	if updates.Error != nil {
		add("error_message", "error_message", *updates.Error)
	}
	if updates.StartedAt != nil {
		add("started_at", "started_at", *updates.StartedAt)
	}
	if updates.CompletedAt != nil {
		add("completed_at", "completed_at", *updates.CompletedAt)
	}
	if updates.FailedAt != nil {
		add("failed_at", "failed_at", *updates.FailedAt)
	}

	query := fmt.Sprintf(
		`UPDATE jobs SET %s WHERE job_id = :job_id AND status NOT IN ('completed', 'failed')`,
		strings.Join(setClauses, ", "))

	res, err := r.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", jobID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking job update result: %w", err)
	}
	if affected == 0 {
		if _, err := r.Get(ctx, jobID); err != nil {
			return err
		}
		return ErrJobTerminal
	}
	return nil
}

func (r *jobRepo) GetActiveForBrand(ctx context.Context, userID, brandID string) (*models.Job, error) {
	var job models.Job
	err := r.db.GetContext(ctx, &job,
		`SELECT * FROM jobs
		 WHERE user_id = $1 AND brand_id = $2 AND status NOT IN ('completed', 'failed')
		 ORDER BY created_at DESC LIMIT 1`, userID, brandID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting active job for brand %s: %w", brandID, err)
	}
	return &job, nil
}
