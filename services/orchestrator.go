// services/orchestrator.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TayyabArif/Firtz/internal/config"
	"github.com/TayyabArif/Firtz/internal/models"
	"github.com/TayyabArif/Firtz/internal/repo"
)

type orchestrator struct {
	cfg        *config.Config
	repos      *repo.Manager
	dispatcher Dispatcher
	runner     *Runner
	logger     *zap.Logger
}

func NewOrchestrator(cfg *config.Config, repos *repo.Manager, dispatcher Dispatcher, runner *Runner, logger *zap.Logger) Orchestrator {
	return &orchestrator{
		cfg:        cfg,
		repos:      repos,
		dispatcher: dispatcher,
		runner:     runner,
		logger:     logger,
	}
}

func newID(prefix string) string {
	frag := strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), frag)
}

// StartJob validates ownership and queries, takes the upfront credit
// charge, records the pending job and hands the run to the background
// runner. Credits are charged for the whole batch before any provider
// call is made.
func (o *orchestrator) StartJob(ctx context.Context, user *models.UserProfile, brandID string) (*models.Job, error) {
	brand, err := o.repos.Brands.Get(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if brand.UserID != user.UserID {
		return nil, ErrForbidden
	}
	if len(brand.Queries) == 0 {
		return nil, ErrNoQueries
	}

	if _, err := o.repos.Jobs.GetActiveForBrand(ctx, user.UserID, brandID); err == nil {
		return nil, ErrJobConflict
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	cost := len(brand.Queries) * o.cfg.CreditsPerQuery
	if err := o.repos.Users.DeductCredits(ctx, user.UserID, cost); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:           newID("job"),
		UserID:       user.UserID,
		BrandID:      brandID,
		Status:       models.JobStatusPending,
		TotalQueries: len(brand.Queries),
		CreditsUsed:  cost,
		CreatedAt:    now,
		LastUpdated:  now,
	}
	if err := o.repos.Jobs.Create(ctx, job); err != nil {
		// The charge already happened; give it back rather than
		// leaving the user paying for a job that never existed.
		if _, refundErr := o.repos.Users.AddCredits(ctx, user.UserID, cost); refundErr != nil {
			o.logger.Error("failed to refund credits after job create failure",
				zap.String("user_id", user.UserID),
				zap.Int("credits", cost),
				zap.Error(refundErr))
		}
		if errors.Is(err, repo.ErrActiveJobExists) {
			// A concurrent start won the insert; this one is the loser.
			return nil, ErrJobConflict
		}
		return nil, err
	}

	jobID := job.ID
	spawnErr := o.runner.Go("job "+jobID, func(runCtx context.Context) {
		o.run(runCtx, jobID, brand)
	}, func(recovered any) {
		o.failJob(context.Background(), jobID, fmt.Sprintf("internal error: %v", recovered))
	})
	if spawnErr != nil {
		o.failJob(ctx, jobID, "service is shutting down")
		return nil, spawnErr
	}

	o.logger.Info("job started",
		zap.String("job_id", jobID),
		zap.String("brand_id", brandID),
		zap.String("user_id", user.UserID),
		zap.Int("queries", len(brand.Queries)),
		zap.Int("credits", cost))
	return job, nil
}

func (o *orchestrator) GetJob(ctx context.Context, userID, jobID string) (*models.Job, error) {
	job, err := o.repos.Jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, ErrForbidden
	}
	return job, nil
}

// run processes the whole batch. Per-query and per-provider failures
// are recorded and skipped; only faults of the pipeline itself, like a
// failed cache merge, fail the job.
func (o *orchestrator) run(ctx context.Context, jobID string, brand *models.Brand) {
	sessionID := newID("bg")
	sessionTS := time.Now().UTC()
	logger := o.logger.With(
		zap.String("job_id", jobID),
		zap.String("session_id", sessionID),
		zap.String("brand_id", brand.ID))

	processing := models.JobStatusProcessing
	started := time.Now().UTC()
	if err := o.repos.Jobs.Update(ctx, jobID, repo.JobUpdate{Status: &processing, StartedAt: &started}); err != nil {
		logger.Error("failed to mark job processing", zap.Error(err))
		// The job must reach a terminal status or the brand stays
		// locked behind the active-job guard.
		o.failJob(context.WithoutCancel(ctx), jobID, "failed to start processing: "+err.Error())
		return
	}

	results := make([]models.ProcessingResult, 0, len(brand.Queries))
	totalResults := 0

	for i, query := range brand.Queries {
		if err := ctx.Err(); err != nil {
			o.failJob(context.Background(), jobID, "processing interrupted: "+err.Error())
			return
		}

		current := query.Query
		if err := o.repos.Jobs.Update(ctx, jobID, repo.JobUpdate{CurrentQuery: &current}); err != nil {
			logger.Warn("failed to record current query", zap.Error(err))
		}

		set := o.dispatcher.RunQuery(ctx, brand, query)
		totalResults += countSuccesses(set)

		result := models.ProcessingResult{
			Date:                       time.Now().UTC(),
			ProcessingSessionID:        sessionID,
			ProcessingSessionTimestamp: sessionTS,
			Query:                      query.Query,
			Keyword:                    query.Keyword,
			Category:                   query.Category,
			Results:                    set,
		}
		results = append(results, result)

		if err := o.repos.Results.SaveDetailed(ctx, &repo.DetailedResult{
			SessionID: sessionID,
			JobID:     jobID,
			UserID:    brand.UserID,
			BrandID:   brand.ID,
			Query:     query.Query,
			Keyword:   query.Keyword,
			Category:  query.Category,
			Results:   set,
			CreatedAt: result.Date,
		}); err != nil {
			logger.Warn("failed to save detailed results", zap.Error(err))
		}

		processed := i + 1
		total := totalResults
		if err := o.repos.Jobs.Update(ctx, jobID, repo.JobUpdate{
			ProcessedQueries: &processed,
			TotalResults:     &total,
		}); err != nil {
			logger.Warn("failed to record progress", zap.Error(err))
		}

		// Pacing between queries keeps provider rate limits happy.
		// The delay separates consecutive queries only; nothing
		// follows the last one.
		if processed < len(brand.Queries) {
			select {
			case <-time.After(time.Duration(o.cfg.QueryDelayMs) * time.Millisecond):
			case <-ctx.Done():
			}
		}
	}

	// Final writes survive shutdown cancellation; the work is done and
	// dropping it here would lose the whole session.
	finishCtx := context.WithoutCancel(ctx)

	if err := o.repos.Brands.MergeResults(finishCtx, brand.ID, sessionID, results); err != nil {
		logger.Error("failed to merge session results", zap.Error(err))
		o.failJob(finishCtx, jobID, "failed to store results: "+err.Error())
		return
	}

	brandInc := AggregateBrandAnalytics(brand, sessionID, sessionTS, results)
	if err := o.repos.Analytics.MergeBrandAnalytics(finishCtx, brandInc); err != nil {
		logger.Error("failed to merge brand analytics", zap.Error(err))
		o.failJob(finishCtx, jobID, "failed to update analytics: "+err.Error())
		return
	}
	// Competitor analytics are reconstructible from detailed results,
	// so their failure does not fail the job.
	competitorInc := AggregateCompetitorAnalytics(brand, sessionID, sessionTS, results)
	if err := o.repos.Analytics.MergeCompetitorAnalytics(finishCtx, competitorInc); err != nil {
		logger.Warn("failed to merge competitor analytics", zap.Error(err))
	}

	if err := o.repos.Brands.TouchProcessed(finishCtx, brand.ID); err != nil {
		logger.Warn("failed to update brand processing timestamp", zap.Error(err))
	}

	completed := models.JobStatusCompleted
	completedAt := time.Now().UTC()
	processed := len(brand.Queries)
	total := totalResults
	empty := ""
	if err := o.repos.Jobs.Update(finishCtx, jobID, repo.JobUpdate{
		Status:           &completed,
		ProcessedQueries: &processed,
		TotalResults:     &total,
		CurrentQuery:     &empty,
		CompletedAt:      &completedAt,
	}); err != nil {
		logger.Error("failed to mark job completed", zap.Error(err))
		o.failJob(finishCtx, jobID, "failed to finalize job: "+err.Error())
		return
	}

	logger.Info("job completed",
		zap.Int("queries", len(brand.Queries)),
		zap.Int("successful_results", totalResults))
}

func (o *orchestrator) failJob(ctx context.Context, jobID, message string) {
	failed := models.JobStatusFailed
	failedAt := time.Now().UTC()
	if err := o.repos.Jobs.Update(ctx, jobID, repo.JobUpdate{
		Status:   &failed,
		Error:    &message,
		FailedAt: &failedAt,
	}); err != nil && !errors.Is(err, repo.ErrJobTerminal) {
		o.logger.Error("failed to mark job failed",
			zap.String("job_id", jobID),
			zap.Error(err))
	}
}

func countSuccesses(set models.ProviderResultSet) int {
	count := 0
	for _, pr := range []*models.ProviderResult{set.ChatGPT, set.Gemini, set.Perplexity} {
		if pr != nil && pr.Error == nil && pr.Response != "" {
			count++
		}
	}
	return count
}
