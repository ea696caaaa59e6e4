// services/interfaces.go
package services

import (
	"context"
	"errors"

	"github.com/TayyabArif/Firtz/internal/models"
)

var (
	// ErrNoQueries is returned when a job is started for a brand with
	// an empty query list.
	ErrNoQueries = errors.New("brand has no queries to process")
	// ErrJobConflict is returned when the brand already has a job that
	// has not reached a terminal state.
	ErrJobConflict = errors.New("a job is already running for this brand")
	// ErrForbidden is returned when a caller touches another user's
	// brand or job.
	ErrForbidden = errors.New("resource belongs to another user")
)

// Dispatcher fans one query out to every configured answer engine and
// returns the normalized per-provider results. Provider failures are
// embedded in the result set, never returned as errors.
type Dispatcher interface {
	RunQuery(ctx context.Context, brand *models.Brand, query models.Query) models.ProviderResultSet
}

// Orchestrator owns the background job lifecycle.
type Orchestrator interface {
	// StartJob validates the request, reserves credits and spawns the
	// background run. The returned job is in the pending state.
	StartJob(ctx context.Context, user *models.UserProfile, brandID string) (*models.Job, error)
	// GetJob returns the job if it belongs to the given user.
	GetJob(ctx context.Context, userID, jobID string) (*models.Job, error)
}
