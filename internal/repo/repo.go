// internal/repo/repo.go
package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/TayyabArif/Firtz/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientCredits is returned when a deduction would take a
	// balance below zero.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrJobTerminal is returned when an update targets a job that has
	// already completed or failed.
	ErrJobTerminal = errors.New("job is in a terminal state")
	// ErrActiveJobExists is returned when creating a job would give a
	// brand a second non-terminal job.
	ErrActiveJobExists = errors.New("brand already has an active job")
)

// Users manages credit-bearing account records.
type Users interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	GetByToken(ctx context.Context, token string) (*models.UserProfile, error)
	// DeductCredits atomically subtracts amount if the balance covers
	// it, returning ErrInsufficientCredits otherwise.
	DeductCredits(ctx context.Context, userID string, amount int) error
	AddCredits(ctx context.Context, userID string, amount int) (*models.UserProfile, error)
	List(ctx context.Context) ([]*models.UserProfile, error)
}

// Jobs manages background job lifecycle records.
type Jobs interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, jobID string) (*models.Job, error)
	// Update applies the given column changes unless the job is already
	// terminal, in which case it returns ErrJobTerminal.
	Update(ctx context.Context, jobID string, updates JobUpdate) error
	// GetActiveForBrand returns the non-terminal job for a brand, or
	// ErrNotFound when none is running.
	GetActiveForBrand(ctx context.Context, userID, brandID string) (*models.Job, error)
}

// Brands manages brand records and their capped result cache.
type Brands interface {
	Get(ctx context.Context, brandID string) (*models.Brand, error)
	ListScheduled(ctx context.Context) ([]*models.Brand, error)
	// MergeResults folds a session's results into the brand cache:
	// rows from the same session replace their previous occurrence,
	// then the cache is sorted newest first and capped.
	MergeResults(ctx context.Context, brandID, sessionID string, results []models.ProcessingResult) error
	DeleteQuery(ctx context.Context, brandID string, q models.Query) (bool, error)
	TouchProcessed(ctx context.Context, brandID string) error
}

// Analytics manages cumulative brand and competitor analytics.
type Analytics interface {
	GetBrandAnalytics(ctx context.Context, brandID string) (*models.BrandAnalytics, error)
	// MergeBrandAnalytics adds the session increments to the stored
	// totals. Re-applying the session already recorded is a no-op.
	MergeBrandAnalytics(ctx context.Context, increments *models.BrandAnalytics) error
	GetCompetitorAnalytics(ctx context.Context, brandID string) (*models.CompetitorAnalytics, error)
	MergeCompetitorAnalytics(ctx context.Context, increments *models.CompetitorAnalytics) error
}

// Results is the append-only audit log of raw per-query outcomes.
type Results interface {
	SaveDetailed(ctx context.Context, row *DetailedResult) error
}

// Manager bundles the repositories behind one construction point.
type Manager struct {
	Users     Users
	Jobs      Jobs
	Brands    Brands
	Analytics Analytics
	Results   Results
}

func NewManager(db *sqlx.DB) *Manager {
	return &Manager{
		Users:     &userRepo{db: db},
		Jobs:      &jobRepo{db: db},
		Brands:    &brandRepo{db: db},
		Analytics: &analyticsRepo{db: db},
		Results:   &resultsRepo{db: db},
	}
}
