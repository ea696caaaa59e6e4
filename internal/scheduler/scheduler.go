// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/TayyabArif/Firtz/internal/models"
	"github.com/TayyabArif/Firtz/internal/repo"
	"github.com/TayyabArif/Firtz/services"
)

// Scheduler re-processes brands that carry a cron expression. Each
// firing goes through the normal job path, so credits are charged and
// the active-job guard applies.
type Scheduler struct {
	repos   *repo.Manager
	orch    services.Orchestrator
	logger  *zap.Logger
	cron    *cron.Cron
	running bool
	mu      sync.Mutex
}

func New(repos *repo.Manager, orch services.Orchestrator, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		repos:  repos,
		orch:   orch,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start loads every scheduled brand and registers its cron entry.
// Brand schedules are read once at startup; a restart picks up changes.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	brands, err := s.repos.Brands.ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("loading scheduled brands: %w", err)
	}

	for _, brand := range brands {
		if err := s.register(brand); err != nil {
			s.logger.Error("failed to register brand schedule",
				zap.String("brand_id", brand.ID),
				zap.String("cron", brand.ScheduleCron),
				zap.Error(err))
		}
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", zap.Int("brands", len(brands)))
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) register(brand *models.Brand) error {
	brandID := brand.ID
	userID := brand.UserID
	_, err := s.cron.AddFunc(brand.ScheduleCron, func() {
		s.fire(brandID, userID)
	})
	return err
}

// fire starts one scheduled run. Conditions that are normal in steady
// state, like an active job or an empty wallet, are warnings rather
// than errors.
func (s *Scheduler) fire(brandID, userID string) {
	ctx := context.Background()

	user, err := s.repos.Users.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Error("scheduled run: failed to load brand owner",
			zap.String("brand_id", brandID),
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	job, err := s.orch.StartJob(ctx, user, brandID)
	switch {
	case err == nil:
		s.logger.Info("scheduled job started",
			zap.String("brand_id", brandID),
			zap.String("job_id", job.ID))
	case errors.Is(err, services.ErrJobConflict):
		s.logger.Warn("scheduled run skipped, job already active",
			zap.String("brand_id", brandID))
	case errors.Is(err, repo.ErrInsufficientCredits):
		s.logger.Warn("scheduled run skipped, insufficient credits",
			zap.String("brand_id", brandID),
			zap.String("user_id", userID))
	case errors.Is(err, services.ErrNoQueries):
		s.logger.Warn("scheduled run skipped, brand has no queries",
			zap.String("brand_id", brandID))
	default:
		s.logger.Error("scheduled run failed",
			zap.String("brand_id", brandID),
			zap.Error(err))
	}
}
