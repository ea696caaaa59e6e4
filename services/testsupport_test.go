package services

import (
	"context"
	"sync"
	"time"

	"github.com/TayyabArif/Firtz/internal/models"
	"github.com/TayyabArif/Firtz/internal/repo"
)

// In-memory repository fakes mirroring the store semantics, shared by
// the orchestrator tests.

type fakeUsers struct {
	mu       sync.Mutex
	profiles map[string]*models.UserProfile
	deducted []int
}

func newFakeUsers(users ...*models.UserProfile) *fakeUsers {
	f := &fakeUsers{profiles: make(map[string]*models.UserProfile)}
	for _, u := range users {
		f.profiles[u.UserID] = u
	}
	return f
}

func (f *fakeUsers) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.profiles[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) GetByToken(_ context.Context, token string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.profiles {
		if u.APIToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUsers) DeductCredits(_ context.Context, userID string, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.profiles[userID]
	if !ok {
		return repo.ErrNotFound
	}
	if u.Credits < amount {
		return repo.ErrInsufficientCredits
	}
	u.Credits -= amount
	f.deducted = append(f.deducted, amount)
	return nil
}

func (f *fakeUsers) AddCredits(_ context.Context, userID string, amount int) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.profiles[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	u.Credits += amount
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) List(_ context.Context) ([]*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.UserProfile, 0, len(f.profiles))
	for _, u := range f.profiles {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

type fakeJobs struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
	// staleActiveLookup makes GetActiveForBrand miss a live job, the
	// way a lookup racing a concurrent insert would.
	staleActiveLookup bool
	// failStatus injects an error for updates requesting the given
	// status transition.
	failStatus map[models.JobStatus]error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: make(map[string]*models.Job)}
}

// Create enforces the same one-active-job-per-brand uniqueness the
// partial index enforces in postgres.
func (f *fakeJobs) Create(_ context.Context, job *models.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.jobs {
		if existing.UserID == job.UserID && existing.BrandID == job.BrandID && !existing.Status.IsTerminal() {
			return repo.ErrActiveJobExists
		}
	}
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobs) Get(_ context.Context, jobID string) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobs) Update(_ context.Context, jobID string, updates repo.JobUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return repo.ErrNotFound
	}
	if job.Status.IsTerminal() {
		return repo.ErrJobTerminal
	}
	if updates.Status != nil {
		if err := f.failStatus[*updates.Status]; err != nil {
			return err
		}
		job.Status = *updates.Status
	}
	if updates.ProcessedQueries != nil {
		job.ProcessedQueries = *updates.ProcessedQueries
	}
	if updates.CurrentQuery != nil {
		job.CurrentQuery = *updates.CurrentQuery
	}
	if updates.CreditsUsed != nil {
		job.CreditsUsed = *updates.CreditsUsed
	}
	if updates.TotalResults != nil {
		job.TotalResults = *updates.TotalResults
	}
	if updates.Error != nil {
		job.Error = *updates.Error
	}
	if updates.StartedAt != nil {
		job.StartedAt = updates.StartedAt
	}
	if updates.CompletedAt != nil {
		job.CompletedAt = updates.CompletedAt
	}
	if updates.FailedAt != nil {
		job.FailedAt = updates.FailedAt
	}
	job.LastUpdated = time.Now()
	return nil
}

func (f *fakeJobs) GetActiveForBrand(_ context.Context, userID, brandID string) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staleActiveLookup {
		return nil, repo.ErrNotFound
	}
	for _, job := range f.jobs {
		if job.UserID == userID && job.BrandID == brandID && !job.Status.IsTerminal() {
			copied := *job
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

type fakeBrands struct {
	mu         sync.Mutex
	brands     map[string]*models.Brand
	merged     map[string][]models.ProcessingResult
	mergeErr   error
	sessionIDs []string
}

func newFakeBrands(brands ...*models.Brand) *fakeBrands {
	f := &fakeBrands{
		brands: make(map[string]*models.Brand),
		merged: make(map[string][]models.ProcessingResult),
	}
	for _, b := range brands {
		f.brands[b.ID] = b
	}
	return f
}

func (f *fakeBrands) Get(_ context.Context, brandID string) (*models.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.brands[brandID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBrands) ListScheduled(_ context.Context) ([]*models.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Brand
	for _, b := range f.brands {
		if b.ScheduleCron != "" {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBrands) MergeResults(_ context.Context, brandID, sessionID string, results []models.ProcessingResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.merged[brandID] = append(f.merged[brandID], results...)
	f.sessionIDs = append(f.sessionIDs, sessionID)
	return nil
}

func (f *fakeBrands) DeleteQuery(_ context.Context, brandID string, q models.Query) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.brands[brandID]
	if !ok {
		return false, repo.ErrNotFound
	}
	kept := b.Queries[:0]
	removed := false
	for _, candidate := range b.Queries {
		if candidate == q {
			removed = true
			continue
		}
		kept = append(kept, candidate)
	}
	b.Queries = kept
	return removed, nil
}

func (f *fakeBrands) TouchProcessed(_ context.Context, brandID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.brands[brandID]; ok {
		now := time.Now()
		b.LastProcessedAt = &now
	}
	return nil
}

type fakeAnalytics struct {
	mu          sync.Mutex
	brand       []*models.BrandAnalytics
	competitors []*models.CompetitorAnalytics
	brandErr    error
}

func (f *fakeAnalytics) GetBrandAnalytics(_ context.Context, _ string) (*models.BrandAnalytics, error) {
	return nil, repo.ErrNotFound
}

func (f *fakeAnalytics) MergeBrandAnalytics(_ context.Context, inc *models.BrandAnalytics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.brandErr != nil {
		return f.brandErr
	}
	f.brand = append(f.brand, inc)
	return nil
}

func (f *fakeAnalytics) GetCompetitorAnalytics(_ context.Context, _ string) (*models.CompetitorAnalytics, error) {
	return nil, repo.ErrNotFound
}

func (f *fakeAnalytics) MergeCompetitorAnalytics(_ context.Context, inc *models.CompetitorAnalytics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.competitors = append(f.competitors, inc)
	return nil
}

type fakeResults struct {
	mu   sync.Mutex
	rows []*repo.DetailedResult
}

func (f *fakeResults) SaveDetailed(_ context.Context, row *repo.DetailedResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, row)
	return nil
}

// scriptedDispatcher returns canned result sets keyed by query text,
// falling back to an all-success set.
type scriptedDispatcher struct {
	mu      sync.Mutex
	byQuery map[string]models.ProviderResultSet
	calls   []string
}

func successfulSet(response string) models.ProviderResultSet {
	pr := func() *models.ProviderResult {
		return &models.ProviderResult{Response: response, Timestamp: time.Now()}
	}
	return models.ProviderResultSet{ChatGPT: pr(), Gemini: pr(), Perplexity: pr()}
}

func failedSet(message string) models.ProviderResultSet {
	pr := func() *models.ProviderResult {
		msg := message
		return &models.ProviderResult{Error: &msg, Timestamp: time.Now()}
	}
	return models.ProviderResultSet{ChatGPT: pr(), Gemini: pr(), Perplexity: pr()}
}

func (d *scriptedDispatcher) RunQuery(_ context.Context, _ *models.Brand, query models.Query) models.ProviderResultSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, query.Query)
	if set, ok := d.byQuery[query.Query]; ok {
		return set
	}
	return successfulSet("Nike is a leading brand. https://nike.com")
}
