// internal/models/models.go
package models

import "time"

// JobStatus is the lifecycle state of a processing job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transitions are allowed.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Query is one user-authored prompt tied to a keyword and category.
// Queries are immutable and removed by exact-tuple match.
type Query struct {
	Query    string `json:"query"`
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// Brand is the tracked company plus its competitors and query list.
type Brand struct {
	ID                     string             `json:"id"`
	CompanyName            string             `json:"companyName"`
	Domain                 string             `json:"domain"`
	UserID                 string             `json:"userId"`
	Competitors            []string           `json:"competitors"`
	Queries                []Query            `json:"queries"`
	QueryProcessingResults []ProcessingResult `json:"queryProcessingResults"`
	ScheduleCron           string             `json:"scheduleCron,omitempty"`
	LastProcessedAt        *time.Time         `json:"lastProcessedAt,omitempty"`
	UpdatedAt              time.Time          `json:"updatedAt"`
}

// Job is the durable record tracking one background batch run. It is
// created pending, mutated only by the orchestrator, and frozen once it
// reaches a terminal status.
type Job struct {
	ID               string     `json:"id" db:"job_id"`
	UserID           string     `json:"userId" db:"user_id"`
	BrandID          string     `json:"brandId" db:"brand_id"`
	Status           JobStatus  `json:"status" db:"status"`
	TotalQueries     int        `json:"totalQueries" db:"total_queries"`
	ProcessedQueries int        `json:"processedQueries" db:"processed_queries"`
	CurrentQuery     string     `json:"currentQuery,omitempty" db:"current_query"`
	CreditsUsed      int        `json:"creditsUsed" db:"credits_used"`
	// TotalResults counts successful provider sub-results, not queries;
	// a fully successful three-query run yields 9.
	TotalResults     int        `json:"totalResults" db:"total_results"`
	Error            string     `json:"error,omitempty" db:"error_message"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	StartedAt        *time.Time `json:"startedAt,omitempty" db:"started_at"`
	CompletedAt      *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	FailedAt         *time.Time `json:"failedAt,omitempty" db:"failed_at"`
	LastUpdated      time.Time  `json:"lastUpdated" db:"last_updated"`
}

// Citation is a URL+label pair extracted from a provider response.
type Citation struct {
	URL    string `json:"url"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// ProviderResult is the normalized outcome of one provider call for one
// query. Optional fields are pointers so absent values stay out of the
// persisted JSON instead of being stripped by a generic sanitizer.
type ProviderResult struct {
	Response       string     `json:"response"`
	Timestamp      time.Time  `json:"timestamp"`
	Error          *string    `json:"error,omitempty"`
	ResponseTimeMs *int64     `json:"responseTime,omitempty"`
	Citations      []Citation `json:"citations,omitempty"`
	TokenCount     *int       `json:"tokenCount,omitempty"`
	WebSearchUsed  *bool      `json:"webSearchUsed,omitempty"`
	RealTimeData   *bool      `json:"realTimeData,omitempty"`
}

// ProviderResultSet holds the per-provider sub-results for one query.
// A failed provider still gets a filled-in entry carrying its error
// rather than an omitted key.
type ProviderResultSet struct {
	ChatGPT    *ProviderResult `json:"chatgpt,omitempty"`
	Gemini     *ProviderResult `json:"gemini,omitempty"`
	Perplexity *ProviderResult `json:"perplexity,omitempty"`
}

// ProcessingResult is the stored outcome of one query in one processing
// session across all providers.
type ProcessingResult struct {
	Date                       time.Time         `json:"date"`
	ProcessingSessionID        string            `json:"processingSessionId"`
	ProcessingSessionTimestamp time.Time         `json:"processingSessionTimestamp"`
	Query                      string            `json:"query"`
	Keyword                    string            `json:"keyword"`
	Category                   string            `json:"category"`
	Results                    ProviderResultSet `json:"results"`
}

// UserProfile is the credit-bearing account record.
type UserProfile struct {
	UserID      string    `json:"userId" db:"user_id"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Credits     int       `json:"credits" db:"credits"`
	Admin       bool      `json:"admin" db:"admin"`
	APIToken    string    `json:"-" db:"api_token"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// ProviderCounts is a per-provider tally.
type ProviderCounts struct {
	ChatGPT    int `json:"chatgpt"`
	Gemini     int `json:"gemini"`
	Perplexity int `json:"perplexity"`
}

// BrandAnalytics is the cumulative brand visibility record. Counter
// fields are per-session increments when produced by the aggregator and
// running totals once merged into storage.
type BrandAnalytics struct {
	UserID                    string         `json:"userId"`
	BrandID                   string         `json:"brandId"`
	BrandName                 string         `json:"brandName"`
	Domain                    string         `json:"domain"`
	LastSessionID             string         `json:"lastSessionId"`
	LastSessionTimestamp      time.Time      `json:"lastSessionTimestamp"`
	TotalQueries              int            `json:"totalQueries"`
	TotalBrandMentions        int            `json:"totalBrandMentions"`
	TotalDomainCitations      int            `json:"totalDomainCitations"`
	TotalCitations            int            `json:"totalCitations"`
	QueriesWithBrandMention   int            `json:"queriesWithBrandMention"`
	QueriesWithDomainCitation int            `json:"queriesWithDomainCitation"`
	MentionsByProvider        ProviderCounts `json:"mentionsByProvider"`
	CitationsByProvider       ProviderCounts `json:"citationsByProvider"`
	UpdatedAt                 time.Time      `json:"updatedAt"`
}

// CompetitorStats is the cumulative record for one competitor name.
type CompetitorStats struct {
	TotalMentions   int     `json:"totalMentions"`
	VisibilityScore float64 `json:"visibilityScore"`
	TopProvider     string  `json:"topProvider"`
	Domain          string  `json:"domain,omitempty"`
}

// CompetitorAnalytics maps competitor name to cumulative stats for one
// brand, merged additively across sessions.
type CompetitorAnalytics struct {
	UserID               string                     `json:"userId"`
	BrandID              string                     `json:"brandId"`
	BrandName            string                     `json:"brandName"`
	Domain               string                     `json:"domain"`
	LastSessionID        string                     `json:"lastSessionId"`
	LastSessionTimestamp time.Time                  `json:"lastSessionTimestamp"`
	Competitors          map[string]CompetitorStats `json:"competitors"`
	UpdatedAt            time.Time                  `json:"updatedAt"`
}

// Competitor pairs a competitor name with the optional aliases and
// domain the mention matcher also checks.
type Competitor struct {
	Name    string   `json:"name"`
	Domain  string   `json:"domain,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}
