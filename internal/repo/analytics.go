package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/TayyabArif/Firtz/internal/models"
)

type analyticsRepo struct {
	db *sqlx.DB
}

type brandAnalyticsRow struct {
	BrandID                   string          `db:"brand_id"`
	UserID                    string          `db:"user_id"`
	BrandName                 string          `db:"brand_name"`
	Domain                    string          `db:"domain"`
	LastSessionID             string          `db:"last_session_id"`
	LastSessionTimestamp      *time.Time      `db:"last_session_timestamp"`
	TotalQueries              int             `db:"total_queries"`
	TotalBrandMentions        int             `db:"total_brand_mentions"`
	TotalDomainCitations      int             `db:"total_domain_citations"`
	TotalCitations            int             `db:"total_citations"`
	QueriesWithBrandMention   int             `db:"queries_with_brand_mention"`
	QueriesWithDomainCitation int             `db:"queries_with_domain_citation"`
	MentionsByProvider        json.RawMessage `db:"mentions_by_provider"`
	CitationsByProvider       json.RawMessage `db:"citations_by_provider"`
	UpdatedAt                 time.Time       `db:"updated_at"`
}

func (row *brandAnalyticsRow) toModel() (*models.BrandAnalytics, error) {
	a := &models.BrandAnalytics{
		BrandID:                   row.BrandID,
		UserID:                    row.UserID,
		BrandName:                 row.BrandName,
		Domain:                    row.Domain,
		LastSessionID:             row.LastSessionID,
		TotalQueries:              row.TotalQueries,
		TotalBrandMentions:        row.TotalBrandMentions,
		TotalDomainCitations:      row.TotalDomainCitations,
		TotalCitations:            row.TotalCitations,
		QueriesWithBrandMention:   row.QueriesWithBrandMention,
		QueriesWithDomainCitation: row.QueriesWithDomainCitation,
		UpdatedAt:                 row.UpdatedAt,
	}
	if row.LastSessionTimestamp != nil {
		a.LastSessionTimestamp = *row.LastSessionTimestamp
	}
	if len(row.MentionsByProvider) > 0 {
		if err := json.Unmarshal(row.MentionsByProvider, &a.MentionsByProvider); err != nil {
			return nil, fmt.Errorf("decoding mention counts for brand %s: %w", row.BrandID, err)
		}
	}
	if len(row.CitationsByProvider) > 0 {
		if err := json.Unmarshal(row.CitationsByProvider, &a.CitationsByProvider); err != nil {
			return nil, fmt.Errorf("decoding citation counts for brand %s: %w", row.BrandID, err)
		}
	}
	return a, nil
}

func (r *analyticsRepo) GetBrandAnalytics(ctx context.Context, brandID string) (*models.BrandAnalytics, error) {
	var row brandAnalyticsRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM brand_analytics WHERE brand_id = $1`, brandID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting analytics for brand %s: %w", brandID, err)
	}
	return row.toModel()
}

// MergeBrandAnalytics adds per-session increments into the running
// totals. The last_session_id guard makes reapplying the same session
// a no-op, so a crashed-and-retried aggregation cannot double count.
func (r *analyticsRepo) MergeBrandAnalytics(ctx context.Context, inc *models.BrandAnalytics) error {
	mentions, err := json.Marshal(inc.MentionsByProvider)
	if err != nil {
		return fmt.Errorf("encoding mention counts: %w", err)
	}
	citations, err := json.Marshal(inc.CitationsByProvider)
	if err != nil {
		return fmt.Errorf("encoding citation counts: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO brand_analytics (
			brand_id, user_id, brand_name, domain, last_session_id,
			last_session_timestamp, total_queries, total_brand_mentions,
			total_domain_citations, total_citations, queries_with_brand_mention,
			queries_with_domain_citation, mentions_by_provider,
			citations_by_provider, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		ON CONFLICT (brand_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			brand_name = EXCLUDED.brand_name,
			domain = EXCLUDED.domain,
			last_session_id = EXCLUDED.last_session_id,
			last_session_timestamp = EXCLUDED.last_session_timestamp,
			total_queries = brand_analytics.total_queries + EXCLUDED.total_queries,
			total_brand_mentions = brand_analytics.total_brand_mentions + EXCLUDED.total_brand_mentions,
			total_domain_citations = brand_analytics.total_domain_citations + EXCLUDED.total_domain_citations,
			total_citations = brand_analytics.total_citations + EXCLUDED.total_citations,
			queries_with_brand_mention = brand_analytics.queries_with_brand_mention + EXCLUDED.queries_with_brand_mention,
			queries_with_domain_citation = brand_analytics.queries_with_domain_citation + EXCLUDED.queries_with_domain_citation,
			mentions_by_provider = jsonb_build_object(
				'chatgpt', COALESCE((brand_analytics.mentions_by_provider->>'chatgpt')::int, 0) + COALESCE((EXCLUDED.mentions_by_provider->>'chatgpt')::int, 0),
				'gemini', COALESCE((brand_analytics.mentions_by_provider->>'gemini')::int, 0) + COALESCE((EXCLUDED.mentions_by_provider->>'gemini')::int, 0),
				'perplexity', COALESCE((brand_analytics.mentions_by_provider->>'perplexity')::int, 0) + COALESCE((EXCLUDED.mentions_by_provider->>'perplexity')::int, 0)
			),
			citations_by_provider = jsonb_build_object(
				'chatgpt', COALESCE((brand_analytics.citations_by_provider->>'chatgpt')::int, 0) + COALESCE((EXCLUDED.citations_by_provider->>'chatgpt')::int, 0),
				'gemini', COALESCE((brand_analytics.citations_by_provider->>'gemini')::int, 0) + COALESCE((EXCLUDED.citations_by_provider->>'gemini')::int, 0),
				'perplexity', COALESCE((brand_analytics.citations_by_provider->>'perplexity')::int, 0) + COALESCE((EXCLUDED.citations_by_provider->>'perplexity')::int, 0)
			),
			updated_at = NOW()
		WHERE brand_analytics.last_session_id <> EXCLUDED.last_session_id`,
		inc.BrandID, inc.UserID, inc.BrandName, inc.Domain, inc.LastSessionID,
		inc.LastSessionTimestamp, inc.TotalQueries, inc.TotalBrandMentions,
		inc.TotalDomainCitations, inc.TotalCitations, inc.QueriesWithBrandMention,
		inc.QueriesWithDomainCitation, mentions, citations)
	if err != nil {
		return fmt.Errorf("merging analytics for brand %s: %w", inc.BrandID, err)
	}
	return nil
}

type competitorAnalyticsRow struct {
	BrandID              string          `db:"brand_id"`
	UserID               string          `db:"user_id"`
	BrandName            string          `db:"brand_name"`
	Domain               string          `db:"domain"`
	LastSessionID        string          `db:"last_session_id"`
	LastSessionTimestamp *time.Time      `db:"last_session_timestamp"`
	Competitors          json.RawMessage `db:"competitors"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

func (r *analyticsRepo) GetCompetitorAnalytics(ctx context.Context, brandID string) (*models.CompetitorAnalytics, error) {
	var row competitorAnalyticsRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM competitor_analytics WHERE brand_id = $1`, brandID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting competitor analytics for brand %s: %w", brandID, err)
	}

	a := &models.CompetitorAnalytics{
		BrandID:       row.BrandID,
		UserID:        row.UserID,
		BrandName:     row.BrandName,
		Domain:        row.Domain,
		LastSessionID: row.LastSessionID,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.LastSessionTimestamp != nil {
		a.LastSessionTimestamp = *row.LastSessionTimestamp
	}
	if len(row.Competitors) > 0 {
		if err := json.Unmarshal(row.Competitors, &a.Competitors); err != nil {
			return nil, fmt.Errorf("decoding competitor stats for brand %s: %w", row.BrandID, err)
		}
	}
	return a, nil
}

// MergeCompetitorAnalytics folds session increments into the stored
// per-competitor stats. The competitor map needs Go-side merging, so
// this runs read-modify-write under a row lock with the same session
// guard as the brand merge.
func (r *analyticsRepo) MergeCompetitorAnalytics(ctx context.Context, inc *models.CompetitorAnalytics) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning competitor merge: %w", err)
	}
	defer tx.Rollback()

	var row competitorAnalyticsRow
	err = tx.GetContext(ctx, &row,
		`SELECT * FROM competitor_analytics WHERE brand_id = $1 FOR UPDATE`, inc.BrandID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading competitor analytics for brand %s: %w", inc.BrandID, err)
	}

	merged := inc.Competitors
	if err == nil {
		if row.LastSessionID == inc.LastSessionID {
			return tx.Commit()
		}
		var existing map[string]models.CompetitorStats
		if len(row.Competitors) > 0 {
			if err := json.Unmarshal(row.Competitors, &existing); err != nil {
				return fmt.Errorf("decoding competitor stats for brand %s: %w", inc.BrandID, err)
			}
		}
		merged = mergeCompetitorStats(existing, inc.Competitors)
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encoding competitor stats: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO competitor_analytics (
			brand_id, user_id, brand_name, domain, last_session_id,
			last_session_timestamp, competitors, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (brand_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			brand_name = EXCLUDED.brand_name,
			domain = EXCLUDED.domain,
			last_session_id = EXCLUDED.last_session_id,
			last_session_timestamp = EXCLUDED.last_session_timestamp,
			competitors = EXCLUDED.competitors,
			updated_at = NOW()`,
		inc.BrandID, inc.UserID, inc.BrandName, inc.Domain, inc.LastSessionID,
		inc.LastSessionTimestamp, encoded)
	if err != nil {
		return fmt.Errorf("merging competitor analytics for brand %s: %w", inc.BrandID, err)
	}
	return tx.Commit()
}

// mergeCompetitorStats adds incoming counts onto existing ones. The
// visibility score and top provider reflect the latest session since
// they are ratios, not counters.
func mergeCompetitorStats(existing, incoming map[string]models.CompetitorStats) map[string]models.CompetitorStats {
	merged := make(map[string]models.CompetitorStats, len(existing)+len(incoming))
	for name, stats := range existing {
		merged[name] = stats
	}
	for name, inc := range incoming {
		cur := merged[name]
		cur.TotalMentions += inc.TotalMentions
		cur.VisibilityScore = inc.VisibilityScore
		if inc.TopProvider != "" {
			cur.TopProvider = inc.TopProvider
		}
		if inc.Domain != "" {
			cur.Domain = inc.Domain
		}
		merged[name] = cur
	}
	return merged
}
