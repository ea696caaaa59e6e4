package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/TayyabArif/Firtz/internal/models"
)

// resultCacheCap bounds the per-brand result cache. Older entries fall
// off once the cap is reached; detailed_results keeps the full history.
const resultCacheCap = 50

type brandRepo struct {
	db *sqlx.DB
}

type brandRow struct {
	BrandID                string          `db:"brand_id"`
	UserID                 string          `db:"user_id"`
	CompanyName            string          `db:"company_name"`
	Domain                 string          `db:"domain"`
	Competitors            json.RawMessage `db:"competitors"`
	Queries                json.RawMessage `db:"queries"`
	QueryProcessingResults json.RawMessage `db:"query_processing_results"`
	ScheduleCron           string          `db:"schedule_cron"`
	LastProcessedAt        *time.Time      `db:"last_processed_at"`
	UpdatedAt              time.Time       `db:"updated_at"`
}

func (row *brandRow) toModel() (*models.Brand, error) {
	b := &models.Brand{
		ID:              row.BrandID,
		UserID:          row.UserID,
		CompanyName:     row.CompanyName,
		Domain:          row.Domain,
		ScheduleCron:    row.ScheduleCron,
		LastProcessedAt: row.LastProcessedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if len(row.Competitors) > 0 {
		if err := json.Unmarshal(row.Competitors, &b.Competitors); err != nil {
			return nil, fmt.Errorf("decoding competitors for brand %s: %w", row.BrandID, err)
		}
	}
	if len(row.Queries) > 0 {
		if err := json.Unmarshal(row.Queries, &b.Queries); err != nil {
			return nil, fmt.Errorf("decoding queries for brand %s: %w", row.BrandID, err)
		}
	}
	if len(row.QueryProcessingResults) > 0 {
		if err := json.Unmarshal(row.QueryProcessingResults, &b.QueryProcessingResults); err != nil {
			return nil, fmt.Errorf("decoding cached results for brand %s: %w", row.BrandID, err)
		}
	}
	return b, nil
}

func (r *brandRepo) Get(ctx context.Context, brandID string) (*models.Brand, error) {
	var row brandRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM brands WHERE brand_id = $1`, brandID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting brand %s: %w", brandID, err)
	}
	return row.toModel()
}

func (r *brandRepo) ListScheduled(ctx context.Context) ([]*models.Brand, error) {
	var rows []brandRow
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM brands WHERE schedule_cron <> ''`)
	if err != nil {
		return nil, fmt.Errorf("listing scheduled brands: %w", err)
	}
	brands := make([]*models.Brand, 0, len(rows))
	for i := range rows {
		b, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, nil
}

// MergeResults reads the current cache, folds in the session results
// and writes the capped cache back inside one transaction.
func (r *brandRepo) MergeResults(ctx context.Context, brandID, sessionID string, results []models.ProcessingResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning merge transaction: %w", err)
	}
	defer tx.Rollback()

	var raw json.RawMessage
	err = tx.GetContext(ctx, &raw,
		`SELECT query_processing_results FROM brands WHERE brand_id = $1 FOR UPDATE`, brandID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading result cache for brand %s: %w", brandID, err)
	}

	var existing []models.ProcessingResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &existing); err != nil {
			return fmt.Errorf("decoding result cache for brand %s: %w", brandID, err)
		}
	}

	merged := mergeSessionResults(existing, results, sessionID)
	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encoding result cache for brand %s: %w", brandID, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE brands SET query_processing_results = $2, updated_at = NOW() WHERE brand_id = $1`,
		brandID, encoded)
	if err != nil {
		return fmt.Errorf("writing result cache for brand %s: %w", brandID, err)
	}
	return tx.Commit()
}

// mergeSessionResults drops any previous rows from the same session,
// appends the incoming rows, sorts newest first and caps the cache.
func mergeSessionResults(existing, incoming []models.ProcessingResult, sessionID string) []models.ProcessingResult {
	merged := make([]models.ProcessingResult, 0, len(existing)+len(incoming))
	for _, row := range existing {
		if row.ProcessingSessionID != sessionID {
			merged = append(merged, row)
		}
	}
	merged = append(merged, incoming...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})

	if len(merged) > resultCacheCap {
		merged = merged[:resultCacheCap]
	}
	return merged
}

// DeleteQuery removes every query matching q on all three fields. It
// reports whether a matching row existed.
func (r *brandRepo) DeleteQuery(ctx context.Context, brandID string, q models.Query) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	var raw json.RawMessage
	err = tx.GetContext(ctx, &raw, `SELECT queries FROM brands WHERE brand_id = $1 FOR UPDATE`, brandID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("reading queries for brand %s: %w", brandID, err)
	}

	var queries []models.Query
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &queries); err != nil {
			return false, fmt.Errorf("decoding queries for brand %s: %w", brandID, err)
		}
	}

	kept := make([]models.Query, 0, len(queries))
	removed := false
	for _, candidate := range queries {
		if candidate == q {
			removed = true
			continue
		}
		kept = append(kept, candidate)
	}
	if !removed {
		return false, nil
	}

	encoded, err := json.Marshal(kept)
	if err != nil {
		return false, fmt.Errorf("encoding queries for brand %s: %w", brandID, err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE brands SET queries = $2, updated_at = NOW() WHERE brand_id = $1`,
		brandID, encoded)
	if err != nil {
		return false, fmt.Errorf("writing queries for brand %s: %w", brandID, err)
	}
	return true, tx.Commit()
}

func (r *brandRepo) TouchProcessed(ctx context.Context, brandID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE brands SET last_processed_at = NOW(), updated_at = NOW() WHERE brand_id = $1`,
		brandID)
	if err != nil {
		return fmt.Errorf("touching brand %s: %w", brandID, err)
	}
	return nil
}
