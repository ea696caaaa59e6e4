package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/TayyabArif/Firtz/internal/models"
)

type userRepo struct {
	db *sqlx.DB
}

func (r *userRepo) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var u models.UserProfile
	err := r.db.GetContext(ctx, &u,
		`SELECT user_id, email, display_name, credits, admin, api_token, created_at
		 FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", userID, err)
	}
	return &u, nil
}

func (r *userRepo) GetByToken(ctx context.Context, token string) (*models.UserProfile, error) {
	var u models.UserProfile
	err := r.db.GetContext(ctx, &u,
		`SELECT user_id, email, display_name, credits, admin, api_token, created_at
		 FROM users WHERE api_token = $1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by token: %w", err)
	}
	return &u, nil
}

// DeductCredits uses a conditional update so concurrent deductions
// cannot drive the balance negative.
func (r *userRepo) DeductCredits(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("deduction amount must be positive, got %d", amount)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET credits = credits - $2 WHERE user_id = $1 AND credits >= $2`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("deducting %d credits from user %s: %w", amount, userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deduction result: %w", err)
	}
	if affected == 0 {
		// Either the user is missing or the balance is short. The
		// distinction matters to callers, so look again.
		if _, err := r.GetProfile(ctx, userID); err != nil {
			return err
		}
		return ErrInsufficientCredits
	}
	return nil
}

func (r *userRepo) AddCredits(ctx context.Context, userID string, amount int) (*models.UserProfile, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET credits = credits + $2 WHERE user_id = $1`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("adding %d credits to user %s: %w", amount, userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking credit result: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return r.GetProfile(ctx, userID)
}

func (r *userRepo) List(ctx context.Context) ([]*models.UserProfile, error) {
	var users []*models.UserProfile
	err := r.db.SelectContext(ctx, &users,
		`SELECT user_id, email, display_name, credits, admin, api_token, created_at
		 FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}
