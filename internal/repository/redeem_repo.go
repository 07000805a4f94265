package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gacha_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RedeemRepository struct {
	db *pgxpool.Pool
}

func NewRedeemRepository(db *pgxpool.Pool) *RedeemRepository {
	return &RedeemRepository{db: db}
}

// GetByCodeForUpdateTx loads a code row with a row-level write lock, so
// every redemption of the same code serializes on it in addition to the
// code-level named lock.
func (r *RedeemRepository) GetByCodeForUpdateTx(ctx context.Context, tx pgx.Tx, code string) (*domain.RedeemCode, error) {
	var (
		c           domain.RedeemCode
		rewardsJSON []byte
	)
	err := tx.QueryRow(ctx,
		`SELECT id, code, rewards, max_uses, used_count, expires_at, is_active, created_at
		 FROM redeem_codes
		 WHERE code = $1
		 FOR UPDATE`, code,
	).Scan(&c.ID, &c.Code, &rewardsJSON, &c.MaxUses, &c.UsedCount, &c.ExpiresAt, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidCode
		}
		return nil, err
	}
	if err := json.Unmarshal(rewardsJSON, &c.Rewards); err != nil {
		return nil, fmt.Errorf("decode rewards for code %q: %w", code, err)
	}
	return &c, nil
}

// HasUsageTx reports whether the user already redeemed the code. The
// usage row's existence is the sole authority for "already redeemed".
func (r *RedeemRepository) HasUsageTx(ctx context.Context, tx pgx.Tx, codeID, userID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM code_usages WHERE code_id = $1 AND user_id = $2)`,
		codeID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *RedeemRepository) InsertUsageTx(ctx context.Context, tx pgx.Tx, codeID, userID int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO code_usages (code_id, user_id) VALUES ($1, $2)`,
		codeID, userID)
	return err
}

// SetUsageCountTx writes the counter computed from the locked row and
// deactivates the code when the cap is reached.
func (r *RedeemRepository) SetUsageCountTx(ctx context.Context, tx pgx.Tx, codeID int64, usedCount int, active bool) error {
	_, err := tx.Exec(ctx,
		`UPDATE redeem_codes SET used_count = $1, is_active = $2 WHERE id = $3`,
		usedCount, active, codeID)
	return err
}

// Create inserts a new code; used by seeding and admin tooling.
func (r *RedeemRepository) Create(ctx context.Context, c *domain.RedeemCode) error {
	rewardsJSON, err := json.Marshal(c.Rewards)
	if err != nil {
		return fmt.Errorf("encode rewards: %w", err)
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO redeem_codes (code, rewards, max_uses, expires_at, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		c.Code, rewardsJSON, c.MaxUses, c.ExpiresAt, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt)
}
