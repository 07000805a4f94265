package repository

import (
	"context"

	"gacha_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GachaHistoryRepository struct {
	db *pgxpool.Pool
}

func NewGachaHistoryRepository(db *pgxpool.Pool) *GachaHistoryRepository {
	return &GachaHistoryRepository{db: db}
}

func (r *GachaHistoryRepository) CreateTx(ctx context.Context, tx pgx.Tx, d *domain.GachaDraw) error {
	return tx.QueryRow(ctx,
		`INSERT INTO gacha_history (user_id, power_id, combat_power, rank, pity_triggered)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		d.UserID, d.PowerID, d.CombatPower, d.Rank, d.PityTriggered,
	).Scan(&d.ID, &d.CreatedAt)
}

// RecentByUser returns a user's latest draws.
func (r *GachaHistoryRepository) RecentByUser(ctx context.Context, userID int64, limit int) ([]*domain.GachaDraw, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, power_id, combat_power, rank, pity_triggered, created_at
		 FROM gacha_history
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.GachaDraw
	for rows.Next() {
		var d domain.GachaDraw
		if err := rows.Scan(&d.ID, &d.UserID, &d.PowerID, &d.CombatPower, &d.Rank, &d.PityTriggered, &d.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &d)
	}
	return result, rows.Err()
}
