package repository

import (
	"context"
	"errors"

	"gacha_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PowerRepository struct {
	db *pgxpool.Pool
}

func NewPowerRepository(db *pgxpool.Pool) *PowerRepository {
	return &PowerRepository{db: db}
}

// GetByID returns a catalog entry. Catalog rows are immutable reference
// data, so no row lock is needed even inside a critical section.
func (r *PowerRepository) GetByID(ctx context.Context, id int64) (*domain.Power, error) {
	var p domain.Power
	err := r.db.QueryRow(ctx,
		`SELECT id, name, rank, base_cp, base_price FROM powers WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Rank, &p.BaseCP, &p.BasePrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPowerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListByRank returns the catalog powers of one tier, the selection pool
// for a draw of that rank.
func (r *PowerRepository) ListByRank(ctx context.Context, rank domain.Rank) ([]*domain.Power, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, rank, base_cp, base_price FROM powers WHERE rank = $1 ORDER BY id`,
		rank)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Power
	for rows.Next() {
		var p domain.Power
		if err := rows.Scan(&p.ID, &p.Name, &p.Rank, &p.BaseCP, &p.BasePrice); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}

// CreateUserPowerTx inserts a freshly drawn or rewarded instance.
func (r *PowerRepository) CreateUserPowerTx(ctx context.Context, tx pgx.Tx, up *domain.UserPower) error {
	return tx.QueryRow(ctx,
		`INSERT INTO user_powers (user_id, power_id, combat_power, rank)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, obtained_at`,
		up.UserID, up.PowerID, up.CombatPower, up.Rank,
	).Scan(&up.ID, &up.ObtainedAt)
}

// GetUserPowerTx loads an owned instance inside a transaction, joined
// with its catalog name. pgx.ErrNoRows maps to not-found at the caller.
func (r *PowerRepository) GetUserPowerTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.UserPower, error) {
	var up domain.UserPower
	err := tx.QueryRow(ctx,
		`SELECT up.id, up.user_id, up.power_id, p.name, up.combat_power, up.rank, up.obtained_at
		 FROM user_powers up
		 JOIN powers p ON p.id = up.power_id
		 WHERE up.id = $1`, id,
	).Scan(&up.ID, &up.UserID, &up.PowerID, &up.Name, &up.CombatPower, &up.Rank, &up.ObtainedAt)
	if err != nil {
		return nil, err
	}
	return &up, nil
}

// ListUserPowers returns a user's collection, newest first.
func (r *PowerRepository) ListUserPowers(ctx context.Context, userID int64, limit int) ([]*domain.UserPower, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT up.id, up.user_id, up.power_id, p.name, up.combat_power, up.rank, up.obtained_at
		 FROM user_powers up
		 JOIN powers p ON p.id = up.power_id
		 WHERE up.user_id = $1
		 ORDER BY up.obtained_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.UserPower
	for rows.Next() {
		var up domain.UserPower
		if err := rows.Scan(&up.ID, &up.UserID, &up.PowerID, &up.Name, &up.CombatPower, &up.Rank, &up.ObtainedAt); err != nil {
			return nil, err
		}
		result = append(result, &up)
	}
	return result, rows.Err()
}
