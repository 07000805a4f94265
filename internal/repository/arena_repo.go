package repository

import (
	"context"

	"gacha_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ArenaRepository struct {
	db *pgxpool.Pool
}

func NewArenaRepository(db *pgxpool.Pool) *ArenaRepository {
	return &ArenaRepository{db: db}
}

// UpsertTx recomputes the user's ranking snapshot. Called in the same
// transaction as the equip change so the snapshot never drifts from the
// equipped power.
func (r *ArenaRepository) UpsertTx(ctx context.Context, tx pgx.Tx, userID int64, totalCP int) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO arena_rankings (user_id, total_cp, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET total_cp = $2, updated_at = NOW()`,
		userID, totalCP)
	return err
}

// Top returns the leaderboard, strongest first.
func (r *ArenaRepository) Top(ctx context.Context, limit int) ([]*domain.ArenaRanking, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT ar.user_id, COALESCE(u.username, ''), ar.total_cp, ar.updated_at
		 FROM arena_rankings ar
		 JOIN users u ON u.id = ar.user_id
		 ORDER BY ar.total_cp DESC, ar.updated_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.ArenaRanking
	for rows.Next() {
		var ar domain.ArenaRanking
		if err := rows.Scan(&ar.UserID, &ar.Username, &ar.TotalCP, &ar.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &ar)
	}
	return result, rows.Err()
}
