package repository

import (
	"context"
	"errors"
	"fmt"

	"gacha_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, discord_id, COALESCE(username, ''), coins, bank_balance,
	gacha_draws, pity_counter, equipped_power_id, battles_won, battles_lost, created_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.DiscordID, &u.Username, &u.Coins, &u.BankBalance,
		&u.GachaDraws, &u.PityCounter, &u.EquippedPowerID, &u.BattlesWon, &u.BattlesLost, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE discord_id = $1`, discordID))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO users (discord_id, username, coins, gacha_draws)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.DiscordID, u.Username, u.Coins, u.GachaDraws,
	).Scan(&u.ID, &u.CreatedAt)
}

// GetForUpdateTx rereads the user row with a row-level write lock.
// Mutating operations must use this inside their transaction instead of
// data fetched before the transaction began.
func (r *UserRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.User, error) {
	return scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
}

// AddCoinsTx applies a wallet delta and returns the new balance. Callers
// validate non-negativity against the locked row before debiting.
func (r *UserRepository) AddCoinsTx(ctx context.Context, tx pgx.Tx, id int64, delta int64) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx,
		`UPDATE users SET coins = coins + $1 WHERE id = $2 RETURNING coins`,
		delta, id,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("update coins: %w", err)
	}
	return balance, nil
}

// SetBankStateTx writes both sides of a wallet<->bank move.
func (r *UserRepository) SetBankStateTx(ctx context.Context, tx pgx.Tx, id int64, coins, bank int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET coins = $1, bank_balance = $2 WHERE id = $3`,
		coins, bank, id)
	return err
}

// AddDrawsTx grants gacha draws.
func (r *UserRepository) AddDrawsTx(ctx context.Context, tx pgx.Tx, id int64, n int) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET gacha_draws = gacha_draws + $1 WHERE id = $2`, n, id)
	return err
}

// SetGachaStateTx writes the post-draw counters.
func (r *UserRepository) SetGachaStateTx(ctx context.Context, tx pgx.Tx, id int64, draws, pity int) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET gacha_draws = $1, pity_counter = $2 WHERE id = $3`,
		draws, pity, id)
	return err
}

// SetEquippedTx sets (or clears, with nil) the equipped power.
func (r *UserRepository) SetEquippedTx(ctx context.Context, tx pgx.Tx, id int64, userPowerID *int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET equipped_power_id = $1 WHERE id = $2`, userPowerID, id)
	return err
}

// RecordBattleTx bumps the win or loss counter.
func (r *UserRepository) RecordBattleTx(ctx context.Context, tx pgx.Tx, id int64, won bool) error {
	col := "battles_lost"
	if won {
		col = "battles_won"
	}
	_, err := tx.Exec(ctx,
		`UPDATE users SET `+col+` = `+col+` + 1 WHERE id = $1`, id)
	return err
}

// EquippedCPTx returns the combat power of the user's equipped power, or
// 0 when nothing is equipped.
func (r *UserRepository) EquippedCPTx(ctx context.Context, tx pgx.Tx, id int64) (int, error) {
	var cp int
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(up.combat_power, 0)
		 FROM users u
		 LEFT JOIN user_powers up ON up.id = u.equipped_power_id
		 WHERE u.id = $1`, id,
	).Scan(&cp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}
	return cp, nil
}
