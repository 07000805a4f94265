package service

import (
	"context"
	"fmt"

	"gacha_backend/internal/cache"
	"gacha_backend/internal/domain"
	"gacha_backend/internal/game"
	"gacha_backend/internal/locker"
	"gacha_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BattleService resolves fights against externally supplied enemies.
type BattleService struct {
	locks    *locker.Manager
	users    *repository.UserRepository
	ledger   *repository.TransactionRepository
	inv      *cache.Invalidator
	resolver *game.Resolver
}

func NewBattleService(db *pgxpool.Pool, locks *locker.Manager, inv *cache.Invalidator) *BattleService {
	return &BattleService{
		locks:    locks,
		users:    repository.NewUserRepository(db),
		ledger:   repository.NewTransactionRepository(db),
		inv:      inv,
		resolver: game.NewResolver(game.DefaultBattleConfig(), nil),
	}
}

// BattleResult reports one resolved fight. Coins move only on victory;
// a loss just bumps the loss counter.
type BattleResult struct {
	Won         bool  `json:"won"`
	UserCP      int   `json:"user_cp"`
	EnemyCP     int   `json:"enemy_cp"`
	Reward      int64 `json:"reward"`
	NewBalance  int64 `json:"coins"`
	BattlesWon  int   `json:"battles_won"`
	BattlesLost int   `json:"battles_lost"`
}

// Fight rolls the user's equipped combat power (0 if nothing equipped)
// against the enemy's.
func (s *BattleService) Fight(ctx context.Context, userID int64, enemyCP int) (*BattleResult, error) {
	if enemyCP < 0 {
		return nil, domain.Validation("enemy combat power cannot be negative")
	}

	key := locker.UserKey("battle", userID)
	res, err := locker.ExecuteWithLock(ctx, s.locks, key, locker.Options{}, func(tx pgx.Tx) (*BattleResult, error) {
		u, err := s.users.GetForUpdateTx(ctx, tx, userID)
		if err != nil {
			return nil, err
		}
		userCP, err := s.users.EquippedCPTx(ctx, tx, userID)
		if err != nil {
			return nil, err
		}

		outcome := s.resolver.Resolve(userCP, enemyCP)
		result := &BattleResult{
			Won:         outcome.Won,
			UserCP:      userCP,
			EnemyCP:     enemyCP,
			Reward:      outcome.Reward,
			NewBalance:  u.Coins,
			BattlesWon:  u.BattlesWon,
			BattlesLost: u.BattlesLost,
		}

		if err := s.users.RecordBattleTx(ctx, tx, userID, outcome.Won); err != nil {
			return nil, err
		}

		if outcome.Won {
			result.BattlesWon++
			balance, err := s.users.AddCoinsTx(ctx, tx, userID, outcome.Reward)
			if err != nil {
				return nil, err
			}
			result.NewBalance = balance

			record := &domain.Transaction{
				UserID:      userID,
				Type:        domain.TxTypeBattleReward,
				Amount:      outcome.Reward,
				Description: fmt.Sprintf("victory against enemy cp %d", enemyCP),
			}
			if err := s.ledger.CreateTx(ctx, tx, record); err != nil {
				return nil, err
			}
		} else {
			result.BattlesLost++
		}

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	s.inv.InvalidateUsers(ctx, userID)
	return res, nil
}
