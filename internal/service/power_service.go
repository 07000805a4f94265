package service

import (
	"context"
	"errors"

	"gacha_backend/internal/cache"
	"gacha_backend/internal/domain"
	"gacha_backend/internal/locker"
	"gacha_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PowerService owns equipping and the arena ranking derived from it.
type PowerService struct {
	locks  *locker.Manager
	users  *repository.UserRepository
	powers *repository.PowerRepository
	arena  *repository.ArenaRepository
	inv    *cache.Invalidator
}

func NewPowerService(db *pgxpool.Pool, locks *locker.Manager, inv *cache.Invalidator) *PowerService {
	return &PowerService{
		locks:  locks,
		users:  repository.NewUserRepository(db),
		powers: repository.NewPowerRepository(db),
		arena:  repository.NewArenaRepository(db),
		inv:    inv,
	}
}

// EquipResult reports the newly equipped power.
type EquipResult struct {
	Equipped *domain.UserPower `json:"equipped"`
	TotalCP  int               `json:"total_cp"`
}

// Equip sets the user's equipped power and recomputes the arena snapshot
// in the same transaction, so ranking never reflects a stale equip.
func (s *PowerService) Equip(ctx context.Context, userID, userPowerID int64) (*EquipResult, error) {
	key := locker.UserKey("equip", userID)
	res, err := locker.ExecuteWithLock(ctx, s.locks, key, locker.Options{}, func(tx pgx.Tx) (*EquipResult, error) {
		if _, err := s.users.GetForUpdateTx(ctx, tx, userID); err != nil {
			return nil, err
		}

		up, err := s.powers.GetUserPowerTx(ctx, tx, userPowerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrPowerNotOwned
			}
			return nil, err
		}
		if up.UserID != userID {
			return nil, domain.ErrPowerNotOwned
		}

		if err := s.users.SetEquippedTx(ctx, tx, userID, &up.ID); err != nil {
			return nil, err
		}
		if err := s.arena.UpsertTx(ctx, tx, userID, up.CombatPower); err != nil {
			return nil, err
		}

		return &EquipResult{Equipped: up, TotalCP: up.CombatPower}, nil
	})
	if err != nil {
		return nil, err
	}

	s.inv.InvalidateUsers(ctx, userID)
	return res, nil
}

// Collection lists a user's owned powers.
func (s *PowerService) Collection(ctx context.Context, userID int64, limit int) ([]*domain.UserPower, error) {
	return s.powers.ListUserPowers(ctx, userID, limit)
}

// ArenaTop returns the current leaderboard. Read-only, no lock.
func (s *PowerService) ArenaTop(ctx context.Context, limit int) ([]*domain.ArenaRanking, error) {
	return s.arena.Top(ctx, limit)
}
