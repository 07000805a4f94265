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

// GachaService runs draws against the power catalog.
type GachaService struct {
	locks   *locker.Manager
	users   *repository.UserRepository
	powers  *repository.PowerRepository
	history *repository.GachaHistoryRepository
	inv     *cache.Invalidator
	engine  *game.Engine
}

func NewGachaService(db *pgxpool.Pool, locks *locker.Manager, inv *cache.Invalidator) *GachaService {
	return &GachaService{
		locks:   locks,
		users:   repository.NewUserRepository(db),
		powers:  repository.NewPowerRepository(db),
		history: repository.NewGachaHistoryRepository(db),
		inv:     inv,
		engine:  game.NewEngine(game.DefaultGachaConfig(), nil),
	}
}

// DrawResult is the outcome of one draw attempt. Running out of draws is
// an expected outcome, not an error: Drew is false and RemainingDraws is
// 0, with no state change.
type DrawResult struct {
	Drew           bool              `json:"drew"`
	RemainingDraws int               `json:"remaining_draws"`
	Power          *domain.UserPower `json:"power,omitempty"`
	PityTriggered  bool              `json:"pity_triggered"`
	PityCounter    int               `json:"pity_counter"`
}

// Draw consumes one gacha draw under the user's draw lock: decrement,
// sample a rank through the pity state machine, pick a catalog power of
// that rank, roll its combat power and record the instance plus a
// history row, all in one transaction.
func (s *GachaService) Draw(ctx context.Context, userID int64) (*DrawResult, error) {
	key := locker.UserKey("gacha", userID)
	res, err := locker.ExecuteWithLock(ctx, s.locks, key, locker.Options{}, func(tx pgx.Tx) (*DrawResult, error) {
		u, err := s.users.GetForUpdateTx(ctx, tx, userID)
		if err != nil {
			return nil, err
		}
		if u.GachaDraws <= 0 {
			return &DrawResult{Drew: false, RemainingDraws: 0, PityCounter: u.PityCounter}, nil
		}

		outcome := s.engine.DrawRank(u.PityCounter)
		pool, err := s.powers.ListByRank(ctx, outcome.Rank)
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 {
			return nil, fmt.Errorf("empty catalog for rank %s", outcome.Rank)
		}
		p := pool[s.engine.PickIndex(len(pool))]

		cp := s.engine.RollCP(p.BaseCP)
		up := &domain.UserPower{
			UserID:      userID,
			PowerID:     p.ID,
			Name:        p.Name,
			CombatPower: cp,
			Rank:        s.engine.Config().RankForCP(cp),
		}
		if err := s.powers.CreateUserPowerTx(ctx, tx, up); err != nil {
			return nil, err
		}

		remaining := u.GachaDraws - 1
		if err := s.users.SetGachaStateTx(ctx, tx, userID, remaining, outcome.NextPity); err != nil {
			return nil, err
		}

		draw := &domain.GachaDraw{
			UserID:        userID,
			PowerID:       p.ID,
			CombatPower:   cp,
			Rank:          up.Rank,
			PityTriggered: outcome.PityTriggered,
		}
		if err := s.history.CreateTx(ctx, tx, draw); err != nil {
			return nil, err
		}

		return &DrawResult{
			Drew:           true,
			RemainingDraws: remaining,
			Power:          up,
			PityTriggered:  outcome.PityTriggered,
			PityCounter:    outcome.NextPity,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if res.Drew {
		s.inv.InvalidateUsers(ctx, userID)
	}
	return res, nil
}

// History returns a user's recent draws.
func (s *GachaService) History(ctx context.Context, userID int64, limit int) ([]*domain.GachaDraw, error) {
	return s.history.RecentByUser(ctx, userID, limit)
}
