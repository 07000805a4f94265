package service

import (
	"context"
	"fmt"
	"time"

	"gacha_backend/internal/cache"
	"gacha_backend/internal/domain"
	"gacha_backend/internal/game"
	"gacha_backend/internal/locker"
	"gacha_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RedeemService applies redeem codes. The code-level lock serializes all
// redemptions of one code, so a capped code can never be over-redeemed
// even under concurrent attempts by different users.
type RedeemService struct {
	locks  *locker.Manager
	users  *repository.UserRepository
	powers *repository.PowerRepository
	codes  *repository.RedeemRepository
	ledger *repository.TransactionRepository
	inv    *cache.Invalidator
	cfg    game.GachaConfig
}

func NewRedeemService(db *pgxpool.Pool, locks *locker.Manager, inv *cache.Invalidator) *RedeemService {
	return &RedeemService{
		locks:  locks,
		users:  repository.NewUserRepository(db),
		powers: repository.NewPowerRepository(db),
		codes:  repository.NewRedeemRepository(db),
		ledger: repository.NewTransactionRepository(db),
		inv:    inv,
		cfg:    game.DefaultGachaConfig(),
	}
}

// RedeemResult summarizes what a successful redemption granted.
type RedeemResult struct {
	CoinsGranted int64               `json:"coins_granted"`
	DrawsGranted int64               `json:"draws_granted"`
	Powers       []*domain.UserPower `json:"powers,omitempty"`
	UsesLeft     *int                `json:"uses_left,omitempty"`
}

// Redeem validates and applies a code for one user. All checks run
// against the freshly locked code row, and the usage row, counter bump
// and reward side effects commit atomically.
func (s *RedeemService) Redeem(ctx context.Context, userID int64, code string) (*RedeemResult, error) {
	key := "redeem_" + code
	res, err := locker.ExecuteWithLock(ctx, s.locks, key, locker.Options{}, func(tx pgx.Tx) (*RedeemResult, error) {
		c, err := s.codes.GetByCodeForUpdateTx(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		if !c.IsActive {
			return nil, domain.ErrCodeInactive
		}
		if c.ExpiresAt != nil && time.Now().After(*c.ExpiresAt) {
			return nil, domain.ErrCodeExpired
		}
		if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
			return nil, domain.ErrCodeExhausted
		}

		used, err := s.codes.HasUsageTx(ctx, tx, c.ID, userID)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, domain.ErrAlreadyRedeemed
		}

		if _, err := s.users.GetForUpdateTx(ctx, tx, userID); err != nil {
			return nil, err
		}

		result := &RedeemResult{}
		for _, reward := range c.Rewards {
			if err := s.applyReward(ctx, tx, userID, c.Code, reward, result); err != nil {
				return nil, err
			}
		}

		if err := s.codes.InsertUsageTx(ctx, tx, c.ID, userID); err != nil {
			return nil, err
		}

		// exhaustion accounting from the locked row, not a pre-lock read
		newCount := c.UsedCount + 1
		active := c.IsActive
		if c.MaxUses != nil {
			left := *c.MaxUses - newCount
			if left <= 0 {
				active = false
				left = 0
			}
			result.UsesLeft = &left
		}
		if err := s.codes.SetUsageCountTx(ctx, tx, c.ID, newCount, active); err != nil {
			return nil, err
		}

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	s.inv.InvalidateUsers(ctx, userID)
	return res, nil
}

// applyReward dispatches over the closed reward variant set. Rewards are
// applied in the order the code lists them.
func (s *RedeemService) applyReward(ctx context.Context, tx pgx.Tx, userID int64, code string, reward domain.Reward, result *RedeemResult) error {
	if err := reward.Validate(); err != nil {
		return err
	}

	switch reward.Kind {
	case domain.RewardCoins:
		if _, err := s.users.AddCoinsTx(ctx, tx, userID, reward.Amount); err != nil {
			return err
		}
		record := &domain.Transaction{
			UserID:      userID,
			Type:        domain.TxTypeRedeem,
			Amount:      reward.Amount,
			Description: fmt.Sprintf("redeem code %s", code),
		}
		if err := s.ledger.CreateTx(ctx, tx, record); err != nil {
			return err
		}
		result.CoinsGranted += reward.Amount

	case domain.RewardGachaDraws:
		if err := s.users.AddDrawsTx(ctx, tx, userID, int(reward.Amount)); err != nil {
			return err
		}
		result.DrawsGranted += reward.Amount

	case domain.RewardPower:
		p, err := s.powers.GetByID(ctx, reward.PowerID)
		if err != nil {
			return err
		}
		cp := p.BaseCP
		if reward.CPOverride != nil {
			cp = *reward.CPOverride
		}
		up := &domain.UserPower{
			UserID:      userID,
			PowerID:     p.ID,
			Name:        p.Name,
			CombatPower: cp,
			Rank:        s.cfg.RankForCP(cp),
		}
		if err := s.powers.CreateUserPowerTx(ctx, tx, up); err != nil {
			return err
		}
		result.Powers = append(result.Powers, up)
	}
	return nil
}
