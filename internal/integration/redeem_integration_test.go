package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gacha_backend/internal/cache"
	"gacha_backend/internal/domain"
	"gacha_backend/internal/locker"
	"gacha_backend/internal/repository"
	"gacha_backend/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

func createCode(t *testing.T, db *pgxpool.Pool, rewards []domain.Reward, maxUses *int) *domain.RedeemCode {
	t.Helper()
	c := &domain.RedeemCode{
		Code:     fmt.Sprintf("IT-%d-%d", time.Now().UnixNano(), userSeq.Add(1)),
		Rewards:  rewards,
		MaxUses:  maxUses,
		IsActive: true,
	}
	if err := repository.NewRedeemRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("create code: %v", err)
	}
	return c
}

func TestRedeemService_Redeem(t *testing.T) {
	db := newPool(t)
	svc := service.NewRedeemService(db, locker.NewManager(db), cache.New("", "", 0))
	ctx := context.Background()

	u := createUser(t, db, 0, 0)
	code := createCode(t, db, []domain.Reward{
		{Kind: domain.RewardCoins, Amount: 250},
		{Kind: domain.RewardGachaDraws, Amount: 3},
	}, nil)

	res, err := svc.Redeem(ctx, u.ID, code.Code)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if res.CoinsGranted != 250 || res.DrawsGranted != 3 {
		t.Fatalf("grants: want 250/3, got %d/%d", res.CoinsGranted, res.DrawsGranted)
	}

	got, err := repository.NewUserRepository(db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.Coins != 250 || got.GachaDraws != 3 {
		t.Fatalf("user state: want 250 coins 3 draws, got %d/%d", got.Coins, got.GachaDraws)
	}

	// Second redemption by the same user is rejected.
	if _, err := svc.Redeem(ctx, u.ID, code.Code); !errors.Is(err, domain.ErrAlreadyRedeemed) {
		t.Fatalf("second redeem: want ErrAlreadyRedeemed, got %v", err)
	}

	// And the rejection did not double-grant.
	got, _ = repository.NewUserRepository(db).GetByID(ctx, u.ID)
	if got.Coins != 250 {
		t.Fatalf("coins after rejected redeem: want 250, got %d", got.Coins)
	}
}

func TestRedeemService_Redeem_UnknownCode(t *testing.T) {
	db := newPool(t)
	svc := service.NewRedeemService(db, locker.NewManager(db), cache.New("", "", 0))

	u := createUser(t, db, 0, 0)
	if _, err := svc.Redeem(context.Background(), u.ID, "NO-SUCH-CODE"); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("want ErrInvalidCode, got %v", err)
	}
}

func TestRedeemService_Redeem_Exhaustion(t *testing.T) {
	db := newPool(t)
	svc := service.NewRedeemService(db, locker.NewManager(db), cache.New("", "", 0))
	ctx := context.Background()

	maxUses := 1
	code := createCode(t, db, []domain.Reward{{Kind: domain.RewardCoins, Amount: 100}}, &maxUses)

	u1 := createUser(t, db, 0, 0)
	u2 := createUser(t, db, 0, 0)

	// Two users race for a single-use code. Exactly one wins.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, uid := range []int64{u1.ID, u2.ID} {
		wg.Add(1)
		go func(i int, uid int64) {
			defer wg.Done()
			_, errs[i] = svc.Redeem(ctx, uid, code.Code)
		}(i, uid)
	}
	wg.Wait()

	var ok, exhausted int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrCodeExhausted), errors.Is(err, domain.ErrCodeInactive):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || exhausted != 1 {
		t.Fatalf("want 1 success and 1 exhausted, got %d/%d", ok, exhausted)
	}

	var total int64
	if err := db.QueryRow(ctx,
		`SELECT SUM(coins) FROM users WHERE id = ANY($1)`,
		[]int64{u1.ID, u2.ID},
	).Scan(&total); err != nil {
		t.Fatalf("sum coins: %v", err)
	}
	if total != 100 {
		t.Fatalf("total granted: want 100, got %d", total)
	}
}

func TestRedeemService_Redeem_PowerReward(t *testing.T) {
	db := newPool(t)
	svc := service.NewRedeemService(db, locker.NewManager(db), cache.New("", "", 0))
	ctx := context.Background()

	var powerID int64
	if err := db.QueryRow(ctx, `SELECT id FROM powers ORDER BY id LIMIT 1`).Scan(&powerID); err != nil {
		t.Fatalf("pick power: %v", err)
	}

	override := 5000
	u := createUser(t, db, 0, 0)
	code := createCode(t, db, []domain.Reward{
		{Kind: domain.RewardPower, PowerID: powerID, CPOverride: &override},
	}, nil)

	res, err := svc.Redeem(ctx, u.ID, code.Code)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if len(res.Powers) != 1 {
		t.Fatalf("granted powers: want 1, got %d", len(res.Powers))
	}
	if res.Powers[0].CombatPower != override {
		t.Fatalf("override CP: want %d, got %d", override, res.Powers[0].CombatPower)
	}
}
