package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"gacha_backend/internal/locker"

	"github.com/jackc/pgx/v5"
)

func TestManager_MutualExclusion(t *testing.T) {
	db := newPool(t)
	m := locker.NewManager(db)
	ctx := context.Background()

	h1, err := m.Acquire(ctx, "it_mutex", 5*time.Second)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	// Same key from another caller must time out while h1 is held.
	if _, err := m.Acquire(ctx, "it_mutex", 300*time.Millisecond); !errors.Is(err, locker.ErrLockTimeout) {
		t.Fatalf("second acquire: want ErrLockTimeout, got %v", err)
	}

	// A different key is independent.
	h2, err := m.Acquire(ctx, "it_other", 300*time.Millisecond)
	if err != nil {
		t.Fatalf("acquire other key: %v", err)
	}
	m.Release(h2)

	m.Release(h1)

	// Released key can be taken again.
	h3, err := m.Acquire(ctx, "it_mutex", 2*time.Second)
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	m.Release(h3)

	if n := m.HeldCount(); n != 0 {
		t.Fatalf("held count after release: want 0, got %d", n)
	}
}

func TestManager_TunedTimeoutAppliesToZeroValue(t *testing.T) {
	db := newPool(t)
	ctx := context.Background()

	holder := locker.NewManager(db)
	h, err := holder.Acquire(ctx, "it_tuned", 2*time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer holder.Release(h)

	// A zero timeout must fall back to the manager's configured budget,
	// not the 30s package default.
	tuned := locker.NewManagerTuned(db, time.Minute, 300*time.Millisecond, 1)
	start := time.Now()
	_, err = tuned.Acquire(ctx, "it_tuned", 0)
	if !errors.Is(err, locker.ErrLockTimeout) {
		t.Fatalf("want ErrLockTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timed out after %v; configured budget was 300ms", elapsed)
	}
}

func TestManager_SweepReleasesExpired(t *testing.T) {
	db := newPool(t)
	m := locker.NewManagerWithTTL(db, 50*time.Millisecond)
	ctx := context.Background()

	if _, err := m.Acquire(ctx, "it_sweep", 2*time.Second); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if n := m.Sweep(); n != 1 {
		t.Fatalf("sweep: want 1 forced release, got %d", n)
	}
	if n := m.HeldCount(); n != 0 {
		t.Fatalf("held count after sweep: want 0, got %d", n)
	}

	// The key is free again once swept.
	fresh := locker.NewManager(db)
	h, err := fresh.Acquire(ctx, "it_sweep", 2*time.Second)
	if err != nil {
		t.Fatalf("acquire after sweep: %v", err)
	}
	fresh.Release(h)
}

func TestExecuteWithLock_SerializesWriters(t *testing.T) {
	db := newPool(t)
	m := locker.NewManager(db)
	u := createUser(t, db, 0, 0)
	ctx := context.Background()

	// 20 concurrent increments on the same key must all apply.
	const writers = 20
	errCh := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func() {
			_, err := locker.ExecuteWithLock(ctx, m, locker.UserKey("it_incr", u.ID), locker.Options{}, func(tx pgx.Tx) (struct{}, error) {
				_, err := tx.Exec(ctx, `UPDATE users SET coins = coins + 1 WHERE id = $1`, u.ID)
				return struct{}{}, err
			})
			errCh <- err
		}()
	}
	for i := 0; i < writers; i++ {
		if err := <-errCh; err != nil {
			t.Fatalf("writer %d: %v", i, err)
		}
	}

	var coins int64
	if err := db.QueryRow(ctx, `SELECT coins FROM users WHERE id = $1`, u.ID).Scan(&coins); err != nil {
		t.Fatalf("read coins: %v", err)
	}
	if coins != writers {
		t.Fatalf("coins: want %d, got %d", writers, coins)
	}
}
