package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"gacha_backend/internal/domain"
	"gacha_backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

var userSeq atomic.Int64

func newPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)
	return db
}

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

// createUser inserts a fresh user with a unique discord id so tests can
// run repeatedly against the same database.
func createUser(t *testing.T, db *pgxpool.Pool, coins int64, draws int) *domain.User {
	t.Helper()
	u := &domain.User{
		DiscordID:  fmt.Sprintf("it-%d-%d", time.Now().UnixNano(), userSeq.Add(1)),
		Username:   "itest",
		Coins:      coins,
		GachaDraws: draws,
	}
	if err := repository.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
