package db

import (
	"context"

	"gacha_backend/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the connection pool. Every economy operation borrows a
// dedicated connection from this pool for the lifetime of its lock, so
// the pool must be sized above the expected number of concurrent
// critical sections.
func Connect(dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected")
	return pool
}
