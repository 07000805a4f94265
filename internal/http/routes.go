package http

import (
	"gacha_backend/internal/cache"
	"gacha_backend/internal/config"
	"gacha_backend/internal/http/handlers"
	"gacha_backend/internal/http/middleware"
	"gacha_backend/internal/locker"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires one endpoint per economy operation plus the
// read-only views. The command-handling collaborator (the Discord bot)
// calls these with plain identifiers and amounts.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, locks *locker.Manager, inv *cache.Invalidator, cfg *config.Config, version string) {
	h := handlers.NewHandler(db, locks, inv)
	healthHandler := handlers.NewHealthHandler(db, version)

	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	v1.POST("/economy/transfer", h.Transfer)
	v1.POST("/economy/bank/deposit", h.Deposit)
	v1.POST("/economy/bank/withdraw", h.Withdraw)

	v1.POST("/gacha/draw", h.Draw)
	v1.GET("/gacha/history/:id", h.DrawHistory)

	v1.POST("/redeem", h.Redeem)

	v1.POST("/powers/equip", h.Equip)
	v1.GET("/powers/:id", h.Collection)
	v1.GET("/arena/top", h.ArenaTop)

	v1.POST("/battle", h.Battle)

	v1.GET("/users/:id", h.Profile)
	v1.GET("/users/:id/transactions", h.Ledger)
}
