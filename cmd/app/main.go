package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gacha_backend/internal/cache"
	"gacha_backend/internal/config"
	"gacha_backend/internal/db"
	httpServer "gacha_backend/internal/http"
	"gacha_backend/internal/http/middleware"
	"gacha_backend/internal/jobs"
	"gacha_backend/internal/locker"
	"gacha_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	inv := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	middleware.SetRedisClient(inv.Client())

	locks := locker.NewManagerTuned(dbPool, cfg.LockTTL, cfg.LockTimeout, cfg.LockRetries)

	sched := jobs.NewScheduler(locks)
	if err := sched.Start(cfg.SweepInterval); err != nil {
		logger.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}

	r := gin.Default()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, dbPool, locks, inv, cfg, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	sched.Stop()

	logger.Info("server exited")
}
