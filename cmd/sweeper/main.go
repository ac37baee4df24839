package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/config"
	"github.com/Sunny-JP/hw-ba-cafe/internal/clock"
	"github.com/Sunny-JP/hw-ba-cafe/internal/health"
	"github.com/Sunny-JP/hw-ba-cafe/internal/infrastructure/postgres"
	ctxlog "github.com/Sunny-JP/hw-ba-cafe/internal/log"
	"github.com/Sunny-JP/hw-ba-cafe/internal/metrics"
	"github.com/Sunny-JP/hw-ba-cafe/internal/push"
	"github.com/Sunny-JP/hw-ba-cafe/internal/sweeper"
	"github.com/Sunny-JP/hw-ba-cafe/internal/usecase"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	tapRepo := postgres.NewTapRepository(pool)
	provider := push.NewProvider(cfg.Env, cfg.OneSignalAppID, cfg.OneSignalAPIKey, cfg.OneSignalRPM, logger)
	subscriptions := usecase.NewSubscriptionUsecase(provider, logger)

	sw, err := sweeper.New(
		tapRepo,
		subscriptions,
		logger,
		cfg.SweepCron,
		time.Duration(cfg.SweepActiveDays)*24*time.Hour,
		clock.Real(),
	)
	if err != nil {
		stop()
		log.Fatalf("sweeper: %v", err)
	}
	go sw.Start(ctx)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("sweeper shut down")
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
