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
	"github.com/Sunny-JP/hw-ba-cafe/internal/email"
	"github.com/Sunny-JP/hw-ba-cafe/internal/health"
	"github.com/Sunny-JP/hw-ba-cafe/internal/infrastructure/postgres"
	ctxlog "github.com/Sunny-JP/hw-ba-cafe/internal/log"
	"github.com/Sunny-JP/hw-ba-cafe/internal/metrics"
	"github.com/Sunny-JP/hw-ba-cafe/internal/push"
	httptransport "github.com/Sunny-JP/hw-ba-cafe/internal/transport/http"
	"github.com/Sunny-JP/hw-ba-cafe/internal/transport/http/handler"
	"github.com/Sunny-JP/hw-ba-cafe/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	profileRepo := postgres.NewProfileRepository(pool)
	tapRepo := postgres.NewTapRepository(pool)

	// Auth
	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(profileRepo, emailSender, []byte(cfg.JWTSecret), cfg.MagicLinkBase)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Taps and reminders
	provider := push.NewProvider(cfg.Env, cfg.OneSignalAppID, cfg.OneSignalAPIKey, cfg.OneSignalRPM, logger)
	reminders := push.NewScheduler(provider, logger)
	subscriptions := usecase.NewSubscriptionUsecase(provider, logger)
	tapUsecase := usecase.NewTapUsecase(tapRepo, profileRepo, reminders, subscriptions, clock.Real(), logger)
	tapHandler := handler.NewTapHandler(tapUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, tapHandler, authHandler, profileRepo, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
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
