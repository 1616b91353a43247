package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/minato/dormgate/internal/config"
	"github.com/minato/dormgate/internal/handler"
	"github.com/minato/dormgate/internal/repository"
	"github.com/minato/dormgate/internal/service"
	"github.com/minato/dormgate/internal/stream"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := repository.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := stream.NewHub()

	// Without Redis the local hub is the whole delivery path. With Redis,
	// changes are published to a pub/sub channel and every instance's relay
	// forwards them into its local hub.
	var notifier service.UnreadNotifier = hub
	if cfg.RedisAddr != "" {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rc.Close()

		if err := rc.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		slog.Info("redis connected", "addr", cfg.RedisAddr)

		notifier = stream.NewPublisher(rc, cfg.UnreadChannel)
		go stream.Relay(ctx, rc, cfg.UnreadChannel, hub)
	}

	eventRepo := repository.NewEventRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)

	eventSvc := service.NewEventService(eventRepo, notificationRepo, directoryRepo, notifier, cfg.EventListLimit)
	notificationSvc := service.NewNotificationService(notificationRepo, notifier)
	directorySvc := service.NewDirectoryService(directoryRepo)
	tokenSvc := service.NewTokenService(cfg.JWTSecret, 15*time.Minute)

	e := echo.New()
	e.HideBanner = true
	handler.Register(e, handler.RouterConfig{
		Events:          eventSvc,
		Notifications:   notificationSvc,
		Directory:       directorySvc,
		Tokens:          tokenSvc,
		Hub:             hub,
		BootstrapSecret: cfg.BootstrapSecret,
		FrontendURL:     cfg.FrontendURL,
	})

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- e.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
