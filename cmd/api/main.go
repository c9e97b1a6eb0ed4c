package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/zizouhuweidi/trivia/internal/cache"
	"github.com/zizouhuweidi/trivia/internal/config"
	"github.com/zizouhuweidi/trivia/internal/database"
	"github.com/zizouhuweidi/trivia/internal/handler"
	"github.com/zizouhuweidi/trivia/internal/logger"
	"github.com/zizouhuweidi/trivia/internal/repository/postgres"
	"github.com/zizouhuweidi/trivia/internal/service"
	"github.com/zizouhuweidi/trivia/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("server exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// run wires the application and serves until ctx is cancelled or the server fails.
// Every resource it opens is closed before it returns.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	// Initialize database connection
	pool, err := database.ConnectPostgres(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	// Initialize websocket hub
	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	opts := service.Options{
		QuestionsPerPage: cfg.QuestionsPerPage,
		Notifier:         hub,
	}
	deps := handler.Deps{
		Hub:    hub,
		DB:     pool,
		Logger: log,
	}

	// Redis is optional: it backs the category cache and the rate limiter
	if cfg.Redis.Enabled() {
		redisClient, err := database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		store := cache.NewStore(redisClient, cfg.Cache.CategoriesTTL)
		opts.Cache = store
		deps.Limiter = store
		deps.RateLimit = cfg.RateLimit
	}

	// Initialize repositories and services
	questionRepo := postgres.NewQuestionRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	deps.Trivia = service.NewTriviaService(questionRepo, categoryRepo, log, opts)

	e := handler.NewRouter(deps)

	log.Info("starting server", zap.String("addr", cfg.HTTP.Addr), zap.String("env", cfg.Env))
	return serve(ctx, e, cfg.HTTP.Addr, cfg.HTTP.ShutdownTimeout, log)
}

// serve runs e on addr until ctx is done or the listener fails, then shuts the
// server down gracefully. A listener failure is returned.
func serve(ctx context.Context, e *echo.Echo, addr string, shutdownTimeout time.Duration, log *zap.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var startErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case startErr = <-serverErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down server", zap.Error(err))
	}

	if startErr != nil {
		return fmt.Errorf("server failed: %w", startErr)
	}
	return nil
}
