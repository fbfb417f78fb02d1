package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillstream/study-platform/internal/admin"
	"github.com/skillstream/study-platform/internal/config"
	"github.com/skillstream/study-platform/internal/cumulative"
	"github.com/skillstream/study-platform/internal/db/repository"
	"github.com/skillstream/study-platform/internal/logging"
	"github.com/skillstream/study-platform/internal/quizgen"
	"github.com/skillstream/study-platform/internal/series"
	"github.com/skillstream/study-platform/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	videoRepo := repository.NewVideoRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	cumulativeRepo := repository.NewCumulativeRepository(pool)
	summaryRepo := repository.NewSummaryRepository(pool)

	resolver := series.NewResolver(videoRepo)
	quizCache := cumulative.NewCache(redisClient, cfg.Aggregation.CacheTTL)

	cumulativeSvc := cumulative.NewService(
		videoRepo,
		quizRepo,
		cumulativeRepo,
		quizCache,
		resolver,
		cumulative.ServiceOptions{
			Enabled:          cfg.Aggregation.Enabled,
			Model:            cfg.Generator.Model,
			FetchConcurrency: cfg.Aggregation.FetchConcurrency,
		},
		logger,
	)
	cumulativeHandler := cumulative.NewHTTPHandler(cumulativeSvc, logger)

	var quizgenHandler *quizgen.HTTPHandler
	if cfg.Generator.BaseURL != "" {
		client := quizgen.NewClient(quizgen.Config{
			BaseURL: cfg.Generator.BaseURL,
			APIKey:  cfg.Generator.APIKey,
			Model:   cfg.Generator.Model,
			Timeout: cfg.Generator.HTTPTimeout,
		}, logger)
		quizgenSvc := quizgen.NewService(videoRepo, quizRepo, summaryRepo, client, logger)
		quizgenHandler = quizgen.NewHTTPHandler(quizgenSvc, logger)
	} else {
		logger.Warn().Msg("generator not configured; individual study-aid generation disabled")
	}

	adminMgr := admin.NewManager(admin.TokenConfig{
		Secret: []byte(cfg.Security.AdminJWTSecret),
		Issuer: cfg.Name,
	})

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, server.Handlers{
		Cumulative: cumulativeHandler,
		Quizgen:    quizgenHandler,
		AdminMW:    admin.Middleware(adminMgr, logger),
	})

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
