package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillstream/study-platform/internal/config"
	"github.com/skillstream/study-platform/internal/cumulative"
	"github.com/skillstream/study-platform/internal/logging"
	"github.com/skillstream/study-platform/internal/quizgen"
)

// Handlers groups the feature handlers the server routes to. The quizgen
// handler is nil when no generator service is configured.
type Handlers struct {
	Cumulative *cumulative.HTTPHandler
	Quizgen    *quizgen.HTTPHandler
	AdminMW    func(http.Handler) http.Handler
}

// NewHTTPServer wires base routes (health, metrics) plus the study-aid API.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redisClient *redis.Client, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	adminOnly := h.AdminMW
	if adminOnly == nil {
		adminOnly = func(next http.Handler) http.Handler { return next }
	}

	// Cumulative quiz endpoints
	if h.Cumulative != nil {
		mux.HandleFunc("POST /v1/videos/{id}/cumulative-quiz", h.Cumulative.Generate)
		mux.HandleFunc("GET /v1/videos/{id}/cumulative-quiz", h.Cumulative.GetCached)
		mux.HandleFunc("GET /v1/videos/{id}/cumulative-quiz/eligibility", h.Cumulative.Eligibility)
		mux.Handle("DELETE /v1/videos/{id}/cumulative-quiz", adminOnly(http.HandlerFunc(h.Cumulative.Delete)))
		mux.Handle("DELETE /v1/series/{id}/cumulative-quizzes", adminOnly(http.HandlerFunc(h.Cumulative.DeleteSeries)))
	}

	// Individual study-aid endpoints
	if h.Quizgen != nil {
		mux.HandleFunc("POST /v1/videos/{id}/quiz", h.Quizgen.GenerateQuiz)
		mux.HandleFunc("POST /v1/videos/{id}/summary", h.Quizgen.GenerateSummary)
		mux.HandleFunc("GET /v1/videos/{id}/summary", h.Quizgen.GetSummary)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
