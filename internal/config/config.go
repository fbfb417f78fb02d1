package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"study-platform"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres    Postgres
	Redis       Redis
	Security    Security
	Aggregation Aggregation
	Generator   Generator
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds cache configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing admin tokens.
type Security struct {
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET,notEmpty"`
}

// Aggregation governs cumulative quiz behavior. The enabled flag is passed
// explicitly into the orchestrator; nothing reads it from ambient state at
// request time.
type Aggregation struct {
	Enabled          bool          `env:"CUMULATIVE_QUIZ_ENABLED" envDefault:"true"`
	CacheTTL         time.Duration `env:"CUMULATIVE_QUIZ_CACHE_TTL" envDefault:"72h"`
	FetchConcurrency int           `env:"CUMULATIVE_QUIZ_FETCH_CONCURRENCY" envDefault:"4"`
}

// Generator configures the generative-model service producing individual
// quizzes and summaries.
type Generator struct {
	BaseURL     string        `env:"GENERATOR_URL"`
	APIKey      string        `env:"GENERATOR_API_KEY"`
	Model       string        `env:"GENERATOR_MODEL" envDefault:"gpt-4o-mini"`
	HTTPTimeout time.Duration `env:"GENERATOR_HTTP_TIMEOUT" envDefault:"30s"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
