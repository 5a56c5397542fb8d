package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5435"`
	PGUser      string `env:"PGUSER" envDefault:"fanpicks"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"fanpicks"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"fanpicks"`
	PGMaxConns  int32  `env:"PG_MAX_CONNS" envDefault:"20"`
	PGMinConns  int32  `env:"PG_MIN_CONNS" envDefault:"2"`

	// PGStatementTimeout bounds every statement; zero leaves the server default.
	PGStatementTimeout time.Duration `env:"PG_STATEMENT_TIMEOUT" envDefault:"15s"`

	// Redis (empty disables the sweep lock)
	RedisURL string `env:"REDIS_URL"`

	// JWT
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTPlayerExpiry time.Duration `env:"JWT_PLAYER_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry  time.Duration `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3100"`

	// Kafka
	KafkaBrokers     string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled     bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopicPrefix string `env:"KAFKA_TOPIC_PREFIX" envDefault:"fanpicks"`

	// Outbox relay
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	OutboxRetention    time.Duration `env:"OUTBOX_RETENTION" envDefault:"168h"`

	// Solana settlement
	SettlementEnabled       bool    `env:"SETTLEMENT_ENABLED" envDefault:"false"`
	SolanaRPCURL            string  `env:"SOLANA_RPC_URL" envDefault:"https://api.devnet.solana.com"`
	SolanaWSURL             string  `env:"SOLANA_WS_URL" envDefault:"wss://api.devnet.solana.com"`
	ContestProgramID        string  `env:"CONTEST_PROGRAM_ID"`
	SolanaCommitment        string  `env:"SOLANA_COMMITMENT" envDefault:"confirmed"`
	SettlementBackfillLimit int     `env:"SETTLEMENT_BACKFILL_LIMIT" envDefault:"100"`
	SettlementCacheSize     int     `env:"SETTLEMENT_CACHE_SIZE" envDefault:"10000"`
	SolanaRPCRatePerSecond  float64 `env:"SOLANA_RPC_RPS" envDefault:"5"`

	// SettlementBackfillInterval re-runs backfill so failed signatures are retried; 0 disables it.
	SettlementBackfillInterval time.Duration `env:"SETTLEMENT_BACKFILL_INTERVAL" envDefault:"1m"`

	// Completion sweep
	SweepEnabled     bool   `env:"SWEEP_ENABLED" envDefault:"true"`
	SweepSchedule    string `env:"SWEEP_SCHEDULE" envDefault:"0 0,12 * * *"`
	SweepTimezone    string `env:"SWEEP_TIMEZONE" envDefault:"UTC"`
	SweepConcurrency int    `env:"SWEEP_CONCURRENCY" envDefault:"4"`

	// Object storage (empty bucket disables uploads)
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`

	// Rate limits
	PredictionRateLimit  int           `env:"PREDICTION_RATE_LIMIT" envDefault:"30"`
	PredictionRateWindow time.Duration `env:"PREDICTION_RATE_WINDOW" envDefault:"1m"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig reads an optional .env file, then parses environment variables into a Config.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; real environment always wins.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass the secret checks (local dev only).
func (c *Config) Validate() error {
	if c.SettlementEnabled && c.ContestProgramID == "" {
		return fmt.Errorf("SETTLEMENT_ENABLED requires CONTEST_PROGRAM_ID")
	}
	if c.SweepConcurrency < 1 {
		return fmt.Errorf("SWEEP_CONCURRENCY must be at least 1, got %d", c.SweepConcurrency)
	}
	if _, err := time.LoadLocation(c.SweepTimezone); err != nil {
		return fmt.Errorf("SWEEP_TIMEZONE: %w", err)
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// StorageEnabled reports whether object storage is configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}
