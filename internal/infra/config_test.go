package infra

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:        strings.Repeat("s", 32),
		SweepConcurrency: 4,
		SweepTimezone:    "UTC",
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("API_PORT", "4100")
	t.Setenv("SWEEP_SCHEDULE", "30 6,18 * * *")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 4100, cfg.APIPort)
	assert.Equal(t, "30 6,18 * * *", cfg.SweepSchedule)
	assert.Equal(t, "fanpicks", cfg.KafkaTopicPrefix)
	assert.Equal(t, 10000, cfg.SettlementCacheSize)
	assert.Equal(t, time.Minute, cfg.SettlementBackfillInterval)
	assert.False(t, cfg.StorageEnabled())
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("default secret rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTSecret = "change-me-in-production"
		assert.ErrorContains(t, cfg.Validate(), "insecure default")
	})

	t.Run("short secret rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTSecret = "short"
		assert.ErrorContains(t, cfg.Validate(), "too short")
	})

	t.Run("insecure defaults allowed in dev", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTSecret = "change-me-in-production"
		cfg.AllowInsecureDefaults = true
		assert.NoError(t, cfg.Validate())
	})

	t.Run("settlement needs program id", func(t *testing.T) {
		cfg := validConfig()
		cfg.SettlementEnabled = true
		assert.ErrorContains(t, cfg.Validate(), "CONTEST_PROGRAM_ID")
	})

	t.Run("bad timezone", func(t *testing.T) {
		cfg := validConfig()
		cfg.SweepTimezone = "Mars/Olympus"
		assert.ErrorContains(t, cfg.Validate(), "SWEEP_TIMEZONE")
	})

	t.Run("zero concurrency", func(t *testing.T) {
		cfg := validConfig()
		cfg.SweepConcurrency = 0
		assert.ErrorContains(t, cfg.Validate(), "SWEEP_CONCURRENCY")
	})
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{PGUser: "u", PGPassword: "p", PGHost: "db", PGPort: 5432, PGDatabase: "fp"}
	assert.Equal(t, "postgres://u:p@db:5432/fp?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}
