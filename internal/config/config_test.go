package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "TICKETS_PATH", "RULES_PATH", "SCORING_WORKERS", "REDIS_ADDR",
		"REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL_SECONDS", "GRPC_PORT", "GRPC_REFLECTION_ENABLED",
		"GRPC_LOGGING_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadFromEnv()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./data/tickets.csv", cfg.TicketsPath)
	assert.Empty(t, cfg.RulesPath)
	assert.GreaterOrEqual(t, cfg.ScoringWorkers, 1)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.False(t, cfg.GRPCReflectionEnabled)
	assert.True(t, cfg.GRPCLoggingEnabled)
	assert.Nil(t, cfg.KafkaBrokers)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("TICKETS_PATH", "/data/export.csv")
	t.Setenv("SCORING_WORKERS", "4")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("GRPC_PORT", "9090")
	t.Setenv("GRPC_REFLECTION_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("KAFKA_TOPIC", "qc.scores")

	cfg := LoadFromEnv()

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "/data/export.csv", cfg.TicketsPath)
	assert.Equal(t, 4, cfg.ScoringWorkers)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 9090, cfg.GRPCPort)
	assert.True(t, cfg.GRPCReflectionEnabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "qc.scores", cfg.KafkaTopic)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvBadNumbersFallBack(t *testing.T) {
	t.Setenv("GRPC_PORT", "not-a-port")
	t.Setenv("GRPC_LOGGING_ENABLED", "maybe")

	cfg := LoadFromEnv()
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.True(t, cfg.GRPCLoggingEnabled)
}

func validConfig() Config {
	return Config{
		AppEnv:         "test",
		TicketsPath:    "tickets.csv",
		ScoringWorkers: 1,
		CacheTTL:       time.Minute,
		GRPCPort:       50051,
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown env", func(c *Config) { c.AppEnv = "staging" }},
		{"no tickets path", func(c *Config) { c.TicketsPath = "" }},
		{"zero workers", func(c *Config) { c.ScoringWorkers = 0 }},
		{"port out of range", func(c *Config) { c.GRPCPort = 70000 }},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }},
		{"bad redis address", func(c *Config) { c.RedisAddr = "redis" }},
		{"brokers without topic", func(c *Config) { c.KafkaBrokers = []string{"kafka:9092"} }},
		{"bad broker", func(c *Config) {
			c.KafkaBrokers = []string{"kafka"}
			c.KafkaTopic = "qc.scores"
		}},
	}

	base := validConfig()
	require.NoError(t, base.Validate())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("development with debug level", func(t *testing.T) {
		logger, err := NewLogger(&Config{AppEnv: "development", LogLevel: "debug"})
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("production with invalid level defaults to info", func(t *testing.T) {
		logger, err := NewLogger(&Config{AppEnv: "production", LogLevel: "loud"})
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	})
}
