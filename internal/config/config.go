package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv   string `validate:"oneof=development production test"`
	LogLevel string

	TicketsPath    string `validate:"required"`
	RulesPath      string
	ScoringWorkers int `validate:"gte=1"`

	// RedisAddr empty disables the report cache.
	RedisAddr     string `validate:"omitempty,hostname_port"`
	RedisPassword string
	RedisDB       int           `validate:"gte=0"`
	CacheTTL      time.Duration `validate:"gt=0"`

	GRPCPort              int `validate:"min=1,max=65535"`
	GRPCReflectionEnabled bool
	GRPCLoggingEnabled    bool

	// KafkaBrokers empty disables score publication.
	KafkaBrokers []string `validate:"dive,hostname_port"`
	KafkaTopic   string   `validate:"required_with=KafkaBrokers"`
}

// LoadFromEnv loads configuration from environment variables. Unparseable
// numbers and booleans fall back to their defaults.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		TicketsPath:           getEnv("TICKETS_PATH", "./data/tickets.csv"),
		RulesPath:             getEnv("RULES_PATH", ""),
		ScoringWorkers:        getEnvInt("SCORING_WORKERS", runtime.GOMAXPROCS(0)),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		CacheTTL:              time.Duration(getEnvInt("CACHE_TTL_SECONDS", 600)) * time.Second,
		GRPCPort:              getEnvInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getEnvBool("GRPC_REFLECTION_ENABLED", false),
		GRPCLoggingEnabled:    getEnvBool("GRPC_LOGGING_ENABLED", true),
		KafkaBrokers:          splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:            getEnv("KAFKA_TOPIC", ""),
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewDevelopmentConfig()
	if cfg.AppEnv == "production" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
