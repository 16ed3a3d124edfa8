package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration so main stays lean.
type Server struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	KafkaBrokers  string
	AuditTopic    string
	JWTSigningKey string
	TokenIssuer   string
	DocumentDir   string
	// CooldownDays is the duplicate-detection lookback window.
	CooldownDays int
}

// RedisConfig tunes the optional Redis connection used for rendered-receipt
// document storage.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultCooldownDays matches the operational policy for repeat handouts of
// the same aid type.
const DefaultCooldownDays = 30

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:          envOr("AIDTRACK_ADDR", ":8080"),
		PostgresDSN:   os.Getenv("AIDTRACK_POSTGRES_DSN"),
		RedisURL:      os.Getenv("AIDTRACK_REDIS_URL"),
		KafkaBrokers:  os.Getenv("AIDTRACK_KAFKA_BROKERS"),
		AuditTopic:    envOr("AIDTRACK_AUDIT_TOPIC", "aidtrack.audit"),
		JWTSigningKey: envOr("AIDTRACK_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenIssuer:   envOr("AIDTRACK_TOKEN_ISSUER", "aidtrack"),
		DocumentDir:   envOr("AIDTRACK_DOCUMENT_DIR", "./receipts"),
		CooldownDays:  DefaultCooldownDays,
	}
	if raw := os.Getenv("AIDTRACK_COOLDOWN_DAYS"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			cfg.CooldownDays = days
		}
	}
	return cfg
}

// Redis derives the Redis connection settings from the server config.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
