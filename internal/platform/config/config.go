package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Config struct {
	Addr          string
	JWTSigningKey string
	PostgresDSN   string
	Redis         RedisConfig
	Kafka         KafkaConfig

	// RuleCeiling is the per-tenant residency rule limit, enforced at rule
	// creation time.
	RuleCeiling int

	// ComplianceCacheTTL bounds how stale a cached compliance mapping may be
	// served. Entries within the TTL window are served without a store read;
	// past expiry the cache is never authoritative.
	ComplianceCacheTTL time.Duration
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds broker addresses and the audit topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:          envOr("MERIDIAN_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envOrInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envOrInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envOrDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envOrDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envOrDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(envOr("KAFKA_BROKERS", "localhost:9092")),
			Topic:   envOr("KAFKA_AUDIT_TOPIC", "sovereignty.audit"),
		},
		RuleCeiling:        envOrInt("RESIDENCY_RULE_CEILING", 100),
		ComplianceCacheTTL: envOrDuration("COMPLIANCE_CACHE_TTL", time.Hour),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
