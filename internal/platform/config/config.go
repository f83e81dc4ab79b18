// Package config builds process configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server reads at startup. Nothing else in
// the process consults the environment.
type Config struct {
	Addr string
	Env  string

	JWTSigningKey string
	SessionTTL    time.Duration
	CookieName    string
	CookieSecure  bool
	LoginURL      string

	// GateDelay slows the session gate outside production so front-end
	// loading states are visible during development. Zero in production.
	GateDelay time.Duration

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	OAuth    OAuthConfig
}

// PostgresConfig holds the pgx pool settings.
type PostgresConfig struct {
	URL string
}

// RedisConfig holds the go-redis client settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the audit relay settings. Empty brokers disable the relay.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// OAuthConfig holds the external identity-provider settings used by the
// redirect endpoints.
type OAuthConfig struct {
	Domain      string
	ClientID    string
	RedirectURI string
	AppURL      string
}

// FromEnv builds a Config from environment variables, applying development
// defaults where a value is absent.
func FromEnv() Config {
	cfg := Config{
		Addr:          envOr("EASYPLIT_ADDR", ":8080"),
		Env:           envOr("EASYPLIT_ENV", "development"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:    envDurationOr("SESSION_TTL", 7*24*time.Hour),
		CookieName:    envOr("SESSION_COOKIE_NAME", "token"),
		CookieSecure:  os.Getenv("SESSION_COOKIE_SECURE") == "true",
		LoginURL:      envOr("LOGIN_URL", "/login"),
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "easyplit.audit"),
		},
		OAuth: OAuthConfig{
			Domain:      os.Getenv("OAUTH_DOMAIN"),
			ClientID:    os.Getenv("OAUTH_CLIENT_ID"),
			RedirectURI: os.Getenv("OAUTH_REDIRECT_URI"),
			AppURL:      envOr("PUBLIC_APP_URL", "http://localhost:3000"),
		},
	}

	if cfg.Env != "production" {
		cfg.GateDelay = envDurationOr("GATE_DEV_DELAY", 0)
	}

	return cfg
}

// IsProduction reports whether the process runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
