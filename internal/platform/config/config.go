package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr       string
	PolicyFile string
	// TrustProxy honors X-Forwarded-For and X-Real-IP when resolving the
	// client IP. Enable only behind a proxy that sets them.
	TrustProxy bool

	Log          Log
	Registration Registration
	RateLimit    RateLimit
	Redis        RedisConfig
}

type Log struct {
	Level  string
	Format string
}

// Registration configures the remote application registry. An empty URL
// selects the simulated registrar.
type Registration struct {
	URL              string
	ConnectTimeout   time.Duration
	ReadTimeout      time.Duration
	MaxRetries       int
	InitialBackoff   time.Duration
	BreakerFailures  int
	BreakerSuccesses int
	BreakerCooldown  time.Duration
}

// RateLimit configures the per-client limiter on POST /cartoes.
type RateLimit struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// RedisConfig enables the shared limiter store when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var errs []error
	env := envReader{errs: &errs}

	cfg := Server{
		Addr:       env.str("CARTOES_ADDR", ":8080"),
		PolicyFile: env.str("CARTOES_POLICY_FILE", ""),
		TrustProxy: env.boolean("CARTOES_TRUST_PROXY", false),
		Log: Log{
			Level:  env.str("LOG_LEVEL", "info"),
			Format: env.str("LOG_FORMAT", "json"),
		},
		Registration: Registration{
			URL:              env.str("REGISTRATION_URL", ""),
			ConnectTimeout:   env.duration("REGISTRATION_CONNECT_TIMEOUT", 2*time.Second),
			ReadTimeout:      env.duration("REGISTRATION_READ_TIMEOUT", 2*time.Second),
			MaxRetries:       env.integer("REGISTRATION_MAX_RETRIES", 3),
			InitialBackoff:   env.duration("REGISTRATION_INITIAL_BACKOFF", 200*time.Millisecond),
			BreakerFailures:  env.integer("REGISTRATION_BREAKER_FAILURES", 5),
			BreakerSuccesses: env.integer("REGISTRATION_BREAKER_SUCCESSES", 2),
			BreakerCooldown:  env.duration("REGISTRATION_BREAKER_COOLDOWN", 30*time.Second),
		},
		RateLimit: RateLimit{
			Enabled: env.boolean("RATE_LIMIT_ENABLED", true),
			RPS:     env.float("RATE_LIMIT_RPS", 10),
			Burst:   env.integer("RATE_LIMIT_BURST", 20),
		},
		Redis: RedisConfig{
			URL:          env.str("REDIS_URL", ""),
			PoolSize:     env.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: env.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  env.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  env.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: env.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}

	if cfg.Registration.MaxRetries < 0 {
		errs = append(errs, errors.New("REGISTRATION_MAX_RETRIES must not be negative"))
	}
	if cfg.RateLimit.Enabled && (cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}

	if len(errs) > 0 {
		return Server{}, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// envReader parses typed values and accumulates malformed entries.
type envReader struct {
	errs *[]error
}

func (e envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (e envReader) integer(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (e envReader) float(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (e envReader) boolean(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}
