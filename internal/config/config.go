package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string
	// Mutating requests per minute per client IP; 0 disables the limiter
	WriteRateLimit int

	// Database
	SQLiteDBPath string

	// AMQP; an empty URL disables ledger events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Recurring scheduler
	RecurringEnabled  bool
	RecurringInterval time.Duration

	// Dashboard
	DashboardCacheTTL time.Duration

	// Port of the worker binaries' /metrics listener; empty disables it
	WorkerMetricsPort string

	// Logging
	LogLevel  string
	LogFormat string

	// Defaults applied when a person or account is created without them
	DefaultPersonShare    decimal.Decimal
	DefaultSplitPrimary   decimal.Decimal
	DefaultSplitSecondary decimal.Decimal
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		WriteRateLimit:     getEnvInt("WRITE_RATE_LIMIT", 120),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/rateio.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "rateio"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		RecurringEnabled:  getEnvBool("RECURRING_ENABLED", true),
		RecurringInterval: getEnvDuration("RECURRING_INTERVAL", time.Hour),

		DashboardCacheTTL: getEnvDuration("DASHBOARD_CACHE_TTL", 30*time.Second),

		WorkerMetricsPort: getEnv("WORKER_METRICS_PORT", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DefaultPersonShare:    getEnvDecimal("DEFAULT_PERSON_SHARE", "0.5"),
		DefaultSplitPrimary:   getEnvDecimal("DEFAULT_SPLIT_PRIMARY", "0.5"),
		DefaultSplitSecondary: getEnvDecimal("DEFAULT_SPLIT_SECONDARY", "0.5"),
	}
}

// AMQPEnabled reports whether ledger events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
	// account defaults may be off by a cent's worth of percentage
	splitTolerance = decimal.RequireFromString("0.01")
)

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.WorkerMetricsPort != "" {
		if port, err := strconv.Atoi(c.WorkerMetricsPort); err != nil || port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid worker metrics port '%s': must be between 1 and 65535", c.WorkerMetricsPort))
		}
	}

	if c.WriteRateLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid write rate limit %d: must not be negative", c.WriteRateLimit))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RecurringEnabled {
		if c.RecurringInterval < time.Second {
			errors = append(errors, fmt.Sprintf("invalid recurring interval %v: must be at least 1 second", c.RecurringInterval))
		} else if c.RecurringInterval > 24*time.Hour {
			errors = append(errors, fmt.Sprintf("invalid recurring interval %v: must be at most 24 hours", c.RecurringInterval))
		}
	}

	if c.DashboardCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid dashboard cache TTL %v: must not be negative", c.DashboardCacheTTL))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" && c.LogFormat != "tint" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of [text json tint]", c.LogFormat))
	}

	for name, v := range map[string]decimal.Decimal{
		"default person share":    c.DefaultPersonShare,
		"default primary split":   c.DefaultSplitPrimary,
		"default secondary split": c.DefaultSplitSecondary,
	} {
		if v.LessThan(zero) || v.GreaterThan(one) {
			errors = append(errors, fmt.Sprintf("invalid %s %s: must be between 0 and 1", name, v))
		}
	}
	if sum := c.DefaultSplitPrimary.Add(c.DefaultSplitSecondary); sum.Sub(one).Abs().GreaterThan(splitTolerance) {
		errors = append(errors, fmt.Sprintf("default account splits sum to %s: must be 1.0", sum))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvDecimal keeps an unparsable value visible to Validate by mapping
// it to -1 instead of silently using the default.
func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	value := getEnv(key, defaultValue)
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.NewFromInt(-1)
	}
	return d
}
