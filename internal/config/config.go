package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Vector-Insights reporting service.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Storage    StorageConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Report     ReportConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ClickHouseConfig configures the optional ClickHouse daily stats source.
type ClickHouseConfig struct {
	Addr     string
	Database string
	User     string
	Password string
	Table    string
}

// Storage backends.
const (
	BackendMemory     = "memory"
	BackendPostgres   = "postgres"
	BackendRedis      = "redis"
	BackendClickHouse = "clickhouse"
)

// StorageConfig selects where hierarchy/CRM records and daily stats are read from.
type StorageConfig struct {
	// Backend serves hierarchy, sales and leads: memory or postgres.
	Backend string
	// StatsBackend serves daily stats: memory, postgres, redis or clickhouse.
	StatsBackend string
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type LogConfig struct {
	Level  string
	Format string
	// File, when set, mirrors logs into a size-rotated file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool
	Path      string
	Namespace string
}

// ReportConfig tunes dashboard projections.
type ReportConfig struct {
	Locale       string
	TopCampaigns int
	RecentEvents int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("VECTOR_INSIGHTS_HTTP_ADDR", ":8080"),
			Env:             getEnv("VECTOR_INSIGHTS_ENV", "development"),
			ShutdownTimeout: getDurationEnv("VECTOR_INSIGHTS_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:        getEnv("VECTOR_INSIGHTS_DB_HOST", "localhost"),
			Port:        getIntEnv("VECTOR_INSIGHTS_DB_PORT", 5432),
			User:        getEnv("VECTOR_INSIGHTS_DB_USER", "insights"),
			Password:    getEnv("VECTOR_INSIGHTS_DB_PASSWORD", "insights_secret"),
			DBName:      getEnv("VECTOR_INSIGHTS_DB_NAME", "insights"),
			SSLMode:     getEnv("VECTOR_INSIGHTS_DB_SSLMODE", "disable"),
			MaxConns:    getIntEnv("VECTOR_INSIGHTS_DB_MAX_CONNS", 25),
			MinConns:    getIntEnv("VECTOR_INSIGHTS_DB_MIN_CONNS", 5),
			AutoMigrate: getBoolEnv("VECTOR_INSIGHTS_DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("VECTOR_INSIGHTS_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("VECTOR_INSIGHTS_REDIS_PASSWORD", ""),
			DB:       getIntEnv("VECTOR_INSIGHTS_REDIS_DB", 0),
		},
		ClickHouse: ClickHouseConfig{
			Addr:     getEnv("VECTOR_INSIGHTS_CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("VECTOR_INSIGHTS_CLICKHOUSE_DB", "insights"),
			User:     getEnv("VECTOR_INSIGHTS_CLICKHOUSE_USER", "default"),
			Password: getEnv("VECTOR_INSIGHTS_CLICKHOUSE_PASSWORD", ""),
			Table:    getEnv("VECTOR_INSIGHTS_CLICKHOUSE_TABLE", "ad_daily_stats"),
		},
		Storage: StorageConfig{
			Backend:      getEnv("VECTOR_INSIGHTS_STORAGE_BACKEND", BackendPostgres),
			StatsBackend: getEnv("VECTOR_INSIGHTS_STATS_BACKEND", BackendPostgres),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("VECTOR_INSIGHTS_AUTH_ENABLED", true),
			MasterKey: getEnv("VECTOR_INSIGHTS_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("VECTOR_INSIGHTS_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("VECTOR_INSIGHTS_RATE_LIMIT_ENABLED", true),
			RPS:     getFloatEnv("VECTOR_INSIGHTS_RATE_LIMIT_RPS", 50),
			Burst:   getIntEnv("VECTOR_INSIGHTS_RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:      getEnv("VECTOR_INSIGHTS_LOG_LEVEL", "info"),
			Format:     getEnv("VECTOR_INSIGHTS_LOG_FORMAT", "json"),
			File:       getEnv("VECTOR_INSIGHTS_LOG_FILE", ""),
			MaxSizeMB:  getIntEnv("VECTOR_INSIGHTS_LOG_MAX_SIZE_MB", 20),
			MaxBackups: getIntEnv("VECTOR_INSIGHTS_LOG_MAX_BACKUPS", 10),
			MaxAgeDays: getIntEnv("VECTOR_INSIGHTS_LOG_MAX_AGE_DAYS", 30),
		},
		Metrics: MetricsConfig{
			Enabled:   getBoolEnv("VECTOR_INSIGHTS_METRICS_ENABLED", true),
			Path:      getEnv("VECTOR_INSIGHTS_METRICS_PATH", "/metrics"),
			Namespace: getEnv("VECTOR_INSIGHTS_METRICS_NAMESPACE", "vector_insights"),
		},
		Report: ReportConfig{
			Locale:       getEnv("VECTOR_INSIGHTS_REPORT_LOCALE", "en"),
			TopCampaigns: getIntEnv("VECTOR_INSIGHTS_REPORT_TOP_CAMPAIGNS", 5),
			RecentEvents: getIntEnv("VECTOR_INSIGHTS_REPORT_RECENT_EVENTS", 6),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("VECTOR_INSIGHTS_API_KEY_MASTER is required when auth is enabled")
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	switch c.Storage.StatsBackend {
	case BackendMemory, BackendPostgres, BackendRedis, BackendClickHouse:
	default:
		return fmt.Errorf("unsupported stats backend %q", c.Storage.StatsBackend)
	}
	if c.Storage.StatsBackend == BackendPostgres && c.Storage.Backend != BackendPostgres {
		return fmt.Errorf("postgres stats backend requires postgres storage backend")
	}
	switch c.Report.Locale {
	case "en", "ru":
	default:
		return fmt.Errorf("unsupported report locale %q", c.Report.Locale)
	}
	if c.Report.TopCampaigns < 0 || c.Report.RecentEvents < 0 {
		return fmt.Errorf("report limits must be >= 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
