package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverORM      = "orm"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
)

const (
	KeyByIP   = "ip"
	KeyByUser = "user"
)

type AppConfig struct {
	Environment string
	Port        string
	ServiceName string

	DBDriver     string
	DatabasePath string
	DatabaseURL  string
	LogQueries   bool

	JWTAccessSecret      string
	JWTRefreshSecret     string
	JWTAccessExpiration  time.Duration
	JWTRefreshExpiration time.Duration
	BcryptCost           int

	AllowedOrigins []string
	EnforceHTTPS   bool

	RateLimitEnabled bool
	RateLimitConfigs map[string]RateLimitConfig

	CacheEnabled bool
	CacheDriver  string
	CacheTTL     time.Duration

	EventsDriver string
	RedisURL     string

	OTLPEndpoint string
	MetricsPort  string
	LokiURL      string
}

// RateLimitConfig is keyed by "METHOD /route" in AppConfig; "default"
// applies to every other route.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	KeyBy    string
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment: EnvDevelopment,
		Port:        "4000",
		ServiceName: "taskmanager",

		DBDriver:     DriverSQLite,
		DatabasePath: "taskmanager.db",

		JWTAccessExpiration:  15 * time.Minute,
		JWTRefreshExpiration: 7 * 24 * time.Hour,
		BcryptCost:           12,

		AllowedOrigins: []string{"http://localhost:3000"},

		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"POST /auth/register": {Requests: 5, Window: time.Minute, KeyBy: KeyByIP},
			"POST /auth/login":    {Requests: 10, Window: time.Minute, KeyBy: KeyByIP},
			"POST /auth/refresh":  {Requests: 20, Window: time.Minute, KeyBy: KeyByIP},
			"GET /tasks":          {Requests: 100, Window: time.Minute, KeyBy: KeyByUser},
			"POST /tasks":         {Requests: 30, Window: time.Minute, KeyBy: KeyByUser},
			"PATCH /tasks/:id":    {Requests: 30, Window: time.Minute, KeyBy: KeyByUser},
			"DELETE /tasks/:id":   {Requests: 20, Window: time.Minute, KeyBy: KeyByUser},
			"default":             {Requests: 60, Window: time.Minute, KeyBy: KeyByIP},
		},

		CacheEnabled: true,
		CacheDriver:  DriverMemory,
		CacheTTL:     30 * time.Second,

		EventsDriver: DriverMemory,
		RedisURL:     "redis://localhost:6379/0",

		MetricsPort: "9091",
	}
}

// Load reads the environment on top of GetDefaultConfig. Outside production
// a .env file in the working directory is loaded first when present.
func Load() (*AppConfig, error) {
	cfg := GetDefaultConfig()
	cfg.Environment = getEnv("APP_ENV", cfg.Environment)

	if cfg.Environment != EnvProduction {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}

		cfg.Environment = getEnv("APP_ENV", cfg.Environment)
	}

	var err error

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", cfg.DBDriver))
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTAccessSecret = os.Getenv("JWT_ACCESS_SECRET")
	cfg.JWTRefreshSecret = os.Getenv("JWT_REFRESH_SECRET")
	cfg.CacheDriver = strings.ToLower(getEnv("CACHE_DRIVER", cfg.CacheDriver))
	cfg.EventsDriver = strings.ToLower(getEnv("EVENTS_DRIVER", cfg.EventsDriver))
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.OTLPEndpoint = getEnv("OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.MetricsPort = getEnv("METRICS_PORT", cfg.MetricsPort)
	cfg.LokiURL = getEnv("LOKI_URL", cfg.LokiURL)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	if cfg.LogQueries, err = getBool("DB_LOG_QUERIES", false); err != nil {
		return nil, err
	}

	if cfg.EnforceHTTPS, err = getBool("ENFORCE_HTTPS", cfg.IsProduction()); err != nil {
		return nil, err
	}

	if cfg.RateLimitEnabled, err = getBool("RATE_LIMIT_ENABLED", cfg.RateLimitEnabled); err != nil {
		return nil, err
	}

	if cfg.CacheEnabled, err = getBool("CACHE_ENABLED", cfg.CacheEnabled); err != nil {
		return nil, err
	}

	if cfg.JWTAccessExpiration, err = getDuration("JWT_ACCESS_EXPIRATION", cfg.JWTAccessExpiration); err != nil {
		return nil, err
	}

	if cfg.JWTRefreshExpiration, err = getDuration("JWT_REFRESH_EXPIRATION", cfg.JWTRefreshExpiration); err != nil {
		return nil, err
	}

	if value := os.Getenv("BCRYPT_COST"); value != "" {
		if cfg.BcryptCost, err = strconv.Atoi(value); err != nil {
			return nil, fmt.Errorf("BCRYPT_COST: %w", err)
		}
	}

	if err := cfg.applySecrets(); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func (c *AppConfig) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverORM, DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	for name, driver := range map[string]string{"CACHE_DRIVER": c.CacheDriver, "EVENTS_DRIVER": c.EventsDriver} {
		if driver != DriverMemory && driver != DriverRedis {
			return fmt.Errorf("unsupported %s %q", name, driver)
		}
	}

	// Redis events imply several instances, and a per-instance memory cache
	// would never see the other instances' writes.
	if c.EventsDriver == DriverRedis && c.CacheEnabled && c.CacheDriver == DriverMemory {
		return errors.New("CACHE_DRIVER=redis (or CACHE_ENABLED=false) is required when EVENTS_DRIVER=redis")
	}

	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	return nil
}

// applySecrets refuses to start a production server without secrets and
// falls back to fixed development values elsewhere.
func (c *AppConfig) applySecrets() error {
	if c.JWTAccessSecret != "" && c.JWTRefreshSecret != "" {
		return nil
	}

	if c.IsProduction() {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required in production")
	}

	slog.Warn("JWT secrets not set, using development defaults", "env", c.Environment)

	if c.JWTAccessSecret == "" {
		c.JWTAccessSecret = "dev-access-secret-change-me"
	}

	if c.JWTRefreshSecret == "" {
		c.JWTRefreshSecret = "dev-refresh-secret-change-me"
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}

	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}

	return parsed, nil
}

// getDuration accepts Go durations ("15m") and a day suffix ("7d").
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}

		return time.Duration(n) * 24 * time.Hour, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}

	return parsed, nil
}

func splitList(value string) []string {
	var items []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
