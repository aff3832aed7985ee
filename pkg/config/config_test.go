package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDevelopment)
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiration)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshExpiration)
	assert.NotEmpty(t, cfg.JWTAccessSecret)
	assert.NotEqual(t, cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	assert.False(t, cfg.EnforceHTTPS)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", EnvTest)
	t.Setenv("PORT", "8081")
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("JWT_ACCESS_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "b")
	t.Setenv("JWT_ACCESS_EXPIRATION", "5m")
	t.Setenv("JWT_REFRESH_EXPIRATION", "30d")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("EVENTS_DRIVER", "redis")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, 5*time.Minute, cfg.JWTAccessExpiration)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTRefreshExpiration)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, DriverRedis, cfg.CacheDriver)
	assert.Equal(t, DriverRedis, cfg.EventsDriver)
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()

	assert.ErrorContains(t, err, "required in production")
}

func TestLoad_ProductionEnforcesHTTPS(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("JWT_ACCESS_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "b")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.EnforceHTTPS)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"DB_DRIVER":             "mongo",
		"JWT_ACCESS_EXPIRATION": "soon",
		"RATE_LIMIT_ENABLED":    "maybe",
		"BCRYPT_COST":           "high",
		"EVENTS_DRIVER":         "kafka",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvTest)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.JWTAccessSecret = "same"
	cfg.JWTRefreshSecret = "same"

	assert.ErrorContains(t, cfg.Validate(), "must differ")

	cfg.JWTRefreshSecret = "other"
	cfg.DBDriver = DriverPostgres

	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")
}

func TestValidate_RedisEventsNeedSharedCache(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.JWTAccessSecret = "a"
	cfg.JWTRefreshSecret = "b"
	cfg.EventsDriver = DriverRedis

	assert.ErrorContains(t, cfg.Validate(), "EVENTS_DRIVER=redis")

	cfg.CacheDriver = DriverRedis
	assert.NoError(t, cfg.Validate())

	cfg.CacheDriver = DriverMemory
	cfg.CacheEnabled = false
	assert.NoError(t, cfg.Validate())
}
