package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("USERAPI_DATABASE__URI", "mongodb://localhost:27017")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Primary.Env)
	assert.Equal(t, "7002", cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "userapi", cfg.Database.Name)
	assert.Equal(t, "users", cfg.Database.Collection)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.False(t, cfg.Redis.Enabled())

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, 100*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
	assert.Equal(t, 5*time.Second, cfg.Observability.HealthChecks.Timeout)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("USERAPI_PRIMARY__ENV", "production")
	t.Setenv("USERAPI_SERVER__PORT", "8080")
	t.Setenv("USERAPI_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("USERAPI_DATABASE__URI", "mongodb://db:27017")
	t.Setenv("USERAPI_DATABASE__NAME", "people")
	t.Setenv("USERAPI_REDIS__ADDRESS", "redis:6379")
	t.Setenv("USERAPI_OBSERVABILITY__LOGGING__FORMAT", "console")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "people", cfg.Database.Name)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "console", cfg.Observability.Logging.Format)
	assert.Equal(t, "production", cfg.Observability.Environment)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.True(t, cfg.Observability.IsProduction())
}

func TestLoadConfig_LegacyMongoURL(t *testing.T) {
	t.Setenv(LegacyMongoURLEnv, "mongodb://legacy:27017/app")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://legacy:27017/app", cfg.Database.URI)
}

func TestLoadConfig_PrefixedURIWinsOverLegacy(t *testing.T) {
	t.Setenv(LegacyMongoURLEnv, "mongodb://legacy:27017")
	t.Setenv("USERAPI_DATABASE__URI", "mongodb://primary:27017")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://primary:27017", cfg.Database.URI)
}

func TestLoadConfig_MissingDatabaseURI(t *testing.T) {
	t.Setenv(LegacyMongoURLEnv, "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadConfig_InvalidLogLevel(t *testing.T) {
	t.Setenv("USERAPI_DATABASE__URI", "mongodb://localhost:27017")
	t.Setenv("USERAPI_OBSERVABILITY__LOGGING__LEVEL", "verbose")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging level")
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	c := &ObservabilityConfig{Environment: "production"}
	assert.Equal(t, "info", c.GetLogLevel())

	c.Environment = "local"
	assert.Equal(t, "debug", c.GetLogLevel())

	c.Logging.Level = "warn"
	assert.Equal(t, "warn", c.GetLogLevel())
}

func TestObservabilityConfig_Validate(t *testing.T) {
	c := DefaultObservabilityConfig()
	require.NoError(t, c.Validate())

	c.Logging.Format = "xml"
	assert.Error(t, c.Validate())

	c = DefaultObservabilityConfig()
	c.Logging.SlowQueryThreshold = -time.Second
	assert.Error(t, c.Validate())

	c = DefaultObservabilityConfig()
	c.ServiceName = ""
	assert.Error(t, c.Validate())
}

func TestHealthChecksConfig_Includes(t *testing.T) {
	h := DefaultObservabilityConfig().HealthChecks
	assert.True(t, h.Includes("database"))
	assert.True(t, h.Includes("redis"))
	assert.False(t, h.Includes("kafka"))
}
