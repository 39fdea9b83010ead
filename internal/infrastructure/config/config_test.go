package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearStorefrontEnv unsets every STOREFRONT_ variable for the duration of the test
func clearStorefrontEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "STOREFRONT_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearStorefrontEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8000", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5*24*time.Hour, cfg.JWT.AccessTokenExpiration)
		assert.Equal(t, 8025, cfg.Email.Port)
		assert.Equal(t, "from@storefront.com", cfg.Email.From)
		assert.Equal(t, 1, cfg.Scheduler.MonthlyReportDay)
		assert.Equal(t, 4, cfg.Scheduler.MonthlyReportHour)
		assert.Equal(t, 30, cfg.Scheduler.MonthlyReportMin)
		assert.Equal(t, 30*24*time.Hour, cfg.Cart.TTL)
		assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.HTTP.CORSAllowOrigins)
	})

	t.Run("background work is enabled by default", func(t *testing.T) {
		clearStorefrontEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.Event.ProcessorEnabled)
		assert.True(t, cfg.Event.CleanupEnabled)
		assert.Equal(t, 3, cfg.Event.MaxRetries)
		assert.True(t, cfg.Scheduler.Enabled)
	})

	t.Run("background work can be switched off", func(t *testing.T) {
		clearStorefrontEnv(t)
		t.Setenv("STOREFRONT_EVENT_PROCESSOR_ENABLED", "false")
		t.Setenv("STOREFRONT_SCHEDULER_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)

		assert.False(t, cfg.Event.ProcessorEnabled)
		assert.False(t, cfg.Scheduler.Enabled)
	})

	t.Run("loads values from environment variables with STOREFRONT prefix", func(t *testing.T) {
		clearStorefrontEnv(t)
		t.Setenv("STOREFRONT_APP_NAME", "test-app")
		t.Setenv("STOREFRONT_APP_PORT", "9000")
		t.Setenv("STOREFRONT_DATABASE_HOST", "testdb.local")
		t.Setenv("STOREFRONT_DATABASE_PORT", "5433")
		t.Setenv("STOREFRONT_DATABASE_PASSWORD", "testpass")
		t.Setenv("STOREFRONT_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("STOREFRONT_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("STOREFRONT_EMAIL_PORT", "2525")
		t.Setenv("STOREFRONT_CART_TTL", "48h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 2525, cfg.Email.Port)
		assert.Equal(t, 48*time.Hour, cfg.Cart.TTL)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearStorefrontEnv(t)
		t.Setenv("STOREFRONT_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("STOREFRONT_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearStorefrontEnv(t)
		t.Setenv("STOREFRONT_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects monthly report day past 28", func(t *testing.T) {
		clearStorefrontEnv(t)
		t.Setenv("STOREFRONT_SCHEDULER_MONTHLY_REPORT_DAY", "31")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "monthly_report_day")
	})

	t.Run("rejects unknown TLS policy", func(t *testing.T) {
		clearStorefrontEnv(t)
		t.Setenv("STOREFRONT_EMAIL_TLS_POLICY", "sometimes")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearStorefrontEnv(t)
		t.Setenv("STOREFRONT_APP_ENV", "production")
		t.Setenv("STOREFRONT_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("STOREFRONT_DATABASE_PASSWORD", "secure-password")
		t.Setenv("STOREFRONT_DATABASE_SSLMODE", "require")
		t.Setenv("STOREFRONT_SWAGGER_ENABLED", "false")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("STOREFRONT_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("STOREFRONT_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("STOREFRONT_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("refuses sqlite in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("STOREFRONT_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be postgres in production")
	})

	t.Run("fails if swagger enabled without protection in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("STOREFRONT_SWAGGER_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger endpoint must be disabled")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "pass@word#123",
		DBName:   "storefront",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "/storefront")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "pass%40word%23123")
}
