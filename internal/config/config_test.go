package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Realtime.TickInterval)
	assert.Equal(t, 3, cfg.Realtime.DashboardEvery)
	assert.Equal(t, 3*time.Second, cfg.Realtime.FetchTimeout)
	assert.Equal(t, 60*time.Second, cfg.Realtime.ReaperInterval)
	assert.Equal(t, 15*time.Minute, cfg.Realtime.SessionIdleTimeout)
	assert.Equal(t, 256, cfg.WebSocket.SendBufferSize)
	assert.Equal(t, "http://localhost:9000/predict", cfg.Prediction.Endpoint)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REALTIME_TICK", "10s")
	t.Setenv("REALTIME_DASHBOARD_EVERY", "6")
	t.Setenv("SESSION_IDLE_TIMEOUT", "30m")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://ops.example.com, https://ops-staging.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Realtime.TickInterval)
	assert.Equal(t, 6, cfg.Realtime.DashboardEvery)
	assert.Equal(t, 30*time.Minute, cfg.Realtime.SessionIdleTimeout)
	assert.Equal(t, []string{"https://ops.example.com", "https://ops-staging.example.com"}, cfg.WebSocket.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWT: JWTConfig{Secret: "test-secret"},
			Realtime: RealtimeConfig{
				TickInterval:       5 * time.Second,
				FetchTimeout:       3 * time.Second,
				ReaperInterval:     time.Minute,
				SessionIdleTimeout: 15 * time.Minute,
			},
			App: AppConfig{Environment: "development"},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		cfg := valid()
		cfg.JWT.Secret = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET is required")
	})

	t.Run("fetch timeout must fit inside the tick", func(t *testing.T) {
		cfg := valid()
		cfg.Realtime.FetchTimeout = 5 * time.Second
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REALTIME_FETCH_TIMEOUT")
	})

	t.Run("idle timeout must outlast the sweep interval", func(t *testing.T) {
		cfg := valid()
		cfg.Realtime.SessionIdleTimeout = 30 * time.Second
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SESSION_IDLE_TIMEOUT")
	})

	t.Run("production tightens secret and origins", func(t *testing.T) {
		cfg := valid()
		cfg.App.Environment = "production"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
		assert.Contains(t, err.Error(), "WS_ALLOWED_ORIGINS")
	})
}

func TestConfig_StringRedactsSecret(t *testing.T) {
	cfg := &Config{JWT: JWTConfig{Secret: "super-secret-value"}}

	s := cfg.String()
	assert.NotContains(t, s, "super-secret-value")
	assert.Contains(t, s, "REDACTED")
}
