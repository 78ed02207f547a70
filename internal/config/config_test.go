package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GATEWAY_TOKEN", "secret")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRequiresGatewayToken(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/contest")
	t.Setenv("GATEWAY_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "GATEWAY_TOKEN")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/contest")
	t.Setenv("GATEWAY_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "amqp://localhost", cfg.Broker.URL)
	require.Equal(t, 1, cfg.Broker.Prefetch)
	require.Equal(t, 5, cfg.Broker.MaxRedeliveries)
	require.Equal(t, 5*time.Minute, cfg.Clock.SweepInterval)
	require.Equal(t, 2*time.Second, cfg.Outbox.RelayInterval)
	require.Equal(t, float64(30), cfg.Tagging.MinConfidence)
	require.False(t, cfg.Email.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/score")
	t.Setenv("GATEWAY_TOKEN", "secret")
	t.Setenv("SERVER_PORT", "10000")
	t.Setenv("BROKER_MAX_REDELIVERIES", "3")
	t.Setenv("CLOCK_SWEEP_INTERVAL", "30s")
	t.Setenv("EMAIL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10000, cfg.Server.Port)
	require.Equal(t, 3, cfg.Broker.MaxRedeliveries)
	require.Equal(t, 30*time.Second, cfg.Clock.SweepInterval)
	require.True(t, cfg.Email.Enabled)
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	require.Equal(t, 8080, getEnvInt("SERVER_PORT", 8080))
}

func TestGetEnvDurationIgnoresGarbage(t *testing.T) {
	t.Setenv("CLOCK_SWEEP_INTERVAL", "five minutes")
	require.Equal(t, time.Minute, getEnvDuration("CLOCK_SWEEP_INTERVAL", time.Minute))
}

func TestNewLoggerLevelFallback(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, NewLogger(LoggingConfig{}).GetLevel())
	require.Equal(t, zerolog.InfoLevel, NewLogger(LoggingConfig{Level: "shouting"}).GetLevel())
	require.Equal(t, zerolog.DebugLevel, NewLogger(LoggingConfig{Level: "DEBUG"}).GetLevel())
}
