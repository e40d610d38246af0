package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"POKER5_SERVER_URL", "POKER5_WS_PATH", "POKER5_TRANSPORT", "REDIS_URL",
	"POKER5_AUTH_TOKEN", "POKER5_AUTH_PUBLIC_KEY", "POKER5_PLAYER_ID", "POKER5_PLAYER_NAME",
	"POKER5_PLAYER_MONEY", "POKER5_SPRITE_CONFIG", "DATABASE_URL", "LOG_LEVEL",
	"POKER5_DIAL_TIMEOUT_SEC",
}

func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.ServerURL)
	assert.Equal(t, "/poker5", cfg.WSPath)
	assert.Equal(t, TransportWebSocket, cfg.Transport)
	assert.Equal(t, 1000.0, cfg.PlayerMoney)
	assert.NotEmpty(t, cfg.PlayerID)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
	assert.False(t, cfg.HistoryEnabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("POKER5_TRANSPORT", "Redis")
	t.Setenv("POKER5_PLAYER_ID", "p-42")
	t.Setenv("POKER5_PLAYER_MONEY", "250.5")
	t.Setenv("POKER5_DIAL_TIMEOUT_SEC", "abc")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://localhost/poker5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, TransportRedis, cfg.Transport)
	assert.Equal(t, "p-42", cfg.PlayerID)
	assert.Equal(t, 250.5, cfg.PlayerMoney)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.HistoryEnabled())
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("POKER5_TRANSPORT", "carrier-pigeon")
	_, err := Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("POKER5_PLAYER_MONEY", "-5")
	_, err = Load()
	assert.Error(t, err)
}
