// Package config loads client settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Transports.
const (
	TransportWebSocket = "websocket"
	TransportRedis     = "redis"
)

// Config holds everything cmd/client needs to start a session.
type Config struct {
	ServerURL     string
	WSPath        string
	Transport     string
	RedisURL      string
	AuthToken     string
	PublicKeyPath string

	PlayerID    string
	PlayerName  string
	PlayerMoney float64

	SpriteConfig string
	DatabaseURL  string

	LogLevel    logrus.Level
	DialTimeout time.Duration
}

// Load reads the configuration. Variables are documented in .env.example.
func Load() (*Config, error) {
	cfg := &Config{
		ServerURL:     getEnv("POKER5_SERVER_URL", "http://localhost:5000"),
		WSPath:        getEnv("POKER5_WS_PATH", "/poker5"),
		Transport:     strings.ToLower(getEnv("POKER5_TRANSPORT", TransportWebSocket)),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AuthToken:     os.Getenv("POKER5_AUTH_TOKEN"),
		PublicKeyPath: os.Getenv("POKER5_AUTH_PUBLIC_KEY"),
		PlayerID:      getEnv("POKER5_PLAYER_ID", uuid.NewString()),
		PlayerName:    getEnv("POKER5_PLAYER_NAME", "Player"),
		PlayerMoney:   getEnvFloat("POKER5_PLAYER_MONEY", 1000),
		SpriteConfig:  os.Getenv("POKER5_SPRITE_CONFIG"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DialTimeout:   time.Duration(getEnvInt("POKER5_DIAL_TIMEOUT_SEC", 10)) * time.Second,
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	switch cfg.Transport {
	case TransportWebSocket, TransportRedis:
	default:
		return nil, fmt.Errorf("unknown POKER5_TRANSPORT %q (want %s or %s)", cfg.Transport, TransportWebSocket, TransportRedis)
	}
	if cfg.PlayerMoney <= 0 {
		return nil, fmt.Errorf("POKER5_PLAYER_MONEY must be positive")
	}
	return cfg, nil
}

// HistoryEnabled reports whether hands should be persisted.
func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}
