package config

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "AUTO_MIGRATE", "LOG_LEVEL", "DRAW_SESSION_TTL", "SESSION_SWEEP_INTERVAL", "LEADERBOARD_CACHE_TTL", "REDIS_URL", "DISCORD_GUILD_ID"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "sqlite:data/points.db", cfg.DatabaseURL)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.DrawSessionTTL)
	assert.Equal(t, 15*time.Minute, cfg.SessionSweepInterval)
	assert.Equal(t, 30*time.Second, cfg.LeaderboardCacheTTL)
	assert.Empty(t, cfg.RedisURL)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "abc")
	t.Setenv("DATABASE_URL", "mysql://bot:secret@db/points")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("DRAW_SESSION_TTL", "0")
	t.Setenv("SESSION_SWEEP_INTERVAL", "1m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.DiscordToken)
	assert.Equal(t, "mysql://bot:secret@db/points", cfg.DatabaseURL)
	assert.False(t, cfg.AutoMigrate)
	assert.Zero(t, cfg.DrawSessionTTL)
	assert.Equal(t, time.Minute, cfg.SessionSweepInterval)

	log, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"DRAW_SESSION_TTL":       "-1h",
		"SESSION_SWEEP_INTERVAL": "0s",
		"LEADERBOARD_CACHE_TTL":  "soon",
		"AUTO_MIGRATE":           "sometimes",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := Config{LogLevel: "chatty"}.NewLogger()
	assert.Error(t, err)
}
