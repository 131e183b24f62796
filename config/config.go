package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DiscordToken string `env:"DISCORD_BOT_TOKEN"`

	// DiscordGuildID registers commands in one guild only, which Discord applies instantly.
	DiscordGuildID string `env:"DISCORD_GUILD_ID"`

	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite:data/points.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	RedisURL    string `env:"REDIS_URL"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DrawSessionTTL       time.Duration `env:"DRAW_SESSION_TTL" envDefault:"24h"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"15m"`
	LeaderboardCacheTTL  time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"30s"`
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DrawSessionTTL < 0 {
		return Config{}, fmt.Errorf("DRAW_SESSION_TTL must not be negative, got %s", cfg.DrawSessionTTL)
	}
	if cfg.SessionSweepInterval <= 0 {
		return Config{}, fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", cfg.SessionSweepInterval)
	}
	return cfg, nil
}

// NewLogger builds the process logger at the configured level.
func (c Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}
