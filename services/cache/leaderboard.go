package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pointsBot/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	leaderboardKey    = "pointsbot:leaderboard"
	generationKey     = "pointsbot:leaderboard:gen"
	unknownGeneration = -1
)

// setIfCurrent stores the board only while the generation still matches the one the caller read.
var setIfCurrent = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[2]) or "0")
if current ~= tonumber(ARGV[1]) then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`)

// RedisLeaderboard keeps the last computed leaderboard in Redis so every bot replica shares it.
// Redis failures are logged and treated as a miss.
type RedisLeaderboard struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// New connects to the Redis server named by url (redis://host:port/db).
func New(url string, ttl time.Duration, log *logrus.Logger) (*RedisLeaderboard, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, ttl, log), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration, log *logrus.Logger) *RedisLeaderboard {
	return &RedisLeaderboard{client: client, ttl: ttl, log: log}
}

func (c *RedisLeaderboard) Close() error {
	return c.client.Close()
}

func (c *RedisLeaderboard) Get(ctx context.Context) ([]models.Player, bool) {
	data, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).Warn("Failed to read cached leaderboard")
		return nil, false
	}

	var players []models.Player
	if err := json.Unmarshal(data, &players); err != nil {
		c.log.WithError(err).Warn("Discarding unreadable cached leaderboard")
		c.Invalidate(ctx)
		return nil, false
	}
	return players, true
}

// Generation returns the invalidation counter. A board read from the database after this call
// may only be cached with this value.
func (c *RedisLeaderboard) Generation(ctx context.Context) int64 {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		c.log.WithError(err).Warn("Failed to read leaderboard generation")
		return unknownGeneration
	}
	return gen
}

// Set caches players unless the leaderboard was invalidated since generation was read.
func (c *RedisLeaderboard) Set(ctx context.Context, generation int64, players []models.Player) {
	if generation == unknownGeneration {
		return
	}
	data, err := json.Marshal(players)
	if err != nil {
		c.log.WithError(err).Warn("Failed to encode leaderboard")
		return
	}

	stored, err := setIfCurrent.Run(ctx, c.client, []string{leaderboardKey, generationKey}, generation, data, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.log.WithError(err).Warn("Failed to cache leaderboard")
		return
	}
	if stored == 0 {
		c.log.WithField("generation", generation).Debug("Leaderboard changed while it was being read, not caching it")
	}
}

// Invalidate drops the cached board and bumps the generation so in-flight reads cannot restore it.
func (c *RedisLeaderboard) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, leaderboardKey)
		return nil
	})
	if err != nil {
		c.log.WithError(err).Warn("Failed to invalidate cached leaderboard")
	}
}
