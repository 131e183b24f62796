package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"pointsBot/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type LeaderboardSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	cache *RedisLeaderboard
	ctx   context.Context
}

func TestLeaderboardSuite(t *testing.T) {
	suite.Run(t, new(LeaderboardSuite))
}

func (s *LeaderboardSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	log := logrus.New()
	log.SetOutput(io.Discard)

	s.cache = NewWithClient(client, 30*time.Second, log)
	s.ctx = context.Background()
}

func (s *LeaderboardSuite) TearDownTest() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *LeaderboardSuite) TestMissWhenEmpty() {
	_, ok := s.cache.Get(s.ctx)
	s.False(ok)
}

func (s *LeaderboardSuite) TestSetAndGet() {
	players := []models.Player{
		{ID: 10, Points: 40},
		{ID: 11, Points: 30, PointMaster: true},
		{ID: 12, Points: -3, Admin: true},
	}
	s.cache.Set(s.ctx, s.cache.Generation(s.ctx), players)

	got, ok := s.cache.Get(s.ctx)
	s.Require().True(ok)
	s.Equal(players, got)
}

func (s *LeaderboardSuite) TestEntriesExpire() {
	s.cache.Set(s.ctx, s.cache.Generation(s.ctx), []models.Player{{ID: 10, Points: 40}})
	s.True(s.mini.Exists(leaderboardKey))

	s.mini.FastForward(31 * time.Second)

	_, ok := s.cache.Get(s.ctx)
	s.False(ok)
}

func (s *LeaderboardSuite) TestInvalidate() {
	s.cache.Set(s.ctx, s.cache.Generation(s.ctx), []models.Player{{ID: 10, Points: 40}})
	s.cache.Invalidate(s.ctx)

	_, ok := s.cache.Get(s.ctx)
	s.False(ok)
}

func (s *LeaderboardSuite) TestInvalidateAdvancesGeneration() {
	s.Equal(int64(0), s.cache.Generation(s.ctx))

	s.cache.Invalidate(s.ctx)
	s.cache.Invalidate(s.ctx)
	s.Equal(int64(2), s.cache.Generation(s.ctx))
}

func (s *LeaderboardSuite) TestStaleBoardIsNotCached() {
	generation := s.cache.Generation(s.ctx)

	// The points changed after the board was read but before it was stored.
	s.cache.Invalidate(s.ctx)
	s.cache.Set(s.ctx, generation, []models.Player{{ID: 10, Points: 10}})

	_, ok := s.cache.Get(s.ctx)
	s.False(ok)
	s.False(s.mini.Exists(leaderboardKey))

	fresh := []models.Player{{ID: 10, Points: 110}}
	s.cache.Set(s.ctx, s.cache.Generation(s.ctx), fresh)

	got, ok := s.cache.Get(s.ctx)
	s.Require().True(ok)
	s.Equal(fresh, got)
}

func (s *LeaderboardSuite) TestUnknownGenerationIsNotCached() {
	s.cache.Set(s.ctx, unknownGeneration, []models.Player{{ID: 10, Points: 40}})
	s.False(s.mini.Exists(leaderboardKey))
}

func (s *LeaderboardSuite) TestZeroTTLNeverExpires() {
	s.cache.ttl = 0
	s.cache.Set(s.ctx, s.cache.Generation(s.ctx), []models.Player{{ID: 10, Points: 40}})

	s.mini.FastForward(time.Hour)

	_, ok := s.cache.Get(s.ctx)
	s.True(ok)
}

func (s *LeaderboardSuite) TestCorruptEntryIsDropped() {
	s.Require().NoError(s.mini.Set(leaderboardKey, "not json"))

	_, ok := s.cache.Get(s.ctx)
	s.False(ok)
	s.False(s.mini.Exists(leaderboardKey))
}

func (s *LeaderboardSuite) TestServerDownIsAMiss() {
	s.cache.Set(s.ctx, s.cache.Generation(s.ctx), []models.Player{{ID: 10, Points: 40}})
	s.mini.Close()

	_, ok := s.cache.Get(s.ctx)
	s.False(ok)

	s.NotPanics(func() {
		s.cache.Set(s.ctx, 0, nil)
		s.cache.Invalidate(s.ctx)
	})
	s.mini = nil
}
