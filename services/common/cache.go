package common

import (
	"context"

	"pointsBot/models"
)

// NoopLeaderboardCache never holds anything.
type NoopLeaderboardCache struct{}

func (NoopLeaderboardCache) Get(context.Context) ([]models.Player, bool) { return nil, false }

func (NoopLeaderboardCache) Generation(context.Context) int64 { return 0 }

func (NoopLeaderboardCache) Set(context.Context, int64, []models.Player) {}

func (NoopLeaderboardCache) Invalidate(context.Context) {}
