package pointsService

import (
	"context"

	"pointsBot/models"
	"pointsBot/services/common"
	"pointsBot/services/ledger"

	"github.com/sirupsen/logrus"
)

// LeaderboardSize is how many players Leaderboard returns.
const LeaderboardSize = 5

// LeaderboardCache holds a recent leaderboard so busy guilds do not hit the database on every call.
// Invalidate advances the generation; Set must drop a board read under an older generation.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]models.Player, bool)
	Generation(ctx context.Context) int64
	Set(ctx context.Context, generation int64, players []models.Player)
	Invalidate(ctx context.Context)
}

type Engine struct {
	store ledger.Store
	cache LeaderboardCache
	log   *logrus.Logger
}

// NewEngine builds a points engine. cache may be nil.
func NewEngine(store ledger.Store, cache LeaderboardCache, log *logrus.Logger) *Engine {
	if cache == nil {
		cache = common.NoopLeaderboardCache{}
	}
	return &Engine{store: store, cache: cache, log: log}
}

// AddPoints adds delta (which may be negative) to the target's balance and returns the new total.
// Balances are not clamped at zero.
func (e *Engine) AddPoints(ctx context.Context, actorID, targetID uint64, delta int) (int, error) {
	var total int
	err := e.store.Transaction(ctx, func(tx ledger.Tx) error {
		allowed, err := common.IsPointMaster(tx, actorID)
		if err != nil {
			return err
		}
		if !allowed {
			return models.ErrNotAuthorized
		}

		ok, err := common.IsPlayer(tx, targetID)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrTargetNotPlayer
		}

		total, err = tx.AddPoints(targetID, delta)
		return err
	})
	if err != nil {
		return 0, common.StorageError(err)
	}

	e.cache.Invalidate(ctx)
	e.log.WithFields(logrus.Fields{
		"actor_id":  actorID,
		"player_id": targetID,
		"delta":     delta,
		"points":    total,
	}).Info("Points updated")
	return total, nil
}

func (e *Engine) Query(ctx context.Context, targetID uint64) (models.Player, error) {
	var player models.Player
	err := e.store.Transaction(ctx, func(tx ledger.Tx) error {
		p, ok, err := tx.GetPlayer(targetID)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrTargetNotPlayer
		}
		player = p
		return nil
	})
	if err != nil {
		return models.Player{}, common.StorageError(err)
	}
	return player, nil
}

// Leaderboard returns the top players by points. Ties come back in storage order.
func (e *Engine) Leaderboard(ctx context.Context) ([]models.Player, error) {
	if players, ok := e.cache.Get(ctx); ok {
		return players, nil
	}
	generation := e.cache.Generation(ctx)

	var players []models.Player
	err := e.store.Transaction(ctx, func(tx ledger.Tx) error {
		var err error
		players, err = tx.TopPlayersByPoints(LeaderboardSize)
		return err
	})
	if err != nil {
		return nil, common.StorageError(err)
	}

	e.cache.Set(ctx, generation, players)
	return players, nil
}
