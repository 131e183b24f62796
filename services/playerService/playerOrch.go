package playerService

import (
	"context"

	"pointsBot/models"
	"pointsBot/services/common"
	"pointsBot/services/ledger"

	"github.com/sirupsen/logrus"
)

// DrawCanceller drops a player's in-flight draw.
type DrawCanceller interface {
	Abandon(playerID uint64) bool
}

// CacheInvalidator is told whenever the set of players changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

type Engine struct {
	store ledger.Store
	draws DrawCanceller
	cache CacheInvalidator
	log   *logrus.Logger
}

// NewEngine builds a player admin engine. cache may be nil.
func NewEngine(store ledger.Store, draws DrawCanceller, cache CacheInvalidator, log *logrus.Logger) *Engine {
	if cache == nil {
		cache = common.NoopLeaderboardCache{}
	}
	return &Engine{store: store, draws: draws, cache: cache, log: log}
}

func (e *Engine) AddPlayer(ctx context.Context, actorID, targetID uint64) error {
	err := e.adminTransaction(ctx, actorID, func(tx ledger.Tx) error {
		exists, err := common.IsPlayer(tx, targetID)
		if err != nil {
			return err
		}
		if exists {
			return models.ErrAlreadyPlayer
		}
		return tx.CreatePlayer(models.Player{ID: targetID})
	})
	if err != nil {
		return err
	}

	e.cache.Invalidate(ctx)
	e.log.WithFields(logrus.Fields{"actor_id": actorID, "player_id": targetID}).Info("Player added")
	return nil
}

// RemovePlayer deletes the player together with their awards and drops any draw they have open.
func (e *Engine) RemovePlayer(ctx context.Context, actorID, targetID uint64) error {
	err := e.adminTransaction(ctx, actorID, func(tx ledger.Tx) error {
		if err := requirePlayer(tx, targetID); err != nil {
			return err
		}
		return tx.DeletePlayer(targetID)
	})
	if err != nil {
		return err
	}

	e.draws.Abandon(targetID)
	e.cache.Invalidate(ctx)
	e.log.WithFields(logrus.Fields{"actor_id": actorID, "player_id": targetID}).Info("Player removed")
	return nil
}

func (e *Engine) SetPointMaster(ctx context.Context, actorID, targetID uint64, value bool) error {
	err := e.adminTransaction(ctx, actorID, func(tx ledger.Tx) error {
		if err := requirePlayer(tx, targetID); err != nil {
			return err
		}
		return tx.SetPointMaster(targetID, value)
	})
	if err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{"actor_id": actorID, "player_id": targetID, "point_master": value}).Info("Point master updated")
	return nil
}

func (e *Engine) SetAdmin(ctx context.Context, actorID, targetID uint64, value bool) error {
	err := e.adminTransaction(ctx, actorID, func(tx ledger.Tx) error {
		if err := requirePlayer(tx, targetID); err != nil {
			return err
		}
		return tx.SetAdmin(targetID, value)
	})
	if err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{"actor_id": actorID, "player_id": targetID, "admin": value}).Info("Admin updated")
	return nil
}

// Bootstrap makes targetID an admin, adding them to the game first if needed. It skips the
// authorization check and is only reachable from the operator CLI.
func (e *Engine) Bootstrap(ctx context.Context, targetID uint64) error {
	created := false
	err := e.store.Transaction(ctx, func(tx ledger.Tx) error {
		exists, err := common.IsPlayer(tx, targetID)
		if err != nil {
			return err
		}
		if !exists {
			created = true
			if err := tx.CreatePlayer(models.Player{ID: targetID}); err != nil {
				return err
			}
		}
		return tx.SetAdmin(targetID, true)
	})
	if err != nil {
		return common.StorageError(err)
	}

	if created {
		e.cache.Invalidate(ctx)
	}
	e.log.WithFields(logrus.Fields{"player_id": targetID, "created": created}).Info("Admin bootstrapped")
	return nil
}

func (e *Engine) adminTransaction(ctx context.Context, actorID uint64, fn func(tx ledger.Tx) error) error {
	err := e.store.Transaction(ctx, func(tx ledger.Tx) error {
		admin, err := common.IsAdmin(tx, actorID)
		if err != nil {
			return err
		}
		if !admin {
			return models.ErrNotAuthorized
		}
		return fn(tx)
	})
	return common.StorageError(err)
}

func requirePlayer(tx ledger.Tx, id uint64) error {
	ok, err := common.IsPlayer(tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrTargetNotPlayer
	}
	return nil
}
