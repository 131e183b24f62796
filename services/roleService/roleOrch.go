package roleService

import (
	"context"

	"pointsBot/models"
	"pointsBot/services/common"
	"pointsBot/services/ledger"

	"github.com/sirupsen/logrus"
)

type Engine struct {
	store ledger.Store
	log   *logrus.Logger
}

func NewEngine(store ledger.Store, log *logrus.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// AddRole registers a guild role as a rank-up reward. Only admins may add roles.
func (e *Engine) AddRole(ctx context.Context, actorID, guildID, roleID uint64) (models.Role, error) {
	role := models.Role{ID: roleID, GuildID: guildID}
	err := e.store.Transaction(ctx, func(tx ledger.Tx) error {
		admin, err := common.IsAdmin(tx, actorID)
		if err != nil {
			return err
		}
		if !admin {
			return models.ErrNotAuthorized
		}

		_, exists, err := tx.GetRole(roleID)
		if err != nil {
			return err
		}
		if exists {
			return models.ErrAlreadyRole
		}
		return tx.CreateRole(role)
	})
	if err != nil {
		return models.Role{}, common.StorageError(err)
	}

	e.log.WithFields(logrus.Fields{"actor_id": actorID, "guild_id": guildID, "role_id": roleID}).Info("Role added")
	return role, nil
}

// SeedRole registers a role without an actor, for operators filling the catalog offline.
func (e *Engine) SeedRole(ctx context.Context, guildID, roleID uint64) (models.Role, error) {
	role := models.Role{ID: roleID, GuildID: guildID}
	err := e.store.Transaction(ctx, func(tx ledger.Tx) error {
		_, exists, err := tx.GetRole(roleID)
		if err != nil {
			return err
		}
		if exists {
			return models.ErrAlreadyRole
		}
		return tx.CreateRole(role)
	})
	if err != nil {
		return models.Role{}, common.StorageError(err)
	}

	e.log.WithFields(logrus.Fields{"guild_id": guildID, "role_id": roleID}).Info("Role seeded")
	return role, nil
}

// EquipRole checks that the player holds roleID in guildID. Granting the role on Discord is
// left to the caller.
func (e *Engine) EquipRole(ctx context.Context, playerID, guildID, roleID uint64) (models.Role, error) {
	var role models.Role
	err := e.store.Transaction(ctx, func(tx ledger.Tx) error {
		isPlayer, err := common.IsPlayer(tx, playerID)
		if err != nil {
			return err
		}
		if !isPlayer {
			return models.ErrActorNotPlayer
		}

		r, ok, err := tx.GetRole(roleID)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrRoleNotInGame
		}
		if r.GuildID != guildID {
			return models.ErrWrongGuild
		}

		awarded, err := tx.AwardedRoles(playerID)
		if err != nil {
			return err
		}
		for _, id := range awarded {
			if id == roleID {
				role = r
				return nil
			}
		}
		return models.ErrRoleNotAwarded
	})
	if err != nil {
		return models.Role{}, common.StorageError(err)
	}
	return role, nil
}
