package ledger

import (
	"context"
	"errors"

	"pointsBot/models"
)

// ErrAwardExists is returned by InsertAward when the (player, role) pair is already recorded.
var ErrAwardExists = errors.New("award already exists")

// Tx is the set of ledger reads and writes available inside one transaction.
type Tx interface {
	GetPlayer(id uint64) (models.Player, bool, error)
	CreatePlayer(player models.Player) error
	DeletePlayer(id uint64) error
	SetPointMaster(id uint64, value bool) error
	SetAdmin(id uint64, value bool) error
	// AddPoints atomically increments the balance and returns the new total.
	AddPoints(id uint64, delta int) (int, error)
	TopPlayersByPoints(n int) ([]models.Player, error)

	GetRole(id uint64) (models.Role, bool, error)
	CreateRole(role models.Role) error
	RolesForGuild(guildID uint64) ([]uint64, error)

	AwardedRoles(playerID uint64) ([]uint64, error)
	InsertAward(playerID, roleID uint64) error
}

// Store runs ledger work as atomic units.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Tx) error) error
	LogError(ctx context.Context, guildID, command, message string) error
}
