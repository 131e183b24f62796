package common

import (
	"pointsBot/services/ledger"
)

// IsPlayer reports whether id has been added to the game.
func IsPlayer(tx ledger.Tx, id uint64) (bool, error) {
	_, ok, err := tx.GetPlayer(id)
	return ok, err
}

// IsAdmin reports whether id is a player with the admin flag.
func IsAdmin(tx ledger.Tx, id uint64) (bool, error) {
	player, ok, err := tx.GetPlayer(id)
	if err != nil || !ok {
		return false, err
	}
	return player.Admin, nil
}

// IsPointMaster reports whether id may grant points. Admins always can.
func IsPointMaster(tx ledger.Tx, id uint64) (bool, error) {
	player, ok, err := tx.GetPlayer(id)
	if err != nil || !ok {
		return false, err
	}
	return player.PointMaster || player.Admin, nil
}
