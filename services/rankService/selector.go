package rankService

import (
	"pointsBot/services/ledger"
)

// SelectRole picks uniformly among the guild's roles the player has not been awarded.
// ok is false when every role in the guild is already held. The pick is random, so
// callers that need repeatable results must supply their own Picker.
func SelectRole(tx ledger.Tx, picker Picker, guildID, playerID uint64) (roleID uint64, ok bool, err error) {
	roles, err := tx.RolesForGuild(guildID)
	if err != nil {
		return 0, false, err
	}
	awarded, err := tx.AwardedRoles(playerID)
	if err != nil {
		return 0, false, err
	}

	held := make(map[uint64]struct{}, len(awarded))
	for _, id := range awarded {
		held[id] = struct{}{}
	}

	eligible := make([]uint64, 0, len(roles))
	for _, id := range roles {
		if _, taken := held[id]; !taken {
			eligible = append(eligible, id)
		}
	}
	if len(eligible) == 0 {
		return 0, false, nil
	}

	return eligible[picker.Intn(len(eligible))], true, nil
}
