package models

import "errors"

// Failure kinds returned by the engines. The command layer turns these into replies.
var (
	ErrNotAuthorized   = errors.New("not authorized")
	ErrTargetNotPlayer = errors.New("target is not a player")
	ErrActorNotPlayer  = errors.New("actor is not a player")
	ErrAlreadyPlayer   = errors.New("already a player")

	ErrRankUpNotEligible     = errors.New("not eligible to rank up")
	ErrNoRolesRemaining      = errors.New("no roles remaining")
	ErrDrawAlreadyInProgress = errors.New("draw already in progress")
	ErrNoActiveDraw          = errors.New("no active draw")

	ErrAlreadyRole    = errors.New("role already in game")
	ErrRoleNotInGame  = errors.New("role is not in game")
	ErrWrongGuild     = errors.New("role belongs to another guild")
	ErrRoleNotAwarded = errors.New("role not awarded")

	// ErrStorage wraps any failure of the ledger store.
	ErrStorage = errors.New("storage failure")
)

var domainErrors = []error{
	ErrNotAuthorized, ErrTargetNotPlayer, ErrActorNotPlayer, ErrAlreadyPlayer,
	ErrRankUpNotEligible, ErrNoRolesRemaining, ErrDrawAlreadyInProgress, ErrNoActiveDraw,
	ErrAlreadyRole, ErrRoleNotInGame, ErrWrongGuild, ErrRoleNotAwarded, ErrStorage,
}

// IsDomainError reports whether err is (or wraps) one of the failure kinds above.
func IsDomainError(err error) bool {
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
