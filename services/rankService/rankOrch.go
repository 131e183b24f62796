package rankService

import (
	"context"
	"errors"
	"time"

	"pointsBot/models"
	"pointsBot/services/common"
	"pointsBot/services/ledger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RerollsPerDraw is the fixed reroll budget of every draw.
const RerollsPerDraw = 2

// Draw describes the state of a rank-up attempt after an operation. Finalized is set
// once RoleID has been awarded and the draw is over.
type Draw struct {
	ID               uuid.UUID
	PlayerID         uint64
	GuildID          uint64
	RoleID           uint64
	RerollsRemaining int
	Finalized        bool
}

type Engine struct {
	store    ledger.Store
	sessions *sessionStore
	picker   Picker
	now      func() time.Time
	ttl      time.Duration
	log      *logrus.Logger
}

type Option func(*Engine)

func WithPicker(picker Picker) Option {
	return func(e *Engine) { e.picker = picker }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSessionTTL abandons draws left untouched for longer than ttl. Zero keeps them forever.
func WithSessionTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.ttl = ttl }
}

func NewEngine(store ledger.Store, log *logrus.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		sessions: newSessionStore(),
		picker:   CryptoPicker{},
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InitiateRankUp starts a draw for a player whose award count is below their rank.
func (e *Engine) InitiateRankUp(ctx context.Context, playerID, guildID uint64) (Draw, error) {
	sl := e.sessions.acquire(playerID)
	defer e.sessions.release(playerID, sl)

	e.expireLocked(playerID, sl)
	if sl.session != nil {
		return Draw{}, models.ErrDrawAlreadyInProgress
	}

	var roleID uint64
	err := e.store.Transaction(ctx, func(tx ledger.Tx) error {
		player, ok, err := tx.GetPlayer(playerID)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrActorNotPlayer
		}

		awarded, err := tx.AwardedRoles(playerID)
		if err != nil {
			return err
		}
		if len(awarded) >= player.Rank() {
			return models.ErrRankUpNotEligible
		}

		id, found, err := SelectRole(tx, e.picker, guildID, playerID)
		if err != nil {
			return err
		}
		if !found {
			return models.ErrNoRolesRemaining
		}
		roleID = id
		return nil
	})
	if err != nil {
		return Draw{}, common.StorageError(err)
	}

	sl.session = &session{
		drawID:           uuid.New(),
		guildID:          guildID,
		candidateRoleID:  roleID,
		rerollsRemaining: RerollsPerDraw,
		touchedAt:        e.now(),
	}
	e.fields(playerID, sl.session).Info("Draw started")

	return drawOf(playerID, sl.session, false), nil
}

// Reroll replaces the candidate with a fresh pick. Spending the last reroll commits the new candidate.
func (e *Engine) Reroll(ctx context.Context, playerID uint64) (Draw, error) {
	return e.RerollDraw(ctx, playerID, uuid.Nil)
}

// RerollDraw is Reroll restricted to one draw. It fails with ErrNoActiveDraw when the player's
// current draw is not drawID, so a button left over from an older draw cannot touch a newer one.
// uuid.Nil matches any draw.
func (e *Engine) RerollDraw(ctx context.Context, playerID uint64, drawID uuid.UUID) (Draw, error) {
	sl := e.sessions.acquire(playerID)
	defer e.sessions.release(playerID, sl)

	e.expireLocked(playerID, sl)
	sess := sl.session
	if !matches(sess, drawID) {
		return Draw{}, models.ErrNoActiveDraw
	}

	// A draw with no rerolls left only exists after a failed commit; retry the commit.
	if sess.rerollsRemaining > 0 {
		var roleID uint64
		err := e.store.Transaction(ctx, func(tx ledger.Tx) error {
			id, found, err := SelectRole(tx, e.picker, sess.guildID, playerID)
			if err != nil {
				return err
			}
			if !found {
				return models.ErrNoRolesRemaining
			}
			roleID = id
			return nil
		})
		if err != nil {
			return Draw{}, common.StorageError(err)
		}

		sess.candidateRoleID = roleID
		sess.rerollsRemaining--
		sess.touchedAt = e.now()
		e.fields(playerID, sess).Debug("Draw rerolled")
	}

	if sess.rerollsRemaining > 0 {
		return drawOf(playerID, sess, false), nil
	}
	return e.finalizeLocked(ctx, playerID, sl)
}

// Accept commits the current candidate regardless of rerolls left.
func (e *Engine) Accept(ctx context.Context, playerID uint64) (Draw, error) {
	return e.AcceptDraw(ctx, playerID, uuid.Nil)
}

// AcceptDraw is Accept restricted to one draw, like RerollDraw.
func (e *Engine) AcceptDraw(ctx context.Context, playerID uint64, drawID uuid.UUID) (Draw, error) {
	sl := e.sessions.acquire(playerID)
	defer e.sessions.release(playerID, sl)

	e.expireLocked(playerID, sl)
	if !matches(sl.session, drawID) {
		return Draw{}, models.ErrNoActiveDraw
	}
	return e.finalizeLocked(ctx, playerID, sl)
}

// Abandon drops the player's draw without awarding anything.
func (e *Engine) Abandon(playerID uint64) bool {
	sl := e.sessions.acquire(playerID)
	defer e.sessions.release(playerID, sl)

	if sl.session == nil {
		return false
	}
	e.fields(playerID, sl.session).Info("Draw abandoned")
	sl.session = nil
	return true
}

// ExpireStale abandons every draw older than the session TTL and returns how many were dropped.
func (e *Engine) ExpireStale() int {
	if e.ttl <= 0 {
		return 0
	}

	expired := 0
	for _, playerID := range e.sessions.playerIDs() {
		sl := e.sessions.acquire(playerID)
		if e.expireLocked(playerID, sl) {
			expired++
		}
		e.sessions.release(playerID, sl)
	}
	return expired
}

// finalizeLocked writes the award and clears the session. On failure the session is kept
// so the player can retry; a retry that finds the award already written counts as success.
func (e *Engine) finalizeLocked(ctx context.Context, playerID uint64, sl *slot) (Draw, error) {
	sess := sl.session

	err := e.store.Transaction(ctx, func(tx ledger.Tx) error {
		err := tx.InsertAward(playerID, sess.candidateRoleID)
		if errors.Is(err, ledger.ErrAwardExists) {
			e.fields(playerID, sess).Warn("Award already recorded, treating commit as done")
			return nil
		}
		return err
	})
	if err != nil {
		e.fields(playerID, sess).WithError(err).Error("Failed to commit draw, keeping it for retry")
		return Draw{}, common.StorageError(err)
	}

	sl.session = nil
	e.fields(playerID, sess).Info("Draw finalized")
	return drawOf(playerID, sess, true), nil
}

func (e *Engine) expireLocked(playerID uint64, sl *slot) bool {
	if e.ttl <= 0 || sl.session == nil {
		return false
	}
	if e.now().Sub(sl.session.touchedAt) < e.ttl {
		return false
	}
	e.fields(playerID, sl.session).Info("Draw expired")
	sl.session = nil
	return true
}

func (e *Engine) fields(playerID uint64, sess *session) *logrus.Entry {
	return e.log.WithFields(logrus.Fields{
		"player_id": playerID,
		"guild_id":  sess.guildID,
		"draw_id":   sess.drawID,
		"role_id":   sess.candidateRoleID,
		"rerolls":   sess.rerollsRemaining,
	})
}

func matches(sess *session, drawID uuid.UUID) bool {
	if sess == nil {
		return false
	}
	return drawID == uuid.Nil || sess.drawID == drawID
}

func drawOf(playerID uint64, sess *session, finalized bool) Draw {
	return Draw{
		ID:               sess.drawID,
		PlayerID:         playerID,
		GuildID:          sess.guildID,
		RoleID:           sess.candidateRoleID,
		RerollsRemaining: sess.rerollsRemaining,
		Finalized:        finalized,
	}
}
