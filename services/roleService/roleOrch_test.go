package roleService

import (
	"context"
	"errors"
	"io"
	"testing"

	"pointsBot/models"
	"pointsBot/services/ledger"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin      uint64 = 1
	player     uint64 = 2
	stranger   uint64 = 99
	guild      uint64 = 500
	otherGuild uint64 = 501
	heldRole   uint64 = 7000
	freeRole   uint64 = 7001
	foreign    uint64 = 7002
)

type brokenStore struct {
	ledger.Store
}

func (brokenStore) Transaction(context.Context, func(tx ledger.Tx) error) error {
	return errors.New("connection reset by peer")
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEngine(t *testing.T) (*Engine, *ledger.MemoryStore) {
	t.Helper()
	store := ledger.NewMemoryStore()
	err := store.Transaction(context.Background(), func(tx ledger.Tx) error {
		if err := tx.CreatePlayer(models.Player{ID: admin, Admin: true}); err != nil {
			return err
		}
		if err := tx.CreatePlayer(models.Player{ID: player, Points: 12}); err != nil {
			return err
		}
		for _, r := range []models.Role{
			{ID: heldRole, GuildID: guild},
			{ID: freeRole, GuildID: guild},
			{ID: foreign, GuildID: otherGuild},
		} {
			if err := tx.CreateRole(r); err != nil {
				return err
			}
		}
		if err := tx.InsertAward(player, heldRole); err != nil {
			return err
		}
		return tx.InsertAward(player, foreign)
	})
	require.NoError(t, err)
	return NewEngine(store, quietLogger()), store
}

func TestAddRole(t *testing.T) {
	tests := []struct {
		name    string
		actor   uint64
		roleID  uint64
		wantErr error
	}{
		{name: "admin adds role", actor: admin, roleID: 8000},
		{name: "player refused", actor: player, roleID: 8000, wantErr: models.ErrNotAuthorized},
		{name: "stranger refused", actor: stranger, roleID: 8000, wantErr: models.ErrNotAuthorized},
		{name: "duplicate role", actor: admin, roleID: freeRole, wantErr: models.ErrAlreadyRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, store := newTestEngine(t)

			role, err := engine.AddRole(context.Background(), tt.actor, guild, tt.roleID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.Role{ID: tt.roleID, GuildID: guild}, role)

			var roles []uint64
			require.NoError(t, store.Transaction(context.Background(), func(tx ledger.Tx) error {
				var err error
				roles, err = tx.RolesForGuild(guild)
				return err
			}))
			assert.Contains(t, roles, tt.roleID)
		})
	}
}

func TestEquipRole(t *testing.T) {
	tests := []struct {
		name    string
		player  uint64
		guild   uint64
		roleID  uint64
		wantErr error
	}{
		{name: "held role", player: player, guild: guild, roleID: heldRole},
		{name: "not a player", player: stranger, guild: guild, roleID: heldRole, wantErr: models.ErrActorNotPlayer},
		{name: "unknown role", player: player, guild: guild, roleID: 1234, wantErr: models.ErrRoleNotInGame},
		{name: "role from another guild", player: player, guild: guild, roleID: foreign, wantErr: models.ErrWrongGuild},
		{name: "role not awarded", player: player, guild: guild, roleID: freeRole, wantErr: models.ErrRoleNotAwarded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newTestEngine(t)

			role, err := engine.EquipRole(context.Background(), tt.player, tt.guild, tt.roleID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.roleID, role.ID)
		})
	}
}

func TestRoleStorageFailures(t *testing.T) {
	engine := NewEngine(brokenStore{}, quietLogger())

	_, err := engine.AddRole(context.Background(), admin, guild, 8000)
	assert.ErrorIs(t, err, models.ErrStorage)

	_, err = engine.EquipRole(context.Background(), player, guild, heldRole)
	assert.ErrorIs(t, err, models.ErrStorage)
}

func TestSeedRole(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	role, err := engine.SeedRole(ctx, otherGuild, 8100)
	require.NoError(t, err)
	assert.Equal(t, models.Role{ID: 8100, GuildID: otherGuild}, role)

	_, err = engine.SeedRole(ctx, guild, 8100)
	assert.ErrorIs(t, err, models.ErrAlreadyRole)
}
