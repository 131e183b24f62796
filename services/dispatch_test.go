package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"pointsBot/models"
	"pointsBot/services/ledger"
	"pointsBot/services/playerService"
	"pointsBot/services/pointsService"
	"pointsBot/services/rankService"
	"pointsBot/services/roleService"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin    uint64 = 1
	player   uint64 = 3
	stranger uint64 = 99
	guild    uint64 = 500
	roleA    uint64 = 7000
	roleB    uint64 = 7001
)

type firstPicker struct{}

func (firstPicker) Intn(int) int { return 0 }

type grant struct {
	guildID, userID, roleID string
}

type fakeGranter struct {
	grants []grant
	err    error
}

func (g *fakeGranter) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	if g.err != nil {
		return g.err
	}
	g.grants = append(g.grants, grant{guildID, userID, roleID})
	return nil
}

// downStore fails every transaction but still records error logs.
type downStore struct {
	*ledger.MemoryStore
}

func (downStore) Transaction(context.Context, func(tx ledger.Tx) error) error {
	return errors.New("dial tcp 10.0.0.5:3306: connect: connection refused")
}

func newBot(store ledger.Store, granter RoleGranter) *Bot {
	log := logrus.New()
	log.SetOutput(io.Discard)

	ranks := rankService.NewEngine(store, log, rankService.WithPicker(firstPicker{}))
	return &Bot{
		Points:  pointsService.NewEngine(store, nil, log),
		Players: playerService.NewEngine(store, ranks, nil, log),
		Ranks:   ranks,
		Roles:   roleService.NewEngine(store, log),
		Store:   store,
		Granter: granter,
		Log:     log,
	}
}

func seededStore(t *testing.T) *ledger.MemoryStore {
	t.Helper()
	store := ledger.NewMemoryStore()
	err := store.Transaction(context.Background(), func(tx ledger.Tx) error {
		for _, p := range []models.Player{{ID: admin, Admin: true}, {ID: player, Points: 12}} {
			if err := tx.CreatePlayer(p); err != nil {
				return err
			}
		}
		for _, id := range []uint64{roleA, roleB} {
			if err := tx.CreateRole(models.Role{ID: id, GuildID: guild}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return store
}

func TestExecuteReplies(t *testing.T) {
	tests := []struct {
		name      string
		inv       Invocation
		cmd       Command
		want      string
		ephemeral bool
	}{
		{name: "query", inv: Invocation{ActorID: stranger}, cmd: QueryCommand{Target: player}, want: "<@3> has 12 points (rank 3)."},
		{name: "query unknown", inv: Invocation{ActorID: player}, cmd: QueryCommand{Target: stranger}, want: "This user hasn't been added to the game.", ephemeral: true},
		{name: "addpoints", inv: Invocation{ActorID: admin}, cmd: AddPointsCommand{Target: player, Delta: 3}, want: "<@3> now has 15 points."},
		{name: "addpoints refused", inv: Invocation{ActorID: player}, cmd: AddPointsCommand{Target: player, Delta: 3}, want: "You aren't a point master.", ephemeral: true},
		{name: "addplayer", inv: Invocation{ActorID: admin}, cmd: AddPlayerCommand{Target: stranger}, want: "<@99> was added to the game."},
		{name: "addplayer refused", inv: Invocation{ActorID: player}, cmd: AddPlayerCommand{Target: stranger}, want: "You aren't an admin.", ephemeral: true},
		{name: "addplayer twice", inv: Invocation{ActorID: admin}, cmd: AddPlayerCommand{Target: player}, want: "This user has already been added to the game.", ephemeral: true},
		{name: "removeplayer", inv: Invocation{ActorID: admin}, cmd: RemovePlayerCommand{Target: player}, want: "<@3> has been... removed."},
		{name: "setpointmaster on", inv: Invocation{ActorID: admin}, cmd: SetPointMasterCommand{Target: player, Value: true}, want: "<@3> is now a point master."},
		{name: "setpointmaster off", inv: Invocation{ActorID: admin}, cmd: SetPointMasterCommand{Target: player}, want: "<@3> is no longer a point master."},
		{name: "setadmin", inv: Invocation{ActorID: admin}, cmd: SetAdminCommand{Target: player, Value: true}, want: "<@3> is now an admin."},
		{name: "rankup outside a guild", inv: Invocation{ActorID: player}, cmd: RankUpCommand{}, want: "This command only works in a server.", ephemeral: true},
		{name: "rankup by non-player", inv: Invocation{ActorID: stranger, GuildID: guild}, cmd: RankUpCommand{}, want: "You're not a player.", ephemeral: true},
		{name: "reroll without draw", inv: Invocation{ActorID: player, GuildID: guild}, cmd: RerollCommand{}, want: "You aren't ranking up right now.", ephemeral: true},
		{name: "accept without draw", inv: Invocation{ActorID: player, GuildID: guild}, cmd: AcceptCommand{}, want: "You aren't ranking up right now.", ephemeral: true},
		{name: "addrole", inv: Invocation{ActorID: admin, GuildID: guild}, cmd: AddRoleCommand{Role: 7100}, want: "<@&7100> has been added to the game."},
		{name: "addrole twice", inv: Invocation{ActorID: admin, GuildID: guild}, cmd: AddRoleCommand{Role: roleA}, want: "Role has already been added.", ephemeral: true},
		{name: "equip unknown role", inv: Invocation{ActorID: player, GuildID: guild}, cmd: EquipRoleCommand{Role: 1}, want: "That role isn't in the game.", ephemeral: true},
		{name: "equip unearned role", inv: Invocation{ActorID: player, GuildID: guild}, cmd: EquipRoleCommand{Role: roleA}, want: "You don't have that role.", ephemeral: true},
		{name: "equip in wrong guild", inv: Invocation{ActorID: player, GuildID: 501}, cmd: EquipRoleCommand{Role: roleA}, want: "You're in the wrong server for that role.", ephemeral: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore(t)
			bot := newBot(store, &fakeGranter{})

			reply := bot.Execute(context.Background(), tt.inv, tt.cmd)
			assert.Equal(t, tt.want, reply.Content)
			assert.Equal(t, tt.ephemeral, reply.Ephemeral)
			assert.Empty(t, store.ErrorLogs(), "refusals are not recorded as errors")
		})
	}
}

func TestExecuteLeaderboard(t *testing.T) {
	bot := newBot(seededStore(t), &fakeGranter{})

	reply := bot.Execute(context.Background(), Invocation{ActorID: player}, LeaderboardCommand{})
	require.Len(t, reply.Embeds, 1)
	assert.Equal(t, "**1.** <@3> - 12 points\n**2.** <@1> - 0 points\n", reply.Embeds[0].Description)

	empty := newBot(ledger.NewMemoryStore(), &fakeGranter{})
	reply = empty.Execute(context.Background(), Invocation{ActorID: player}, LeaderboardCommand{})
	assert.Equal(t, "No players found on the leaderboard.", reply.Content)
}

func TestExecuteRankUpThenEquip(t *testing.T) {
	store := seededStore(t)
	granter := &fakeGranter{}
	bot := newBot(store, granter)
	ctx := context.Background()
	inv := Invocation{ActorID: player, GuildID: guild}

	reply := bot.Execute(ctx, inv, RankUpCommand{})
	assert.Equal(t, "You rolled <@&7000>. You have 2 rerolls left.", reply.Content)
	assert.NotEmpty(t, reply.Components)

	reply = bot.Execute(ctx, inv, RankUpCommand{})
	assert.Equal(t, "You're already ranking up. Reroll or accept your current role first.", reply.Content)

	reply = bot.Execute(ctx, inv, RerollCommand{})
	assert.Equal(t, "You rolled <@&7000>. You have 1 reroll left.", reply.Content)

	reply = bot.Execute(ctx, inv, AcceptCommand{})
	assert.Equal(t, "Enjoy your role! <@&7000> is yours.", reply.Content)
	assert.NotNil(t, reply.Components)
	assert.Empty(t, reply.Components)

	reply = bot.Execute(ctx, inv, EquipRoleCommand{Role: roleA})
	assert.Equal(t, "You are now wearing <@&7000>.", reply.Content)
	assert.Equal(t, []grant{{"500", "3", "7000"}}, granter.grants)
}

func TestExecuteRecordsFailures(t *testing.T) {
	t.Run("storage", func(t *testing.T) {
		store := downStore{ledger.NewMemoryStore()}
		bot := newBot(store, &fakeGranter{})

		reply := bot.Execute(context.Background(), Invocation{ActorID: admin, GuildID: guild}, AddPointsCommand{Target: player, Delta: 1})
		assert.Equal(t, "A storage error occurred. Please try again.", reply.Content)
		assert.True(t, reply.Ephemeral)

		logs := store.ErrorLogs()
		require.Len(t, logs, 1)
		assert.Equal(t, "500", logs[0].GuildID)
		assert.Equal(t, "addpoints", logs[0].Command)
		assert.Contains(t, logs[0].Message, "connection refused")
	})

	t.Run("role grant", func(t *testing.T) {
		store := seededStore(t)
		require.NoError(t, store.Transaction(context.Background(), func(tx ledger.Tx) error {
			return tx.InsertAward(player, roleB)
		}))
		bot := newBot(store, &fakeGranter{err: errors.New("HTTP 403 Forbidden")})

		reply := bot.Execute(context.Background(), Invocation{ActorID: player, GuildID: guild}, EquipRoleCommand{Role: roleB})
		assert.Equal(t, "I couldn't give you that role. Check that my role is above it.", reply.Content)

		logs := store.ErrorLogs()
		require.Len(t, logs, 1)
		assert.Equal(t, "equip-role", logs[0].Command)
	})
}

func TestRemovePlayerAbandonsDraw(t *testing.T) {
	bot := newBot(seededStore(t), &fakeGranter{})
	ctx := context.Background()
	inv := Invocation{ActorID: player, GuildID: guild}

	bot.Execute(ctx, inv, RankUpCommand{})
	bot.Execute(ctx, Invocation{ActorID: admin}, RemovePlayerCommand{Target: player})
	bot.Execute(ctx, Invocation{ActorID: admin}, AddPlayerCommand{Target: player})

	reply := bot.Execute(ctx, inv, AcceptCommand{})
	assert.Equal(t, "You aren't ranking up right now.", reply.Content)
}
