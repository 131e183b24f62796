package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pointsBot/models"
	"pointsBot/services/ledger"
	"pointsBot/services/playerService"
	"pointsBot/services/pointsService"
	"pointsBot/services/rankService"
	"pointsBot/services/roleService"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// RoleGranter gives a member a Discord role. *discordgo.Session satisfies it.
type RoleGranter interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// Bot routes commands to the engines and renders their results.
type Bot struct {
	Points  *pointsService.Engine
	Players *playerService.Engine
	Ranks   *rankService.Engine
	Roles   *roleService.Engine
	Store   ledger.Store
	Granter RoleGranter
	Log     *logrus.Logger
}

// Invocation identifies who ran a command and where.
type Invocation struct {
	ActorID uint64
	GuildID uint64
}

// Reply is what the bot sends back for one command or button press.
type Reply struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Ephemeral  bool

	// Update replaces the message a button was clicked on instead of posting a new one.
	Update bool
}

func (b *Bot) Execute(ctx context.Context, inv Invocation, cmd Command) Reply {
	reply, err := b.execute(ctx, inv, cmd)
	if err != nil {
		return b.failure(ctx, inv, cmd.Name(), err)
	}
	return reply
}

func (b *Bot) execute(ctx context.Context, inv Invocation, cmd Command) (Reply, error) {
	switch c := cmd.(type) {
	case QueryCommand:
		player, err := b.Points.Query(ctx, c.Target)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Content: fmt.Sprintf("%s has %d points (rank %d).", mention(c.Target), player.Points, player.Rank())}, nil

	case LeaderboardCommand:
		players, err := b.Points.Leaderboard(ctx)
		if err != nil {
			return Reply{}, err
		}
		return leaderboardReply(players), nil

	case AddPointsCommand:
		total, err := b.Points.AddPoints(ctx, inv.ActorID, c.Target, c.Delta)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Content: fmt.Sprintf("%s now has %d points.", mention(c.Target), total)}, nil

	case AddPlayerCommand:
		if err := b.Players.AddPlayer(ctx, inv.ActorID, c.Target); err != nil {
			return Reply{}, err
		}
		return Reply{Content: fmt.Sprintf("%s was added to the game.", mention(c.Target))}, nil

	case RemovePlayerCommand:
		if err := b.Players.RemovePlayer(ctx, inv.ActorID, c.Target); err != nil {
			return Reply{}, err
		}
		return Reply{Content: fmt.Sprintf("%s has been... removed.", mention(c.Target))}, nil

	case SetPointMasterCommand:
		if err := b.Players.SetPointMaster(ctx, inv.ActorID, c.Target, c.Value); err != nil {
			return Reply{}, err
		}
		if c.Value {
			return Reply{Content: fmt.Sprintf("%s is now a point master.", mention(c.Target))}, nil
		}
		return Reply{Content: fmt.Sprintf("%s is no longer a point master.", mention(c.Target))}, nil

	case SetAdminCommand:
		if err := b.Players.SetAdmin(ctx, inv.ActorID, c.Target, c.Value); err != nil {
			return Reply{}, err
		}
		if c.Value {
			return Reply{Content: fmt.Sprintf("%s is now an admin.", mention(c.Target))}, nil
		}
		return Reply{Content: fmt.Sprintf("%s is no longer an admin.", mention(c.Target))}, nil

	case RankUpCommand:
		if inv.GuildID == 0 {
			return Reply{}, errGuildOnly
		}
		draw, err := b.Ranks.InitiateRankUp(ctx, inv.ActorID, inv.GuildID)
		if err != nil {
			return Reply{}, err
		}
		return drawReply(draw), nil

	case RerollCommand:
		draw, err := b.Ranks.Reroll(ctx, inv.ActorID)
		if err != nil {
			return Reply{}, err
		}
		return drawReply(draw), nil

	case AcceptCommand:
		draw, err := b.Ranks.Accept(ctx, inv.ActorID)
		if err != nil {
			return Reply{}, err
		}
		return drawReply(draw), nil

	case AddRoleCommand:
		if inv.GuildID == 0 {
			return Reply{}, errGuildOnly
		}
		role, err := b.Roles.AddRole(ctx, inv.ActorID, inv.GuildID, c.Role)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Content: fmt.Sprintf("%s has been added to the game.", roleMention(role.ID))}, nil

	case EquipRoleCommand:
		if inv.GuildID == 0 {
			return Reply{}, errGuildOnly
		}
		role, err := b.Roles.EquipRole(ctx, inv.ActorID, inv.GuildID, c.Role)
		if err != nil {
			return Reply{}, err
		}
		err = b.Granter.GuildMemberRoleAdd(snowflake(inv.GuildID), snowflake(inv.ActorID), snowflake(role.ID))
		if err != nil {
			return Reply{}, fmt.Errorf("%w: %w", errGrantFailed, err)
		}
		return Reply{Content: fmt.Sprintf("You are now wearing %s.", roleMention(role.ID))}, nil

	default:
		return Reply{}, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

var (
	errGuildOnly   = errors.New("command needs a guild")
	errGrantFailed = errors.New("discord refused the role grant")
)

// failure renders err for the user. Failures the user cannot fix are also logged and
// written to the error log table.
func (b *Bot) failure(ctx context.Context, inv Invocation, command string, err error) Reply {
	reply := Reply{Content: errorMessage(command, err), Ephemeral: true}

	if refused(err) {
		b.Log.WithFields(logrus.Fields{"command": command, "player_id": inv.ActorID}).WithError(err).Debug("Command refused")
		return reply
	}

	b.Log.WithFields(logrus.Fields{
		"command":   command,
		"player_id": inv.ActorID,
		"guild_id":  inv.GuildID,
	}).WithError(err).Error("Command failed")

	guildID := ""
	if inv.GuildID != 0 {
		guildID = snowflake(inv.GuildID)
	}
	if logErr := b.Store.LogError(ctx, guildID, command, err.Error()); logErr != nil {
		b.Log.WithError(logErr).Error("Failed to record error log")
	}
	return reply
}

// refused reports whether err is a rule the user broke rather than a fault on our side.
func refused(err error) bool {
	if errors.Is(err, models.ErrStorage) {
		return false
	}
	return models.IsDomainError(err) || errors.Is(err, errGuildOnly)
}

func errorMessage(command string, err error) string {
	switch {
	case errors.Is(err, models.ErrNotAuthorized):
		if command == "addpoints" {
			return "You aren't a point master."
		}
		return "You aren't an admin."
	case errors.Is(err, models.ErrTargetNotPlayer):
		return "This user hasn't been added to the game."
	case errors.Is(err, models.ErrActorNotPlayer):
		return "You're not a player."
	case errors.Is(err, models.ErrAlreadyPlayer):
		return "This user has already been added to the game."
	case errors.Is(err, models.ErrRankUpNotEligible):
		return "You can't rank up yet."
	case errors.Is(err, models.ErrNoRolesRemaining):
		return "You already have every role!"
	case errors.Is(err, models.ErrDrawAlreadyInProgress):
		return "You're already ranking up. Reroll or accept your current role first."
	case errors.Is(err, models.ErrNoActiveDraw):
		return "You aren't ranking up right now."
	case errors.Is(err, models.ErrAlreadyRole):
		return "Role has already been added."
	case errors.Is(err, models.ErrRoleNotInGame):
		return "That role isn't in the game."
	case errors.Is(err, models.ErrWrongGuild):
		return "You're in the wrong server for that role."
	case errors.Is(err, models.ErrRoleNotAwarded):
		return "You don't have that role."
	case errors.Is(err, models.ErrStorage):
		return "A storage error occurred. Please try again."
	case errors.Is(err, errGuildOnly):
		return "This command only works in a server."
	case errors.Is(err, errGrantFailed):
		return "I couldn't give you that role. Check that my role is above it."
	case errors.Is(err, ErrUnknownCommand):
		return "Command not found."
	default:
		return "Something went wrong."
	}
}

func drawReply(draw rankService.Draw) Reply {
	if draw.Finalized {
		return Reply{
			Content:    fmt.Sprintf("Enjoy your role! %s is yours.", roleMention(draw.RoleID)),
			Components: []discordgo.MessageComponent{},
		}
	}
	return Reply{
		Content:    fmt.Sprintf("You rolled %s. You have %d %s left.", roleMention(draw.RoleID), draw.RerollsRemaining, plural(draw.RerollsRemaining, "reroll")),
		Components: drawButtons(draw),
	}
}

func leaderboardReply(players []models.Player) Reply {
	if len(players) == 0 {
		return Reply{Content: "No players found on the leaderboard."}
	}

	var description strings.Builder
	for idx, player := range players {
		fmt.Fprintf(&description, "**%d.** %s - %d points\n", idx+1, mention(player.ID), player.Points)
	}

	return Reply{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "🏆 Leaderboard",
			Description: description.String(),
			Color:       0x00ff00,
		}},
	}
}

func mention(userID uint64) string {
	return "<@" + snowflake(userID) + ">"
}

func roleMention(roleID uint64) string {
	return "<@&" + snowflake(roleID) + ">"
}

func snowflake(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
