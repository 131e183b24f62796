package services

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is one parsed slash command.
type Command interface {
	Name() string
}

type QueryCommand struct{ Target uint64 }
type LeaderboardCommand struct{}
type AddPointsCommand struct {
	Target uint64
	Delta  int
}
type AddPlayerCommand struct{ Target uint64 }
type RemovePlayerCommand struct{ Target uint64 }
type SetPointMasterCommand struct {
	Target uint64
	Value  bool
}
type SetAdminCommand struct {
	Target uint64
	Value  bool
}
type RankUpCommand struct{}
type RerollCommand struct{}
type AcceptCommand struct{}
type AddRoleCommand struct{ Role uint64 }
type EquipRoleCommand struct{ Role uint64 }

func (QueryCommand) Name() string          { return "query" }
func (LeaderboardCommand) Name() string    { return "leaderboard" }
func (AddPointsCommand) Name() string      { return "addpoints" }
func (AddPlayerCommand) Name() string      { return "addplayer" }
func (RemovePlayerCommand) Name() string   { return "removeplayer" }
func (SetPointMasterCommand) Name() string { return "setpointmaster" }
func (SetAdminCommand) Name() string       { return "setadmin" }
func (RankUpCommand) Name() string         { return "rankup" }
func (RerollCommand) Name() string         { return "reroll" }
func (AcceptCommand) Name() string         { return "accept" }
func (AddRoleCommand) Name() string        { return "addrole" }
func (EquipRoleCommand) Name() string      { return "equip-role" }

// ParseCommand turns slash command data into a typed command.
func ParseCommand(data discordgo.ApplicationCommandInteractionData) (Command, error) {
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		opts[opt.Name] = opt
	}

	switch data.Name {
	case "query":
		target, err := userOption(opts, "user")
		return QueryCommand{Target: target}, err
	case "leaderboard":
		return LeaderboardCommand{}, nil
	case "addpoints":
		target, err := userOption(opts, "user")
		if err != nil {
			return nil, err
		}
		delta, err := intOption(opts, "points")
		return AddPointsCommand{Target: target, Delta: delta}, err
	case "addplayer":
		target, err := userOption(opts, "user")
		return AddPlayerCommand{Target: target}, err
	case "removeplayer":
		target, err := userOption(opts, "user")
		return RemovePlayerCommand{Target: target}, err
	case "setpointmaster":
		target, err := userOption(opts, "user")
		if err != nil {
			return nil, err
		}
		value, err := boolOption(opts, "value")
		return SetPointMasterCommand{Target: target, Value: value}, err
	case "setadmin":
		target, err := userOption(opts, "user")
		if err != nil {
			return nil, err
		}
		value, err := boolOption(opts, "value")
		return SetAdminCommand{Target: target, Value: value}, err
	case "rankup":
		return RankUpCommand{}, nil
	case "reroll":
		return RerollCommand{}, nil
	case "accept":
		return AcceptCommand{}, nil
	case "addrole":
		role, err := roleOption(opts, "role")
		return AddRoleCommand{Role: role}, err
	case "equip-role":
		role, err := roleOption(opts, "role")
		return EquipRoleCommand{Role: role}, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, data.Name)
	}
}

func option(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, want discordgo.ApplicationCommandOptionType) (*discordgo.ApplicationCommandInteractionDataOption, error) {
	opt, ok := opts[name]
	if !ok {
		return nil, fmt.Errorf("missing option %q", name)
	}
	if opt.Type != want {
		return nil, fmt.Errorf("option %q has type %v, want %v", name, opt.Type, want)
	}
	return opt, nil
}

func userOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (uint64, error) {
	opt, err := option(opts, name, discordgo.ApplicationCommandOptionUser)
	if err != nil {
		return 0, err
	}
	return ParseSnowflake(opt.UserValue(nil).ID)
}

func roleOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (uint64, error) {
	opt, err := option(opts, name, discordgo.ApplicationCommandOptionRole)
	if err != nil {
		return 0, err
	}
	return ParseSnowflake(opt.RoleValue(nil, "").ID)
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (int, error) {
	opt, err := option(opts, name, discordgo.ApplicationCommandOptionInteger)
	if err != nil {
		return 0, err
	}
	return int(opt.IntValue()), nil
}

func boolOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (bool, error) {
	opt, err := option(opts, name, discordgo.ApplicationCommandOptionBoolean)
	if err != nil {
		return false, err
	}
	return opt.BoolValue(), nil
}

// ParseSnowflake parses a Discord ID.
func ParseSnowflake(id string) (uint64, error) {
	v, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", id, err)
	}
	return v, nil
}

func userArg(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        "user",
		Description: description,
		Type:        discordgo.ApplicationCommandOptionUser,
		Required:    true,
	}
}

func valueArg(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        "value",
		Description: description,
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Required:    true,
	}
}

func roleArg(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        "role",
		Description: description,
		Type:        discordgo.ApplicationCommandOptionRole,
		Required:    true,
	}
}

// Commands lists every slash command the bot answers.
var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "query",
		Description: "Show how many points a player has",
		Options:     []*discordgo.ApplicationCommandOption{userArg("Player to look up")},
	},
	{
		Name:        "leaderboard",
		Description: "Show the top players by points",
	},
	{
		Name:        "addpoints",
		Description: "★ Give or take points - POINT MASTER ONLY",
		Options: []*discordgo.ApplicationCommandOption{
			userArg("Player to give points to"),
			{
				Name:        "points",
				Description: "Points to add (negative to take away)",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Required:    true,
			},
		},
	},
	{
		Name:        "addplayer",
		Description: "🛡 Add a user to the game - ADMIN ONLY",
		Options:     []*discordgo.ApplicationCommandOption{userArg("User to add")},
	},
	{
		Name:        "removeplayer",
		Description: "🛡 Remove a player and their roles from the game - ADMIN ONLY",
		Options:     []*discordgo.ApplicationCommandOption{userArg("Player to remove")},
	},
	{
		Name:        "setpointmaster",
		Description: "🛡 Allow or stop a player from giving points - ADMIN ONLY",
		Options:     []*discordgo.ApplicationCommandOption{userArg("Player to update"), valueArg("Whether they are a point master")},
	},
	{
		Name:        "setadmin",
		Description: "🛡 Grant or revoke admin - ADMIN ONLY",
		Options:     []*discordgo.ApplicationCommandOption{userArg("Player to update"), valueArg("Whether they are an admin")},
	},
	{
		Name:        "rankup",
		Description: "Draw a new role if your points allow it",
	},
	{
		Name:        "reroll",
		Description: "Trade your drawn role for another one",
	},
	{
		Name:        "accept",
		Description: "Keep the role you drew",
	},
	{
		Name:        "addrole",
		Description: "🛡 Add a server role to the rank-up pool - ADMIN ONLY",
		Options:     []*discordgo.ApplicationCommandOption{roleArg("Role to add")},
	},
	{
		Name:        "equip-role",
		Description: "Put on a role you have earned",
		Options:     []*discordgo.ApplicationCommandOption{roleArg("Role to equip")},
	},
}

// RegisterCommands creates the slash commands, globally or for one guild when guildID is set.
func RegisterCommands(s *discordgo.Session, guildID string) error {
	for _, cmd := range Commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd); err != nil {
			return fmt.Errorf("cannot create '%v' command: %w", cmd.Name, err)
		}
	}
	return nil
}
