package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pointsBot/services/rankService"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	rerollButtonPrefix = "rankup_reroll"
	acceptButtonPrefix = "rankup_accept"

	// buttonCommand names unreadable button clicks in replies and the error log.
	buttonCommand = "button"
)

// Button is a parsed Reroll or Accept click. Custom IDs look like rankup_reroll:<player>:<draw>.
type Button struct {
	Action  string
	OwnerID uint64
	DrawID  uuid.UUID
}

func drawButtons(draw rankService.Draw) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    fmt.Sprintf("Reroll (%d left)", draw.RerollsRemaining),
					Style:    discordgo.PrimaryButton,
					CustomID: buttonID(rerollButtonPrefix, draw),
				},
				discordgo.Button{
					Label:    "Accept",
					Style:    discordgo.SuccessButton,
					CustomID: buttonID(acceptButtonPrefix, draw),
				},
			},
		},
	}
}

func buttonID(action string, draw rankService.Draw) string {
	return fmt.Sprintf("%s:%d:%s", action, draw.PlayerID, draw.ID)
}

func ParseButton(customID string) (Button, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || (parts[0] != rerollButtonPrefix && parts[0] != acceptButtonPrefix) {
		return Button{}, fmt.Errorf("%w: button %q", ErrUnknownCommand, customID)
	}
	owner, err := ParseSnowflake(parts[1])
	if err != nil {
		return Button{}, err
	}
	drawID, err := uuid.Parse(parts[2])
	if err != nil {
		return Button{}, fmt.Errorf("invalid draw id in button %q: %w", customID, err)
	}
	return Button{Action: parts[0], OwnerID: owner, DrawID: drawID}, nil
}

// Press handles a button click. Successful clicks replace the message the buttons were on.
func (b *Bot) Press(ctx context.Context, inv Invocation, btn Button) Reply {
	command := RerollCommand{}.Name()
	if btn.Action == acceptButtonPrefix {
		command = AcceptCommand{}.Name()
	}

	if btn.OwnerID != inv.ActorID {
		return Reply{Content: "That draw belongs to someone else. Use /rankup to start your own.", Ephemeral: true}
	}

	var (
		draw rankService.Draw
		err  error
	)
	if btn.Action == acceptButtonPrefix {
		draw, err = b.Ranks.AcceptDraw(ctx, inv.ActorID, btn.DrawID)
	} else {
		draw, err = b.Ranks.RerollDraw(ctx, inv.ActorID, btn.DrawID)
	}
	if err != nil {
		return b.failure(ctx, inv, command, err)
	}

	reply := drawReply(draw)
	reply.Update = true
	return reply
}

// HandleInteraction is the discordgo handler for every interaction the bot receives.
func (b *Bot) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.HandleSlashCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.HandleComponentInteraction(s, i)
	}
}

func (b *Bot) HandleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	data := i.ApplicationCommandData()

	inv, err := invocationOf(i)
	if err != nil {
		b.Log.WithError(err).WithField("command", data.Name).Warn("Could not identify command caller")
		return
	}

	var reply Reply
	cmd, err := ParseCommand(data)
	if err != nil {
		reply = b.failure(ctx, inv, data.Name, err)
	} else {
		reply = b.Execute(ctx, inv, cmd)
	}
	b.respond(s, i, reply)
}

func (b *Bot) HandleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	customID := i.MessageComponentData().CustomID

	inv, err := invocationOf(i)
	if err != nil {
		b.Log.WithError(err).WithField("custom_id", customID).Warn("Could not identify button caller")
		return
	}

	b.respond(s, i, b.Click(ctx, inv, customID))
}

// Click handles a raw button custom ID.
func (b *Bot) Click(ctx context.Context, inv Invocation, customID string) Reply {
	btn, err := ParseButton(customID)
	if err != nil {
		b.Log.WithError(err).WithFields(logrus.Fields{"custom_id": customID, "player_id": inv.ActorID}).Warn("Unreadable button")
		return b.failure(ctx, inv, buttonCommand, err)
	}
	return b.Press(ctx, inv, btn)
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, reply Reply) {
	responseType := discordgo.InteractionResponseChannelMessageWithSource
	if reply.Update {
		responseType = discordgo.InteractionResponseUpdateMessage
	}

	data := &discordgo.InteractionResponseData{
		Content:    reply.Content,
		Embeds:     reply.Embeds,
		Components: reply.Components,
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{Type: responseType, Data: data})
	if err != nil {
		b.Log.WithError(err).WithFields(logrus.Fields{"interaction_id": i.ID}).Error("Error sending interaction response")
	}
}

func invocationOf(i *discordgo.InteractionCreate) (Invocation, error) {
	var user *discordgo.User
	switch {
	case i.Member != nil && i.Member.User != nil:
		user = i.Member.User
	case i.User != nil:
		user = i.User
	default:
		return Invocation{}, errors.New("interaction has no user")
	}

	actorID, err := ParseSnowflake(user.ID)
	if err != nil {
		return Invocation{}, err
	}

	var guildID uint64
	if i.GuildID != "" {
		guildID, err = ParseSnowflake(i.GuildID)
		if err != nil {
			return Invocation{}, err
		}
	}
	return Invocation{ActorID: actorID, GuildID: guildID}, nil
}
