package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"pointsBot/scheduler"
	"pointsBot/services"
	"pointsBot/services/cache"
	"pointsBot/services/playerService"
	"pointsBot/services/pointsService"
	"pointsBot/services/rankService"
	"pointsBot/services/roleService"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and answer commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DiscordToken == "" {
				return errors.New("DISCORD_BOT_TOKEN not set in environment variables")
			}

			store, db, err := openLedger(cfg.AutoMigrate)
			if err != nil {
				return err
			}
			defer closeDB(db)

			var leaderboard pointsService.LeaderboardCache
			if cfg.RedisURL != "" {
				redisCache, err := cache.New(cfg.RedisURL, cfg.LeaderboardCacheTTL, log)
				if err != nil {
					return err
				}
				defer redisCache.Close()
				leaderboard = redisCache
			}

			ranks := rankService.NewEngine(store, log, rankService.WithSessionTTL(cfg.DrawSessionTTL))

			dg, err := discordgo.New("Bot " + cfg.DiscordToken)
			if err != nil {
				return err
			}

			bot := &services.Bot{
				Points:  pointsService.NewEngine(store, leaderboard, log),
				Players: playerService.NewEngine(store, ranks, leaderboard, log),
				Ranks:   ranks,
				Roles:   roleService.NewEngine(store, log),
				Store:   store,
				Granter: dg,
				Log:     log,
			}

			dg.AddHandler(bot.HandleInteraction)
			dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
				if err := s.UpdateGameStatus(0, "Ranking up!"); err != nil {
					log.WithError(err).Warn("Error setting status")
				}
			})
			dg.Identify.Intents = discordgo.IntentsGuilds

			if err := dg.Open(); err != nil {
				return err
			}
			defer func() {
				if err := dg.Close(); err != nil {
					log.WithError(err).Warn("Error closing Discord session")
				}
			}()

			if err := services.RegisterCommands(dg, cfg.DiscordGuildID); err != nil {
				return err
			}

			cronService, err := scheduler.SetupCron(ranks, cfg.SessionSweepInterval, db, log)
			if err != nil {
				return err
			}
			defer cronService.Stop()

			log.Info("Bot is running. Press CTRL+C to exit.")
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			select {
			case <-stop:
			case <-cmd.Context().Done():
			}
			log.Info("Shutting down")
			return nil
		},
	}
}
